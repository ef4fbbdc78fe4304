package tcpnet

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var errLinkClosed = errors.New("link is closed")

// link is the send side of an established connection to a peer.
type link struct {
	sendCh    chan []byte
	closedCh  chan struct{}
	closeOnce sync.Once
}

func newLink() *link {
	return &link{
		sendCh:   make(chan []byte, sendQueueSize),
		closedCh: make(chan struct{}),
	}
}

// Send queues payload. It blocks while the queue is full.
func (l *link) Send(payload []byte) error {
	select {
	case <-l.closedCh:
		return errors.WithStack(errLinkClosed)
	default:
	}

	select {
	case <-l.closedCh:
		return errors.WithStack(errLinkClosed)
	case l.sendCh <- payload:
		return nil
	}
}

// Run passes queued payloads to send until the link is closed.
func (l *link) Run(ctx context.Context, send func(payload []byte) error) error {
	for {
		select {
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		case <-l.closedCh:
			return nil
		case payload := <-l.sendCh:
			if err := send(payload); err != nil {
				return err
			}
		}
	}
}

// Close may be called many times.
func (l *link) Close() {
	l.closeOnce.Do(func() {
		close(l.closedCh)
	})
}
