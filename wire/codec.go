package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Encode marshals msg into a frame: uvarint message ID followed by the message body.
func Encode(msg any) ([]byte, error) {
	m := NewMarshaller()

	id, err := m.ID(msg)
	if err != nil {
		return nil, err
	}
	size, err := m.Size(msg)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, binary.MaxVarintLen64+size)
	n := uint64(binary.PutUvarint(buf, id))

	_, size, err = m.Marshal(msg, buf[n:])
	if err != nil {
		return nil, err
	}

	return buf[:n+size], nil
}

// Decode unmarshals a frame produced by Encode.
func Decode(frame []byte) (any, error) {
	// Capacity is clipped so reads beyond the frame fail instead of touching the rest of the buffer.
	frame = frame[:len(frame):len(frame)]

	id, n := binary.Uvarint(frame)
	if n <= 0 {
		return nil, errors.New("malformed frame header")
	}

	msg, size, err := NewMarshaller().Unmarshal(id, frame[n:])
	if err != nil {
		return nil, err
	}
	if size != uint64(len(frame)-n) {
		return nil, errors.Errorf("frame size mismatch: body is %d bytes, message took %d", len(frame)-n, size)
	}

	return msg, nil
}
