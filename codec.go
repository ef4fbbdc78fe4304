package huddle

import (
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/outofforest/huddle/wire"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(errors.Wrap(err, "cbor encoder initialization failed"))
	}

	// Unknown fields are rejected so content decodes only into types matching its shape.
	decMode, err = cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
	}.DecMode()
	if err != nil {
		panic(errors.Wrap(err, "cbor decoder initialization failed"))
	}
}

// Envelope wraps content with its id and send time.
type Envelope[T any] struct {
	ID        uuid.UUID
	Content   T
	Timestamp time.Time
}

// NewEnvelope wraps content into envelope with fresh id and current time.
func NewEnvelope[T any](content T) Envelope[T] {
	return Envelope[T]{
		ID:        uuid.New(),
		Content:   content,
		Timestamp: time.Now(),
	}
}

// Equal compares envelopes by id.
func (e Envelope[T]) Equal(other Envelope[T]) bool {
	return e.ID == other.ID
}

// EncodeEnvelope serializes envelope into transport payload.
func EncodeEnvelope[T any](env Envelope[T]) ([]byte, error) {
	frame, err := envelopeFrame(env)
	if err != nil {
		return nil, err
	}
	return encodeFrame(frame)
}

// DecodeEnvelope deserializes transport payload into envelope.
func DecodeEnvelope[T any](payload []byte) (Envelope[T], error) {
	frame, err := decodeFrame(payload)
	if err != nil {
		return Envelope[T]{}, err
	}
	return envelopeFromFrame[T](frame)
}

// EncodeRaw serializes content into transport payload without envelope metadata.
func EncodeRaw(content any) ([]byte, error) {
	frame, err := rawFrame(content)
	if err != nil {
		return nil, err
	}
	return encodeFrame(frame)
}

// DecodeRaw deserializes transport payload produced by EncodeRaw.
func DecodeRaw[T any](payload []byte) (T, error) {
	frame, err := decodeFrame(payload)
	if err != nil {
		var v T
		return v, err
	}
	return rawFromFrame[T](frame)
}

func encodeContent(content any) ([]byte, error) {
	b, err := encMode.Marshal(content)
	if err != nil {
		return nil, encodingError(err)
	}
	return b, nil
}

func decodeContent[T any](b []byte) (T, error) {
	var v T
	if err := decMode.Unmarshal(b, &v); err != nil {
		return v, decodingError(err)
	}
	return v, nil
}

func envelopeFrame[T any](env Envelope[T]) (*wire.Envelope, error) {
	content, err := encodeContent(env.Content)
	if err != nil {
		return nil, err
	}
	timestamp, err := env.Timestamp.MarshalBinary()
	if err != nil {
		return nil, encodingError(err)
	}
	return &wire.Envelope{
		ID:        env.ID,
		Timestamp: timestamp,
		Content:   content,
	}, nil
}

func rawFrame(content any) (*wire.Raw, error) {
	b, err := encodeContent(content)
	if err != nil {
		return nil, err
	}
	return &wire.Raw{Content: b}, nil
}

func kickFrame(reason string) *wire.Kick {
	return &wire.Kick{
		RequestID: uuid.New(),
		Reason:    reason,
	}
}

func envelopeFromFrame[T any](frame any) (Envelope[T], error) {
	f, ok := frame.(*wire.Envelope)
	if !ok {
		return Envelope[T]{}, decodingError(errors.Errorf("envelope expected, got %T", frame))
	}

	content, err := decodeContent[T](f.Content)
	if err != nil {
		return Envelope[T]{}, err
	}
	var timestamp time.Time
	if len(f.Timestamp) > 0 {
		if err := timestamp.UnmarshalBinary(f.Timestamp); err != nil {
			return Envelope[T]{}, decodingError(err)
		}
	}
	return Envelope[T]{
		ID:        f.ID,
		Content:   content,
		Timestamp: timestamp,
	}, nil
}

func rawFromFrame[T any](frame any) (T, error) {
	f, ok := frame.(*wire.Raw)
	if !ok {
		var v T
		return v, decodingError(errors.Errorf("raw object expected, got %T", frame))
	}
	return decodeContent[T](f.Content)
}

func handshakeFrame(req HandshakeRequest) *wire.HandshakeRequest {
	return &wire.HandshakeRequest{
		DeviceDetails: req.DeviceDetails,
		AppVersion:    req.AppVersion,
	}
}

func handshakeFromContext(context []byte) (HandshakeRequest, error) {
	frame, err := decodeFrame(context)
	if err != nil {
		return HandshakeRequest{}, err
	}
	f, ok := frame.(*wire.HandshakeRequest)
	if !ok {
		return HandshakeRequest{}, decodingError(errors.Errorf("handshake request expected, got %T", frame))
	}
	return HandshakeRequest{
		DeviceDetails: f.DeviceDetails,
		AppVersion:    f.AppVersion,
	}, nil
}

func encodeFrame(frame any) ([]byte, error) {
	b, err := wire.Encode(frame)
	if err != nil {
		return nil, encodingError(err)
	}
	return b, nil
}

func decodeFrame(payload []byte) (any, error) {
	frame, err := wire.Decode(payload)
	if err != nil {
		return nil, decodingError(err)
	}
	return frame, nil
}
