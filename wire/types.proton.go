package wire

import (
	"reflect"
	"unsafe"

	"github.com/outofforest/proton"
	"github.com/outofforest/proton/helpers"
	"github.com/pkg/errors"
)

const (
	id8 uint64 = iota + 1
	id7
	id6
	id5
	id4
	id2
	id1
	id0
)

var _ proton.Marshaller = Marshaller{}

// NewMarshaller creates marshaller.
func NewMarshaller() Marshaller {
	return Marshaller{}
}

// Marshaller marshals and unmarshals messages.
type Marshaller struct {
}

// Messages returns list of the message types supported by marshaller.
func (m Marshaller) Messages() []any {
	return []any {
		Kick{},
		Raw{},
		Envelope{},
		HandshakeRequest{},
		Hello{},
		Invite{},
		InviteReply{},
		Data{},
	}
}

// ID returns ID of message type.
func (m Marshaller) ID(msg any) (uint64, error) {
	switch msg.(type) {
	case *Kick:
		return id8, nil
	case *Raw:
		return id7, nil
	case *Envelope:
		return id6, nil
	case *HandshakeRequest:
		return id5, nil
	case *Hello:
		return id4, nil
	case *Invite:
		return id2, nil
	case *InviteReply:
		return id1, nil
	case *Data:
		return id0, nil
	default:
		return 0, errors.Errorf("unknown message type %T", msg)
	}
}

// Size computes the size of marshalled message.
func (m Marshaller) Size(msg any) (uint64, error) {
	switch msg2 := msg.(type) {
	case *Kick:
		return size8(msg2), nil
	case *Raw:
		return size7(msg2), nil
	case *Envelope:
		return size6(msg2), nil
	case *HandshakeRequest:
		return size5(msg2), nil
	case *Hello:
		return size4(msg2), nil
	case *Invite:
		return size2(msg2), nil
	case *InviteReply:
		return size1(msg2), nil
	case *Data:
		return size0(msg2), nil
	default:
		return 0, errors.Errorf("unknown message type %T", msg)
	}
}

// Marshal marshals message.
func (m Marshaller) Marshal(msg any, buf []byte) (retID, retSize uint64, retErr error) {
	defer helpers.RecoverMarshal(&retErr)

	switch msg2 := msg.(type) {
	case *Kick:
		return id8, marshal8(msg2, buf), nil
	case *Raw:
		return id7, marshal7(msg2, buf), nil
	case *Envelope:
		return id6, marshal6(msg2, buf), nil
	case *HandshakeRequest:
		return id5, marshal5(msg2, buf), nil
	case *Hello:
		return id4, marshal4(msg2, buf), nil
	case *Invite:
		return id2, marshal2(msg2, buf), nil
	case *InviteReply:
		return id1, marshal1(msg2, buf), nil
	case *Data:
		return id0, marshal0(msg2, buf), nil
	default:
		return 0, 0, errors.Errorf("unknown message type %T", msg)
	}
}

// Unmarshal unmarshals message.
func (m Marshaller) Unmarshal(id uint64, buf []byte) (retMsg any, retSize uint64, retErr error) {
	defer helpers.RecoverUnmarshal(&retErr)

	switch id {
	case id8:
		msg := &Kick{}
		return msg, unmarshal8(msg, buf), nil
	case id7:
		msg := &Raw{}
		return msg, unmarshal7(msg, buf), nil
	case id6:
		msg := &Envelope{}
		return msg, unmarshal6(msg, buf), nil
	case id5:
		msg := &HandshakeRequest{}
		return msg, unmarshal5(msg, buf), nil
	case id4:
		msg := &Hello{}
		return msg, unmarshal4(msg, buf), nil
	case id2:
		msg := &Invite{}
		return msg, unmarshal2(msg, buf), nil
	case id1:
		msg := &InviteReply{}
		return msg, unmarshal1(msg, buf), nil
	case id0:
		msg := &Data{}
		return msg, unmarshal0(msg, buf), nil
	default:
		return nil, 0, errors.Errorf("unknown ID %d", id)
	}
}

// MakePatch creates a patch.
func (m Marshaller) MakePatch(msgDst, msgSrc any, buf []byte) (retID, retSize uint64, retErr error) {
	defer helpers.RecoverMakePatch(&retErr)

	switch msg2 := msgDst.(type) {
	case *Kick:
		return id8, makePatch8(msg2, msgSrc.(*Kick), buf), nil
	case *Raw:
		return id7, makePatch7(msg2, msgSrc.(*Raw), buf), nil
	case *Envelope:
		return id6, makePatch6(msg2, msgSrc.(*Envelope), buf), nil
	case *HandshakeRequest:
		return id5, makePatch5(msg2, msgSrc.(*HandshakeRequest), buf), nil
	case *Hello:
		return id4, makePatch4(msg2, msgSrc.(*Hello), buf), nil
	case *Invite:
		return id2, makePatch2(msg2, msgSrc.(*Invite), buf), nil
	case *InviteReply:
		return id1, makePatch1(msg2, msgSrc.(*InviteReply), buf), nil
	case *Data:
		return id0, makePatch0(msg2, msgSrc.(*Data), buf), nil
	default:
		return 0, 0, errors.Errorf("unknown message type %T", msgDst)
	}
}

// ApplyPatch applies patch.
func (m Marshaller) ApplyPatch(msg any, buf []byte) (retSize uint64, retErr error) {
	defer helpers.RecoverApplyPatch(&retErr)

	switch msg2 := msg.(type) {
	case *Kick:
		return applyPatch8(msg2, buf), nil
	case *Raw:
		return applyPatch7(msg2, buf), nil
	case *Envelope:
		return applyPatch6(msg2, buf), nil
	case *HandshakeRequest:
		return applyPatch5(msg2, buf), nil
	case *Hello:
		return applyPatch4(msg2, buf), nil
	case *Invite:
		return applyPatch2(msg2, buf), nil
	case *InviteReply:
		return applyPatch1(msg2, buf), nil
	case *Data:
		return applyPatch0(msg2, buf), nil
	default:
		return 0, errors.Errorf("unknown message type %T", msg)
	}
}

func size0(m *Data) uint64 {
	var n uint64 = 1
	{
		// Payload

		l := uint64(len(m.Payload))
		helpers.UInt64Size(l, &n)
		n += l
	}
	return n
}

func marshal0(m *Data, b []byte) uint64 {
	var o uint64
	{
		// Payload

		l := uint64(len(m.Payload))
		helpers.UInt64Marshal(l, b, &o)
		copy(b[o:o+l], m.Payload)
		o += l
	}

	return o
}

func unmarshal0(m *Data, b []byte) uint64 {
	var o uint64
	{
		// Payload

		var l uint64
		helpers.UInt64Unmarshal(&l, b, &o)
		if l > 0 {
			m.Payload = make([]byte, l)
			copy(m.Payload, b[o:o+l])
			o += l
		}
	}

	return o
}

func makePatch0(m, mSrc *Data, b []byte) uint64 {
	var o uint64 = 1
	{
		// Payload

		if reflect.DeepEqual(m.Payload, mSrc.Payload) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			l := uint64(len(m.Payload))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.Payload)
			o += l
		}
	}

	return o
}

func applyPatch0(m *Data, b []byte) uint64 {
	var o uint64 = 1
	{
		// Payload

		if b[0]&0x01 != 0 {
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Payload = make([]byte, l)
				copy(m.Payload, b[o:o+l])
				o += l
			}
		}
	}

	return o
}

func size1(m *InviteReply) uint64 {
	var n uint64 = 1
	return n
}

func marshal1(m *InviteReply, b []byte) uint64 {
	var o uint64 = 1
	{
		// Accepted

		if m.Accepted {
			b[0] |= 0x01
		} else {
			b[0] &= 0xFE
		}
	}

	return o
}

func unmarshal1(m *InviteReply, b []byte) uint64 {
	var o uint64 = 1
	{
		// Accepted

		m.Accepted = b[0]&0x01 != 0
	}

	return o
}

func makePatch1(m, mSrc *InviteReply, b []byte) uint64 {
	var o uint64 = 1
	{
		// Accepted

		if m.Accepted == mSrc.Accepted {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
		}
	}

	return o
}

func applyPatch1(m *InviteReply, b []byte) uint64 {
	var o uint64 = 1
	{
		// Accepted

		if b[0]&0x01 != 0 {
			m.Accepted = !m.Accepted
		}
	}

	return o
}

func size2(m *Invite) uint64 {
	var n uint64 = 1
	{
		// Context

		l := uint64(len(m.Context))
		helpers.UInt64Size(l, &n)
		n += l
	}
	return n
}

func marshal2(m *Invite, b []byte) uint64 {
	var o uint64
	{
		// Context

		l := uint64(len(m.Context))
		helpers.UInt64Marshal(l, b, &o)
		copy(b[o:o+l], m.Context)
		o += l
	}

	return o
}

func unmarshal2(m *Invite, b []byte) uint64 {
	var o uint64
	{
		// Context

		var l uint64
		helpers.UInt64Unmarshal(&l, b, &o)
		if l > 0 {
			m.Context = make([]byte, l)
			copy(m.Context, b[o:o+l])
			o += l
		}
	}

	return o
}

func makePatch2(m, mSrc *Invite, b []byte) uint64 {
	var o uint64 = 1
	{
		// Context

		if reflect.DeepEqual(m.Context, mSrc.Context) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			l := uint64(len(m.Context))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.Context)
			o += l
		}
	}

	return o
}

func applyPatch2(m *Invite, b []byte) uint64 {
	var o uint64 = 1
	{
		// Context

		if b[0]&0x01 != 0 {
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Context = make([]byte, l)
				copy(m.Context, b[o:o+l])
				o += l
			}
		}
	}

	return o
}

func size4(m *Hello) uint64 {
	var n uint64 = 4
	{
		// PeerName

		{
			l := uint64(len(m.PeerName))
			helpers.UInt64Size(l, &n)
			n += l
		}
	}
	{
		// ServiceID

		{
			l := uint64(len(m.ServiceID))
			helpers.UInt64Size(l, &n)
			n += l
		}
	}
	{
		// Metadata

		l := uint64(len(m.Metadata))
		helpers.UInt64Size(l, &n)
		for _, sv1 := range m.Metadata {
			n += size3(&sv1)
		}
	}
	return n
}

func marshal4(m *Hello, b []byte) uint64 {
	var o uint64 = 1
	{
		// PeerName

		{
			l := uint64(len(m.PeerName))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.PeerName)
			o += l
		}
	}
	{
		// ServiceID

		{
			l := uint64(len(m.ServiceID))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.ServiceID)
			o += l
		}
	}
	{
		// Advertising

		if m.Advertising {
			b[0] |= 0x01
		} else {
			b[0] &= 0xFE
		}
	}
	{
		// Metadata

		helpers.UInt64Marshal(uint64(len(m.Metadata)), b, &o)
		for _, sv1 := range m.Metadata {
			o += marshal3(&sv1, b[o:])
		}
	}

	return o
}

func unmarshal4(m *Hello, b []byte) uint64 {
	var o uint64 = 1
	{
		// PeerName

		{
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.PeerName = string(b[o:o+l])
				o += l
			}
		}
	}
	{
		// ServiceID

		{
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.ServiceID = string(b[o:o+l])
				o += l
			}
		}
	}
	{
		// Advertising

		m.Advertising = b[0]&0x01 != 0
	}
	{
		// Metadata

		var l uint64
		helpers.UInt64Unmarshal(&l, b, &o)
		if l > 0 {
			m.Metadata = make([]Attribute, l)
			for i1 := range l {
				o += unmarshal3(&m.Metadata[i1], b[o:])
			}
		}
	}

	return o
}

func makePatch4(m, mSrc *Hello, b []byte) uint64 {
	var o uint64 = 2
	{
		// PeerName

		if reflect.DeepEqual(m.PeerName, mSrc.PeerName) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			{
				l := uint64(len(m.PeerName))
				helpers.UInt64Marshal(l, b, &o)
				copy(b[o:o+l], m.PeerName)
				o += l
			}
		}
	}
	{
		// ServiceID

		if reflect.DeepEqual(m.ServiceID, mSrc.ServiceID) {
			b[0] &= 0xFD
		} else {
			b[0] |= 0x02
			{
				l := uint64(len(m.ServiceID))
				helpers.UInt64Marshal(l, b, &o)
				copy(b[o:o+l], m.ServiceID)
				o += l
			}
		}
	}
	{
		// Advertising

		if m.Advertising == mSrc.Advertising {
			b[1] &= 0xFE
		} else {
			b[1] |= 0x01
		}
	}
	{
		// Metadata

		if reflect.DeepEqual(m.Metadata, mSrc.Metadata) {
			b[0] &= 0xFB
		} else {
			b[0] |= 0x04
			helpers.UInt64Marshal(uint64(len(m.Metadata)), b, &o)
			for _, sv1 := range m.Metadata {
				o += marshal3(&sv1, b[o:])
			}
		}
	}

	return o
}

func applyPatch4(m *Hello, b []byte) uint64 {
	var o uint64 = 2
	{
		// PeerName

		if b[0]&0x01 != 0 {
			{
				var l uint64
				helpers.UInt64Unmarshal(&l, b, &o)
				if l > 0 {
					m.PeerName = string(b[o:o+l])
					o += l
				}
			}
		}
	}
	{
		// ServiceID

		if b[0]&0x02 != 0 {
			{
				var l uint64
				helpers.UInt64Unmarshal(&l, b, &o)
				if l > 0 {
					m.ServiceID = string(b[o:o+l])
					o += l
				}
			}
		}
	}
	{
		// Advertising

		if b[1]&0x01 != 0 {
			m.Advertising = !m.Advertising
		}
	}
	{
		// Metadata

		if b[0]&0x04 != 0 {
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Metadata = make([]Attribute, l)
				for i1 := range l {
					o += unmarshal3(&m.Metadata[i1], b[o:])
				}
			}
		}
	}

	return o
}

func size3(m *Attribute) uint64 {
	var n uint64 = 2
	{
		// Key

		{
			l := uint64(len(m.Key))
			helpers.UInt64Size(l, &n)
			n += l
		}
	}
	{
		// Value

		{
			l := uint64(len(m.Value))
			helpers.UInt64Size(l, &n)
			n += l
		}
	}
	return n
}

func marshal3(m *Attribute, b []byte) uint64 {
	var o uint64
	{
		// Key

		{
			l := uint64(len(m.Key))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.Key)
			o += l
		}
	}
	{
		// Value

		{
			l := uint64(len(m.Value))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.Value)
			o += l
		}
	}

	return o
}

func unmarshal3(m *Attribute, b []byte) uint64 {
	var o uint64
	{
		// Key

		{
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Key = string(b[o:o+l])
				o += l
			}
		}
	}
	{
		// Value

		{
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Value = string(b[o:o+l])
				o += l
			}
		}
	}

	return o
}

func size5(m *HandshakeRequest) uint64 {
	var n uint64 = 2
	{
		// DeviceDetails

		{
			l := uint64(len(m.DeviceDetails))
			helpers.UInt64Size(l, &n)
			n += l
		}
	}
	{
		// AppVersion

		{
			l := uint64(len(m.AppVersion))
			helpers.UInt64Size(l, &n)
			n += l
		}
	}
	return n
}

func marshal5(m *HandshakeRequest, b []byte) uint64 {
	var o uint64
	{
		// DeviceDetails

		{
			l := uint64(len(m.DeviceDetails))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.DeviceDetails)
			o += l
		}
	}
	{
		// AppVersion

		{
			l := uint64(len(m.AppVersion))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.AppVersion)
			o += l
		}
	}

	return o
}

func unmarshal5(m *HandshakeRequest, b []byte) uint64 {
	var o uint64
	{
		// DeviceDetails

		{
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.DeviceDetails = string(b[o:o+l])
				o += l
			}
		}
	}
	{
		// AppVersion

		{
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.AppVersion = string(b[o:o+l])
				o += l
			}
		}
	}

	return o
}

func makePatch5(m, mSrc *HandshakeRequest, b []byte) uint64 {
	var o uint64 = 1
	{
		// DeviceDetails

		if reflect.DeepEqual(m.DeviceDetails, mSrc.DeviceDetails) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			{
				l := uint64(len(m.DeviceDetails))
				helpers.UInt64Marshal(l, b, &o)
				copy(b[o:o+l], m.DeviceDetails)
				o += l
			}
		}
	}
	{
		// AppVersion

		if reflect.DeepEqual(m.AppVersion, mSrc.AppVersion) {
			b[0] &= 0xFD
		} else {
			b[0] |= 0x02
			{
				l := uint64(len(m.AppVersion))
				helpers.UInt64Marshal(l, b, &o)
				copy(b[o:o+l], m.AppVersion)
				o += l
			}
		}
	}

	return o
}

func applyPatch5(m *HandshakeRequest, b []byte) uint64 {
	var o uint64 = 1
	{
		// DeviceDetails

		if b[0]&0x01 != 0 {
			{
				var l uint64
				helpers.UInt64Unmarshal(&l, b, &o)
				if l > 0 {
					m.DeviceDetails = string(b[o:o+l])
					o += l
				}
			}
		}
	}
	{
		// AppVersion

		if b[0]&0x02 != 0 {
			{
				var l uint64
				helpers.UInt64Unmarshal(&l, b, &o)
				if l > 0 {
					m.AppVersion = string(b[o:o+l])
					o += l
				}
			}
		}
	}

	return o
}

func size6(m *Envelope) uint64 {
	var n uint64 = 18
	{
		// Timestamp

		l := uint64(len(m.Timestamp))
		helpers.UInt64Size(l, &n)
		n += l
	}
	{
		// Content

		l := uint64(len(m.Content))
		helpers.UInt64Size(l, &n)
		n += l
	}
	return n
}

func marshal6(m *Envelope, b []byte) uint64 {
	var o uint64
	{
		// ID

		copy(b[o:o+16], unsafe.Slice(&m.ID[0], 16))
		o += 16
	}
	{
		// Timestamp

		l := uint64(len(m.Timestamp))
		helpers.UInt64Marshal(l, b, &o)
		copy(b[o:o+l], m.Timestamp)
		o += l
	}
	{
		// Content

		l := uint64(len(m.Content))
		helpers.UInt64Marshal(l, b, &o)
		copy(b[o:o+l], m.Content)
		o += l
	}

	return o
}

func unmarshal6(m *Envelope, b []byte) uint64 {
	var o uint64
	{
		// ID

		copy(unsafe.Slice(&m.ID[0], 16), b[o:o+16])
		o += 16
	}
	{
		// Timestamp

		var l uint64
		helpers.UInt64Unmarshal(&l, b, &o)
		if l > 0 {
			m.Timestamp = make([]byte, l)
			copy(m.Timestamp, b[o:o+l])
			o += l
		}
	}
	{
		// Content

		var l uint64
		helpers.UInt64Unmarshal(&l, b, &o)
		if l > 0 {
			m.Content = make([]byte, l)
			copy(m.Content, b[o:o+l])
			o += l
		}
	}

	return o
}

func makePatch6(m, mSrc *Envelope, b []byte) uint64 {
	var o uint64 = 1
	{
		// ID

		if reflect.DeepEqual(m.ID, mSrc.ID) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			copy(b[o:o+16], unsafe.Slice(&m.ID[0], 16))
			o += 16
		}
	}
	{
		// Timestamp

		if reflect.DeepEqual(m.Timestamp, mSrc.Timestamp) {
			b[0] &= 0xFD
		} else {
			b[0] |= 0x02
			l := uint64(len(m.Timestamp))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.Timestamp)
			o += l
		}
	}
	{
		// Content

		if reflect.DeepEqual(m.Content, mSrc.Content) {
			b[0] &= 0xFB
		} else {
			b[0] |= 0x04
			l := uint64(len(m.Content))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.Content)
			o += l
		}
	}

	return o
}

func applyPatch6(m *Envelope, b []byte) uint64 {
	var o uint64 = 1
	{
		// ID

		if b[0]&0x01 != 0 {
			copy(unsafe.Slice(&m.ID[0], 16), b[o:o+16])
			o += 16
		}
	}
	{
		// Timestamp

		if b[0]&0x02 != 0 {
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Timestamp = make([]byte, l)
				copy(m.Timestamp, b[o:o+l])
				o += l
			}
		}
	}
	{
		// Content

		if b[0]&0x04 != 0 {
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Content = make([]byte, l)
				copy(m.Content, b[o:o+l])
				o += l
			}
		}
	}

	return o
}

func size7(m *Raw) uint64 {
	var n uint64 = 1
	{
		// Content

		l := uint64(len(m.Content))
		helpers.UInt64Size(l, &n)
		n += l
	}
	return n
}

func marshal7(m *Raw, b []byte) uint64 {
	var o uint64
	{
		// Content

		l := uint64(len(m.Content))
		helpers.UInt64Marshal(l, b, &o)
		copy(b[o:o+l], m.Content)
		o += l
	}

	return o
}

func unmarshal7(m *Raw, b []byte) uint64 {
	var o uint64
	{
		// Content

		var l uint64
		helpers.UInt64Unmarshal(&l, b, &o)
		if l > 0 {
			m.Content = make([]byte, l)
			copy(m.Content, b[o:o+l])
			o += l
		}
	}

	return o
}

func makePatch7(m, mSrc *Raw, b []byte) uint64 {
	var o uint64 = 1
	{
		// Content

		if reflect.DeepEqual(m.Content, mSrc.Content) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			l := uint64(len(m.Content))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.Content)
			o += l
		}
	}

	return o
}

func applyPatch7(m *Raw, b []byte) uint64 {
	var o uint64 = 1
	{
		// Content

		if b[0]&0x01 != 0 {
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Content = make([]byte, l)
				copy(m.Content, b[o:o+l])
				o += l
			}
		}
	}

	return o
}

func size8(m *Kick) uint64 {
	var n uint64 = 17
	{
		// Reason

		{
			l := uint64(len(m.Reason))
			helpers.UInt64Size(l, &n)
			n += l
		}
	}
	return n
}

func marshal8(m *Kick, b []byte) uint64 {
	var o uint64
	{
		// RequestID

		copy(b[o:o+16], unsafe.Slice(&m.RequestID[0], 16))
		o += 16
	}
	{
		// Reason

		{
			l := uint64(len(m.Reason))
			helpers.UInt64Marshal(l, b, &o)
			copy(b[o:o+l], m.Reason)
			o += l
		}
	}

	return o
}

func unmarshal8(m *Kick, b []byte) uint64 {
	var o uint64
	{
		// RequestID

		copy(unsafe.Slice(&m.RequestID[0], 16), b[o:o+16])
		o += 16
	}
	{
		// Reason

		{
			var l uint64
			helpers.UInt64Unmarshal(&l, b, &o)
			if l > 0 {
				m.Reason = string(b[o:o+l])
				o += l
			}
		}
	}

	return o
}

func makePatch8(m, mSrc *Kick, b []byte) uint64 {
	var o uint64 = 1
	{
		// RequestID

		if reflect.DeepEqual(m.RequestID, mSrc.RequestID) {
			b[0] &= 0xFE
		} else {
			b[0] |= 0x01
			copy(b[o:o+16], unsafe.Slice(&m.RequestID[0], 16))
			o += 16
		}
	}
	{
		// Reason

		if reflect.DeepEqual(m.Reason, mSrc.Reason) {
			b[0] &= 0xFD
		} else {
			b[0] |= 0x02
			{
				l := uint64(len(m.Reason))
				helpers.UInt64Marshal(l, b, &o)
				copy(b[o:o+l], m.Reason)
				o += l
			}
		}
	}

	return o
}

func applyPatch8(m *Kick, b []byte) uint64 {
	var o uint64 = 1
	{
		// RequestID

		if b[0]&0x01 != 0 {
			copy(unsafe.Slice(&m.RequestID[0], 16), b[o:o+16])
			o += 16
		}
	}
	{
		// Reason

		if b[0]&0x02 != 0 {
			{
				var l uint64
				helpers.UInt64Unmarshal(&l, b, &o)
				if l > 0 {
					m.Reason = string(b[o:o+l])
					o += l
				}
			}
		}
	}

	return o
}
