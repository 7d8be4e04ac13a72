package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// Proto is the upper layer protocol carried by a packet.
type Proto uint8

const (
	Data Proto = iota + 1
	Control
)

const (
	// AddressWidth is the fixed width of the destination field on the wire.
	AddressWidth = 5
	// ProtoWidth is the width of the protocol tag.
	ProtoWidth = 1
	// HeaderLen is the number of bytes preceding the payload.
	HeaderLen = AddressWidth + ProtoWidth

	// Broadcast addresses control packets to whoever sits on the other end of the link.
	Broadcast = "0"
)

var ErrFormat = errors.New("malformed packet")

// FormatError is returned when a packet cannot be encoded or decoded.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFormat.Error(), e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func formatErr(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

func (p Proto) String() string {
	switch p {
	case Data:
		return "data"
	case Control:
		return "control"
	}
	return fmt.Sprintf("proto(%d)", uint8(p))
}

func (p Proto) tag() (byte, error) {
	switch p {
	case Data:
		return '1', nil
	case Control:
		return '2', nil
	}
	return 0, formatErr("unknown protocol %d", uint8(p))
}

func protoFromTag(b byte) (Proto, error) {
	switch b {
	case '1':
		return Data, nil
	case '2':
		return Control, nil
	}
	return 0, formatErr("unknown protocol tag %q", b)
}

// Packet is a network layer packet. Treat it as immutable once built.
type Packet struct {
	Dst   string
	Proto Proto
	Data  []byte
}

func (p Packet) String() string {
	return fmt.Sprintf("(dst: %s, proto: %s, data: %q)", p.Dst, p.Proto, p.Data)
}

// Normalize strips the leading zeros introduced by the fixed-width framing.
// The all-zero address normalizes to "0".
func Normalize(addr string) string {
	out := strings.TrimLeft(addr, "0")
	if out == "" {
		return "0"
	}
	return out
}

// Encode frames a packet as zeroPad(dst) + tag + data.
func Encode(dst string, proto Proto, data []byte) ([]byte, error) {
	if dst == "" {
		return nil, formatErr("empty destination")
	}
	if len(dst) > AddressWidth {
		return nil, formatErr("destination %q is wider than %d", dst, AddressWidth)
	}
	tag, err := proto.tag()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, HeaderLen+len(data))
	for range AddressWidth - len(dst) {
		out = append(out, '0')
	}
	out = append(out, dst...)
	out = append(out, tag)
	return append(out, data...), nil
}

// Bytes encodes the packet.
func (p Packet) Bytes() ([]byte, error) {
	return Encode(p.Dst, p.Proto, p.Data)
}

// Decode parses a framed packet. The returned payload does not alias pkt.
func Decode(pkt []byte) (Packet, error) {
	if len(pkt) < HeaderLen {
		return Packet{}, formatErr("packet of length %d is shorter than the %d byte header", len(pkt), HeaderLen)
	}
	proto, err := protoFromTag(pkt[AddressWidth])
	if err != nil {
		return Packet{}, err
	}
	data := make([]byte, len(pkt)-HeaderLen)
	copy(data, pkt[HeaderLen:])
	return Packet{
		Dst:   Normalize(string(pkt[:AddressWidth])),
		Proto: proto,
		Data:  data,
	}, nil
}
