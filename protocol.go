package rcon

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// WrapperSize is the number of non-body bytes covered by the size prefix of
// a binary packet: four bytes for the packet ID, four for the packet type,
// and two for the null terminators of the body and of the trailing empty
// string. The size prefix itself is not covered.
const WrapperSize = 4 + 4 + 2

// MaximumPacketSize is the largest size prefix value permitted by the
// protocol.
const MaximumPacketSize = 4096

const (
	// PacketTypeAuth is a client request carrying the server password in
	// its body.
	PacketTypeAuth = 3

	// PacketTypeAuthResponse is the server's verdict on a
	// [PacketTypeAuth] request. A packet ID of -1 signals that the
	// password was rejected; any other ID signals success.
	PacketTypeAuthResponse = 2

	// PacketTypeExecCommand is a client request carrying a command for
	// the server to execute. It shares its numeric value with
	// [PacketTypeAuthResponse]; the two are told apart by direction and
	// by session phase, never by the integer alone.
	PacketTypeExecCommand = 2

	// PacketTypeResponseValue is a server response carrying the output of
	// an executed command.
	PacketTypeResponseValue = 0
)

// Packet is a single RCON protocol message, client request or server
// response. On the wire a packet is a little-endian int32 size prefix
// followed by the ID, the type, the body, and two null bytes.
type Packet struct {
	// ID correlates responses with requests. Sessions managed by this
	// package assign strictly increasing IDs starting at 1. The server
	// echoes the request ID except on authentication failure, where it
	// sends -1 instead.
	ID int32

	// Type is one of the PacketType constants above.
	Type int32

	// Body is the UTF-8 payload: the password, the command text, or the
	// command output. May be empty.
	Body []byte
}

// MarshalBinary encodes the packet into its wire form. It satisfies
// [encoding.BinaryMarshaler].
func (p Packet) MarshalBinary() ([]byte, error) {
	size := int32(len(p.Body) + WrapperSize)
	if size > MaximumPacketSize {
		return nil, fmt.Errorf("rcon: packet body of %d bytes exceeds maximum packet size", len(p.Body))
	}

	buf := make([]byte, 4+size)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(size))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.ID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Type))
	copy(buf[12:], p.Body)
	// The final two bytes stay zero: body terminator plus the empty
	// trailing string's terminator.

	return buf, nil
}

// WriteTo writes the packet's wire form to w. It satisfies [io.WriterTo].
func (p Packet) WriteTo(w io.Writer) (int64, error) {
	bs, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(bs)
	return int64(n), err
}

// UnmarshalBinary decodes a wire-form packet into the receiver. It
// satisfies [encoding.BinaryUnmarshaler].
func (p *Packet) UnmarshalBinary(b []byte) error {
	_, err := p.ReadFrom(bytes.NewReader(b))
	return err
}

// ReadFrom reads one wire-form packet from r into the receiver, blocking
// until the full packet has arrived. Partial reads are retried until the
// byte count declared by the size prefix is satisfied; a stream that ends
// early yields [ErrConnectionClosed]. The two trailing null bytes are
// consumed and discarded without validation. ReadFrom satisfies
// [io.ReaderFrom].
func (p *Packet) ReadFrom(r io.Reader) (int64, error) {
	n := int64(0)

	prefix := make([]byte, 4)
	nr, err := io.ReadFull(r, prefix)
	n += int64(nr)
	if err != nil {
		return n, closedOn(err)
	}

	size := int32(binary.LittleEndian.Uint32(prefix))
	if size < WrapperSize {
		return n, errors.New("rcon: packet too small")
	}
	if size > MaximumPacketSize {
		return n, errors.New("rcon: packet too large")
	}

	payload := make([]byte, size)
	nr, err = io.ReadFull(r, payload)
	n += int64(nr)
	if err != nil {
		return n, closedOn(err)
	}

	p.ID = int32(binary.LittleEndian.Uint32(payload[0:4]))
	p.Type = int32(binary.LittleEndian.Uint32(payload[4:8]))
	p.Body = payload[8 : size-2]

	return n, nil
}

// closedOn maps end-of-stream read failures to [ErrConnectionClosed] and
// leaves every other error untouched.
func closedOn(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrConnectionClosed
	}
	return err
}

// Clone returns a deep copy of the packet.
func (p Packet) Clone() Packet {
	c := p
	c.Body = append([]byte(nil), p.Body...)
	return c
}

// EqualTo reports whether two packets carry the same ID, type, and body.
func (p Packet) EqualTo(p2 Packet) bool {
	return p.ID == p2.ID && p.Type == p2.Type && bytes.Equal(p.Body, p2.Body)
}
