// Package protocol implements the Minecraft Java Edition wire codec
// primitives (VarInt/VarLong/VarShort, strings, UUIDs, positions,
// fixed-point reals) and the packet framing layer (compression,
// encryption, per-version packet-id remapping) that sit underneath the
// chunk parsers in pkg/chunkio.
//
// All multi-byte integers are big-endian except the pre-1.13 per-section
// block-type u16[4096] array, which chunkio reads little-endian directly.
package protocol

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/google/uuid"
	"github.com/voxelkiln/mccore/pkg/mcerr"
)

// Connection states, per spec §4.I.
const (
	StateHandshaking = 0
	StateStatus      = 1
	StateLogin       = 2
	StatePlay        = 3
)

// FlatEraProtocol is the lowest protocol version using post-1.13 flat
// state IDs (spec §3 VanillaIDMap.flat / §4.A by_vanilla_id).
const FlatEraProtocol = 404

// ReadVarInt reads a variable-length integer: 7 data bits per byte,
// low-order first, MSB as continuation, at most 5 bytes.
func ReadVarInt(r io.Reader) (int32, int, error) {
	var result int32
	var numRead int
	var buf [1]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, numRead, err
		}
		b := buf[0]
		result |= int32(b&0x7F) << (7 * numRead)
		numRead++
		if numRead > 5 {
			return 0, numRead, mcerr.New(mcerr.WireFormat, "VarInt is too big")
		}
		if b&0x80 == 0 {
			break
		}
	}
	return result, numRead, nil
}

// WriteVarInt writes a VarInt and returns the number of bytes written.
func WriteVarInt(w io.Writer, value int32) (int, error) {
	var buf [5]byte
	n := PutVarInt(buf[:], value)
	return w.Write(buf[:n])
}

// PutVarInt encodes value into buf and returns the byte count.
func PutVarInt(buf []byte, value int32) int {
	uval := uint32(value)
	n := 0
	for {
		if uval&^uint32(0x7F) == 0 {
			buf[n] = byte(uval)
			return n + 1
		}
		buf[n] = byte(uval&0x7F) | 0x80
		n++
		uval >>= 7
	}
}

// VarIntSize returns the number of bytes value would encode to.
func VarIntSize(value int32) int {
	uval := uint32(value)
	size := 1
	for uval&^uint32(0x7F) != 0 {
		size++
		uval >>= 7
	}
	return size
}

// ReadVarLong reads a variable-length 64-bit integer, at most 10 bytes.
func ReadVarLong(r io.Reader) (int64, int, error) {
	var result int64
	var numRead int
	var buf [1]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, numRead, err
		}
		b := buf[0]
		result |= int64(b&0x7F) << (7 * numRead)
		numRead++
		if numRead > 10 {
			return 0, numRead, mcerr.New(mcerr.WireFormat, "VarLong is too big")
		}
		if b&0x80 == 0 {
			break
		}
	}
	return result, numRead, nil
}

// WriteVarLong writes a VarLong.
func WriteVarLong(w io.Writer, value int64) (int, error) {
	uval := uint64(value)
	var buf [10]byte
	n := 0
	for {
		if uval&^uint64(0x7F) == 0 {
			buf[n] = byte(uval)
			n++
			break
		}
		buf[n] = byte(uval&0x7F) | 0x80
		n++
		uval >>= 7
	}
	return w.Write(buf[:n])
}

// ReadVarShort reads the modded (Forge) 15-bit-low/8-bit-high VarShort
// used by pre-1.13 Forge handshake payloads: value range 0..2^23, the
// 16th bit of the low word flags a following high byte.
func ReadVarShort(r io.Reader) (int32, error) {
	low, err := ReadUint16(r)
	if err != nil {
		return 0, err
	}
	result := int32(low & 0x7FFF)
	if low&0x8000 != 0 {
		high, err := ReadByte(r)
		if err != nil {
			return 0, err
		}
		result |= int32(high) << 15
	}
	return result, nil
}

// WriteVarShort writes the modded VarShort encoding.
func WriteVarShort(w io.Writer, value int32) error {
	low := uint16(value & 0x7FFF)
	high := byte((value >> 15) & 0xFF)
	if high != 0 {
		low |= 0x8000
	}
	if err := WriteUint16(w, low); err != nil {
		return err
	}
	if high != 0 {
		return WriteByte(w, high)
	}
	return nil
}

const maxStringBytes = 65536

// ReadString reads a VarInt-length-prefixed UTF-8 string, N ∈ [0, 65536].
func ReadString(r io.Reader) (string, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return "", err
	}
	if length < 0 || length > maxStringBytes {
		return "", mcerr.Newf(mcerr.WireFormat, "string length out of range: %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteString writes a VarInt-length-prefixed UTF-8 string.
func WriteString(w io.Writer, s string) error {
	b := []byte(s)
	if _, err := WriteVarInt(w, int32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func ReadUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func WriteUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func ReadInt16(r io.Reader) (int16, error) {
	v, err := ReadUint16(r)
	return int16(v), err
}

func WriteInt16(w io.Writer, v int16) error {
	return WriteUint16(w, uint16(v))
}

func ReadInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func WriteInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func WriteInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadFloat32(r io.Reader) (float32, error) {
	v, err := ReadInt32(r)
	return math.Float32frombits(uint32(v)), err
}

func WriteFloat32(w io.Writer, v float32) error {
	return WriteInt32(w, int32(math.Float32bits(v)))
}

func ReadFloat64(r io.Reader) (float64, error) {
	v, err := ReadInt64(r)
	return math.Float64frombits(uint64(v)), err
}

func WriteFloat64(w io.Writer, v float64) error {
	return WriteInt64(w, int64(math.Float64bits(v)))
}

func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadByte(r)
	return b != 0, err
}

func WriteBool(w io.Writer, v bool) error {
	if v {
		return WriteByte(w, 1)
	}
	return WriteByte(w, 0)
}

func ReadByte(r io.Reader) (byte, error) {
	var buf [1]byte
	_, err := io.ReadFull(r, buf[:])
	return buf[0], err
}

func WriteByte(w io.Writer, v byte) error {
	_, err := w.Write([]byte{v})
	return err
}

// ReadUUID reads a 128-bit UUID as two big-endian u64 words.
func ReadUUID(r io.Reader) (uuid.UUID, error) {
	var buf [16]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return uuid.UUID{}, err
	}
	return uuid.UUID(buf), nil
}

// WriteUUID writes a 128-bit UUID as two big-endian u64 words.
func WriteUUID(w io.Writer, id uuid.UUID) error {
	_, err := w.Write(id[:])
	return err
}

// ParseUUID parses the 8-4-4-4-12 hex form, delegating to google/uuid.
func ParseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, mcerr.Wrap(mcerr.WireFormat, err, "parse uuid")
	}
	return id, nil
}

// Position is a block position as transmitted on the wire. The packed
// encoding differs by era: pre-1.14 is (x:26, y:12, z:26); 1.14+ is
// (x:26, z:26, y:12). Each field is sign-extended from its bit width.
type Position struct {
	X, Y, Z int32
}

// ReadPosition decodes a packed Position using the layout for protocolVersion.
func ReadPosition(r io.Reader, protocolVersion int32) (Position, error) {
	val, err := ReadInt64(r)
	if err != nil {
		return Position{}, err
	}
	return unpackPosition(val, protocolVersion), nil
}

func unpackPosition(val int64, protocolVersion int32) Position {
	if protocolVersion >= 440 { // 1.14+ repacked layout
		x := int32(val >> 38)
		y := int32(val << 52 >> 52)
		z := int32(val << 26 >> 38)
		return Position{X: x, Y: y, Z: z}
	}
	x := int32(val >> 38)
	y := int32((val >> 26) & 0xFFF)
	if y >= 2048 {
		y -= 4096
	}
	z := int32(val << 38 >> 38)
	return Position{X: x, Y: y, Z: z}
}

// WritePosition encodes pos using the layout for protocolVersion.
func WritePosition(w io.Writer, pos Position, protocolVersion int32) error {
	var val int64
	if protocolVersion >= 440 {
		val = (int64(pos.X&0x3FFFFFF) << 38) | (int64(pos.Z&0x3FFFFFF) << 12) | int64(pos.Y&0xFFF)
	} else {
		val = (int64(pos.X&0x3FFFFFF) << 38) | (int64(pos.Y&0xFFF) << 26) | int64(pos.Z&0x3FFFFFF)
	}
	return WriteInt64(w, val)
}

// FixedPoint5 converts a 1/32-scale fixed-point wire value to float64.
func FixedPoint5(raw int32) float64 { return float64(raw) / 32.0 }

// FixedPoint5Encode converts a float64 to a 1/32-scale fixed-point wire value.
func FixedPoint5Encode(v float64) int32 { return int32(v * 32.0) }

// FixedPoint12 converts a 1/4096-scale (32*128) fixed-point wire value to float64.
func FixedPoint12(raw int32) float64 { return float64(raw) / (32.0 * 128.0) }

// FixedPoint12Encode converts a float64 to a 1/4096-scale fixed-point wire value.
func FixedPoint12Encode(v float64) int32 { return int32(v * 32.0 * 128.0) }

// LengthPrefixKind identifies the wire type used to prefix a LenPrefixed container.
type LengthPrefixKind int

const (
	LengthVarInt LengthPrefixKind = iota
	LengthInt16
	LengthInt32
	LengthUint8
	LengthBool
)

// ReadLenPrefixedCount reads the count for a LenPrefixed<L, T> container.
// A LengthBool kind yields 0 or 1, matching the "optional single value"
// idiom used by some pre-1.13 fields.
func ReadLenPrefixedCount(r io.Reader, kind LengthPrefixKind) (int, error) {
	switch kind {
	case LengthVarInt:
		n, _, err := ReadVarInt(r)
		return int(n), err
	case LengthInt16:
		n, err := ReadInt16(r)
		return int(n), err
	case LengthInt32:
		n, err := ReadInt32(r)
		return int(n), err
	case LengthUint8:
		n, err := ReadByte(r)
		return int(n), err
	case LengthBool:
		present, err := ReadBool(r)
		if !present {
			return 0, err
		}
		return 1, err
	default:
		return 0, mcerr.Newf(mcerr.WireFormat, "unknown length-prefix kind %d", kind)
	}
}

// WriteLenPrefixedCount writes the count for a LenPrefixed<L, T> container.
func WriteLenPrefixedCount(w io.Writer, kind LengthPrefixKind, n int) error {
	switch kind {
	case LengthVarInt:
		_, err := WriteVarInt(w, int32(n))
		return err
	case LengthInt16:
		return WriteInt16(w, int16(n))
	case LengthInt32:
		return WriteInt32(w, int32(n))
	case LengthUint8:
		return WriteByte(w, byte(n))
	case LengthBool:
		return WriteBool(w, n != 0)
	default:
		return mcerr.Newf(mcerr.WireFormat, "unknown length-prefix kind %d", kind)
	}
}
