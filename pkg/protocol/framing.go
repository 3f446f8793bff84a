package protocol

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/voxelkiln/mccore/pkg/mcerr"
)

// Direction distinguishes packets traveling from the server to this
// client (Clientbound) from packets this client would send back
// (Serverbound), matching the packet-id remap tables' indexing.
type Direction int

const (
	Clientbound Direction = iota
	Serverbound
)

// cfb8Stream wraps an AES-128-CFB8 keystream over a raw net.Conn-like
// stream. Vanilla's login encryption is CFB8 specifically (not the more
// common CFB128 crypto/cipher.NewCFBEncrypter default block size), so we
// drive crypto/cipher's block primitive by hand one byte at a time. No
// pack example implements wire crypto; this is the one ambient concern
// the corpus gives no library for, so it is built directly on
// crypto/aes + crypto/cipher per the protocol's own mandated cipher mode.
type cfb8Stream struct {
	block   cipher.Block
	iv      []byte
	encrypt bool
}

func newCFB8(key, iv []byte, encrypt bool) (*cfb8Stream, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, mcerr.Wrap(mcerr.Crypto, err, "create AES cipher")
	}
	ivCopy := make([]byte, len(iv))
	copy(ivCopy, iv)
	return &cfb8Stream{block: block, iv: ivCopy, encrypt: encrypt}, nil
}

// xorByte advances the CFB8 shift register by one byte and returns the
// transformed byte, matching the CFB8 definition: encrypt the IV
// register, XOR its first byte with the input, shift the register left
// by one byte appending either the ciphertext (encrypting) or the
// plaintext input byte (decrypting).
func (s *cfb8Stream) xorByte(in byte) byte {
	blockSize := s.block.BlockSize()
	out := make([]byte, blockSize)
	s.block.Encrypt(out, s.iv)

	var result, feed byte
	result = in ^ out[0]
	if s.encrypt {
		feed = result
	} else {
		feed = in
	}

	copy(s.iv, s.iv[1:])
	s.iv[blockSize-1] = feed
	return result
}

func (s *cfb8Stream) transform(dst, src []byte) {
	for i, b := range src {
		dst[i] = s.xorByte(b)
	}
}

type cryptoReader struct {
	r      io.Reader
	stream *cfb8Stream
}

func (c *cryptoReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.stream.transform(p[:n], p[:n])
	}
	return n, err
}

type cryptoWriter struct {
	w      io.Writer
	stream *cfb8Stream
}

func (c *cryptoWriter) Write(p []byte) (int, error) {
	out := make([]byte, len(p))
	c.stream.transform(out, p)
	return c.w.Write(out)
}

// Conn wraps a raw byte stream with the framing state negotiated during
// login: compression threshold (-1 disables it) and, once enabled,
// AES-128-CFB8 encryption of everything read and written.
type Conn struct {
	raw             io.ReadWriter
	r               io.Reader
	w               io.Writer
	compressionSize int32
	protocolVersion int32
}

// NewConn wraps raw for protocolVersion with compression and encryption
// both initially disabled.
func NewConn(raw io.ReadWriter, protocolVersion int32) *Conn {
	return &Conn{raw: raw, r: raw, w: raw, compressionSize: -1, protocolVersion: protocolVersion}
}

// EnableEncryption installs AES-128-CFB8 read/write wrappers over the
// raw stream using the shared secret negotiated during login (the
// secret doubles as the IV, per the Minecraft login protocol).
func (c *Conn) EnableEncryption(sharedSecret []byte) error {
	encStream, err := newCFB8(sharedSecret, sharedSecret, true)
	if err != nil {
		return err
	}
	decStream, err := newCFB8(sharedSecret, sharedSecret, false)
	if err != nil {
		return err
	}
	c.r = &cryptoReader{r: c.raw, stream: decStream}
	c.w = &cryptoWriter{w: c.raw, stream: encStream}
	return nil
}

// EnableCompression sets the compression threshold: packets whose
// uncompressed payload is >= threshold bytes are zlib-compressed.
// A negative threshold disables compression.
func (c *Conn) EnableCompression(threshold int32) {
	c.compressionSize = threshold
}

// ReadPacket reads and, if necessary, decompresses one packet frame
// from the connection. The returned ID is the wire ID; it is not
// remapped.
func (c *Conn) ReadPacket() (*Packet, error) {
	length, _, err := ReadVarInt(c.r)
	if err != nil {
		return nil, err
	}
	if length < 1 || length > maxPacketLen {
		return nil, mcerr.Newf(mcerr.WireFormat, "packet length out of range: %d", length)
	}

	frame := make([]byte, length)
	if _, err := io.ReadFull(c.r, frame); err != nil {
		return nil, err
	}

	if c.compressionSize < 0 {
		fr := bytes.NewReader(frame)
		id, idLen, err := ReadVarInt(fr)
		if err != nil {
			return nil, err
		}
		return &Packet{ID: id, Data: frame[idLen:]}, nil
	}

	fr := bytes.NewReader(frame)
	dataLen, _, err := ReadVarInt(fr)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if dataLen == 0 {
		body = fr
	} else {
		zr, err := zlib.NewReader(fr)
		if err != nil {
			return nil, mcerr.Wrap(mcerr.Compression, err, "open zlib reader")
		}
		defer zr.Close()
		body = zr
	}

	buf, err := io.ReadAll(body)
	if err != nil {
		return nil, mcerr.Wrap(mcerr.Compression, err, "inflate packet body")
	}
	br := bytes.NewReader(buf)
	id, idLen, err := ReadVarInt(br)
	if err != nil {
		return nil, err
	}
	return &Packet{ID: id, Data: buf[idLen:]}, nil
}

// WritePacket frames, optionally compresses, and writes p.
func (c *Conn) WritePacket(p *Packet) error {
	var idAndData bytes.Buffer
	WriteVarInt(&idAndData, p.ID)
	idAndData.Write(p.Data)
	uncompressed := idAndData.Bytes()

	if c.compressionSize < 0 {
		var frame bytes.Buffer
		WriteVarInt(&frame, int32(len(uncompressed)))
		frame.Write(uncompressed)
		_, err := c.w.Write(frame.Bytes())
		return err
	}

	var body bytes.Buffer
	if int32(len(uncompressed)) < c.compressionSize {
		WriteVarInt(&body, 0)
		body.Write(uncompressed)
	} else {
		WriteVarInt(&body, int32(len(uncompressed)))
		zw := zlib.NewWriter(&body)
		if _, err := zw.Write(uncompressed); err != nil {
			return mcerr.Wrap(mcerr.Compression, err, "deflate packet body")
		}
		if err := zw.Close(); err != nil {
			return mcerr.Wrap(mcerr.Compression, err, "close zlib writer")
		}
	}

	var frame bytes.Buffer
	WriteVarInt(&frame, int32(body.Len()))
	frame.Write(body.Bytes())
	_, err := c.w.Write(frame.Bytes())
	return err
}

// PacketRemap maps a wire-visible packet ID to this core's stable
// internal packet ID for one (state, direction, protocol version)
// triple, per spec §4.I's "bijection that may change release to
// release" requirement.
type PacketRemap struct {
	State     int
	Direction Direction
	toInternal map[int32]int32
	toWire     map[int32]int32
}

// NewPacketRemap builds a bijective remap table from wire ID to
// internal ID, panicking (a registry-class error, per spec §7) if the
// supplied mapping is not one-to-one.
func NewPacketRemap(state int, dir Direction, wireToInternal map[int32]int32) *PacketRemap {
	toWire := make(map[int32]int32, len(wireToInternal))
	for wire, internal := range wireToInternal {
		if _, dup := toWire[internal]; dup {
			panic(mcerr.Newf(mcerr.Registry, "packet remap collision on internal id %d", internal))
		}
		toWire[internal] = wire
	}
	return &PacketRemap{State: state, Direction: dir, toInternal: wireToInternal, toWire: toWire}
}

// ToInternal translates a wire packet ID to the internal ID, reporting
// ok=false for IDs this core does not track (legitimately ignorable:
// many play-state packets are outside this core's world-state scope).
func (m *PacketRemap) ToInternal(wireID int32) (int32, bool) {
	id, ok := m.toInternal[wireID]
	return id, ok
}

// ToWire translates an internal packet ID back to the wire ID for this
// table's protocol version.
func (m *PacketRemap) ToWire(internalID int32) (int32, bool) {
	id, ok := m.toWire[internalID]
	return id, ok
}
