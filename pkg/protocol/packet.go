package protocol

import (
	"bytes"
	"io"

	"github.com/voxelkiln/mccore/pkg/mcerr"
)

// maxPacketLen bounds a single uncompressed packet at the 3-byte VarInt
// length limit vanilla itself enforces.
const maxPacketLen = 2097151

// Packet is a single decoded protocol packet: a VarInt ID plus payload.
// Data never includes the length prefix or the ID itself.
type Packet struct {
	ID   int32
	Data []byte
}

// ReadPacket reads one uncompressed, unencrypted packet frame from r.
// Use Conn.ReadPacket instead once compression/encryption are negotiated.
func ReadPacket(r io.Reader) (*Packet, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if length < 1 {
		return nil, mcerr.Newf(mcerr.WireFormat, "packet length too small: %d", length)
	}
	if length > maxPacketLen {
		return nil, mcerr.Newf(mcerr.WireFormat, "packet length too large: %d", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	pr := bytes.NewReader(payload)
	packetID, idLen, err := ReadVarInt(pr)
	if err != nil {
		return nil, err
	}

	return &Packet{ID: packetID, Data: payload[idLen:]}, nil
}

// WritePacket writes one uncompressed, unencrypted packet frame to w.
func WritePacket(w io.Writer, p *Packet) error {
	idSize := VarIntSize(p.ID)
	totalLen := int32(idSize + len(p.Data))

	buf := bytes.NewBuffer(make([]byte, 0, VarIntSize(totalLen)+int(totalLen)))
	WriteVarInt(buf, totalLen)
	WriteVarInt(buf, p.ID)
	buf.Write(p.Data)

	_, err := w.Write(buf.Bytes())
	return err
}

// MarshalPacket builds a Packet from an ID and a writer callback.
func MarshalPacket(id int32, builder func(w *bytes.Buffer)) *Packet {
	var buf bytes.Buffer
	builder(&buf)
	return &Packet{ID: id, Data: buf.Bytes()}
}
