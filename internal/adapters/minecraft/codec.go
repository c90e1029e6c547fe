package minecraft

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// maxPacketLength bounds a status response; real ones stay far below (favicons included).
const maxPacketLength = 1 << 21

// packetWriter builds the body of one length-prefixed packet.
type packetWriter struct {
	buf []byte
}

func newPacket(id int32) *packetWriter {
	p := &packetWriter{}
	return p.varInt(id)
}

func (p *packetWriter) varInt(v int32) *packetWriter {
	p.buf = binary.AppendUvarint(p.buf, uint64(uint32(v)))
	return p
}

func (p *packetWriter) string(s string) *packetWriter {
	p.varInt(int32(len(s)))
	p.buf = append(p.buf, s...)
	return p
}

func (p *packetWriter) uint16(v uint16) *packetWriter {
	p.buf = binary.BigEndian.AppendUint16(p.buf, v)
	return p
}

func (p *packetWriter) int64(v int64) *packetWriter {
	p.buf = binary.BigEndian.AppendUint64(p.buf, uint64(v))
	return p
}

// frame returns the packet prefixed with its VarInt length.
func (p *packetWriter) frame() []byte {
	out := binary.AppendUvarint(nil, uint64(len(p.buf)))
	return append(out, p.buf...)
}

// readVarInt reads a Minecraft VarInt (at most 5 bytes).
func readVarInt(r io.ByteReader) (int32, error) {
	var result uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, fmt.Errorf("varint longer than 5 bytes")
}

// readPacket reads one length-prefixed packet and returns its id and payload.
func readPacket(r *bufio.Reader) (int32, *bytes.Reader, error) {
	length, err := readVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	if length <= 0 || length > maxPacketLength {
		return 0, nil, fmt.Errorf("invalid packet length %d", length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}

	payload := bytes.NewReader(body)
	id, err := readVarInt(payload)
	if err != nil {
		return 0, nil, err
	}
	return id, payload, nil
}

func readString(r *bytes.Reader) (string, error) {
	length, err := readVarInt(r)
	if err != nil {
		return "", err
	}
	if length < 0 || int(length) > r.Len() {
		return "", fmt.Errorf("invalid string length %d", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}
