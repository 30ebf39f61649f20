package protocol

import (
	"encoding/binary"
)

// Deterministic little-endian encoding helpers for the structures carried
// inside frame payloads. Fixed-width integers, length-prefixed byte
// strings, and a deserialisation ceiling of MaxFramePayload applied to
// every length prefix before the slice behind it is touched.

type encoder struct {
	buf []byte
}

func (e *encoder) writeUint8(v uint8) {
	e.buf = append(e.buf, v)
}

func (e *encoder) writeUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

func (e *encoder) writeUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// writeBytes writes a u32 length prefix followed by the raw bytes.
func (e *encoder) writeBytes(v []byte) {
	e.writeUint32(uint32(len(v)))
	e.buf = append(e.buf, v...)
}

type decoder struct {
	buf    []byte
	offset int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.offset
}

func (d *decoder) readUint8() (uint8, error) {
	if d.remaining() < 1 {
		return 0, ErrMalformed
	}
	v := d.buf[d.offset]
	d.offset++
	return v, nil
}

func (d *decoder) readUint32() (uint32, error) {
	if d.remaining() < 4 {
		return 0, ErrMalformed
	}
	v := binary.LittleEndian.Uint32(d.buf[d.offset:])
	d.offset += 4
	return v, nil
}

func (d *decoder) readUint64() (uint64, error) {
	if d.remaining() < 8 {
		return 0, ErrMalformed
	}
	v := binary.LittleEndian.Uint64(d.buf[d.offset:])
	d.offset += 8
	return v, nil
}

// readBytes reads a u32 length prefix and the bytes behind it. A prefix
// above MaxFramePayload is refused before any slicing or allocation.
func (d *decoder) readBytes() ([]byte, error) {
	length, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	if length > MaxFramePayload {
		return nil, ErrFrameTooLarge
	}
	if d.remaining() < int(length) {
		return nil, ErrMalformed
	}
	v := make([]byte, length)
	copy(v, d.buf[d.offset:d.offset+int(length)])
	d.offset += int(length)
	return v, nil
}

// readRaw reads exactly n bytes without a length prefix.
func (d *decoder) readRaw(n int) ([]byte, error) {
	if d.remaining() < n {
		return nil, ErrMalformed
	}
	v := make([]byte, n)
	copy(v, d.buf[d.offset:d.offset+n])
	d.offset += n
	return v, nil
}
