// Package wire implements Go-side encode/decode helpers for the emitted
// wire format (spec.md §6 "Emitted wire format"), used by Go tests to
// validate codec semantics without needing a C or C++ toolchain.
package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encoder appends wire-format bytes to an internal buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated wire bytes.
func (e *Encoder) Bytes() []byte { return e.buf }

// U8/I8/Bool/Char are one byte (spec.md §6).
func (e *Encoder) U8(v uint8)  { e.buf = append(e.buf, v) }
func (e *Encoder) I8(v int8)   { e.buf = append(e.buf, byte(v)) }
func (e *Encoder) Bool(v bool) {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}
func (e *Encoder) Char(v byte) { e.buf = append(e.buf, v) }

// U16/U32/U64 and their signed counterparts are little-endian two's
// complement (spec.md §6).
func (e *Encoder) U16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *Encoder) U32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *Encoder) U64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *Encoder) I16(v int16)  { e.U16(uint16(v)) }
func (e *Encoder) I32(v int32)  { e.U32(uint32(v)) }
func (e *Encoder) I64(v int64)  { e.U64(uint64(v)) }

// F32/F64 are IEEE 754 little-endian (spec.md §6).
func (e *Encoder) F32(v float32) { e.U32(math.Float32bits(v)) }
func (e *Encoder) F64(v float64) { e.U64(math.Float64bits(v)) }

// USize/ISize take their width from pointerWidth (bits), default 32
// (spec.md §6 "target_pointer_width").
func (e *Encoder) USize(v uint64, pointerWidth int) {
	e.putPointerWidth(v, pointerWidth)
}
func (e *Encoder) ISize(v int64, pointerWidth int) {
	e.putPointerWidth(uint64(v), pointerWidth)
}

func (e *Encoder) putPointerWidth(v uint64, pointerWidth int) {
	switch pointerWidth {
	case 16:
		e.U16(uint16(v))
	case 64:
		e.U64(v)
	default:
		e.U32(uint32(v))
	}
}

// Varuint writes v as unsigned LEB128 (7-bit groups, MSB=continuation).
func (e *Encoder) Varuint(v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			e.buf = append(e.buf, b|0x80)
			continue
		}
		e.buf = append(e.buf, b)
		return
	}
}

// Varint writes v as a zig-zag encoded Varuint.
func (e *Encoder) Varint(v int64) {
	e.Varuint(zigzagEncode(v))
}

// Raw appends b verbatim (used for Array/Struct/Variant payload composition
// by callers that build element encodings with their own Encoder calls).
func (e *Encoder) Raw(b []byte) { e.buf = append(e.buf, b...) }

// Pointer writes a pointer-sized little-endian address (spec.md §6
// "Reference/Function").
func (e *Encoder) Pointer(addr uint64, pointerWidth int) {
	e.putPointerWidth(addr, pointerWidth)
}

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

// Decoder reads wire-format bytes sequentially from an underlying buffer.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf for sequential decoding.
func NewDecoder(buf []byte) *Decoder { return &Decoder{buf: buf} }

// Remaining reports how many bytes are left to read.
func (d *Decoder) Remaining() int { return len(d.buf) - d.pos }

func (d *Decoder) need(n int) error {
	if d.Remaining() < n {
		return fmt.Errorf("wire: need %d bytes, have %d", n, d.Remaining())
	}
	return nil
}

func (d *Decoder) U8() (uint8, error) {
	if err := d.need(1); err != nil {
		return 0, err
	}
	v := d.buf[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) I8() (int8, error) {
	v, err := d.U8()
	return int8(v), err
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.U8()
	return v != 0, err
}

func (d *Decoder) Char() (byte, error) {
	return d.U8()
}

func (d *Decoder) U16() (uint16, error) {
	if err := d.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(d.buf[d.pos:])
	d.pos += 2
	return v, nil
}

func (d *Decoder) U32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos:])
	d.pos += 4
	return v, nil
}

func (d *Decoder) U64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos:])
	d.pos += 8
	return v, nil
}

func (d *Decoder) I16() (int16, error) { v, err := d.U16(); return int16(v), err }
func (d *Decoder) I32() (int32, error) { v, err := d.U32(); return int32(v), err }
func (d *Decoder) I64() (int64, error) { v, err := d.U64(); return int64(v), err }

func (d *Decoder) F32() (float32, error) {
	v, err := d.U32()
	return math.Float32frombits(v), err
}

func (d *Decoder) F64() (float64, error) {
	v, err := d.U64()
	return math.Float64frombits(v), err
}

func (d *Decoder) USize(pointerWidth int) (uint64, error) {
	return d.getPointerWidth(pointerWidth)
}

func (d *Decoder) ISize(pointerWidth int) (int64, error) {
	v, err := d.getPointerWidth(pointerWidth)
	return int64(v), err
}

func (d *Decoder) getPointerWidth(pointerWidth int) (uint64, error) {
	switch pointerWidth {
	case 16:
		v, err := d.U16()
		return uint64(v), err
	case 64:
		return d.U64()
	default:
		v, err := d.U32()
		return uint64(v), err
	}
}

// Varuint reads an unsigned LEB128 value, rejecting a stream that runs out
// of bytes mid-sequence.
func (d *Decoder) Varuint() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := d.U8()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 64 {
			return 0, fmt.Errorf("wire: varuint too long")
		}
	}
}

// Varint reads a zig-zag encoded Varuint.
func (d *Decoder) Varint() (int64, error) {
	v, err := d.Varuint()
	if err != nil {
		return 0, err
	}
	return zigzagDecode(v), nil
}

// Pointer reads a pointer-sized little-endian address.
func (d *Decoder) Pointer(pointerWidth int) (uint64, error) {
	return d.getPointerWidth(pointerWidth)
}

// Bytes reads n raw bytes (used for Array/Struct/Variant element decoding
// by callers composing their own Decoder calls over a sub-slice).
func (d *Decoder) Bytes(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}
