package wire

import "fmt"

// DynArrayLenPrefix writes a DynArray's varuint length prefix, rejecting
// lengths over max (spec.md §6: "length must be ≤ max").
func (e *Encoder) DynArrayLenPrefix(length uint64, max uint64) error {
	if length > max {
		return fmt.Errorf("wire: dyn-array length %d exceeds max %d", length, max)
	}
	e.Varuint(length)
	return nil
}

// DynArrayLen reads a DynArray's varuint length prefix, rejecting a decoded
// length over max.
func (d *Decoder) DynArrayLen(max uint64) (uint64, error) {
	n, err := d.Varuint()
	if err != nil {
		return 0, err
	}
	if n > max {
		return 0, fmt.Errorf("wire: decoded dyn-array length %d exceeds max %d", n, max)
	}
	return n, nil
}

// EnumValue writes an enum constant's declared value as a Varint (spec.md
// §6: "Enum: varint of the constant's declared value").
func (e *Encoder) EnumValue(v int64) { e.Varint(v) }

// EnumValue reads an enum's varint value and rejects it unless it matches
// one of declaredValues (spec.md §6: "decoder rejects values with no
// matching constant").
func (d *Decoder) EnumValue(declaredValues []int64) (int64, error) {
	v, err := d.Varint()
	if err != nil {
		return 0, err
	}
	for _, dv := range declaredValues {
		if dv == v {
			return v, nil
		}
	}
	return 0, fmt.Errorf("wire: enum value %d has no matching constant", v)
}

// VariantTag writes a Variant's branch tag as a Varuint (declaration-order
// index).
func (e *Encoder) VariantTag(tag uint64) { e.Varuint(tag) }

// VariantTag reads a Variant's branch tag and rejects a tag at or beyond
// branchCount.
func (d *Decoder) VariantTag(branchCount int) (int, error) {
	v, err := d.Varuint()
	if err != nil {
		return 0, err
	}
	if v >= uint64(branchCount) {
		return 0, fmt.Errorf("wire: variant tag %d out of range [0,%d)", v, branchCount)
	}
	return int(v), nil
}

// StatusFrameHeader writes a telemetry frame's fixed preamble (spec.md §6:
// "varint streamType, varint dataType, uint16 LE sequence counter, varint
// tick time").
func (e *Encoder) StatusFrameHeader(streamType, dataType int64, seq uint16, tick int64) {
	e.Varint(streamType)
	e.Varint(dataType)
	e.U16(seq)
	e.Varint(tick)
}

// StatusFrameHeader reads a telemetry frame's fixed preamble.
func (d *Decoder) StatusFrameHeader() (streamType, dataType int64, seq uint16, tick int64, err error) {
	if streamType, err = d.Varint(); err != nil {
		return
	}
	if dataType, err = d.Varint(); err != nil {
		return
	}
	if seq, err = d.U16(); err != nil {
		return
	}
	tick, err = d.Varint()
	return
}

// StatusMessageHeader writes one message's {uint16 LE msgSize; varuint
// compId; varuint msgId} header preceding its payload bytes.
func (e *Encoder) StatusMessageHeader(msgSize uint16, compID, msgID uint64) {
	e.U16(msgSize)
	e.Varuint(compID)
	e.Varuint(msgID)
}

// StatusMessageHeader reads one message's header.
func (d *Decoder) StatusMessageHeader() (msgSize uint16, compID, msgID uint64, err error) {
	if msgSize, err = d.U16(); err != nil {
		return
	}
	if compID, err = d.Varuint(); err != nil {
		return
	}
	msgID, err = d.Varuint()
	return
}

// CommandHeader writes a command stream's {uint8 compNum, uint8 cmdNum}
// preamble (spec.md §6).
func (e *Encoder) CommandHeader(compNum, cmdNum uint8) {
	e.U8(compNum)
	e.U8(cmdNum)
}

// CommandHeader reads a command stream's preamble.
func (d *Decoder) CommandHeader() (compNum, cmdNum uint8, err error) {
	if compNum, err = d.U8(); err != nil {
		return
	}
	cmdNum, err = d.U8()
	return
}
