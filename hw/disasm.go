package hw

import (
	"fmt"
	"io"
)

type DisasmOp struct {
	PC     uint16
	Word   uint16
	Opcode string
	Oper   string
}

// Disasm disassembles the instruction word found at pc. Words that aren't
// valid instructions are shown as data.
func Disasm(pc, word uint16) DisasmOp {
	d := DisasmOp{PC: pc, Word: word}
	op := lookup(word)
	if op == nil {
		d.Opcode = "DW"
		d.Oper = fmt.Sprintf("#%04X", word)
		return d
	}

	d.Opcode = op.mnemonic
	d.Oper = op.operands(Decode(word))
	return d
}

// Disasm disassembles the instruction at pc, without side effects.
func (m *Machine) Disasm(pc uint16) DisasmOp {
	return Disasm(pc, m.RAM.Peek16(pc))
}

// Bytes returns the string representation of a DisasmOp, this is optimized
// version, suitable for the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 30
	buf := make([]byte, 0, totalLen)

	buf = appendHex16(buf, d.PC)
	buf = append(buf, ' ', ' ')
	buf = appendHex16(buf, d.Word)
	buf = append(buf, ' ', ' ')
	buf = append(buf, d.Opcode...)
	for len(buf) < 18 {
		buf = append(buf, ' ')
	}
	buf = append(buf, d.Oper...)
	for len(buf) < totalLen {
		buf = append(buf, ' ')
	}
	return buf
}

func (d DisasmOp) String() string {
	return string(d.Bytes())
}

// DisasmProgram writes the listing of prg, loaded at base, to w.
func DisasmProgram(w io.Writer, prg []byte, base uint16) error {
	for off := 0; off < len(prg); off += 2 {
		word := uint16(prg[off]) << 8
		if off+1 < len(prg) {
			word |= uint16(prg[off+1])
		}
		line := Disasm(base+uint16(off), word).Bytes()
		if _, err := fmt.Fprintf(w, "%s\n", trimRight(line)); err != nil {
			return err
		}
	}
	return nil
}

func trimRight(buf []byte) []byte {
	for len(buf) > 0 && buf[len(buf)-1] == ' ' {
		buf = buf[:len(buf)-1]
	}
	return buf
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func appendHex8(buf []byte, v uint8) []byte {
	var tmp [2]byte
	hexEncode(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendHex16(buf []byte, v uint16) []byte {
	buf = appendHex8(buf, uint8(v>>8))
	return appendHex8(buf, uint8(v))
}
