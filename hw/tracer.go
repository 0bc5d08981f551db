package hw

import (
	"io"

	"chipster/emu/log"
)

type tracer struct {
	w   io.Writer
	buf []byte
}

// write the execution trace for the instruction about to be executed.
//
//	0200  6A02  LD    VA, #02     V:00000000000000000000000000000000 I:0000 SP:0 DT:00 ST:00
func (t *tracer) write(m *Machine, in Instruction) {
	if t.w == nil {
		return
	}
	buf := append(t.buf[:0], Disasm(m.PC, in.Word).Bytes()...)

	buf = append(buf, "V:"...)
	for _, v := range m.V {
		buf = appendHex8(buf, v)
	}
	buf = append(buf, " I:"...)
	buf = appendHex16(buf, m.I)
	buf = append(buf, " SP:"...)
	buf = append(buf, "0123456789ABCDEFG"[m.SP])
	buf = append(buf, " DT:"...)
	buf = appendHex8(buf, m.DT)
	buf = append(buf, " ST:"...)
	buf = appendHex8(buf, m.ST)
	buf = append(buf, '\n')

	t.buf = buf
	if _, err := t.w.Write(buf); err != nil {
		log.ModCPU.ErrorZ("Trace write failed, tracing disabled").Error("err", err).End()
		t.w = nil
	}
}
