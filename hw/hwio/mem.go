package hwio

import (
	"fmt"

	"chipster/emu/log"
)

// RangeError reports an access that falls, at least partially, outside of a
// memory area.
type RangeError struct {
	Name string // name of the memory area
	Addr int    // first accessed address
	Len  int    // number of accessed bytes
	Size int    // size of the memory area
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: access to [$%04X, $%04X) is out of bounds (size $%04X)",
		e.Name, e.Addr, e.Addr+e.Len, e.Size)
}

// Linear memory area, every access is bounds-checked. An access that doesn't
// fit entirely within the area fails without touching the memory.
type Mem struct {
	Name string // name of the memory area (for debugging)
	Data []byte // actual memory buffer
}

func NewMem(name string, size int) Mem {
	return Mem{Name: name, Data: make([]byte, size)}
}

// Check returns a non-nil error if the range [addr, addr+n) doesn't fit in m.
func (m *Mem) Check(addr, n int) error {
	if addr < 0 || n < 0 || addr+n > len(m.Data) {
		log.ModMem.DebugZ("out of bounds access").
			String("name", m.Name).
			Int("addr", addr).
			Int("len", n).
			End()
		return &RangeError{Name: m.Name, Addr: addr, Len: n, Size: len(m.Data)}
	}
	return nil
}

// Read16 reads a big-endian 16-bit word.
func (m *Mem) Read16(addr uint16) (uint16, error) {
	if err := m.Check(int(addr), 2); err != nil {
		return 0, err
	}
	return uint16(m.Data[addr])<<8 | uint16(m.Data[addr+1]), nil
}

// Peek16 is like Read16, out of bounds bytes read as 0.
func (m *Mem) Peek16(addr uint16) uint16 {
	var hi, lo uint8
	if int(addr) < len(m.Data) {
		hi = m.Data[addr]
	}
	if int(addr)+1 < len(m.Data) {
		lo = m.Data[addr+1]
	}
	return uint16(hi)<<8 | uint16(lo)
}

// Slice returns the n bytes starting at addr. The returned slice aliases the
// memory.
func (m *Mem) Slice(addr uint16, n int) ([]byte, error) {
	if err := m.Check(int(addr), n); err != nil {
		return nil, err
	}
	return m.Data[int(addr) : int(addr)+n : int(addr)+n], nil
}

// Load copies buf at addr. Nothing is written if buf doesn't fit.
func (m *Mem) Load(addr uint16, buf []byte) error {
	dst, err := m.Slice(addr, len(buf))
	if err != nil {
		return err
	}
	copy(dst, buf)
	return nil
}
