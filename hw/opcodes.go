package hw

import (
	"fmt"

	"chipster/emu/log"
	"chipster/hw/hwio"
)

// An opdef maps all instruction words w such that w&mask == match to an
// instruction.
type opdef struct {
	mask, match uint16
	mnemonic    string
	operands    func(in Instruction) string
	exec        func(m *Machine, in Instruction) error
}

func none(Instruction) string     { return "" }
func addr(in Instruction) string  { return fmt.Sprintf("#%03X", in.NNN) }
func vxnn(in Instruction) string  { return fmt.Sprintf("V%X, #%02X", in.X, in.NN) }
func vxvy(in Instruction) string  { return fmt.Sprintf("V%X, V%X", in.X, in.Y) }
func vx(in Instruction) string    { return fmt.Sprintf("V%X", in.X) }
func vxvyn(in Instruction) string { return fmt.Sprintf("V%X, V%X, %X", in.X, in.Y, in.N) }

func operf(format string) func(Instruction) string {
	return func(in Instruction) string { return fmt.Sprintf(format, in.X) }
}

var opdefs = []opdef{
	{0xFFFF, 0x00E0, "CLS", none, (*Machine).opCLS},
	{0xFFFF, 0x00EE, "RET", none, (*Machine).opRET},
	{0xF000, 0x1000, "JP", addr, (*Machine).opJP},
	{0xF000, 0x2000, "CALL", addr, (*Machine).opCALL},
	{0xF000, 0x3000, "SE", vxnn, (*Machine).opSEimm},
	{0xF000, 0x4000, "SNE", vxnn, (*Machine).opSNEimm},
	{0xF00F, 0x5000, "SE", vxvy, (*Machine).opSEreg},
	{0xF000, 0x6000, "LD", vxnn, (*Machine).opLDimm},
	{0xF000, 0x7000, "ADD", vxnn, (*Machine).opADDimm},
	{0xF00F, 0x8000, "LD", vxvy, (*Machine).opLDreg},
	{0xF00F, 0x8001, "OR", vxvy, (*Machine).opOR},
	{0xF00F, 0x8002, "AND", vxvy, (*Machine).opAND},
	{0xF00F, 0x8003, "XOR", vxvy, (*Machine).opXOR},
	{0xF00F, 0x8004, "ADD", vxvy, (*Machine).opADDreg},
	{0xF00F, 0x8005, "SUB", vxvy, (*Machine).opSUB},
	{0xF00F, 0x8006, "SHR", vxvy, (*Machine).opSHR},
	{0xF00F, 0x8007, "SUBN", vxvy, (*Machine).opSUBN},
	{0xF00F, 0x800E, "SHL", vxvy, (*Machine).opSHL},
	{0xF00F, 0x9000, "SNE", vxvy, (*Machine).opSNEreg},
	{0xF000, 0xA000, "LD", func(in Instruction) string { return "I, " + addr(in) }, (*Machine).opLDI},
	{0xF000, 0xB000, "JP", jpOffsetOperands, (*Machine).opJPoffset},
	{0xF000, 0xC000, "RND", vxnn, (*Machine).opRND},
	{0xF000, 0xD000, "DRW", vxvyn, (*Machine).opDRW},
	{0xF0FF, 0xE09E, "SKP", vx, (*Machine).opSKP},
	{0xF0FF, 0xE0A1, "SKNP", vx, (*Machine).opSKNP},
	{0xF0FF, 0xF007, "LD", operf("V%X, DT"), (*Machine).opLDfromDT},
	{0xF0FF, 0xF00A, "LD", operf("V%X, K"), (*Machine).opLDkey},
	{0xF0FF, 0xF015, "LD", operf("DT, V%X"), (*Machine).opLDtoDT},
	{0xF0FF, 0xF018, "LD", operf("ST, V%X"), (*Machine).opLDtoST},
	{0xF0FF, 0xF01E, "ADD", operf("I, V%X"), (*Machine).opADDI},
	{0xF0FF, 0xF029, "LD", operf("F, V%X"), (*Machine).opLDF},
	{0xF0FF, 0xF033, "LD", operf("B, V%X"), (*Machine).opBCD},
	{0xF0FF, 0xF055, "LD", operf("[I], V%X"), (*Machine).opSTORE},
	{0xF0FF, 0xF065, "LD", operf("V%X, [I]"), (*Machine).opLOAD},
}

// JP V0, NNN is always shown in its original form, the actual register used
// depends on the platform.
func jpOffsetOperands(in Instruction) string { return "V0, " + addr(in) }

// dispatch maps every possible instruction word to 1 + its index in opdefs, or
// 0 if the word is not a valid instruction.
var dispatch [1 << 16]uint8

func init() {
	for w := range len(dispatch) {
		for i := range opdefs {
			if uint16(w)&opdefs[i].mask == opdefs[i].match {
				dispatch[w] = uint8(i + 1)
				break
			}
		}
	}
}

func lookup(word uint16) *opdef {
	idx := dispatch[word]
	if idx == 0 {
		return nil
	}
	return &opdefs[idx-1]
}

// Execute applies the effect of a single instruction. Each instruction is
// responsible for updating PC.
func (m *Machine) Execute(in Instruction) error {
	op := lookup(in.Word)
	if op == nil {
		return &InvalidOpcodeError{Opcode: in.Word, PC: m.PC}
	}

	if m.tracer != nil {
		m.tracer.write(m, in)
	}
	log.ModCPU.DebugZ(op.mnemonic).
		Hex16("pc", m.PC).
		Hex16("op", in.Word).
		End()

	m.drew = false
	return op.exec(m, in)
}

func (m *Machine) next() { m.PC += 2 }

// skipIf skips the next instruction if cond is true.
func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC += 2
	}
	m.PC += 2
}

func (m *Machine) memError(err error) error {
	return &InvalidAddressError{PC: m.PC, Err: err}
}

/* flow control */

func (m *Machine) opCLS(in Instruction) error {
	m.ClearScreen()
	m.next()
	return nil
}

// The stack holds the address of the CALL instruction, so returning means
// skipping over it.
func (m *Machine) opRET(in Instruction) error {
	if m.SP == 0 {
		panic(fmt.Sprintf("call stack underflow at $%04X", m.PC))
	}
	m.SP--
	m.PC = m.Stack[m.SP]
	m.next()
	return nil
}

func (m *Machine) opJP(in Instruction) error {
	m.PC = in.NNN
	return nil
}

func (m *Machine) opCALL(in Instruction) error {
	if int(m.SP) >= StackSize {
		panic(fmt.Sprintf("call stack overflow at $%04X", m.PC))
	}
	m.Stack[m.SP] = m.PC
	m.SP++
	m.PC = in.NNN
	return nil
}

func (m *Machine) opJPoffset(in Instruction) error {
	if m.Platform.HasQuirk(JumpAddsRegisterX) {
		m.PC = in.NNN + uint16(m.V[in.X])
	} else {
		m.PC = in.NNN + uint16(m.V[0])
	}
	return nil
}

/* conditional skips */

func (m *Machine) opSEimm(in Instruction) error {
	m.skipIf(m.V[in.X] == in.NN)
	return nil
}

func (m *Machine) opSNEimm(in Instruction) error {
	m.skipIf(m.V[in.X] != in.NN)
	return nil
}

func (m *Machine) opSEreg(in Instruction) error {
	m.skipIf(m.V[in.X] == m.V[in.Y])
	return nil
}

func (m *Machine) opSNEreg(in Instruction) error {
	m.skipIf(m.V[in.X] != m.V[in.Y])
	return nil
}

func (m *Machine) opSKP(in Instruction) error {
	m.skipIf(m.isKeyDown(m.V[in.X]))
	return nil
}

func (m *Machine) opSKNP(in Instruction) error {
	m.skipIf(!m.isKeyDown(m.V[in.X]))
	return nil
}

/* arithmetic and logic */

func (m *Machine) opLDimm(in Instruction) error {
	m.V[in.X] = in.NN
	m.next()
	return nil
}

func (m *Machine) opADDimm(in Instruction) error {
	m.V[in.X] += in.NN
	m.next()
	return nil
}

func (m *Machine) opLDreg(in Instruction) error {
	m.V[in.X] = m.V[in.Y]
	m.next()
	return nil
}

func (m *Machine) vfReset() {
	if m.Platform.HasQuirk(VfReset) {
		m.V[0xF] = 0
	}
}

func (m *Machine) opOR(in Instruction) error {
	m.V[in.X] |= m.V[in.Y]
	m.vfReset()
	m.next()
	return nil
}

func (m *Machine) opAND(in Instruction) error {
	m.V[in.X] &= m.V[in.Y]
	m.vfReset()
	m.next()
	return nil
}

func (m *Machine) opXOR(in Instruction) error {
	m.V[in.X] ^= m.V[in.Y]
	m.vfReset()
	m.next()
	return nil
}

// VF is always written last, so that it holds the flag even when it's also
// the destination register.

func (m *Machine) opADDreg(in Instruction) error {
	sum := uint16(m.V[in.X]) + uint16(m.V[in.Y])
	m.V[in.X] = uint8(sum)
	m.V[0xF] = hwio.B2U8(sum > 0xFF)
	m.next()
	return nil
}

func (m *Machine) opSUB(in Instruction) error {
	vx, vy := m.V[in.X], m.V[in.Y]
	m.V[in.X] = vx - vy
	m.V[0xF] = hwio.B2U8(vx >= vy)
	m.next()
	return nil
}

func (m *Machine) opSUBN(in Instruction) error {
	vx, vy := m.V[in.X], m.V[in.Y]
	m.V[in.X] = vy - vx
	m.V[0xF] = hwio.B2U8(vy >= vx)
	m.next()
	return nil
}

func (m *Machine) shiftOperand(in Instruction) uint8 {
	if !m.Platform.HasQuirk(ShiftUsesSecondOperand) {
		m.V[in.X] = m.V[in.Y]
	}
	return m.V[in.X]
}

func (m *Machine) opSHR(in Instruction) error {
	val := m.shiftOperand(in)
	m.V[in.X] = val >> 1
	m.V[0xF] = hwio.GetBiti8(val, 0)
	m.next()
	return nil
}

func (m *Machine) opSHL(in Instruction) error {
	val := m.shiftOperand(in)
	m.V[in.X] = val << 1
	m.V[0xF] = hwio.GetBiti8(val, 7)
	m.next()
	return nil
}

func (m *Machine) opRND(in Instruction) error {
	m.V[in.X] = uint8(m.rnd.Uint32()) & in.NN
	m.next()
	return nil
}

/* display */

func (m *Machine) opDRW(in Instruction) error {
	sprite, err := m.RAM.Slice(m.I, int(in.N))
	if err != nil {
		return m.memError(err)
	}

	w, h := m.Platform.Width, m.Platform.Height
	wrap := m.Platform.HasQuirk(WrapSprites)

	// Only the origin wraps around, unless sprites wrap.
	x0 := int(m.V[in.X]) % w
	y0 := int(m.V[in.Y]) % h

	collision := false
	for row, bits := range sprite {
		y := y0 + row
		if y >= h {
			if !wrap {
				break
			}
			y %= h
		}
		for col := range 8 {
			if !hwio.GetBit8(bits, uint(7-col)) {
				continue
			}
			x := x0 + col
			if x >= w {
				if !wrap {
					break
				}
				x %= w
			}
			pix := &m.Video[y*w+x]
			if *pix == 1 {
				collision = true
			}
			hwio.FlipBit8(pix, 0)
		}
	}

	m.V[0xF] = hwio.B2U8(collision)
	m.drew = true
	m.next()
	return nil
}

/* timers and keypad */

func (m *Machine) opLDfromDT(in Instruction) error {
	m.V[in.X] = m.DT
	m.next()
	return nil
}

func (m *Machine) opLDtoDT(in Instruction) error {
	m.DT = m.V[in.X]
	m.next()
	return nil
}

func (m *Machine) opLDtoST(in Instruction) error {
	m.ST = m.V[in.X]
	m.next()
	return nil
}

// Waiting for a key doesn't block: as long as no key is down PC isn't
// updated so the same instruction runs again on next step.
func (m *Machine) opLDkey(in Instruction) error {
	for key := range uint8(NumKeys) {
		if m.Keypad[key] {
			m.V[in.X] = key
			m.next()
			return nil
		}
	}
	return nil
}

/* index register and memory */

func (m *Machine) opLDI(in Instruction) error {
	m.I = in.NNN
	m.next()
	return nil
}

func (m *Machine) opADDI(in Instruction) error {
	m.I += uint16(m.V[in.X])
	m.next()
	return nil
}

func (m *Machine) opLDF(in Instruction) error {
	m.I = fontAddr + GlyphHeight*uint16(m.V[in.X])
	m.next()
	return nil
}

func (m *Machine) opBCD(in Instruction) error {
	dst, err := m.RAM.Slice(m.I, 3)
	if err != nil {
		return m.memError(err)
	}
	val := m.V[in.X]
	dst[0] = val / 100
	dst[1] = (val / 10) % 10
	dst[2] = val % 10
	m.next()
	return nil
}

func (m *Machine) opSTORE(in Instruction) error {
	n := int(in.X) + 1
	dst, err := m.RAM.Slice(m.I, n)
	if err != nil {
		return m.memError(err)
	}
	copy(dst, m.V[:n])
	if m.Platform.HasQuirk(LoadStoreIncrementIndex) {
		m.I += uint16(n)
	}
	m.next()
	return nil
}

func (m *Machine) opLOAD(in Instruction) error {
	n := int(in.X) + 1
	src, err := m.RAM.Slice(m.I, n)
	if err != nil {
		return m.memError(err)
	}
	copy(m.V[:n], src)
	if m.Platform.HasQuirk(LoadStoreIncrementIndex) {
		m.I += uint16(n)
	}
	m.next()
	return nil
}
