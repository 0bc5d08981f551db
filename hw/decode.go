package hw

// Instruction is a decoded instruction word.
//
//	word: CXYN
//	      C   class (top nibble)
//	       X  register index
//	        Y register index
//	         N 4-bit literal
//	        NN 8-bit immediate (low byte)
//	       NNN 12-bit address
type Instruction struct {
	Word  uint16
	Class uint8
	X     uint8
	Y     uint8
	N     uint8
	NN    uint8
	NNN   uint16
}

func Decode(word uint16) Instruction {
	return Instruction{
		Word:  word,
		Class: uint8(word >> 12),
		X:     uint8(word>>8) & 0x0F,
		Y:     uint8(word>>4) & 0x0F,
		N:     uint8(word) & 0x0F,
		NN:    uint8(word),
		NNN:   word & 0x0FFF,
	}
}

// Fetch reads and decodes the instruction at PC.
func (m *Machine) Fetch() (Instruction, error) {
	word, err := m.RAM.Read16(m.PC)
	if err != nil {
		return Instruction{}, &InvalidAddressError{PC: m.PC, Err: err}
	}
	return Decode(word), nil
}
