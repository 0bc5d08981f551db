package hw

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOpcode  = errors.New("invalid opcode")
	ErrInvalidAddress = errors.New("invalid address")
	ErrROMTooLarge    = errors.New("rom too large")
)

// InvalidOpcodeError is returned when an instruction word doesn't map to any
// known instruction.
type InvalidOpcodeError struct {
	Opcode uint16
	PC     uint16
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %04X at $%04X", e.Opcode, e.PC)
}

func (e *InvalidOpcodeError) Is(target error) bool { return target == ErrInvalidOpcode }

// InvalidAddressError is returned when fetching an instruction, or executing
// one, would access memory out of bounds.
type InvalidAddressError struct {
	PC  uint16
	Err error // underlying *hwio.RangeError
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address at $%04X: %s", e.PC, e.Err)
}

func (e *InvalidAddressError) Unwrap() error         { return e.Err }
func (e *InvalidAddressError) Is(target error) bool { return target == ErrInvalidAddress }

// ROMSizeError is returned when a ROM doesn't fit in program memory.
type ROMSizeError struct {
	Size int
	Max  int
}

func (e *ROMSizeError) Error() string {
	return fmt.Sprintf("rom is too big to fit in memory: %d bytes (max %d)", e.Size, e.Max)
}

func (e *ROMSizeError) Is(target error) bool { return target == ErrROMTooLarge }
