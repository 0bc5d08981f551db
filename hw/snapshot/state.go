package snapshot

// Version of the snapshot format.
const Version = 1

type Chip8 struct {
	Version int
	Variant string
	State   uint8
	ROM     []byte
	Machine Machine
}

type Machine struct {
	RAM   []byte
	V     [16]uint8
	I     uint16
	PC    uint16
	Stack [16]uint16
	SP    uint8
	DT    uint8
	ST    uint8

	Keypad      [16]bool
	Video       []byte
	ProgramSize uint16
}
