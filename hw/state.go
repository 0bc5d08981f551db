package hw

//go:generate go tool stringer -type=State

// State is the life cycle state of a Chip8.
//
//	Off -> Running <-> Paused
//	       Running -> Finished -(reset)-> Running
type State uint8

const (
	Off      State = iota // no program loaded, or stopped
	Running               // executing
	Paused                // not executing, state is preserved
	Finished              // PC went past the end of the program
)
