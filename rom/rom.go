// Package rom reads CHIP-8 program images. A ROM is a raw memory image,
// without header, loaded at the program start address.
package rom

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"chipster/emu/log"
	"chipster/hw"
)

type ROM struct {
	Path string // empty when not read from a file
	Data []byte
}

// Open loads a rom from file.
func Open(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rom := &ROM{Path: path}
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface. It fails if the program can't
// fit in memory.
func (rom *ROM) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(io.LimitReader(r, hw.MaxROMSize+1))
	if err != nil {
		return 0, err
	}
	if len(buf) > hw.MaxROMSize {
		return int64(len(buf)), &hw.ROMSizeError{Size: len(buf), Max: hw.MaxROMSize}
	}
	if len(buf) == 0 {
		return 0, fmt.Errorf("empty rom")
	}

	rom.Data = buf
	log.ModROM.DebugZ("read rom").String("path", rom.Path).Int("size", len(buf)).End()
	return int64(len(buf)), nil
}

// Name returns the base file name of the ROM.
func (rom *ROM) Name() string {
	if rom.Path == "" {
		return "<memory>"
	}
	return filepath.Base(rom.Path)
}

func (rom *ROM) SHA1() string {
	sum := sha1.Sum(rom.Data)
	return hex.EncodeToString(sum[:])
}

// PrintInfos writes a summary of the ROM followed by its disassembly.
func (rom *ROM) PrintInfos(w io.Writer) error {
	fmt.Fprintf(w, "name:   %s\n", rom.Name())
	fmt.Fprintf(w, "size:   %d bytes (%d free)\n", len(rom.Data), hw.MaxROMSize-len(rom.Data))
	fmt.Fprintf(w, "sha1:   %s\n", rom.SHA1())
	fmt.Fprintf(w, "\n")
	return hw.DisasmProgram(w, rom.Data, hw.ProgramStart)
}

// ReadDir returns the sorted paths of the regular files in dir. Hidden files
// are skipped.
func ReadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no rom found in %s", dir)
	}
	slices.Sort(paths)
	return paths, nil
}
