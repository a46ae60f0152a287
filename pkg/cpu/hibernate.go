package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// humanReadableState is the JSON-serializable snapshot of the registers.
type humanReadableState struct {
	A        uint16 `json:"a"`
	D        uint16 `json:"d"`
	PC       uint16 `json:"pc"`
	Halted   bool   `json:"halted"`
	Cycles   uint64 `json:"cycles"`
	ROMWords int    `json:"rom_words"`
}

// HibernateToBytes serialises the machine into an in-memory ZIP archive
// holding cpu_state.json, ram.bin and rom.bin.
func (c *CPU) HibernateToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := humanReadableState{
		A:        c.A,
		D:        c.D,
		PC:       c.PC,
		Halted:   c.Halted,
		Cycles:   c.Cycles,
		ROMWords: len(c.ROM),
	}
	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cpu_state: %w", err)
	}
	if err := writeZipEntry(zw, "cpu_state.json", jsonData); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "ram.bin", uint16SliceToLE(c.RAM[:])); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "rom.bin", uint16SliceToLE(c.ROM)); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes applies an archive produced by HibernateToBytes.
func (c *CPU) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "cpu_state.json")
	if err != nil {
		return err
	}
	var state humanReadableState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal cpu_state: %w", err)
	}
	if state.ROMWords < 0 || state.ROMWords > ROMSize {
		return fmt.Errorf("%w: %d words", ErrProgramTooLarge, state.ROMWords)
	}

	rom, err := readZipEntry(fileMap, "rom.bin")
	if err != nil {
		return err
	}
	if len(rom) != state.ROMWords*2 {
		return fmt.Errorf("rom.bin holds %d bytes, want %d", len(rom), state.ROMWords*2)
	}
	ram, err := readZipEntry(fileMap, "ram.bin")
	if err != nil {
		return err
	}

	c.ROM = make([]uint16, state.ROMWords)
	leToUint16Slice(rom, c.ROM)
	leToUint16Slice(ram, c.RAM[:])
	c.A = state.A
	c.D = state.D
	c.PC = state.PC
	c.Halted = state.Halted
	c.Cycles = state.Cycles
	return nil
}

// HibernateToFile writes the hibernation archive to path.
func (c *CPU) HibernateToFile(path string) error {
	data, err := c.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RestoreFromFile reads a hibernation archive from path.
func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.RestoreFromBytes(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func uint16SliceToLE(src []uint16) []byte {
	out := make([]byte, len(src)*2)
	for i, v := range src {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func leToUint16Slice(src []byte, dst []uint16) {
	for i := range dst {
		if i*2+1 < len(src) {
			dst[i] = binary.LittleEndian.Uint16(src[i*2:])
		}
	}
}
