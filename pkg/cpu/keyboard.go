package cpu

// Hack keyboard codes for keys without a printable character.
const (
	KeyNewline   uint16 = 128
	KeyBackspace uint16 = 129
	KeyLeft      uint16 = 130
	KeyUp        uint16 = 131
	KeyRight     uint16 = 132
	KeyDown      uint16 = 133
	KeyHome      uint16 = 134
	KeyEnd       uint16 = 135
	KeyPageUp    uint16 = 136
	KeyPageDown  uint16 = 137
	KeyInsert    uint16 = 138
	KeyDelete    uint16 = 139
	KeyEscape    uint16 = 140
	KeyF1        uint16 = 141 // F2..F12 follow consecutively
)

// PushKey makes code visible at KBD until ReleaseKey.
func (c *CPU) PushKey(code uint16) {
	c.RAM[KeyboardAddr] = code
}

func (c *CPU) ReleaseKey() {
	c.RAM[KeyboardAddr] = 0
}
