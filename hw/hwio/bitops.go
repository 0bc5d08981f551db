package hwio

// 8-bit operations
func GetBit8(v uint8, n uint) bool {
	return GetBiti8(v, n) != 0
}

func GetBiti8(v uint8, n uint) uint8 {
	return v >> (n) & 0x01
}

func FlipBit8(v *uint8, n uint) {
	*v ^= (1 << n)
}

// B2U8 converts a boolean to 0 or 1.
func B2U8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
