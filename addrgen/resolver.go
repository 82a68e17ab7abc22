package addrgen

// Resolve applies the permutation selected by the mapping to a six-bit
// address. Decode rotates the address bits left by two positions and
// Encode rotates them right by two, so the two mappings are mutual
// inverses; any other mapping returns the address unchanged.
//
// The unit resolves each index twice per tick: once with the configured
// mapping to obtain the physical storage address, and once with the
// opposite mapping to obtain its natural-order counterpart.
func Resolve(m Mapping, addr uint8) uint8 {
	addr &= wordMask
	switch m {
	case Decode:
		return (addr&0xf)<<2 | (addr>>4)&0x3
	case Encode:
		return (addr&0x3)<<4 | (addr>>2)&0xf
	default:
		return addr
	}
}
