package addrgen

import "fmt"

// Mode selects the sequence the address unit generates.
type Mode uint8

const (
	// ForwardNTT sequences a full forward transform pass.
	ForwardNTT Mode = iota
	// InverseNTT sequences a full inverse transform pass.
	InverseNTT
	// Mult sequences a pointwise multiplication pass.
	Mult
	// Add sequences a pointwise addition pass.
	Add
	// Sub sequences a pointwise subtraction pass.
	Sub
)

// IsValid reports whether m is one of the defined operating modes.
func (m Mode) IsValid() bool {
	return m <= Sub
}

// Transform reports whether m is one of the two transform modes.
func (m Mode) Transform() bool {
	return m == ForwardNTT || m == InverseNTT
}

// Pointwise reports whether m is one of the three element-wise modes.
func (m Mode) Pointwise() bool {
	return m == Mult || m == Add || m == Sub
}

func (m Mode) String() string {
	switch m {
	case ForwardNTT:
		return "ForwardNTT"
	case InverseNTT:
		return "InverseNTT"
	case Mult:
		return "Mult"
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Mapping selects the address permutation applied by Resolve.
type Mapping uint8

const (
	// Standard applies no permutation.
	Standard Mapping = iota
	// Decode rotates the six address bits left by two.
	Decode
	// Encode rotates the six address bits right by two.
	Encode
)

// Opposite returns the mapping inverting m. Standard is its own opposite,
// and unrecognized values (which Resolve treats as Standard) are returned
// unchanged.
func (m Mapping) Opposite() Mapping {
	switch m {
	case Decode:
		return Encode
	case Encode:
		return Decode
	default:
		return m
	}
}

func (m Mapping) String() string {
	switch m {
	case Standard:
		return "Standard"
	case Decode:
		return "Decode"
	case Encode:
		return "Encode"
	default:
		return fmt.Sprintf("Mapping(%d)", uint8(m))
	}
}
