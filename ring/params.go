package ring

import (
	"encoding/json"
	"fmt"
	"math/bits"
)

// MaxLogN is the log2 of the largest supported transform size.
const MaxLogN = 17

// MinLogN is the log2 of the smallest supported transform size.
const MinLogN = 2

// MaxModulusBits is the largest bit-length supported for the modulus.
const MaxModulusBits = 61

// ParametersLiteral is a literal representation of NTT parameters. It has
// public fields and is used to express unchecked user-defined parameters
// literally into Go programs. The [NewParametersFromLiteral] function is used
// to generate the actual checked parameters from the literal representation.
type ParametersLiteral struct {
	LogN    int
	Modulus uint64
}

// Parameters represents a checked set of NTT parameters for a single
// modulus. Its fields are private and immutable. See [ParametersLiteral]
// for user-specified parameters.
type Parameters struct {
	logN    int
	modulus uint64
}

// NewParametersFromLiteral returns checked parameters from the literal
// representation. It returns the empty parameters and a non-nil error if the
// literal parameters do not define a valid negacyclic NTT of size 2^LogN.
func NewParametersFromLiteral(p ParametersLiteral) (Parameters, error) {

	if p.LogN < MinLogN || p.LogN > MaxLogN {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: LogN must be in [%d, %d] but is %d", MinLogN, MaxLogN, p.LogN)
	}

	if bl := bits.Len64(p.Modulus); bl > MaxModulusBits {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: Modulus bit-size must be at most %d but is %d", MaxModulusBits, bl)
	}

	if !IsPrime(p.Modulus) {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: Modulus %d is not prime", p.Modulus)
	}

	NthRoot := uint64(2) << p.LogN

	if p.Modulus&(NthRoot-1) != 1 {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: Modulus %d != 1 mod 2N", p.Modulus)
	}

	return Parameters{logN: p.LogN, modulus: p.Modulus}, nil
}

// ParametersLiteral returns the literal representation of the parameter set.
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{LogN: p.logN, Modulus: p.modulus}
}

// LogN returns the log2 of the transform size.
func (p Parameters) LogN() int {
	return p.logN
}

// N returns the transform size.
func (p Parameters) N() int {
	return 1 << p.logN
}

// Modulus returns the modulus.
func (p Parameters) Modulus() uint64 {
	return p.modulus
}

// NthRoot returns the order 2N of the primitive root defining the twiddle factors.
func (p Parameters) NthRoot() uint64 {
	return uint64(2) << p.logN
}

// Equal checks two Parameter structs for equality.
func (p Parameters) Equal(other *Parameters) bool {
	return p.logN == other.logN && p.modulus == other.modulus
}

// MarshalJSON returns a JSON representation of this parameter set. See Marshal from the [encoding/json] package.
func (p Parameters) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ParametersLiteral())
}

// UnmarshalJSON reads a JSON representation of a parameter set into the receiver Parameter. See Unmarshal from the [encoding/json] package.
func (p *Parameters) UnmarshalJSON(data []byte) (err error) {
	var params ParametersLiteral
	if err = json.Unmarshal(data, &params); err != nil {
		return err
	}
	*p, err = NewParametersFromLiteral(params)
	return
}
