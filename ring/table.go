package ring

import (
	"fmt"
	"math/bits"

	"github.com/google/go-cmp/cmp"
	"github.com/tuneinsight/nttgen/utils"
)

// Table is a struct storing the modular arithmetic constants and the
// twiddle factor tables of the NTT for a given modulus.
type Table struct {

	// Transform size
	N int

	// Order of the primitive root used to derive the twiddle factors
	NthRoot uint64

	// Modulus
	Modulus uint64

	// Unique factors of Modulus-1
	Factors []uint64

	// 2^bit_length(Modulus) - 1
	Mask uint64

	// Fast reduction constants
	BRedConstant [2]uint64 // Barrett Reduction
	MRedConstant uint64    // Montgomery Reduction

	// 2N-th primitive root of unity mod Modulus
	PrimitiveRoot uint64

	// Powers of the 2N-th primitive root in Montgomery form (in bit-reversed order)
	RootsForward []uint64

	// Powers of the inverse of the 2N-th primitive root in Montgomery form (in bit-reversed order)
	RootsBackward []uint64

	// N^(-1) mod Modulus in Montgomery form
	NInv uint64
}

// NewTable creates a new Table for the given transform size and modulus and
// generates its NTT constants for the 2N-th root of unity. N must be a power
// of two greater than or equal to 4, and Modulus an NTT-friendly prime
// equal to 1 mod 2N.
func NewTable(N int, Modulus uint64) (t *Table, err error) {

	if N < 4 || (N&(N-1)) != 0 {
		return nil, fmt.Errorf("cannot NewTable: invalid transform size: must be a power of 2 greater than 4")
	}

	t = &Table{}

	t.N = N

	t.Modulus = Modulus
	t.Mask = (1 << uint64(bits.Len64(Modulus-1))) - 1

	// Computes the fast modular reduction constants for the Table
	t.BRedConstant = GenBRedConstant(Modulus)

	// If the modulus is not a power of 2, we can compute the MRed constant (otherwise, there
	// is no valid Montgomery form mod a power of 2)
	if (Modulus&(Modulus-1)) != 0 && Modulus != 0 {
		t.MRedConstant = GenMRedConstant(Modulus)
	}

	t.NthRoot = uint64(N) << 1

	if err = t.generateNTTConstants(); err != nil {
		return nil, err
	}

	return
}

// NewTableFromParameters creates a new Table from a checked set of parameters.
func NewTableFromParameters(p Parameters) (t *Table, err error) {
	if t, err = NewTable(p.N(), p.Modulus()); err != nil {
		return nil, fmt.Errorf("cannot NewTableFromParameters: %w", err)
	}
	return
}

// Equal checks two Table structs for equality.
func (t *Table) Equal(other *Table) (res bool) {
	res = t.N == other.N
	res = res && (t.NthRoot == other.NthRoot)
	res = res && (t.Modulus == other.Modulus)
	res = res && (t.PrimitiveRoot == other.PrimitiveRoot)
	res = res && cmp.Equal(t.Factors, other.Factors)
	res = res && cmp.Equal(t.RootsForward, other.RootsForward)
	res = res && cmp.Equal(t.RootsBackward, other.RootsBackward)
	return
}

// generateNTTConstants generates the NTT constants for the target Table.
// The fields PrimitiveRoot and Factors can be set manually to bypass the
// search for the primitive root (which requires factoring Modulus-1) and
// speed up the generation of the constants.
func (t *Table) generateNTTConstants() (err error) {

	if t.N == 0 || t.Modulus == 0 {
		return fmt.Errorf("invalid table parameters (missing)")
	}

	Modulus := t.Modulus
	NthRoot := t.NthRoot

	// Checks if the modulus is prime and equal to 1 mod NthRoot
	if !IsPrime(Modulus) {
		return fmt.Errorf("invalid modulus: %d is not prime", Modulus)
	}

	if Modulus&(NthRoot-1) != 1 {
		return fmt.Errorf("invalid modulus: %d != 1 mod NthRoot", Modulus)
	}

	// It is possible to manually set the primitive root along with the factors of q-1.
	// If both are set, then checks that the root is indeed primitive.
	// Else, factorizes q-1 and finds a primitive root.
	if t.PrimitiveRoot != 0 && t.Factors != nil {
		if err = CheckPrimitiveRoot(t.PrimitiveRoot, t.Modulus, t.Factors); err != nil {
			return
		}
	} else {
		if t.PrimitiveRoot, t.Factors, err = PrimitiveRoot(Modulus, t.Factors); err != nil {
			return
		}
	}

	logNthRoot := uint64(bits.Len64(NthRoot>>1) - 1)

	// Computes N^(-1) mod Modulus in Montgomery form
	t.NInv = MForm(ModExp(NthRoot>>1, Modulus-2, Modulus), Modulus, t.BRedConstant)

	// Computes Psi and PsiInv in Montgomery form
	PsiMont := MForm(ModExp(t.PrimitiveRoot, (Modulus-1)/NthRoot, Modulus), Modulus, t.BRedConstant)
	PsiInvMont := MForm(ModExp(t.PrimitiveRoot, Modulus-((Modulus-1)/NthRoot)-1, Modulus), Modulus, t.BRedConstant)

	t.RootsForward = make([]uint64, NthRoot>>1)
	t.RootsBackward = make([]uint64, NthRoot>>1)

	t.RootsForward[0] = MForm(1, Modulus, t.BRedConstant)
	t.RootsBackward[0] = MForm(1, Modulus, t.BRedConstant)

	// Computes RootsForward[bitrev(j)] = RootsForward[bitrev(j-1)]*Psi and
	// RootsBackward[bitrev(j)] = RootsBackward[bitrev(j-1)]*PsiInv
	for j := uint64(1); j < NthRoot>>1; j++ {

		indexReversePrev := utils.BitReverse64(j-1, logNthRoot)
		indexReverseNext := utils.BitReverse64(j, logNthRoot)

		t.RootsForward[indexReverseNext] = MRed(t.RootsForward[indexReversePrev], PsiMont, Modulus, t.MRedConstant)
		t.RootsBackward[indexReverseNext] = MRed(t.RootsBackward[indexReversePrev], PsiInvMont, Modulus, t.MRedConstant)
	}

	return
}

// PrimitiveRoot computes the smallest primitive root of the given prime q.
// The unique factors of q-1 can be given to speed up the search for the root.
func PrimitiveRoot(q uint64, factors []uint64) (uint64, []uint64, error) {

	if factors != nil {
		if err := CheckFactors(q-1, factors); err != nil {
			return 0, factors, err
		}
	} else {
		factors = primeFactors(q - 1)
	}

	notFoundPrimitiveRoot := true

	var g uint64 = 2

	for notFoundPrimitiveRoot {
		g++
		for _, factor := range factors {
			// if for any factor of q-1, g^(q-1)/factor = 1 mod q, g is not a primitive root
			if ModExp(g, (q-1)/factor, q) == 1 {
				notFoundPrimitiveRoot = true
				break
			}
			notFoundPrimitiveRoot = false
		}
	}

	return g, factors, nil
}

// CheckFactors checks that the given list of factors contains
// all the unique primes of m.
func CheckFactors(m uint64, factors []uint64) (err error) {

	for _, factor := range factors {

		if !IsPrime(factor) {
			return fmt.Errorf("composite factor")
		}

		for m%factor == 0 {
			m /= factor
		}
	}

	if m != 1 {
		return fmt.Errorf("incomplete factor list")
	}

	return
}

// CheckPrimitiveRoot checks that g is a valid primitive root mod q,
// given the factors of q-1.
func CheckPrimitiveRoot(g, q uint64, factors []uint64) (err error) {

	if err = CheckFactors(q-1, factors); err != nil {
		return
	}

	for _, factor := range factors {
		if ModExp(g, (q-1)/factor, q) == 1 {
			return fmt.Errorf("invalid primitive root")
		}
	}

	return
}
