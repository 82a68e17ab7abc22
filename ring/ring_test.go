package ring

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/nttgen/utils"
	"github.com/tuneinsight/nttgen/utils/sampling"
)

var testParametersLiteral = []ParametersLiteral{
	{LogN: 8, Modulus: 0x10001},             // 17 bits
	{LogN: 9, Modulus: 0xffffffffffc0001},   // 60 bits
	{LogN: 12, Modulus: 0x1fffffffffe00001}, // 61 bits
}

func testString(opname string, p Parameters) string {
	return fmt.Sprintf("%s/N=%d/logQ=%d", opname, p.N(), bits.Len64(p.Modulus()))
}

type testContext struct {
	params Parameters
	table  *Table
	prng   *sampling.KeyedPRNG
}

func genTestContext(pl ParametersLiteral) (tc *testContext, err error) {

	tc = new(testContext)

	if tc.params, err = NewParametersFromLiteral(pl); err != nil {
		return nil, err
	}

	if tc.table, err = NewTableFromParameters(tc.params); err != nil {
		return nil, err
	}

	if tc.prng, err = sampling.NewKeyedPRNG([]byte{'n', 't', 't'}); err != nil {
		return nil, err
	}

	return
}

// randUint64 samples a fresh uniform value below max from the test PRNG.
func (tc *testContext) randUint64(max uint64) uint64 {
	bytes := make([]byte, 8)
	mask := uint64(1)<<bits.Len64(max-1) - 1
	for {
		if _, err := tc.prng.Read(bytes); err != nil {
			panic(err)
		}
		if c := binary.LittleEndian.Uint64(bytes) & mask; c < max {
			return c
		}
	}
}

// randPoly samples a fresh polynomial with uniform coefficients below the modulus.
func (tc *testContext) randPoly() (p []uint64) {
	p = make([]uint64, tc.params.N())
	for i := range p {
		p[i] = tc.randUint64(tc.params.Modulus())
	}
	return
}

func TestRing(t *testing.T) {

	var err error

	testNewTable(t)
	testNewParametersFromLiteral(t)

	for _, pl := range testParametersLiteral[:] {

		var tc *testContext
		if tc, err = genTestContext(pl); err != nil {
			t.Fatal(err)
		}

		testParametersMarshalling(tc, t)
		testModularReduction(tc, t)
		testTableConstants(tc, t)
		testGenerateNTTPrimes(tc, t)
		testNTT(tc, t)
		testNTTLazy(tc, t)
		testMulPoly(tc, t)
	}
}

func testNewTable(t *testing.T) {
	t.Run("NewTable", func(t *testing.T) {

		tbl, err := NewTable(0, 97)
		require.Nil(t, tbl)
		require.Error(t, err)

		tbl, err = NewTable(12, 97) // Not a power of two
		require.Nil(t, tbl)
		require.Error(t, err)

		tbl, err = NewTable(16, 289) // 17^2: passing a composite modulus
		require.Nil(t, tbl)
		require.Error(t, err)

		tbl, err = NewTable(16, 7) // Passing a non NTT-enabling modulus
		require.Nil(t, tbl)
		require.Error(t, err)

		tbl, err = NewTable(16, 97) // Passing an NTT-enabling modulus (97 = 3*32 + 1)
		require.NotNil(t, tbl)
		require.NoError(t, err)

		// Presetting a wrong primitive root must be caught
		tbl = &Table{N: 16, NthRoot: 32, Modulus: 97, PrimitiveRoot: 2, Factors: []uint64{2, 3}}
		tbl.BRedConstant = GenBRedConstant(97)
		tbl.MRedConstant = GenMRedConstant(97)
		require.Error(t, tbl.generateNTTConstants())

		// Presetting the correct primitive root and factors must succeed
		tbl = &Table{N: 16, NthRoot: 32, Modulus: 97, PrimitiveRoot: 5, Factors: []uint64{2, 3}}
		tbl.BRedConstant = GenBRedConstant(97)
		tbl.MRedConstant = GenMRedConstant(97)
		require.NoError(t, tbl.generateNTTConstants())
	})
}

func testNewParametersFromLiteral(t *testing.T) {
	t.Run("NewParametersFromLiteral", func(t *testing.T) {

		// LogN out of range
		_, err := NewParametersFromLiteral(ParametersLiteral{LogN: MinLogN - 1, Modulus: 97})
		require.Error(t, err)

		_, err = NewParametersFromLiteral(ParametersLiteral{LogN: MaxLogN + 1, Modulus: 0x1fffffffffe00001})
		require.Error(t, err)

		// Modulus too large
		_, err = NewParametersFromLiteral(ParametersLiteral{LogN: 8, Modulus: 0x7fffffffffffffff})
		require.Error(t, err)

		// Composite modulus
		_, err = NewParametersFromLiteral(ParametersLiteral{LogN: 4, Modulus: 289})
		require.Error(t, err)

		// Prime modulus that does not split the 2N-th cyclotomic
		_, err = NewParametersFromLiteral(ParametersLiteral{LogN: 4, Modulus: 17})
		require.Error(t, err)

		p, err := NewParametersFromLiteral(ParametersLiteral{LogN: 4, Modulus: 97})
		require.NoError(t, err)
		require.Equal(t, 16, p.N())
		require.Equal(t, uint64(32), p.NthRoot())
	})
}

func testParametersMarshalling(tc *testContext, t *testing.T) {

	t.Run(testString("Parameters/Marshalling", tc.params), func(t *testing.T) {

		data, err := json.Marshal(tc.params)
		require.NoError(t, err)

		var p Parameters
		require.NoError(t, json.Unmarshal(data, &p))
		require.True(t, tc.params.Equal(&p))

		// The literal must round-trip through the checked constructor
		pl := tc.params.ParametersLiteral()
		p2, err := NewParametersFromLiteral(pl)
		require.NoError(t, err)
		require.True(t, tc.params.Equal(&p2))
	})

	t.Run(testString("Table/Equal", tc.params), func(t *testing.T) {

		other, err := NewTableFromParameters(tc.params)
		require.NoError(t, err)
		require.True(t, tc.table.Equal(other))

		other.RootsForward[1]++
		require.False(t, tc.table.Equal(other))
	})
}

func testModularReduction(tc *testContext, t *testing.T) {

	q := tc.params.Modulus()
	brc := tc.table.BRedConstant
	mrc := tc.table.MRedConstant

	mulMod := func(x, y uint64) uint64 {
		res := new(big.Int).Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y))
		return res.Mod(res, new(big.Int).SetUint64(q)).Uint64()
	}

	t.Run(testString("ModularReduction/BRed", tc.params), func(t *testing.T) {

		for _, x := range []uint64{0, 1, q - 1, tc.randUint64(q), tc.randUint64(1 << 63)} {
			for _, y := range []uint64{1, q - 1, tc.randUint64(q), tc.randUint64(1 << 63)} {
				require.Equal(t, mulMod(x, y), BRed(x, y, q, brc))
			}
		}

		a := tc.randUint64(1 << 63)
		require.Equal(t, a%q, BRedAdd(a, q, brc))
		require.Equal(t, uint64(0), CRed(q, q))
		require.Equal(t, q-1, CRed(2*q-1, q))
	})

	t.Run(testString("ModularReduction/MRed", tc.params), func(t *testing.T) {

		for i := 0; i < 16; i++ {

			x := tc.randUint64(q)
			y := tc.randUint64(q)

			yMont := MForm(y, q, brc)
			require.Equal(t, y, IMForm(yMont, q, mrc))

			require.Equal(t, mulMod(x, y), MRed(x, yMont, q, mrc))

			lazy := MRedLazy(x, yMont, q, mrc)
			require.Less(t, lazy, 2*q)
			require.Equal(t, MRed(x, yMont, q, mrc), CRed(lazy, q))
		}
	})
}

func testTableConstants(tc *testContext, t *testing.T) {

	t.Run(testString("Table/Roots", tc.params), func(t *testing.T) {

		tbl := tc.table
		q := tbl.Modulus
		logN := uint64(tc.params.LogN())

		one := MForm(1, q, tbl.BRedConstant)
		require.Equal(t, one, tbl.RootsForward[0])
		require.Equal(t, one, tbl.RootsBackward[0])

		// The table stores psi^j at the bit-reversed index of j
		psi := ModExp(tbl.PrimitiveRoot, (q-1)/tbl.NthRoot, q)
		for _, j := range []uint64{1, 2, 3, uint64(tbl.N) >> 1, uint64(tbl.N) - 1} {
			root := tbl.RootsForward[utils.BitReverse64(j, logN)]
			require.Equal(t, ModExp(psi, j, q), IMForm(root, q, tbl.MRedConstant))
		}

		// Forward and backward entries at the same index are inverses of each other
		for i := range tbl.RootsForward {
			require.Equal(t, one, MRed(tbl.RootsForward[i], tbl.RootsBackward[i], q, tbl.MRedConstant))
		}

		// Powers of a primitive 2N-th root are pairwise distinct
		require.True(t, utils.AllDistinct(tbl.RootsForward))

		// NInv stores N^(-1) in Montgomery form
		require.Equal(t, one, MRed(tbl.NInv, MForm(uint64(tbl.N), q, tbl.BRedConstant), q, tbl.MRedConstant))
	})
}

func testGenerateNTTPrimes(tc *testContext, t *testing.T) {

	t.Run(testString("GenerateNTTPrimes", tc.params), func(t *testing.T) {

		NthRoot := int(tc.params.NthRoot())

		primes, err := GenerateNTTPrimes(55, NthRoot, 10)
		require.NoError(t, err)
		require.Equal(t, 10, len(primes))
		require.True(t, utils.AllDistinct(primes))

		for _, q := range primes {
			require.Equal(t, uint64(1), q&uint64(NthRoot-1))
			require.True(t, IsPrime(q), q)
		}

		_, err = GenerateNTTPrimes(1, NthRoot, 1)
		require.Error(t, err)

		_, err = GenerateNTTPrimes(62, NthRoot, 1)
		require.Error(t, err)
	})

	t.Run(testString("NextNTTPrime", tc.params), func(t *testing.T) {

		NthRoot := int(tc.params.NthRoot())
		q := tc.params.Modulus()

		qNext, err := NextNTTPrime(q, NthRoot)
		require.NoError(t, err)
		require.Greater(t, qNext, q)
		require.True(t, IsPrime(qNext))
		require.Equal(t, uint64(1), qNext&uint64(NthRoot-1))

		// Walking back down from the next prime must land on q itself
		qPrev, err := PreviousNTTPrime(qNext, NthRoot)
		require.NoError(t, err)
		require.Equal(t, q, qPrev)

		_, err = PreviousNTTPrime(3, NthRoot)
		require.Error(t, err)
	})
}

func testNTT(tc *testContext, t *testing.T) {

	t.Run(testString("NTT", tc.params), func(t *testing.T) {

		tbl := tc.table
		N := tc.params.N()

		p1 := tc.randPoly()
		p2 := make([]uint64, N)
		p3 := make([]uint64, N)

		tbl.Forward(p1, p2)
		tbl.Backward(p2, p3)
		require.Equal(t, p1, p3)

		// The transform evaluates at the odd powers of psi, so the
		// constant polynomial 1 maps to the all-ones vector.
		delta := make([]uint64, N)
		delta[0] = 1
		tbl.Forward(delta, p2)
		for i := range p2 {
			require.Equal(t, uint64(1), p2[i])
		}

		ones := make([]uint64, N)
		for i := range ones {
			ones[i] = 1
		}
		tbl.Backward(ones, p2)
		require.Equal(t, delta, p2)
	})
}

func testNTTLazy(tc *testContext, t *testing.T) {

	t.Run(testString("NTTLazy", tc.params), func(t *testing.T) {

		tbl := tc.table
		q := tc.params.Modulus()
		N := tc.params.N()

		p1 := tc.randPoly()
		want := make([]uint64, N)
		have := make([]uint64, N)

		tbl.Forward(p1, want)
		tbl.ForwardLazy(p1, have)
		for i := range have {
			require.Less(t, have[i], 8*q)
			require.Equal(t, want[i], BRedAdd(have[i], q, tbl.BRedConstant))
		}

		tbl.Backward(p1, want)
		tbl.BackwardLazy(p1, have)
		for i := range have {
			require.Less(t, have[i], 2*q)
			require.Equal(t, want[i], CRed(have[i], q))
		}
	})
}

func testMulPoly(tc *testContext, t *testing.T) {

	t.Run(testString("MulPoly", tc.params), func(t *testing.T) {

		tbl := tc.table
		q := tc.params.Modulus()
		N := tc.params.N()

		p1 := tc.randPoly()
		p2 := tc.randPoly()

		// Schoolbook product in Z[X]/(X^N+1)
		want := make([]uint64, N)
		for i := 0; i < N; i++ {
			for j := 0; j < N; j++ {
				v := BRed(p1[i], p2[j], q, tbl.BRedConstant)
				if k := i + j; k < N {
					want[k] = CRed(want[k]+v, q)
				} else {
					want[k-N] = CRed(want[k-N]+q-v, q)
				}
			}
		}

		// Same product through the transform domain
		p1NTT := make([]uint64, N)
		p2NTT := make([]uint64, N)
		tbl.Forward(p1, p1NTT)
		tbl.Forward(p2, p2NTT)

		have := make([]uint64, N)
		for i := range have {
			have[i] = MRed(p1NTT[i], MForm(p2NTT[i], q, tbl.BRedConstant), q, tbl.MRedConstant)
		}
		tbl.Backward(have, have)

		require.Equal(t, want, have)
	})
}
