package ring

import (
	"math/bits"
)

// butterfly computes X, Y = U + V*Psi, U - V*Psi mod Q.
func butterfly(U, V, Psi, twoQ, fourQ, Q, QInv uint64) (uint64, uint64) {
	if U >= fourQ {
		U -= fourQ
	}
	V = MRedLazy(V, Psi, Q, QInv)
	return U + V, U + twoQ - V
}

// invbutterfly computes X, Y = U + V, (U - V) * Psi mod Q.
func invbutterfly(U, V, Psi, twoQ, fourQ, Q, QInv uint64) (X, Y uint64) {
	X = U + V
	if X >= twoQ {
		X -= twoQ
	}
	Y = MRedLazy(U+fourQ-V, Psi, Q, QInv) // At the moment it is not possible to use MRedLazy if Q > 61 bits
	return
}

// Forward writes the forward NTT of p1 on p2.
func (t *Table) Forward(p1, p2 []uint64) {
	t.ForwardLazy(p1, p2)
	for i := range p2 {
		p2[i] = BRedAdd(p2[i], t.Modulus, t.BRedConstant)
	}
}

// ForwardLazy writes the forward NTT of p1 on p2, skipping the final
// reduction. Returns partially reduced values in the range [0, 8q-1].
func (t *Table) ForwardLazy(p1, p2 []uint64) {
	nttCoreLazy(p1, p2, t.N, t.Modulus, t.MRedConstant, t.RootsForward)
}

// Backward writes the backward NTT of p1 on p2.
func (t *Table) Backward(p1, p2 []uint64) {
	inttCore(p1, p2, t.N, t.Modulus, t.MRedConstant, t.RootsBackward)
	for i := range p2 {
		p2[i] = MRed(p2[i], t.NInv, t.Modulus, t.MRedConstant)
	}
}

// BackwardLazy writes the backward NTT of p1 on p2.
// Returns values in the range [0, 2q-1].
func (t *Table) BackwardLazy(p1, p2 []uint64) {
	inttCore(p1, p2, t.N, t.Modulus, t.MRedConstant, t.RootsBackward)
	for i := range p2 {
		p2[i] = MRedLazy(p2[i], t.NInv, t.Modulus, t.MRedConstant)
	}
}

// nttCoreLazy computes the forward NTT on the input coefficients, consuming
// the roots in increasing table order. A full reduction is applied every
// second stage, so intermediate values stay below 8q.
func nttCoreLazy(p1, p2 []uint64, N int, Q, QInv uint64, nttPsi []uint64) {

	var j1, j2 int
	var F, V uint64

	fourQ := 4 * Q
	twoQ := 2 * Q

	// Copies the result of the first stage of butterflies on p2 with approximate reduction
	t := N >> 1
	F = nttPsi[1]

	for jx, jy := 0, t; jx < t; jx, jy = jx+1, jy+1 {
		V = MRedLazy(p1[jy], F, Q, QInv)
		p2[jx], p2[jy] = p1[jx]+V, p1[jx]+twoQ-V
	}

	// Continues the rest of the stages on p2 with approximate reduction
	var reduce bool

	for m := 2; m < N; m <<= 1 {

		reduce = (bits.Len64(uint64(m))&1 == 1)

		t >>= 1

		for i := 0; i < m; i++ {

			j1 = (i * t) << 1

			j2 = j1 + t

			F = nttPsi[m+i]

			if reduce {

				for jx, jy := j1, j1+t; jx < j2; jx, jy = jx+1, jy+1 {
					p2[jx], p2[jy] = butterfly(p2[jx], p2[jy], F, twoQ, fourQ, Q, QInv)
				}

			} else {

				for jx, jy := j1, j1+t; jx < j2; jx, jy = jx+1, jy+1 {
					V = MRedLazy(p2[jy], F, Q, QInv)
					p2[jx], p2[jy] = p2[jx]+V, p2[jx]+twoQ-V
				}
			}
		}
	}
}

// inttCore computes the backward NTT on the input coefficients, consuming
// the roots in decreasing table order. Intermediate values stay below 2q.
func inttCore(p1, p2 []uint64, N int, Q, QInv uint64, nttPsiInv []uint64) {

	var j1, j2, h int
	var F uint64

	twoQ := Q << 1
	fourQ := Q << 2

	// Copies the result of the first stage of butterflies on p2 with approximate reduction
	h = N >> 1

	for i, j := h, 0; i < N; i, j = i+1, j+2 {
		F = nttPsiInv[i]
		p2[j], p2[j+1] = invbutterfly(p1[j], p1[j+1], F, twoQ, fourQ, Q, QInv)
	}

	// Continues the rest of the stages on p2 with approximate reduction
	t := 2
	for m := N >> 1; m > 1; m >>= 1 {

		j1 = 0
		h = m >> 1

		for i := 0; i < h; i++ {

			j2 = j1 + t

			F = nttPsiInv[h+i]

			for jx, jy := j1, j1+t; jx < j2; jx, jy = jx+1, jy+1 {
				p2[jx], p2[jy] = invbutterfly(p2[jx], p2[jy], F, twoQ, fourQ, Q, QInv)
			}

			j1 = j1 + (t << 1)
		}

		t <<= 1
	}
}
