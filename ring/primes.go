package ring

import (
	"fmt"
	"math/big"
	"math/bits"
)

// IsPrime applies the Baillie-PSW, which is 100% accurate for numbers below 2^64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// GenerateNTTPrimes generates n NthRoot NTT-friendly primes given logQ = size of the primes.
// It alternates between upward and downward candidates starting from 2^logQ+1.
func GenerateNTTPrimes(logQ, NthRoot, n int) (primes []uint64, err error) {

	if logQ < 2 || logQ > 61 {
		return nil, fmt.Errorf("cannot GenerateNTTPrimes: logQ must be between 2 and 61")
	}

	var nextPrime, previousPrime uint64
	var checkfornextprime, checkforpreviousprime bool

	primes = []uint64{}

	Qpow2 := uint64(1 << logQ)

	nextPrime = Qpow2 + 1
	previousPrime = Qpow2 + 1

	checkfornextprime = true
	checkforpreviousprime = true

	for {

		if !(checkfornextprime || checkforpreviousprime) {
			return nil, fmt.Errorf("cannot GenerateNTTPrimes: not enough primes for the given parameters")
		}

		if checkfornextprime {

			if nextPrime > 0xffffffffffffffff-uint64(NthRoot) {

				checkfornextprime = false

			} else {

				nextPrime += uint64(NthRoot)

				if IsPrime(nextPrime) {

					primes = append(primes, nextPrime)

					if len(primes) == n {
						return primes, nil
					}
				}
			}
		}

		if checkforpreviousprime {

			if previousPrime < uint64(NthRoot) {

				checkforpreviousprime = false

			} else {

				previousPrime -= uint64(NthRoot)

				if IsPrime(previousPrime) {

					primes = append(primes, previousPrime)

					if len(primes) == n {
						return primes, nil
					}
				}
			}
		}
	}
}

// NextNTTPrime returns the next NthRoot NTT prime after q.
// The input q must be itself an NTT prime for the given NthRoot.
func NextNTTPrime(q uint64, NthRoot int) (qNext uint64, err error) {

	qNext = q + uint64(NthRoot)

	for !IsPrime(qNext) {

		qNext += uint64(NthRoot)

		if bits.Len64(qNext) > 61 {
			return 0, fmt.Errorf("next NTT prime exceeds the maximum bit-size of 61 bits")
		}
	}

	return qNext, nil
}

// PreviousNTTPrime returns the previous NthRoot NTT prime before q.
// The input q must be itself an NTT prime for the given NthRoot.
func PreviousNTTPrime(q uint64, NthRoot int) (qPrev uint64, err error) {

	if q < uint64(NthRoot) {
		return 0, fmt.Errorf("previous NTT prime is smaller than NthRoot")
	}

	qPrev = q - uint64(NthRoot)

	for !IsPrime(qPrev) {

		if qPrev < uint64(NthRoot) {
			return 0, fmt.Errorf("previous NTT prime is smaller than NthRoot")
		}

		qPrev -= uint64(NthRoot)
	}

	return qPrev, nil
}

// primeFactors returns the unique prime factors of m, obtained by trial
// division. The moduli used here are below 62 bits, for which q-1 always
// factors quickly since it is divisible by the large power-of-two NthRoot.
func primeFactors(m uint64) (factors []uint64) {

	if m <= 1 {
		return
	}

	if m&1 == 0 {
		factors = append(factors, 2)
		for m&1 == 0 {
			m >>= 1
		}
	}

	for p := uint64(3); p*p <= m; p += 2 {
		if m%p == 0 {
			factors = append(factors, p)
			for m%p == 0 {
				m /= p
			}
		}
	}

	if m > 1 {
		factors = append(factors, m)
	}

	return
}
