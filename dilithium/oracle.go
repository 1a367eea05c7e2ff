package dilithium

import (
	"crypto/sha3"
	"encoding/binary"

	"github.com/luxfi/dilithium-threshold/ring"
)

// ExpandSeed expands a 32-byte seed into (rho, rho', K) via
// SHAKE256(seed, 96), split into three 32-byte halves.
func ExpandSeed(seed [32]byte) (rho, rhoPrime, k [32]byte) {
	xof := sha3.NewSHAKE256()
	xof.Write(seed[:])
	var out [96]byte
	xof.Read(out[:])
	copy(rho[:], out[0:32])
	copy(rhoPrime[:], out[32:64])
	copy(k[:], out[64:96])
	return
}

// MuHash returns SHAKE256(message, 64), the hashed message used throughout
// signing and verification.
func MuHash(message []byte) [64]byte {
	xof := sha3.NewSHAKE256()
	xof.Write(message)
	var mu [64]byte
	xof.Read(mu[:])
	return mu
}

// ExpandMatrix fills a k x l matrix from rho: each entry A[i][j] is sampled
// from SHAKE256(rho || i || j) interpreted as little-endian uint32 words
// reduced mod Q, without rejection.
func ExpandMatrix(rho [32]byte, k, l int) ring.Matrix {
	m := ring.NewMatrix(k, l)
	for i := 0; i < k; i++ {
		for j := 0; j < l; j++ {
			seed := append(append([]byte{}, rho[:]...), byte(i), byte(j))
			m[i][j] = sampleUniformMod(seed, ring.Q)
		}
	}
	return m
}

// sampleUniformMod draws N coefficients from SHAKE256(seed) as
// little-endian uint32 words reduced mod bound, rejection-free.
func sampleUniformMod(seed []byte, bound uint32) ring.Poly {
	xof := sha3.NewSHAKE256()
	xof.Write(seed)
	buf := make([]byte, 4*ring.N)
	xof.Read(buf)

	coeffs := make([]int64, ring.N)
	for i := 0; i < ring.N; i++ {
		w := binary.LittleEndian.Uint32(buf[4*i : 4*i+4])
		coeffs[i] = int64(w % bound)
	}
	return ring.NewPoly(coeffs)
}

// SampleEta draws a polynomial with coefficients uniform in [-eta, eta] via
// unbiased rejection sampling over single bytes from SHAKE256(seed).
func SampleEta(seed []byte, eta int64) ring.Poly {
	span := uint32(2*eta + 1)
	border := (256 / span) * span // reject bytes in [border, 256) to avoid bias

	xof := sha3.NewSHAKE256()
	xof.Write(seed)

	coeffs := make([]int64, ring.N)
	var b [1]byte
	for i := 0; i < ring.N; {
		xof.Read(b[:])
		v := uint32(b[0])
		if v >= border {
			continue
		}
		coeffs[i] = int64(v%span) - eta
		i++
	}
	return ring.NewPoly(coeffs)
}

// SampleGamma1 draws a polynomial with coefficients uniform in
// [-gamma1, gamma1] via 4-byte little-endian words from SHAKE256(seed),
// reduced modulo the span (spec.md §4.2 step 2 treats this as a plain
// modular reduction, not rejection sampling, matching the Python original).
func SampleGamma1(seed []byte, gamma1 int64) ring.Poly {
	span := uint64(2*gamma1 + 1)

	xof := sha3.NewSHAKE256()
	xof.Write(seed)
	buf := make([]byte, 4*ring.N)
	xof.Read(buf)

	coeffs := make([]int64, ring.N)
	for i := 0; i < ring.N; i++ {
		w := uint64(binary.LittleEndian.Uint32(buf[4*i : 4*i+4]))
		coeffs[i] = int64(w%span) - gamma1
	}
	return ring.NewPoly(coeffs)
}

// DeriveChallenge derives the sparse ternary challenge polynomial c from
// the message hash mu and the high-bits vector w1: tau positions in [0,N)
// each get a +-1 sign, the rest are zero. Positions come one byte at a
// time from SHAKE256(mu || w1) -- a byte maps directly onto [0,N) since
// N=256 -- and signs come from a fixed 8-byte prefix of the same stream,
// giving up to 64 sign bits (every parameter set's tau <= 64).
func DeriveChallenge(mu [64]byte, w1 ring.Vector, tau int) ring.Poly {
	xof := sha3.NewSHAKE256()
	xof.Write(mu[:])
	for _, p := range w1 {
		var buf [4]byte
		for _, c := range p {
			binary.LittleEndian.PutUint32(buf[:], c)
			xof.Write(buf[:])
		}
	}

	var signBytes [8]byte
	xof.Read(signBytes[:])

	var c ring.Poly
	used := make([]bool, ring.N)
	count := 0
	signIdx := 0
	var posByte [1]byte
	for count < tau {
		xof.Read(posByte[:])
		pos := int(posByte[0])
		if used[pos] {
			// Relaxed distinctness per spec.md §4.2: an implementation may
			// accept repeated positions rather than strictly re-drawing.
			// We still prefer a fresh position when one is available by
			// simply continuing the stream; if the stream is exhausted of
			// fresh positions this degrades gracefully to overwriting.
			if unusedRemain(used) {
				continue
			}
		}
		bit := (signBytes[signIdx/8] >> uint(signIdx%8)) & 1
		signIdx++
		if bit == 0 {
			c[pos] = 1
		} else {
			c[pos] = ring.Q - 1
		}
		if !used[pos] {
			used[pos] = true
			count++
		}
	}
	return c
}

func unusedRemain(used []bool) bool {
	for _, u := range used {
		if !u {
			return true
		}
	}
	return false
}

// ChallengeWeight returns the number of nonzero coefficients of c.
func ChallengeWeight(c ring.Poly) int {
	n := 0
	for _, v := range c {
		if v != 0 {
			n++
		}
	}
	return n
}
