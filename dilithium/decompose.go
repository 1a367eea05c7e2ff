package dilithium

import "github.com/luxfi/dilithium-threshold/ring"

// decomposeCoeff splits a coefficient r (in [0,Q)) into (r1, r0) such that
// r == r1*alpha + r0 (mod Q) with r0 in (-alpha/2, alpha/2], following the
// standard Dilithium decomposition.
func decomposeCoeff(r uint32, alpha int64) (r1, r0 int64) {
	rs := int64(r)
	a := alpha
	r0 = rs % a
	if r0 > a/2 {
		r0 -= a
	} else if r0 <= -a/2 {
		r0 += a
	}
	if rs-r0 == ring.Q-1 {
		r1 = 0
		r0 -= 1
	} else {
		r1 = (rs - r0) / a
	}
	return r1, r0
}

func signedWide(c uint32) int64 {
	v := int64(c)
	if v > ring.Q/2 {
		v -= ring.Q
	}
	return v
}

// Decompose splits a vector into its high-bits and low-bits components
// under granularity alpha, coefficient-wise.
func Decompose(v ring.Vector, alpha int64) (hi, lo ring.Vector) {
	hi = make(ring.Vector, len(v))
	lo = make(ring.Vector, len(v))
	for i, p := range v {
		var hp, lp ring.Poly
		for j, c := range p {
			r1, r0 := decomposeCoeff(c, alpha)
			hp[j] = modQ(r1)
			lp[j] = modQ(r0)
		}
		hi[i] = hp
		lo[i] = lp
	}
	return hi, lo
}

// HighBits returns Decompose(v, alpha)'s high-bits component.
func HighBits(v ring.Vector, alpha int64) ring.Vector {
	hi, _ := Decompose(v, alpha)
	return hi
}

// LowBits returns Decompose(v, alpha)'s low-bits component.
func LowBits(v ring.Vector, alpha int64) ring.Vector {
	_, lo := Decompose(v, alpha)
	return lo
}

func modQ(v int64) uint32 {
	v %= ring.Q
	if v < 0 {
		v += ring.Q
	}
	return uint32(v)
}

// MakeHint computes, for each coefficient, whether HighBits(r+z) differs
// from HighBits(r): 1 if so, 0 otherwise. Paired with UseHint(MakeHint(z, r,
// alpha), r, alpha), it recovers HighBits(r+z, alpha) from r and the hint
// alone, without ever learning z.
func MakeHint(z, r ring.Vector, alpha int64) ring.Vector {
	h := make(ring.Vector, len(r))
	for i := range r {
		sum := r[i].Add(z[i])
		var hp ring.Poly
		for j := range hp {
			r1, _ := decomposeCoeff(r[i][j], alpha)
			v1, _ := decomposeCoeff(sum[j], alpha)
			if r1 != v1 {
				hp[j] = 1
			}
		}
		h[i] = hp
	}
	return h
}

// UseHint recovers HighBits(r+z, alpha) given r and the hint h produced by
// MakeHint(z, r, alpha).
func UseHint(h, r ring.Vector, alpha int64) ring.Vector {
	m := (ring.Q - 1) / alpha
	out := make(ring.Vector, len(r))
	for i := range r {
		var op ring.Poly
		for j := range op {
			r1, r0 := decomposeCoeff(r[i][j], alpha)
			if h[i][j] == 0 {
				op[j] = modQ(r1)
				continue
			}
			if r0 > 0 {
				op[j] = modQ((r1 + 1) % m)
			} else {
				op[j] = modQ((r1 - 1 + m) % m)
			}
		}
		out[i] = op
	}
	return out
}

// HintWeight returns the number of nonzero (1) entries across every
// polynomial coefficient of h.
func HintWeight(h ring.Vector) int {
	n := 0
	for _, p := range h {
		for _, c := range p {
			if c != 0 {
				n++
			}
		}
	}
	return n
}
