package dilithium

import "github.com/luxfi/dilithium-threshold/ring"

// PublicKey is (A, t1) under a fixed security level: the expanded matrix
// and the high-bits rounding of t = A*s1+s2.
type PublicKey struct {
	Level int
	A     ring.Matrix
	T1    ring.Vector
}

// PrivateKey is (s1, s2) under a fixed security level. Every coefficient of
// s1 and s2 lies in the signed range [-eta, eta].
type PrivateKey struct {
	Level  int
	S1, S2 ring.Vector
}

// Signature is (z, h, c): the response vector, the hint vector, and the
// sparse ternary challenge polynomial.
type Signature struct {
	Z ring.Vector
	H ring.Vector
	C ring.Poly
}
