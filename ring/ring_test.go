package ring

import (
	"crypto/rand"
	"testing"
)

func TestPolyInvariants(t *testing.T) {
	p, err := RandomPoly(rand.Reader, Q)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range p {
		if c >= Q {
			t.Errorf("coefficient %d = %d out of range", i, c)
		}
	}
}

func TestPolyAddNegZero(t *testing.T) {
	p, err := RandomPoly(rand.Reader, Q)
	if err != nil {
		t.Fatal(err)
	}
	zero := ZeroPoly()

	if got := p.Add(p.Neg()); !got.Equal(zero) {
		t.Errorf("p + (-p) != zero")
	}
	if got := p.Add(zero); !got.Equal(p) {
		t.Errorf("p + zero != p")
	}
	if got := p.Mul(OnePoly()); !got.Equal(p) {
		t.Errorf("p * one != p")
	}
}

func TestVectorNormInfinity(t *testing.T) {
	v := ZeroVector(4)
	if n := v.InfinityNorm(); n != 0 {
		t.Errorf("norm_infinity(zero_vector) = %d, want 0", n)
	}

	v2, err := RandomVector(rand.Reader, 4, Q)
	if err != nil {
		t.Fatal(err)
	}
	if n := v2.InfinityNorm(); n < 0 {
		t.Errorf("norm_infinity() = %d, want >= 0", n)
	}
}

func TestReductionFoldsLongSequence(t *testing.T) {
	// Construct from a length-2N sequence; verify it matches folding the
	// second half back with the negacyclic sign flip by hand.
	coeffs := make([]int64, 2*N)
	for i := range coeffs {
		coeffs[i] = int64(i + 1)
	}
	got := NewPoly(coeffs)

	want := ZeroPoly()
	for i := 0; i < N; i++ {
		want[i] = addMod(want[i], reduceSigned(coeffs[i]))
	}
	for i := 0; i < N; i++ {
		want[i] = addMod(want[i], reduceSigned(-coeffs[N+i]))
	}
	if !got.Equal(want) {
		t.Errorf("NewPoly() of length-2N sequence did not fold as expected")
	}
}

func TestShapeMismatch(t *testing.T) {
	a := ZeroVector(3)
	b := ZeroVector(4)
	if _, err := a.Add(b); err != ErrShapeMismatch {
		t.Errorf("Add() error = %v, want ErrShapeMismatch", err)
	}
	if _, err := a.Sub(b); err != ErrShapeMismatch {
		t.Errorf("Sub() error = %v, want ErrShapeMismatch", err)
	}
}

func TestMatrixMulVectorShapeMismatch(t *testing.T) {
	m := NewMatrix(2, 3)
	v := ZeroVector(4)
	if _, err := m.MulVector(v); err != ErrShapeMismatch {
		t.Errorf("MulVector() error = %v, want ErrShapeMismatch", err)
	}
}

func TestVectorFingerprintStable(t *testing.T) {
	v, err := RandomVector(rand.Reader, 3, Q)
	if err != nil {
		t.Fatal(err)
	}
	a := v.Fingerprint()
	b := v.Copy().Fingerprint()
	if a != b {
		t.Errorf("Fingerprint() not stable across copies")
	}
}

func TestDegreeAndIsZero(t *testing.T) {
	zero := ZeroPoly()
	if !zero.IsZero() {
		t.Errorf("ZeroPoly().IsZero() = false")
	}
	if d := zero.Degree(); d != -1 {
		t.Errorf("ZeroPoly().Degree() = %d, want -1", d)
	}

	one := OnePoly()
	if d := one.Degree(); d != 0 {
		t.Errorf("OnePoly().Degree() = %d, want 0", d)
	}
}
