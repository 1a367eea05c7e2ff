package ring

import (
	"encoding/binary"
	"io"

	"github.com/zeebo/blake3"
)

// Vector is a finite ordered sequence of polynomials in Rq. Like Poly, it
// is treated as an immutable value object: every operation returns a fresh
// Vector.
type Vector []Poly

// NewVector copies polys into a fresh Vector.
func NewVector(polys []Poly) Vector {
	v := make(Vector, len(polys))
	copy(v, polys)
	return v
}

// ZeroVector returns a vector of length n containing only zero polynomials.
func ZeroVector(n int) Vector {
	return make(Vector, n)
}

// RandomVector draws a vector of length n with every coefficient of every
// polynomial uniform in [0, bound).
func RandomVector(rand io.Reader, n int, bound uint32) (Vector, error) {
	v := make(Vector, n)
	for i := range v {
		p, err := RandomPoly(rand, bound)
		if err != nil {
			return nil, err
		}
		v[i] = p
	}
	return v, nil
}

// Add returns v+o, failing with ErrShapeMismatch if lengths differ.
func (v Vector) Add(o Vector) (Vector, error) {
	if len(v) != len(o) {
		return nil, ErrShapeMismatch
	}
	r := make(Vector, len(v))
	for i := range v {
		r[i] = v[i].Add(o[i])
	}
	return r, nil
}

// Sub returns v-o, failing with ErrShapeMismatch if lengths differ.
func (v Vector) Sub(o Vector) (Vector, error) {
	if len(v) != len(o) {
		return nil, ErrShapeMismatch
	}
	r := make(Vector, len(v))
	for i := range v {
		r[i] = v[i].Sub(o[i])
	}
	return r, nil
}

// MulScalar scales every polynomial in v by the integer s.
func (v Vector) MulScalar(s int64) Vector {
	r := make(Vector, len(v))
	for i := range v {
		r[i] = v[i].MulScalar(s)
	}
	return r
}

// MulPoly multiplies every component of v by the fixed polynomial c,
// component-wise (c*v).
func (v Vector) MulPoly(c Poly) Vector {
	r := make(Vector, len(v))
	for i := range v {
		r[i] = c.Mul(v[i])
	}
	return r
}

// InfinityNorm returns the max over components of each polynomial's
// infinity norm.
func (v Vector) InfinityNorm() int64 {
	var max int64
	for _, p := range v {
		if n := p.InfinityNorm(); n > max {
			max = n
		}
	}
	return max
}

// IsZero reports whether every polynomial in v is zero.
func (v Vector) IsZero() bool {
	for _, p := range v {
		if !p.IsZero() {
			return false
		}
	}
	return true
}

// Equal reports whether v and o have equal length and equal components.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if !v[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Copy returns an independent copy of v.
func (v Vector) Copy() Vector {
	return NewVector(v)
}

// Fingerprint returns a fast 32-byte blake3 digest of v's coefficients, for
// cheap equality checks in tests and diagnostics. It is not part of the
// cryptographic oracle contract — only an internal bookkeeping aid, in the
// same spirit as the teacher's primitives.PRNGKey.
func (v Vector) Fingerprint() [32]byte {
	h := blake3.New()
	var buf [4]byte
	for _, p := range v {
		for _, c := range p {
			binary.LittleEndian.PutUint32(buf[:], c)
			h.Write(buf[:])
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Matrix is a rectangular arrangement of Vector rows, each the same length.
type Matrix []Vector

// NewMatrix builds a rows x cols matrix of zero polynomials.
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = ZeroVector(cols)
	}
	return m
}

// RandomMatrix draws a rows x cols matrix with coefficients uniform in
// [0, bound).
func RandomMatrix(rand io.Reader, rows, cols int, bound uint32) (Matrix, error) {
	m := make(Matrix, rows)
	for i := range m {
		v, err := RandomVector(rand, cols, bound)
		if err != nil {
			return nil, err
		}
		m[i] = v
	}
	return m, nil
}

// MulVector computes A*v, the matrix-vector product over Rq. Each row's
// dot product is the sum of per-column polynomial products.
func (m Matrix) MulVector(v Vector) (Vector, error) {
	out := make(Vector, len(m))
	for i, row := range m {
		if len(row) != len(v) {
			return nil, ErrShapeMismatch
		}
		acc := ZeroPoly()
		for j, a := range row {
			acc = acc.Add(a.Mul(v[j]))
		}
		out[i] = acc
	}
	return out, nil
}
