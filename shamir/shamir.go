// Package shamir implements Shamir secret sharing adapted to ring.Vector
// secrets: every polynomial coefficient, across every polynomial in the
// vector, gets its own independent degree-(t-1) sharing polynomial. This
// lets the caller reconstruct (or partially reconstruct, or combine under a
// shared scalar) the secret vector without ever working with anything but
// ordinary modular arithmetic per coefficient.
package shamir

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"io"
	"math/big"
	"sort"

	"github.com/luxfi/dilithium-threshold/ring"
)

var (
	// ErrInvalidConfig is returned when threshold/participant counts fail
	// 2 <= t <= n <= 255.
	ErrInvalidConfig = errors.New("shamir: invalid threshold configuration")
	// ErrInsufficientShares is returned when fewer than t shares are
	// supplied for reconstruction.
	ErrInsufficientShares = errors.New("shamir: insufficient shares")
	// ErrShapeMismatch is returned when shares disagree on vector length.
	ErrShapeMismatch = errors.New("shamir: share shape mismatch")
	// ErrNoModularInverse is returned when two supplied participant ids
	// collide, making the Lagrange denominator zero mod q.
	ErrNoModularInverse = errors.New("shamir: no modular inverse (duplicate participant id?)")
)

// Config fixes a (t, n) threshold configuration and the coefficient range
// used for the random higher-degree terms of each per-coefficient sharing
// polynomial. MaxCoeff should be the caller's min(gamma1/32, 2000): large
// enough for security, small enough that reconstructed partials keep
// Dilithium's z within its rejection-sampling bound.
type Config struct {
	T, N     int
	MaxCoeff int64
}

const minShamirCoeff = 50

// NewConfig validates 2 <= t <= n <= 255 and maxCoeff > minShamirCoeff.
func NewConfig(t, n int, maxCoeff int64) (Config, error) {
	if t < 2 || t > n || n > 255 || maxCoeff <= minShamirCoeff {
		return Config{}, ErrInvalidConfig
	}
	return Config{T: t, N: n, MaxCoeff: maxCoeff}, nil
}

// Share is one participant's portion of a shared ring.Vector secret.
type Share struct {
	ParticipantID int
	Vector        ring.Vector
}

// Equal reports whether two shares carry the same participant id and an
// identical vector.
func (s Share) Equal(o Share) bool {
	return s.ParticipantID == o.ParticipantID && s.Vector.Equal(o.Vector)
}

// Split shares secret across cfg.N participants (ids 1..n) using
// crypto-random higher-degree coefficients, one independent sharing
// polynomial per (poly index, coefficient index) pair.
func (cfg Config) Split(secret ring.Vector, rnd io.Reader) ([]Share, error) {
	return cfg.split(secret, func(polyIdx, coeffIdx, termIdx int) (int64, error) {
		return randomShamirCoeff(rnd, cfg.MaxCoeff)
	})
}

// SplitDeterministic shares secret the same way as Split, but derives every
// higher-degree coefficient from SHA-256(seed || polyIdx || coeffIdx ||
// termIdx), giving byte-for-byte reproducible shares for a fixed seed —
// used by distributed keygen determinism tests.
func (cfg Config) SplitDeterministic(secret ring.Vector, seed []byte) ([]Share, error) {
	return cfg.split(secret, func(polyIdx, coeffIdx, termIdx int) (int64, error) {
		return deterministicShamirCoeff(seed, polyIdx, coeffIdx, termIdx, cfg.MaxCoeff), nil
	})
}

func (cfg Config) split(secret ring.Vector, coeffAt func(polyIdx, coeffIdx, termIdx int) (int64, error)) ([]Share, error) {
	shareCoeffs := make([][]ring.Poly, cfg.N)
	for p := range shareCoeffs {
		shareCoeffs[p] = make([]ring.Poly, len(secret))
	}

	for polyIdx, poly := range secret {
		sharePolys := make([]*ring.Poly, cfg.N)
		for p := range sharePolys {
			sharePolys[p] = &shareCoeffs[p][polyIdx]
		}

		for coeffIdx, secretCoeff := range poly {
			terms := make([]int64, cfg.T)
			terms[0] = int64(secretCoeff)
			for termIdx := 1; termIdx < cfg.T; termIdx++ {
				v, err := coeffAt(polyIdx, coeffIdx, termIdx)
				if err != nil {
					return nil, err
				}
				terms[termIdx] = v
			}
			for pid := 1; pid <= cfg.N; pid++ {
				val := evalHorner(terms, int64(pid))
				sharePolys[pid-1][coeffIdx] = uint32(val)
			}
		}
	}

	shares := make([]Share, cfg.N)
	for p := 0; p < cfg.N; p++ {
		shares[p] = Share{ParticipantID: p + 1, Vector: ring.NewVector(shareCoeffs[p])}
	}
	return shares, nil
}

// evalHorner evaluates terms[0] + terms[1]*x + ... mod Q at x via Horner's
// method, matching shamir.py's _evaluate_polynomial.
func evalHorner(terms []int64, x int64) int64 {
	var result int64
	for i := len(terms) - 1; i >= 0; i-- {
		result = (result*x + terms[i]) % ring.Q
	}
	if result < 0 {
		result += ring.Q
	}
	return result
}

// randomShamirCoeff draws a coefficient uniform in [minShamirCoeff,
// maxCoeff], randomly negated and folded into [0, Q), matching shamir.py's
// secure range.
func randomShamirCoeff(rnd io.Reader, maxCoeff int64) (int64, error) {
	span := uint32(maxCoeff-minShamirCoeff) + 1
	var buf [4]byte
	if _, err := io.ReadFull(rnd, buf[:]); err != nil {
		return 0, err
	}
	raw := binary.BigEndian.Uint32(buf[:])
	coeff := int64(minShamirCoeff) + int64(raw%span)
	if raw>>31&1 == 1 {
		coeff = -coeff
	}
	if coeff < 0 {
		coeff += ring.Q
	}
	return coeff, nil
}

// deterministicShamirCoeff mirrors randomShamirCoeff but draws its entropy
// from SHA-256(seed || polyIdx || coeffIdx || termIdx) instead of an
// io.Reader, exactly as shamir.py's deterministic seed path does.
func deterministicShamirCoeff(seed []byte, polyIdx, coeffIdx, termIdx int, maxCoeff int64) int64 {
	var idx [12]byte
	binary.BigEndian.PutUint32(idx[0:4], uint32(polyIdx))
	binary.BigEndian.PutUint32(idx[4:8], uint32(coeffIdx))
	binary.BigEndian.PutUint32(idx[8:12], uint32(termIdx))

	h := sha256.New()
	h.Write(seed)
	h.Write(idx[:])
	digest := h.Sum(nil)

	raw := binary.BigEndian.Uint32(digest[:4])
	span := uint32(maxCoeff-minShamirCoeff) + 1
	coeff := int64(minShamirCoeff) + int64(raw%span)
	if raw>>31&1 == 1 {
		coeff = -coeff
	}
	if coeff < 0 {
		coeff += ring.Q
	}
	return coeff
}

// Reconstruct recovers the full secret vector from at least cfg.T shares
// via coefficient-wise Lagrange interpolation at x=0.
func (cfg Config) Reconstruct(shares []Share) (ring.Vector, error) {
	return cfg.PartialReconstruct(shares, nil)
}

// PartialReconstruct reconstructs only the polynomials at indices (or the
// whole vector, if indices is nil) from at least cfg.T shares.
func (cfg Config) PartialReconstruct(shares []Share, indices []int) (ring.Vector, error) {
	if len(shares) < cfg.T {
		return nil, ErrInsufficientShares
	}
	active := append([]Share(nil), shares[:cfg.T]...)
	sort.Slice(active, func(i, j int) bool { return active[i].ParticipantID < active[j].ParticipantID })

	vecLen := len(active[0].Vector)
	for _, s := range active[1:] {
		if len(s.Vector) != vecLen {
			return nil, ErrShapeMismatch
		}
	}
	if indices == nil {
		indices = make([]int, vecLen)
		for i := range indices {
			indices[i] = i
		}
	}

	xs := make([]int, len(active))
	for i, s := range active {
		xs[i] = s.ParticipantID
	}
	lambdas, err := LagrangeCoefficients(xs, qBig)
	if err != nil {
		return nil, err
	}

	out := make([]ring.Poly, len(indices))
	for oi, polyIdx := range indices {
		if polyIdx < 0 || polyIdx >= vecLen {
			return nil, ErrShapeMismatch
		}
		var coeffs [ring.N]int64
		for i, s := range active {
			p := s.Vector[polyIdx]
			for c := 0; c < ring.N; c++ {
				contrib := new(big.Int).Mul(lambdas[i], big.NewInt(int64(p[c])))
				contrib.Mod(contrib, qBig)
				coeffs[c] = (coeffs[c] + contrib.Int64()) % ring.Q
			}
		}
		out[oi] = ring.NewPoly(coeffs[:])
	}
	return ring.NewVector(out), nil
}

// VerifyShares reports whether shares are internally consistent: at least
// two of them, all the same vector length, and unique participant ids in
// [1, cfg.N].
func (cfg Config) VerifyShares(shares []Share) bool {
	if len(shares) < 2 {
		return false
	}
	vecLen := len(shares[0].Vector)
	seen := make(map[int]bool, len(shares))
	for _, s := range shares {
		if len(s.Vector) != vecLen {
			return false
		}
		if s.ParticipantID < 1 || s.ParticipantID > cfg.N {
			return false
		}
		if seen[s.ParticipantID] {
			return false
		}
		seen[s.ParticipantID] = true
	}
	return true
}
