// Package dilithium implements the CRYSTALS-Dilithium signature state
// machine: key generation, the rejection-sampling signing loop, and
// verification via challenge recomputation and hint.
package dilithium

import (
	"errors"

	"github.com/luxfi/dilithium-threshold/ring"
)

// ErrInvalidLevel is returned when a security level outside {2,3,5} is
// requested.
var ErrInvalidLevel = errors.New("dilithium: invalid security level")

// ErrSigningExhausted is returned by Sign when the rejection-sampling loop
// exceeds maxSignAttempts without producing a valid signature.
var ErrSigningExhausted = errors.New("dilithium: signing exhausted retry budget")

const maxSignAttempts = 1000

// Params holds one closed Dilithium parameter set.
type Params struct {
	Level  int
	K, L   int
	Eta    int64
	Tau    int
	Beta   int64
	Gamma1 int64
	Gamma2 int64
	D      int
	// Omega bounds the number of nonzero entries in a valid hint vector,
	// using the NIST Dilithium reference values for each level.
	Omega int
}

var paramTable = map[int]Params{
	2: {Level: 2, K: 4, L: 4, Eta: 2, Tau: 39, Beta: 78, Gamma1: (ring.Q - 1) / 88, Gamma2: (ring.Q - 1) / 32, D: 13, Omega: 80},
	3: {Level: 3, K: 6, L: 5, Eta: 4, Tau: 49, Beta: 196, Gamma1: (ring.Q - 1) / 32, Gamma2: (ring.Q - 1) / 32, D: 13, Omega: 55},
	5: {Level: 5, K: 8, L: 7, Eta: 2, Tau: 60, Beta: 120, Gamma1: (ring.Q - 1) / 32, Gamma2: (ring.Q - 1) / 32, D: 13, Omega: 75},
}

// ParamsFor returns the closed parameter set for the given security level
// (2, 3, or 5).
func ParamsFor(level int) (Params, error) {
	p, ok := paramTable[level]
	if !ok {
		return Params{}, ErrInvalidLevel
	}
	return p, nil
}

// alpha is the decomposition granularity 2*gamma2 used throughout HighBits/
// LowBits/MakeHint/UseHint. spec.md's verify step references "c*t1*2^d";
// since t1 here is produced by gamma2-rounding rather than 2^d-rounding
// (spec.md §4.2 step 4), alpha is used consistently in both directions
// instead of mixing two incompatible scales — see DESIGN.md's Open Question
// (b) resolution.
func (p Params) alpha() int64 { return 2 * p.Gamma2 }

// Alpha exposes the decomposition granularity to other packages (the
// threshold combiner needs it to recompute hints from reconstructed
// material).
func (p Params) Alpha() int64 { return p.alpha() }
