// Package threshold implements (t,n) threshold Dilithium signing: keys are
// split with shamir, every participant contributes a partial signature over
// a shared per-session commitment, and any t of them combine into an
// ordinary, independently verifiable dilithium.Signature.
package threshold

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"io"
	"sort"

	"github.com/luxfi/dilithium-threshold/dilithium"
	"github.com/luxfi/dilithium-threshold/ring"
	"github.com/luxfi/dilithium-threshold/shamir"
)

var (
	// ErrInvalidConfig is returned when (t, n, level) fails validation.
	ErrInvalidConfig = errors.New("threshold: invalid configuration")
	// ErrInsufficientShares is returned when Combine is given fewer than t
	// partial signatures.
	ErrInsufficientShares = errors.New("threshold: insufficient partial signatures")
	// ErrChallengeMismatch is returned when the supplied partials disagree
	// on the challenge or commitment, meaning they were not produced in the
	// same signing session.
	ErrChallengeMismatch = errors.New("threshold: partial signatures disagree on session")
	// ErrBoundExceeded is returned when a combined signature fails its
	// z-norm or hint-weight bound and the session should be retried with
	// fresh randomness.
	ErrBoundExceeded = errors.New("threshold: combined signature exceeds bound")
	// ErrSessionExhausted is returned by SignSession when no attempt
	// produced a combinable signature within the retry budget.
	ErrSessionExhausted = errors.New("threshold: session exhausted retry budget")
)

const maxSessionAttempts = 1000

// ThresholdScheme fixes a (t, n) configuration at a given Dilithium
// security level.
type ThresholdScheme struct {
	t, n, level int
	params      dilithium.Params
	shamirCfg   shamir.Config
	telemetry   *SigningTelemetry
}

// New validates the configuration and returns a ready ThresholdScheme.
func New(t, n, level int) (*ThresholdScheme, error) {
	p, err := dilithium.ParamsFor(level)
	if err != nil {
		return nil, ErrInvalidConfig
	}
	maxCoeff := p.Gamma1 / 32
	if maxCoeff > 2000 {
		maxCoeff = 2000
	}
	cfg, err := shamir.NewConfig(t, n, maxCoeff)
	if err != nil {
		return nil, ErrInvalidConfig
	}
	return &ThresholdScheme{
		t: t, n: n, level: level,
		params:    p,
		shamirCfg: cfg,
		telemetry: newSigningTelemetry(),
	}, nil
}

// Info summarizes this scheme's configuration.
func (ts *ThresholdScheme) Info() struct{ Threshold, Participants, SecurityLevel int } {
	return struct{ Threshold, Participants, SecurityLevel int }{ts.t, ts.n, ts.level}
}

// Telemetry returns the scheme's running record of session retry counts.
func (ts *ThresholdScheme) Telemetry() *SigningTelemetry { return ts.telemetry }

// ThresholdKeyShare is one participant's share of a distributed keypair: a
// Shamir share of s1, a Shamir share of s2, and the (public) group key.
type ThresholdKeyShare struct {
	ParticipantID    int
	S1Share, S2Share shamir.Share
	PK               dilithium.PublicKey
}

// DistributedKeygen runs ordinary Dilithium key generation and splits the
// resulting private key across ts.n participants. If seed is nil, 32 bytes
// are drawn from rnd (crypto/rand.Reader if rnd is nil); a fixed seed
// always yields the same group key and the same set of shares.
func (ts *ThresholdScheme) DistributedKeygen(seed *[32]byte, rnd io.Reader) ([]ThresholdKeyShare, dilithium.PublicKey, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	pk, sk, err := dilithium.KeyGen(seed, rnd, ts.level)
	if err != nil {
		return nil, dilithium.PublicKey{}, err
	}

	var s1Shares, s2Shares []shamir.Share
	if seed != nil {
		s1Shares, err = ts.shamirCfg.SplitDeterministic(sk.S1, append(seed[:], 's', '1'))
		if err != nil {
			return nil, dilithium.PublicKey{}, err
		}
		s2Shares, err = ts.shamirCfg.SplitDeterministic(sk.S2, append(seed[:], 's', '2'))
		if err != nil {
			return nil, dilithium.PublicKey{}, err
		}
	} else {
		s1Shares, err = ts.shamirCfg.Split(sk.S1, rnd)
		if err != nil {
			return nil, dilithium.PublicKey{}, err
		}
		s2Shares, err = ts.shamirCfg.Split(sk.S2, rnd)
		if err != nil {
			return nil, dilithium.PublicKey{}, err
		}
	}

	shares := make([]ThresholdKeyShare, ts.n)
	for i := range shares {
		shares[i] = ThresholdKeyShare{
			ParticipantID: s1Shares[i].ParticipantID,
			S1Share:       s1Shares[i],
			S2Share:       s2Shares[i],
			PK:            pk,
		}
	}
	return shares, pk, nil
}

// PartialSignature is one participant's contribution toward a threshold
// signature over a single session.
type PartialSignature struct {
	ParticipantID int
	ZPartial      ring.Vector
	Commitment    ring.Vector
	Challenge     ring.Poly
}

// PartialSign derives the session's shared commitment y directly from
// sessionRand (the same bytes handed to every one of the t signers for this
// message), so every honest participant computes an identical commitment w
// = A*y and thus an identical challenge c — no interactive coordination
// round is needed beyond distributing sessionRand.
func (ts *ThresholdScheme) PartialSign(message []byte, share ThresholdKeyShare, sessionRand []byte) (PartialSignature, error) {
	p := ts.params
	y := make(ring.Vector, p.L)
	for i := range y {
		y[i] = dilithium.SampleGamma1(sessionSeed(sessionRand, i), p.Gamma1)
	}

	w, err := share.PK.A.MulVector(y)
	if err != nil {
		return PartialSignature{}, err
	}
	mu := dilithium.MuHash(message)
	w1 := dilithium.HighBits(w, p.Alpha())
	c := dilithium.DeriveChallenge(mu, w1, p.Tau)

	cs1 := share.S1Share.Vector.MulPoly(c)
	zPartial, err := y.Add(cs1)
	if err != nil {
		return PartialSignature{}, err
	}

	return PartialSignature{
		ParticipantID: share.ParticipantID,
		ZPartial:      zPartial,
		Commitment:    w,
		Challenge:     c,
	}, nil
}

func sessionSeed(base []byte, index int) []byte {
	out := make([]byte, len(base)+2)
	copy(out, base)
	binary.LittleEndian.PutUint16(out[len(base):], uint16(index))
	return out
}

// VerifyPartial checks that a partial signature is internally consistent:
// that its claimed challenge is really what DeriveChallenge(message,
// commitment) produces, and that its response stays within the same z-norm
// bound a non-threshold signer enforces on itself.
func (ts *ThresholdScheme) VerifyPartial(message []byte, ps PartialSignature, share ThresholdKeyShare) bool {
	if ps.ParticipantID != share.ParticipantID {
		return false
	}
	p := ts.params
	if ps.ZPartial.InfinityNorm() >= p.Gamma1-p.Beta {
		return false
	}
	mu := dilithium.MuHash(message)
	w1 := dilithium.HighBits(ps.Commitment, p.Alpha())
	expected := dilithium.DeriveChallenge(mu, w1, p.Tau)
	return ps.Challenge.Equal(expected)
}

// Combine reconstructs z from at least t partial signatures (all of which
// must agree on challenge and commitment, or ErrChallengeMismatch is
// returned), recomputes the hint from public material, and returns an
// ordinary dilithium.Signature that verifies exactly like a non-threshold
// one.
func (ts *ThresholdScheme) Combine(partials []PartialSignature, pk dilithium.PublicKey) (dilithium.Signature, error) {
	if len(partials) < ts.t {
		return dilithium.Signature{}, ErrInsufficientShares
	}
	active := append([]PartialSignature(nil), partials...)
	sort.Slice(active, func(i, j int) bool { return active[i].ParticipantID < active[j].ParticipantID })

	c := active[0].Challenge
	w := active[0].Commitment
	for _, ps := range active[1:] {
		if !ps.Challenge.Equal(c) || !ps.Commitment.Equal(w) {
			return dilithium.Signature{}, ErrChallengeMismatch
		}
	}
	active = active[:ts.t]

	zShares := make([]shamir.Share, len(active))
	for i, ps := range active {
		zShares[i] = shamir.Share{ParticipantID: ps.ParticipantID, Vector: ps.ZPartial}
	}
	z, err := ts.shamirCfg.Reconstruct(zShares)
	if err != nil {
		return dilithium.Signature{}, err
	}

	p := ts.params
	alpha := p.Alpha()
	if z.InfinityNorm() >= p.Gamma1-p.Beta {
		return dilithium.Signature{}, ErrBoundExceeded
	}

	az, err := pk.A.MulVector(z)
	if err != nil {
		return dilithium.Signature{}, err
	}
	ct1 := pk.T1.MulScalar(alpha).MulPoly(c)
	wPrime, err := az.Sub(ct1)
	if err != nil {
		return dilithium.Signature{}, err
	}
	diff, err := w.Sub(wPrime)
	if err != nil {
		return dilithium.Signature{}, err
	}
	h := dilithium.MakeHint(diff, wPrime, alpha)
	if dilithium.HintWeight(h) > p.Omega {
		return dilithium.Signature{}, ErrBoundExceeded
	}

	return dilithium.Signature{Z: z, H: h, C: c}, nil
}

// Verify delegates to dilithium.Verify: a combined signature is an
// ordinary, independently verifiable Dilithium signature.
func (ts *ThresholdScheme) Verify(message []byte, sig dilithium.Signature, pk dilithium.PublicKey) bool {
	return dilithium.Verify(message, sig, pk)
}

// SignSession orchestrates one end-to-end threshold signature: it draws a
// fresh session commitment, collects a partial from every supplied share,
// and combines them, retrying the whole session (fresh randomness, same
// shares) on a bound failure exactly as a non-threshold signer would retry
// its own rejection-sampling loop. Each session that succeeds or exhausts
// its retry budget is recorded in ts.Telemetry() with its attempt count; a
// session that ends on any other error is not recorded.
func (ts *ThresholdScheme) SignSession(message []byte, shares []ThresholdKeyShare, rnd io.Reader) (dilithium.Signature, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	if len(shares) < ts.t {
		return dilithium.Signature{}, ErrInsufficientShares
	}
	pk := shares[0].PK

	for attempt := 0; attempt < maxSessionAttempts; attempt++ {
		sessionRand := make([]byte, 32)
		if _, err := io.ReadFull(rnd, sessionRand); err != nil {
			return dilithium.Signature{}, err
		}

		partials := make([]PartialSignature, len(shares))
		for i, share := range shares {
			ps, err := ts.PartialSign(message, share, sessionRand)
			if err != nil {
				return dilithium.Signature{}, err
			}
			partials[i] = ps
		}

		sig, err := ts.Combine(partials, pk)
		if err == nil {
			ts.telemetry.record(attempt + 1)
			return sig, nil
		}
		if err != ErrBoundExceeded {
			return dilithium.Signature{}, err
		}
	}
	ts.telemetry.record(maxSessionAttempts)
	return dilithium.Signature{}, ErrSessionExhausted
}
