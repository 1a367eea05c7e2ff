package threshold

import (
	"crypto/rand"
	"testing"

	"github.com/luxfi/dilithium-threshold/ring"
)

func TestThresholdSignVerifyRoundTrip(t *testing.T) {
	for _, tc := range []struct{ t, n int }{{2, 3}, {3, 5}, {5, 7}, {7, 10}} {
		t.Run("", func(t *testing.T) {
			ts, err := New(tc.t, tc.n, 2)
			if err != nil {
				t.Fatalf("New(%d,%d) error = %v", tc.t, tc.n, err)
			}

			shares, pk, err := ts.DistributedKeygen(nil, rand.Reader)
			if err != nil {
				t.Fatalf("DistributedKeygen() error = %v", err)
			}
			if len(shares) != tc.n {
				t.Fatalf("DistributedKeygen() returned %d shares, want %d", len(shares), tc.n)
			}

			sig, err := ts.SignSession([]byte("threshold message"), shares[:tc.t], rand.Reader)
			if err != nil {
				t.Fatalf("SignSession() error = %v", err)
			}
			if !ts.Verify([]byte("threshold message"), sig, pk) {
				t.Errorf("Verify() = false for a combined threshold signature")
			}
		})
	}
}

func TestThresholdAcrossDifferentCommittees(t *testing.T) {
	ts, err := New(3, 5, 2)
	if err != nil {
		t.Fatal(err)
	}
	shares, pk, err := ts.DistributedKeygen(nil, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("committee independence")
	committees := [][]int{{0, 1, 2}, {1, 2, 3}, {2, 3, 4}, {0, 2, 4}}
	for _, idxs := range committees {
		committee := make([]ThresholdKeyShare, len(idxs))
		for i, idx := range idxs {
			committee[i] = shares[idx]
		}
		sig, err := ts.SignSession(msg, committee, rand.Reader)
		if err != nil {
			t.Fatalf("SignSession(%v) error = %v", idxs, err)
		}
		if !ts.Verify(msg, sig, pk) {
			t.Errorf("Verify() = false for committee %v", idxs)
		}
	}
}

func TestDistributedKeygenDeterministic(t *testing.T) {
	ts, err := New(2, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	var seed [32]byte
	seed[5] = 0x42

	shares1, pk1, err := ts.DistributedKeygen(&seed, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	shares2, pk2, err := ts.DistributedKeygen(&seed, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	if !pk1.T1.Equal(pk2.T1) {
		t.Errorf("DistributedKeygen() not deterministic in group public key for a fixed seed")
	}
	if pk1.T1.Fingerprint() != pk2.T1.Fingerprint() {
		t.Errorf("DistributedKeygen() fingerprints diverge for the group public key under a fixed seed")
	}
	for i := range shares1 {
		if !shares1[i].S1Share.Equal(shares2[i].S1Share) || !shares1[i].S2Share.Equal(shares2[i].S2Share) {
			t.Errorf("DistributedKeygen() not deterministic in share %d for a fixed seed", i)
		}
		if shares1[i].S1Share.Vector.Fingerprint() != shares2[i].S1Share.Vector.Fingerprint() ||
			shares1[i].S2Share.Vector.Fingerprint() != shares2[i].S2Share.Vector.Fingerprint() {
			t.Errorf("DistributedKeygen() fingerprints diverge for share %d under a fixed seed", i)
		}
	}
}

func TestCombineInsufficientShares(t *testing.T) {
	ts, err := New(3, 5, 2)
	if err != nil {
		t.Fatal(err)
	}
	shares, _, err := ts.DistributedKeygen(nil, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	sessionRand := make([]byte, 32)
	if _, err := rand.Read(sessionRand); err != nil {
		t.Fatal(err)
	}
	var partials []PartialSignature
	for _, s := range shares[:2] {
		ps, err := ts.PartialSign([]byte("msg"), s, sessionRand)
		if err != nil {
			t.Fatal(err)
		}
		partials = append(partials, ps)
	}

	if _, err := ts.Combine(partials, shares[0].PK); err != ErrInsufficientShares {
		t.Errorf("Combine() error = %v, want ErrInsufficientShares", err)
	}
}

func TestCombineChallengeMismatch(t *testing.T) {
	ts, err := New(2, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	shares, _, err := ts.DistributedKeygen(nil, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	sessionRandA := make([]byte, 32)
	sessionRandB := make([]byte, 32)
	if _, err := rand.Read(sessionRandA); err != nil {
		t.Fatal(err)
	}
	if _, err := rand.Read(sessionRandB); err != nil {
		t.Fatal(err)
	}

	psA, err := ts.PartialSign([]byte("msg"), shares[0], sessionRandA)
	if err != nil {
		t.Fatal(err)
	}
	psB, err := ts.PartialSign([]byte("msg"), shares[1], sessionRandB)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ts.Combine([]PartialSignature{psA, psB}, shares[0].PK); err != ErrChallengeMismatch {
		t.Errorf("Combine() error = %v, want ErrChallengeMismatch", err)
	}
}

func TestVerifyPartialDetectsTamperedCommitment(t *testing.T) {
	ts, err := New(2, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	shares, _, err := ts.DistributedKeygen(nil, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	sessionRand := make([]byte, 32)
	if _, err := rand.Read(sessionRand); err != nil {
		t.Fatal(err)
	}

	ps, err := ts.PartialSign([]byte("msg"), shares[0], sessionRand)
	if err != nil {
		t.Fatal(err)
	}
	if !ts.VerifyPartial([]byte("msg"), ps, shares[0]) {
		t.Errorf("VerifyPartial() = false for an honest partial")
	}

	ps.Commitment = ps.Commitment.Copy()
	ps.Commitment[0] = ps.Commitment[0].Add(ps.Commitment[0])
	if ts.VerifyPartial([]byte("msg"), ps, shares[0]) {
		t.Errorf("VerifyPartial() = true after tampering with the commitment")
	}
}

func TestVerifyPartialDetectsOversizedResponse(t *testing.T) {
	ts, err := New(2, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	shares, _, err := ts.DistributedKeygen(nil, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	sessionRand := make([]byte, 32)
	if _, err := rand.Read(sessionRand); err != nil {
		t.Fatal(err)
	}

	ps, err := ts.PartialSign([]byte("msg"), shares[0], sessionRand)
	if err != nil {
		t.Fatal(err)
	}

	ps.ZPartial = ps.ZPartial.Copy()
	ps.ZPartial[0] = ring.NewPoly([]int64{ts.params.Gamma1})
	if ts.VerifyPartial([]byte("msg"), ps, shares[0]) {
		t.Errorf("VerifyPartial() = true for a z-partial outside the gamma1-beta bound")
	}
}

func TestVerifyPartialDetectsParticipantMismatch(t *testing.T) {
	ts, err := New(2, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	shares, _, err := ts.DistributedKeygen(nil, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	sessionRand := make([]byte, 32)
	if _, err := rand.Read(sessionRand); err != nil {
		t.Fatal(err)
	}

	ps, err := ts.PartialSign([]byte("msg"), shares[0], sessionRand)
	if err != nil {
		t.Fatal(err)
	}
	if ts.VerifyPartial([]byte("msg"), ps, shares[1]) {
		t.Errorf("VerifyPartial() = true for a partial checked against the wrong participant's share")
	}
}

func TestTelemetryTracksSessions(t *testing.T) {
	ts, err := New(2, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	shares, _, err := ts.DistributedKeygen(nil, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, err := ts.SignSession([]byte("telemetry"), shares[:2], rand.Reader); err != nil {
			t.Fatalf("SignSession() error = %v", err)
		}
	}

	if got := ts.Telemetry().Sessions(); got != 3 {
		t.Errorf("Telemetry().Sessions() = %d, want 3", got)
	}
	if mean, err := ts.Telemetry().MeanAttempts(); err != nil || mean <= 0 {
		t.Errorf("Telemetry().MeanAttempts() = (%v, %v), want a positive mean", mean, err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cases := []struct{ t, n, level int }{{1, 3, 2}, {4, 3, 2}, {2, 3, 4}}
	for _, tc := range cases {
		if _, err := New(tc.t, tc.n, tc.level); err != ErrInvalidConfig {
			t.Errorf("New(%d,%d,%d) error = %v, want ErrInvalidConfig", tc.t, tc.n, tc.level, err)
		}
	}
}
