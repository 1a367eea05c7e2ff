package dilithium

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/luxfi/dilithium-threshold/ring"
)

// KeyGen derives a (PublicKey, PrivateKey) pair for the given security
// level. If seed is nil, 32 bytes are drawn from rnd (crypto/rand.Reader if
// rnd is nil). A given seed always yields the same keypair.
func KeyGen(seed *[32]byte, rnd io.Reader, level int) (PublicKey, PrivateKey, error) {
	p, err := ParamsFor(level)
	if err != nil {
		return PublicKey{}, PrivateKey{}, err
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	var s [32]byte
	if seed != nil {
		s = *seed
	} else if _, err := io.ReadFull(rnd, s[:]); err != nil {
		return PublicKey{}, PrivateKey{}, err
	}

	rho, rhoPrime, _ := ExpandSeed(s)
	A := ExpandMatrix(rho, p.K, p.L)

	s1 := make(ring.Vector, p.L)
	for i := range s1 {
		s1[i] = SampleEta(nonceSeed(rhoPrime, uint16(i)), p.Eta)
	}
	s2 := make(ring.Vector, p.K)
	for i := range s2 {
		s2[i] = SampleEta(nonceSeed(rhoPrime, uint16(p.L+i)), p.Eta)
	}

	as1, err := A.MulVector(s1)
	if err != nil {
		return PublicKey{}, PrivateKey{}, err
	}
	t, err := as1.Add(s2)
	if err != nil {
		return PublicKey{}, PrivateKey{}, err
	}
	t1 := HighBits(t, p.alpha())

	pk := PublicKey{Level: level, A: A, T1: t1}
	sk := PrivateKey{Level: level, S1: s1, S2: s2}
	return pk, sk, nil
}

func nonceSeed(base [32]byte, nonce uint16) []byte {
	out := make([]byte, 34)
	copy(out, base[:])
	binary.LittleEndian.PutUint16(out[32:], nonce)
	return out
}

// Sign produces a Signature over message under sk, rejection-sampling a
// fresh commitment y on each attempt until z, the low-bits margin, and the
// hint weight all fall within bounds, or ErrSigningExhausted after
// maxSignAttempts tries.
func Sign(message []byte, sk PrivateKey, pk PublicKey, rnd io.Reader) (Signature, error) {
	p, err := ParamsFor(sk.Level)
	if err != nil {
		return Signature{}, err
	}
	if rnd == nil {
		rnd = rand.Reader
	}
	mu := MuHash(message)
	alpha := p.alpha()
	zBound := p.Gamma1 - p.Beta
	lowBound := p.Gamma2 - p.Beta

	var nonce [32]byte
	for attempt := 0; attempt < maxSignAttempts; attempt++ {
		if _, err := io.ReadFull(rnd, nonce[:]); err != nil {
			return Signature{}, err
		}

		y := make(ring.Vector, p.L)
		for i := range y {
			y[i] = SampleGamma1(nonceSeed(nonce, uint16(i)), p.Gamma1)
		}

		w, err := pk.A.MulVector(y)
		if err != nil {
			return Signature{}, err
		}
		w1 := HighBits(w, alpha)
		c := DeriveChallenge(mu, w1, p.Tau)

		cs1 := sk.S1.MulPoly(c)
		z, err := y.Add(cs1)
		if err != nil {
			return Signature{}, err
		}
		if z.InfinityNorm() >= zBound {
			continue
		}

		cs2 := sk.S2.MulPoly(c)
		wMinusCS2, err := w.Sub(cs2)
		if err != nil {
			return Signature{}, err
		}
		if LowBits(wMinusCS2, alpha).InfinityNorm() >= lowBound {
			continue
		}

		az, err := pk.A.MulVector(z)
		if err != nil {
			return Signature{}, err
		}
		ct1 := pk.T1.MulScalar(alpha).MulPoly(c)
		wPrime, err := az.Sub(ct1)
		if err != nil {
			return Signature{}, err
		}
		diff, err := w.Sub(wPrime)
		if err != nil {
			return Signature{}, err
		}
		h := MakeHint(diff, wPrime, alpha)
		if HintWeight(h) > p.Omega {
			continue
		}

		return Signature{Z: z, H: h, C: c}, nil
	}
	return Signature{}, ErrSigningExhausted
}

// Verify reports whether sig is a valid signature over message under pk.
func Verify(message []byte, sig Signature, pk PublicKey) bool {
	p, err := ParamsFor(pk.Level)
	if err != nil {
		return false
	}
	if ChallengeWeight(sig.C) != p.Tau {
		return false
	}
	if sig.Z.InfinityNorm() >= p.Gamma1-p.Beta {
		return false
	}
	if HintWeight(sig.H) > p.Omega {
		return false
	}

	alpha := p.alpha()
	az, err := pk.A.MulVector(sig.Z)
	if err != nil {
		return false
	}
	ct1 := pk.T1.MulScalar(alpha).MulPoly(sig.C)
	wPrime, err := az.Sub(ct1)
	if err != nil {
		return false
	}
	w1Prime := UseHint(sig.H, wPrime, alpha)

	mu := MuHash(message)
	cPrime := DeriveChallenge(mu, w1Prime, p.Tau)
	return sig.C.Equal(cPrime)
}
