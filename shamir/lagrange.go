package shamir

import "math/big"

// qBig is ring.Q as a *big.Int, kept alongside the int64 form shamir.go uses
// directly: the modular arithmetic here needs math/big's wide intermediates.
var qBig = big.NewInt(8380417)

// modInverse returns a^-1 mod q via math/big's extended Euclidean solver,
// the same algorithm shamir.py's _mod_inverse implements by hand.
func modInverse(a int64, q *big.Int) (*big.Int, error) {
	av := new(big.Int).Mod(big.NewInt(a), q)
	inv := new(big.Int).ModInverse(av, q)
	if inv == nil {
		return nil, ErrNoModularInverse
	}
	return inv, nil
}

// lagrangeCoefficientsAt returns, for each x in xs, the Lagrange basis
// coefficient L_i(at) = prod_{j!=i} (at-x_j)/(x_i-x_j) mod q. Reconstruction
// at at=0 recovers the secret; other points support partial/blinded
// evaluation if ever needed.
func lagrangeCoefficientsAt(xs []int, at int64, q *big.Int) ([]*big.Int, error) {
	target := big.NewInt(at)
	out := make([]*big.Int, len(xs))
	for i, xi := range xs {
		num := big.NewInt(1)
		den := big.NewInt(1)
		xiBig := big.NewInt(int64(xi))
		for j, xj := range xs {
			if i == j {
				continue
			}
			xjBig := big.NewInt(int64(xj))

			t := new(big.Int).Sub(target, xjBig)
			t.Mod(t, q)
			num.Mul(num, t)
			num.Mod(num, q)

			d := new(big.Int).Sub(xiBig, xjBig)
			d.Mod(d, q)
			den.Mul(den, d)
			den.Mod(den, q)
		}
		denInv, err := modInverse(den.Int64(), q)
		if err != nil {
			return nil, err
		}
		c := new(big.Int).Mul(num, denInv)
		c.Mod(c, q)
		out[i] = c
	}
	return out, nil
}

// LagrangeCoefficients returns the coefficients that reconstruct the
// secret (evaluation at x=0) from shares held at xs.
func LagrangeCoefficients(xs []int, q *big.Int) ([]*big.Int, error) {
	return lagrangeCoefficientsAt(xs, 0, q)
}
