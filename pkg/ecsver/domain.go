package ecsver

import (
	"fmt"
	"math/big"

	"github.com/mahdiidarabi/ecsver/pkg/curve"
)

// DomainParameters describes the curve y² = x³ + Ax + B over GF(P) and a base
// point G of order Q. It is immutable once built and safe to share between
// goroutines.
type DomainParameters struct {
	Bits int      // Declared bit length of P, as read from the record
	P    *big.Int // Prime modulus
	A    *big.Int // Linear coefficient, reduced mod P
	B    *big.Int // Constant coefficient, reduced mod P
	Q    *big.Int // Order of G
	G    curve.Point

	// Curve performs the point arithmetic. It is the decred backend for
	// secp256k1 and the generic backend for everything else.
	Curve curve.Curve

	scalars *scalarField
}

// NewDomain validates the parameters and returns the domain they describe.
//
// P must be odd and greater than 3, Q odd and greater than 2, the curve must
// be non-singular (4A³ + 27B² ≠ 0 mod P), G must be an affine point of the
// curve and Q·G must be the point at infinity. Violations are reported as
// ErrDomainInvalid.
func NewDomain(bits int, p, a, b, q, gx, gy *big.Int) (*DomainParameters, error) {
	if p == nil || a == nil || b == nil || q == nil || gx == nil || gy == nil {
		return nil, fmt.Errorf("%w: missing parameter", ErrDomainInvalid)
	}
	if q.Cmp(big.NewInt(2)) <= 0 || q.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: group order must be odd and greater than 2", ErrDomainInvalid)
	}

	params := curve.Params{P: p, A: a, B: b, N: q, Gx: gx, Gy: gy}
	generic, err := curve.NewWeierstrass(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDomainInvalid, err)
	}
	if generic.Singular() {
		return nil, fmt.Errorf("%w: singular curve", ErrDomainInvalid)
	}

	var c curve.Curve = generic
	if curve.IsSecp256k1(generic.Params()) {
		c = curve.NewSecp256k1()
	}
	cp := c.Params()

	g := curve.NewPoint(gx, gy)
	if !c.IsOnCurve(g) {
		return nil, fmt.Errorf("%w: base point (%s, %s) is not on the curve",
			ErrDomainInvalid, gx.Text(16), gy.Text(16))
	}
	if !c.ScalarMult(g, q).IsInfinity() {
		return nil, fmt.Errorf("%w: base point does not have order %s", ErrDomainInvalid, q.Text(16))
	}

	return &DomainParameters{
		Bits:    bits,
		P:       new(big.Int).Set(cp.P),
		A:       new(big.Int).Set(cp.A),
		B:       new(big.Int).Set(cp.B),
		Q:       new(big.Int).Set(q),
		G:       g,
		Curve:   c,
		scalars: newScalarField(q),
	}, nil
}
