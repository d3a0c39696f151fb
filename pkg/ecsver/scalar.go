package ecsver

import (
	"math/big"

	"github.com/cronokirby/saferith"
)

// scalarField is arithmetic modulo the group order q.
type scalarField struct {
	q    *saferith.Modulus
	bits int
}

func newScalarField(q *big.Int) *scalarField {
	bits := q.BitLen()
	return &scalarField{
		q:    saferith.ModulusFromNat(new(saferith.Nat).SetBig(q, bits)),
		bits: bits,
	}
}

// reduce returns x mod q. x must be non-negative.
func (f *scalarField) reduce(x *big.Int) *saferith.Nat {
	n := x.BitLen()
	if n < f.bits {
		n = f.bits
	}
	return new(saferith.Nat).Mod(new(saferith.Nat).SetBig(x, n), f.q)
}

func (f *scalarField) mul(x, y *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModMul(x, y, f.q)
}

// inverse returns x⁻¹ mod q, reporting false when x has none.
func (f *scalarField) inverse(x *saferith.Nat) (*saferith.Nat, bool) {
	if x.EqZero() == 1 {
		return nil, false
	}
	w := new(saferith.Nat).ModInverse(x, f.q)
	// q is not known to be prime, so gcd(x, q) may exceed 1
	if f.mul(x, w).Big().Cmp(big.NewInt(1)) != 0 {
		return nil, false
	}
	return w, true
}
