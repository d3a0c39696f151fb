package curve

import (
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Secp256k1 is the secp256k1 curve backed by the decred implementation.
type Secp256k1 struct {
	params Params
}

// NewSecp256k1 returns the secp256k1 curve.
func NewSecp256k1() *Secp256k1 {
	cp := secp256k1.S256().Params()
	return &Secp256k1{params: Params{
		P:       new(big.Int).Set(cp.P),
		A:       new(big.Int),
		B:       new(big.Int).Set(cp.B),
		N:       new(big.Int).Set(cp.N),
		Gx:      new(big.Int).Set(cp.Gx),
		Gy:      new(big.Int).Set(cp.Gy),
		BitSize: cp.BitSize,
		Name:    "secp256k1",
	}}
}

// IsSecp256k1 reports whether params describe secp256k1.
func IsSecp256k1(params *Params) bool {
	return NewSecp256k1().params.Equal(params)
}

// Params implements Curve.
func (c *Secp256k1) Params() *Params {
	return &c.params
}

// IsOnCurve implements Curve.
func (c *Secp256k1) IsOnCurve(p Point) bool {
	if p.IsInfinity() {
		return false
	}
	x, ok := fieldVal(p.X)
	if !ok {
		return false
	}
	y, ok := fieldVal(p.Y)
	if !ok {
		return false
	}
	return secp256k1.NewPublicKey(&x, &y).IsOnCurve()
}

// Decompress implements Curve.
func (c *Secp256k1) Decompress(x *big.Int, odd bool) (Point, error) {
	fx, ok := fieldVal(x)
	if !ok {
		return Point{}, fmt.Errorf("%w: x coordinate out of range", ErrNotOnCurve)
	}
	var fy secp256k1.FieldVal
	if !secp256k1.DecompressY(&fx, odd, &fy) {
		return Point{}, fmt.Errorf("%w: x = %s", ErrNotOnCurve, x.Text(16))
	}
	fy.Normalize()
	return Point{X: new(big.Int).Set(x), Y: fieldBig(&fy)}, nil
}

// Add implements Curve.
func (c *Secp256k1) Add(p, q Point) Point {
	pj, qj := toJacobian(p), toJacobian(q)
	var r secp256k1.JacobianPoint
	secp256k1.AddNonConst(&pj, &qj, &r)
	return fromJacobian(&r)
}

// Double implements Curve.
func (c *Secp256k1) Double(p Point) Point {
	pj := toJacobian(p)
	var r secp256k1.JacobianPoint
	secp256k1.DoubleNonConst(&pj, &r)
	return fromJacobian(&r)
}

// ScalarMult implements Curve. Every point has order N, so k is reduced
// mod N first.
func (c *Secp256k1) ScalarMult(p Point, k *big.Int) Point {
	s := c.scalar(k)
	pj := toJacobian(p)
	var r secp256k1.JacobianPoint
	secp256k1.ScalarMultNonConst(&s, &pj, &r)
	return fromJacobian(&r)
}

// CombinedMult implements Curve. The decred package does not export its
// interleaved multiplication, so the two products are computed separately,
// with the fixed-base table used when p is the generator.
func (c *Secp256k1) CombinedMult(u1 *big.Int, p Point, u2 *big.Int, q Point) Point {
	s1, s2 := c.scalar(u1), c.scalar(u2)

	var r1, r2, sum secp256k1.JacobianPoint
	if p.Equal(c.params.Base()) {
		secp256k1.ScalarBaseMultNonConst(&s1, &r1)
	} else {
		pj := toJacobian(p)
		secp256k1.ScalarMultNonConst(&s1, &pj, &r1)
	}
	qj := toJacobian(q)
	secp256k1.ScalarMultNonConst(&s2, &qj, &r2)
	secp256k1.AddNonConst(&r1, &r2, &sum)
	return fromJacobian(&sum)
}

func (c *Secp256k1) scalar(k *big.Int) secp256k1.ModNScalar {
	var s secp256k1.ModNScalar
	s.SetByteSlice(new(big.Int).Mod(k, c.params.N).Bytes())
	return s
}

// fieldVal converts x to a field value, reporting false if x ∉ [0, P).
func fieldVal(x *big.Int) (secp256k1.FieldVal, bool) {
	var f secp256k1.FieldVal
	if x == nil || x.Sign() < 0 || x.BitLen() > 256 {
		return f, false
	}
	if overflow := f.SetByteSlice(x.Bytes()); overflow {
		return f, false
	}
	return f, true
}

func fieldBig(f *secp256k1.FieldVal) *big.Int {
	b := f.Bytes()
	return new(big.Int).SetBytes(b[:])
}

func toJacobian(p Point) secp256k1.JacobianPoint {
	var j secp256k1.JacobianPoint
	if p.IsInfinity() {
		return j
	}
	x, _ := fieldVal(p.X)
	y, _ := fieldVal(p.Y)
	j.X.Set(&x)
	j.Y.Set(&y)
	j.Z.SetInt(1)
	return j
}

func fromJacobian(j *secp256k1.JacobianPoint) Point {
	j.X.Normalize()
	j.Y.Normalize()
	j.Z.Normalize()
	if (j.X.IsZero() && j.Y.IsZero()) || j.Z.IsZero() {
		return Infinity()
	}
	j.ToAffine()
	j.X.Normalize()
	j.Y.Normalize()
	return Point{X: fieldBig(&j.X), Y: fieldBig(&j.Y)}
}
