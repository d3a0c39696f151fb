package curve

import (
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
)

// Weierstrass is a generic curve for arbitrary domain parameters.
//
// Internally it works in Jacobian coordinates: an affine point (x, y) is
// represented as (X, Y, Z) with x = X/Z² and y = Y/Z³. The point at infinity
// has Z = 0. Only the final conversion back to affine coordinates pays for a
// field inversion.
type Weierstrass struct {
	params Params

	bits int
	p    *saferith.Modulus
	a    *saferith.Nat
	b    *saferith.Nat
	one  *saferith.Nat
	// euler = (p-1)/2, for the quadratic residuosity test
	euler *saferith.Nat
}

// jacobian is a point in Jacobian coordinates.
type jacobian struct {
	x, y, z *saferith.Nat
}

// NewWeierstrass builds a curve from params. P must be an odd prime greater
// than 3; A and B are reduced mod P. The base point is not checked here.
func NewWeierstrass(params Params) (*Weierstrass, error) {
	if params.P == nil || params.A == nil || params.B == nil {
		return nil, fmt.Errorf("%w: missing modulus or coefficient", ErrInvalidParams)
	}
	if params.P.Cmp(big.NewInt(3)) <= 0 || params.P.Bit(0) == 0 {
		return nil, fmt.Errorf("%w: modulus must be an odd prime > 3", ErrInvalidParams)
	}

	c := &Weierstrass{params: params}
	c.params.P = new(big.Int).Set(params.P)
	c.params.A = new(big.Int).Mod(params.A, params.P)
	c.params.B = new(big.Int).Mod(params.B, params.P)
	if params.N != nil {
		c.params.N = new(big.Int).Set(params.N)
	}
	if params.Gx != nil && params.Gy != nil {
		c.params.Gx = new(big.Int).Set(params.Gx)
		c.params.Gy = new(big.Int).Set(params.Gy)
	}
	c.params.BitSize = params.P.BitLen()

	c.bits = c.params.BitSize
	c.p = saferith.ModulusFromNat(natFromBig(c.params.P, c.bits))
	c.a = c.fe(c.params.A)
	c.b = c.fe(c.params.B)
	c.one = c.fe(big.NewInt(1))

	e := new(big.Int).Sub(c.params.P, big.NewInt(1))
	e.Rsh(e, 1)
	c.euler = natFromBig(e, c.bits)
	return c, nil
}

// Params implements Curve.
func (c *Weierstrass) Params() *Params {
	return &c.params
}

// Polynomial returns x³ + Ax + B mod P.
func (c *Weierstrass) Polynomial(x *big.Int) *big.Int {
	return c.polynomial(c.fe(x)).Big()
}

func (c *Weierstrass) polynomial(x *saferith.Nat) *saferith.Nat {
	rhs := c.sqr(x)
	rhs = c.add(rhs, c.a) // x² + a
	rhs = c.mul(rhs, x)   // x³ + ax
	return c.add(rhs, c.b)
}

// Singular reports whether 4A³ + 27B² ≡ 0 (mod P).
func (c *Weierstrass) Singular() bool {
	a3 := c.mul(c.sqr(c.a), c.a)
	b2 := c.sqr(c.b)
	d := c.add(c.mul(c.fe(big.NewInt(4)), a3), c.mul(c.fe(big.NewInt(27)), b2))
	return d.EqZero() == 1
}

// IsOnCurve implements Curve.
func (c *Weierstrass) IsOnCurve(p Point) bool {
	if p.IsInfinity() || !inField(p.X, c.params.P) || !inField(p.Y, c.params.P) {
		return false
	}
	y2 := c.sqr(c.fe(p.Y))
	return y2.Eq(c.polynomial(c.fe(p.X))) == 1
}

// Decompress implements Curve. It fails when x³ + Ax + B is not a quadratic
// residue mod P, or when it is zero and an odd y is requested.
func (c *Weierstrass) Decompress(x *big.Int, odd bool) (Point, error) {
	if !inField(x, c.params.P) {
		return Point{}, fmt.Errorf("%w: x coordinate out of range", ErrNotOnCurve)
	}
	rhs := c.polynomial(c.fe(x))

	if rhs.EqZero() == 1 {
		if odd {
			return Point{}, fmt.Errorf("%w: no odd y for x = %s", ErrNotOnCurve, x.Text(16))
		}
		return NewPoint(x, new(big.Int)), nil
	}

	if new(saferith.Nat).Exp(rhs, c.euler, c.p).Eq(c.one) != 1 {
		return Point{}, fmt.Errorf("%w: x = %s", ErrNotOnCurve, x.Text(16))
	}
	y := new(saferith.Nat).ModSqrt(rhs, c.p)
	if c.sqr(y).Eq(rhs) != 1 {
		return Point{}, fmt.Errorf("%w: x = %s", ErrNotOnCurve, x.Text(16))
	}

	yb := y.Big()
	if (yb.Bit(0) == 1) != odd {
		yb = new(saferith.Nat).ModNeg(y, c.p).Big()
	}
	return Point{X: new(big.Int).Set(x), Y: yb}, nil
}

// Add implements Curve.
func (c *Weierstrass) Add(p, q Point) Point {
	return c.toAffine(c.addJacobian(c.toJacobian(p), c.toJacobian(q)))
}

// Double implements Curve.
func (c *Weierstrass) Double(p Point) Point {
	return c.toAffine(c.doubleJacobian(c.toJacobian(p)))
}

// ScalarMult implements Curve with left-to-right double-and-add.
func (c *Weierstrass) ScalarMult(p Point, k *big.Int) Point {
	base := c.toJacobian(p)
	acc := c.infinity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		acc = c.doubleJacobian(acc)
		if k.Bit(i) == 1 {
			acc = c.addJacobian(acc, base)
		}
	}
	return c.toAffine(acc)
}

// CombinedMult implements Curve using Shamir's trick: both scalars are
// scanned together from the top bit, and each step adds one entry of the
// table {O, p, q, p+q} after a single doubling.
func (c *Weierstrass) CombinedMult(u1 *big.Int, p Point, u2 *big.Int, q Point) Point {
	pj, qj := c.toJacobian(p), c.toJacobian(q)
	table := [4]jacobian{c.infinity(), pj, qj, c.addJacobian(pj, qj)}

	n := u1.BitLen()
	if u2.BitLen() > n {
		n = u2.BitLen()
	}
	acc := c.infinity()
	for i := n - 1; i >= 0; i-- {
		acc = c.doubleJacobian(acc)
		if idx := u1.Bit(i) | u2.Bit(i)<<1; idx != 0 {
			acc = c.addJacobian(acc, table[idx])
		}
	}
	return c.toAffine(acc)
}

func (c *Weierstrass) infinity() jacobian {
	return jacobian{x: c.one, y: c.one, z: c.fe(new(big.Int))}
}

func (c *Weierstrass) toJacobian(p Point) jacobian {
	if p.IsInfinity() {
		return c.infinity()
	}
	return jacobian{x: c.fe(p.X), y: c.fe(p.Y), z: c.one}
}

func (c *Weierstrass) toAffine(j jacobian) Point {
	if j.z.EqZero() == 1 {
		return Infinity()
	}
	zInv := new(saferith.Nat).ModInverse(j.z, c.p)
	zInv2 := c.sqr(zInv)
	x := c.mul(j.x, zInv2)
	y := c.mul(j.y, c.mul(zInv2, zInv))
	return Point{X: x.Big(), Y: y.Big()}
}

// addJacobian follows add-2007-bl from the Explicit-Formulas Database.
func (c *Weierstrass) addJacobian(p, q jacobian) jacobian {
	if p.z.EqZero() == 1 {
		return q
	}
	if q.z.EqZero() == 1 {
		return p
	}

	z1z1 := c.sqr(p.z)
	z2z2 := c.sqr(q.z)
	u1 := c.mul(p.x, z2z2)
	u2 := c.mul(q.x, z1z1)
	s1 := c.mul(p.y, c.mul(q.z, z2z2))
	s2 := c.mul(q.y, c.mul(p.z, z1z1))

	h := c.sub(u2, u1)
	rr := c.sub(s2, s1)
	if h.EqZero() == 1 {
		if rr.EqZero() == 1 {
			return c.doubleJacobian(p)
		}
		return c.infinity()
	}

	i := c.sqr(c.add(h, h))
	j := c.mul(h, i)
	r := c.add(rr, rr)
	v := c.mul(u1, i)

	// X3 = r² - J - 2V
	x3 := c.sub(c.sub(c.sqr(r), j), c.add(v, v))
	// Y3 = r(V - X3) - 2·S1·J
	s1j := c.mul(s1, j)
	y3 := c.sub(c.mul(r, c.sub(v, x3)), c.add(s1j, s1j))
	// Z3 = ((Z1 + Z2)² - Z1Z1 - Z2Z2)·H
	z3 := c.mul(c.sub(c.sub(c.sqr(c.add(p.z, q.z)), z1z1), z2z2), h)

	return jacobian{x: x3, y: y3, z: z3}
}

// doubleJacobian follows dbl-2007-bl, valid for any A.
func (c *Weierstrass) doubleJacobian(p jacobian) jacobian {
	if p.z.EqZero() == 1 || p.y.EqZero() == 1 {
		return c.infinity()
	}

	xx := c.sqr(p.x)
	yy := c.sqr(p.y)
	yyyy := c.sqr(yy)
	zz := c.sqr(p.z)

	// S = 2·((X1 + YY)² - XX - YYYY)
	s := c.sub(c.sub(c.sqr(c.add(p.x, yy)), xx), yyyy)
	s = c.add(s, s)
	// M = 3·XX + A·ZZ²
	m := c.add(c.add(xx, xx), xx)
	m = c.add(m, c.mul(c.a, c.sqr(zz)))
	// X3 = M² - 2S
	x3 := c.sub(c.sqr(m), c.add(s, s))
	// Y3 = M·(S - X3) - 8·YYYY
	y8 := c.add(yyyy, yyyy)
	y8 = c.add(y8, y8)
	y8 = c.add(y8, y8)
	y3 := c.sub(c.mul(m, c.sub(s, x3)), y8)
	// Z3 = (Y1 + Z1)² - YY - ZZ
	z3 := c.sub(c.sub(c.sqr(c.add(p.y, p.z)), yy), zz)

	return jacobian{x: x3, y: y3, z: z3}
}

// fe converts x to a field element, reducing it mod P.
func (c *Weierstrass) fe(x *big.Int) *saferith.Nat {
	return natFromBig(new(big.Int).Mod(x, c.params.P), c.bits)
}

func (c *Weierstrass) add(x, y *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModAdd(x, y, c.p)
}

func (c *Weierstrass) sub(x, y *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModSub(x, y, c.p)
}

func (c *Weierstrass) mul(x, y *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModMul(x, y, c.p)
}

func (c *Weierstrass) sqr(x *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModMul(x, x, c.p)
}

// natFromBig converts a non-negative x to a Nat announced with at least bits
// bits.
func natFromBig(x *big.Int, bits int) *saferith.Nat {
	if x.BitLen() > bits {
		bits = x.BitLen()
	}
	return new(saferith.Nat).SetBig(x, bits)
}
