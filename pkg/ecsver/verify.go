package ecsver

import "math/big"

// Verify reports whether sig is a valid signature of digest under pub.
func Verify(domain *DomainParameters, pub *PublicKey, digest *big.Int, sig *Signature) bool {
	return VerifyDetailed(domain, pub, digest, sig).Valid
}

// VerifyDetailed verifies sig against digest and pub and reports why a
// rejected signature failed.
//
// The digest is used as a whole integer and reduced mod q; it is not
// truncated to the bit length of q. Given w = s⁻¹ mod q, u1 = digest·w and
// u2 = r·w, the signature is valid iff R = u1·G + u2·Q is not the point at
// infinity and x(R) mod q = r.
//
// Range checks come first, so an out-of-range signature costs no point
// arithmetic.
func VerifyDetailed(domain *DomainParameters, pub *PublicKey, digest *big.Int, sig *Signature) Result {
	if pub == nil || pub.Point.IsInfinity() {
		return reject(ReasonNoKey)
	}
	q := domain.Q
	if sig == nil || !inRange(sig.R, q) || !inRange(sig.S, q) {
		return reject(ReasonOutOfRange)
	}
	if sig.R.Sign() == 0 || sig.S.Sign() == 0 {
		return reject(ReasonZero)
	}

	f := domain.scalars
	w, ok := f.inverse(f.reduce(sig.S))
	if !ok {
		return reject(ReasonNoInverse)
	}

	e := new(big.Int)
	if digest != nil {
		e.Mod(digest, q)
	}
	u1 := f.mul(f.reduce(e), w)
	u2 := f.mul(f.reduce(sig.R), w)

	r := domain.Curve.CombinedMult(u1.Big(), domain.G, u2.Big(), pub.Point)
	if r.IsInfinity() {
		return reject(ReasonInfinity)
	}

	v := f.reduce(r.X).Big()
	if v.Cmp(sig.R) != 0 {
		return reject(ReasonMismatch)
	}
	return Result{Valid: true}
}

// inRange reports whether 0 ≤ x < q.
func inRange(x, q *big.Int) bool {
	return x != nil && x.Sign() >= 0 && x.Cmp(q) < 0
}
