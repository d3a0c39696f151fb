package ecsver

import "math/big"

// Signature is a detached ECDSA signature. Values are taken as read; range
// checks happen during verification.
type Signature struct {
	R *big.Int // r component of the signature
	S *big.Int // s component of the signature
}

// Reason names why a signature was rejected.
type Reason int

const (
	// ReasonNone means the signature verified.
	ReasonNone Reason = iota
	// ReasonOutOfRange means r or s is negative or not below q.
	ReasonOutOfRange
	// ReasonZero means r or s is zero.
	ReasonZero
	// ReasonNoInverse means s has no inverse mod q.
	ReasonNoInverse
	// ReasonInfinity means u1·G + u2·Q is the point at infinity.
	ReasonInfinity
	// ReasonMismatch means x(R) mod q differs from r.
	ReasonMismatch
	// ReasonNoKey means the public key is missing or the point at infinity.
	ReasonNoKey
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonOutOfRange:
		return "out of range"
	case ReasonZero:
		return "zero component"
	case ReasonNoInverse:
		return "s not invertible"
	case ReasonInfinity:
		return "point at infinity"
	case ReasonMismatch:
		return "mismatch"
	case ReasonNoKey:
		return "no public key"
	default:
		return "unknown"
	}
}

// Result is the outcome of a verification.
type Result struct {
	Valid  bool   // Whether the signature verified
	Reason Reason // Why it did not; ReasonNone when Valid
}

func reject(reason Reason) Result {
	return Result{Reason: reason}
}
