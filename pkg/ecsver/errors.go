package ecsver

import "errors"

// Errors returned by the loaders and the Verifier. They are wrapped with
// context, so use errors.Is to test for them.
var (
	// ErrIO is returned when a record, message or signature file cannot be
	// opened or read.
	ErrIO = errors.New("ecsver: i/o error")

	// ErrParse is returned for malformed numeric text or missing fields.
	ErrParse = errors.New("ecsver: parse error")

	// ErrDomainInvalid is returned when domain parameters do not describe a
	// usable group, e.g. the base point is not on the curve.
	ErrDomainInvalid = errors.New("ecsver: invalid domain parameters")

	// ErrPointNotOnCurve is returned when a public key does not decompress to
	// a point of the curve.
	ErrPointNotOnCurve = errors.New("ecsver: point not on curve")
)
