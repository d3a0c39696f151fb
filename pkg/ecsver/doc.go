// Package ecsver verifies ECDSA signatures over prime-field curves
// y² = x³ + Ax + B (mod p) with arbitrary domain parameters.
//
// Domain parameters, the signer's compressed public key and detached
// signatures are read from small text records:
//
//	common.ecs    bit length (decimal), then p, A, B, q, x, y (hex), one per line
//	public.ecs    parity bit of y (0 or 1), then x (hex)
//	<name>.ecs    r, then s (hex)
//
// # Quick Start
//
//	import "github.com/mahdiidarabi/ecsver/pkg/ecsver"
//
//	domain, err := ecsver.LoadDomainFile("common.ecs")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	key, err := ecsver.LoadPublicKeyFile("public.ecs", domain)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	verifier := ecsver.NewVerifier(domain, key)
//	result, err := verifier.VerifyFile(ctx, "report.txt") // reads report.ecs
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Valid)
//
// # Customization
//
// The digest, the signature encoding and the signature file extension can be
// changed on the Verifier:
//
//	verifier := ecsver.NewVerifier(domain, key).
//	    WithHash(ecsver.SHA256).
//	    WithParser(&ecsver.JSONCodec{}).
//	    WithSignatureExtension(".sig").
//	    WithWorkers(8)
//
//	results, err := verifier.VerifyFiles(ctx, paths)
//
// # Low-level verification
//
// Verify and VerifyDetailed work on values already in memory:
//
//	digest, _ := ecsver.HashFile("report.txt", ecsver.SHA1)
//	ok := ecsver.Verify(domain, key, digest, &ecsver.Signature{R: r, S: s})
package ecsver
