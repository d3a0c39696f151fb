package ecsver

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSignatureExtension is appended to a message's stripped base name to
// find its signature file.
const DefaultSignatureExtension = ".ecs"

// Verifier checks files against their detached signatures under one domain
// and public key. Configure it with the With methods before first use; after
// that it is safe for concurrent use.
type Verifier struct {
	domain  *DomainParameters
	key     *PublicKey
	hash    HashFunc
	parser  SignatureParser
	ext     string
	workers int
	logger  *zap.Logger
}

// NewVerifier creates a verifier with default settings: SHA-1 digests,
// text signature records, the .ecs extension and one worker per CPU.
func NewVerifier(domain *DomainParameters, key *PublicKey) *Verifier {
	return &Verifier{
		domain: domain,
		key:    key,
		hash:   SHA1,
		parser: TextCodec{},
		ext:    DefaultSignatureExtension,
		logger: zap.NewNop(),
	}
}

// WithHash sets the message digest.
func (v *Verifier) WithHash(h HashFunc) *Verifier {
	v.hash = h
	return v
}

// WithParser sets the signature decoder.
func (v *Verifier) WithParser(p SignatureParser) *Verifier {
	v.parser = p
	return v
}

// WithSignatureExtension sets the extension of signature files.
func (v *Verifier) WithSignatureExtension(ext string) *Verifier {
	v.ext = ext
	return v
}

// WithWorkers bounds the number of files VerifyFiles checks at once
// (0 = one per CPU).
func (v *Verifier) WithWorkers(n int) *Verifier {
	v.workers = n
	return v
}

// WithLogger sets the logger. Nil restores the no-op logger.
func (v *Verifier) WithLogger(l *zap.Logger) *Verifier {
	if l == nil {
		l = zap.NewNop()
	}
	v.logger = l
	return v
}

// SignaturePath derives the signature file of messagePath: everything in the
// base name from its first '.' onward is dropped and ext is appended.
// The directory is kept as given.
func SignaturePath(messagePath, ext string) string {
	dir, base := filepath.Split(messagePath)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	return dir + base + ext
}

// FileResult is the outcome of checking one file in a batch.
type FileResult struct {
	Path          string // Message file
	SignaturePath string // Signature file derived from Path
	Result               // Verification outcome, meaningful when Err is nil
	Err           error  // I/O or parse failure for this file
}

// VerifyFile hashes the file at messagePath, reads its signature and
// verifies it. Unreadable files yield ErrIO, malformed signatures ErrParse.
// An invalid signature is not an error.
func (v *Verifier) VerifyFile(ctx context.Context, messagePath string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	log := v.logger.With(zap.String("file", messagePath))

	digest, err := HashFile(messagePath, v.hash)
	if err != nil {
		return Result{}, fmt.Errorf("unable to open file %s: %w", messagePath, err)
	}
	log.Debug("hashed message", zap.String("digest", digest.Text(16)))

	sigPath := SignaturePath(messagePath, v.ext)
	sig, err := ParseSignatureFile(sigPath, v.parser)
	if err != nil {
		return Result{}, fmt.Errorf("signature file %s: %w", sigPath, err)
	}

	res := VerifyDetailed(v.domain, v.key, digest, sig)
	if res.Valid {
		log.Debug("signature verified", zap.String("signature", sigPath))
	} else {
		log.Debug("signature rejected",
			zap.String("signature", sigPath),
			zap.Stringer("reason", res.Reason),
		)
	}
	return res, nil
}

// VerifyFiles checks every path concurrently against the shared domain and
// key. Results come back in input order; a failure on one file is recorded
// in its FileResult and does not stop the others. The returned error is
// non-nil only if ctx is done.
func (v *Verifier) VerifyFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	workers := v.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	v.logger.Debug("verifying files", zap.Int("files", len(paths)), zap.Int("workers", workers))

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := v.VerifyFile(gctx, path)
			results[i] = FileResult{
				Path:          path,
				SignaturePath: SignaturePath(path, v.ext),
				Result:        res,
				Err:           err,
			}
			if err != nil {
				v.logger.Warn("verification failed", zap.String("file", path), zap.Error(err))
			}
			return nil
		})
	}

	_ = g.Wait()
	return results, ctx.Err()
}
