// Command ecsver verifies detached ECDSA signatures of files.
//
// Usage:
//
//	ecsver [flags] [signed-file ...]
//	ecsver convert --from text --to json IN OUT
//
// With no files it prompts for one on standard input. The exit status is 0
// when every signature verified, 1 when some signature did not, 2 when a
// record or file could not be read or parsed, and 3 on usage or
// configuration errors.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mahdiidarabi/ecsver/internal/config"
	"github.com/mahdiidarabi/ecsver/internal/logging"
	"github.com/mahdiidarabi/ecsver/pkg/ecsver"
)

const (
	exitVerified    = 0
	exitNotVerified = 1
	exitFailure     = 2
	exitUsage       = 3
)

const (
	msgVerified    = "Signature is verified"
	msgNotVerified = "Signature is NOT verified"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitError ends the command with a specific status. A nil err means the
// outcome was already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fail(code int, err error) error {
	return &exitError{code: code, err: err}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitVerified
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", ee.err)
		}
		return ee.code
	}
	// flag parsing and argument validation errors from cobra
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitUsage
}

type rootOptions struct {
	configPath string
	cfg        config.Config
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "ecsver [flags] [signed-file ...]",
		Short: "Verify ECDSA signatures of files",
		Long: `Verify the detached ECDSA signature of each signed file.

Domain parameters are read from common.ecs and the signer's compressed public
key from public.ecs unless configured otherwise. The signature of a file is
read from the file with the same name up to its first '.', plus ".ecs".`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, args, stdin, stdout, stderr)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	def := opts.cfg
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	f.StringVar(&opts.cfg.DomainFile, "domain", def.DomainFile, "domain parameter record")
	f.StringVar(&opts.cfg.Curve, "curve", "", "built-in domain instead of a record ("+strings.Join(ecsver.DomainNames(), ", ")+")")
	f.StringVar(&opts.cfg.PublicKeyFile, "public-key", def.PublicKeyFile, "public key record")
	f.StringVar(&opts.cfg.SignatureExt, "ext", def.SignatureExt, "signature file extension")
	f.StringVar(&opts.cfg.SignatureFormat, "format", def.SignatureFormat, "signature encoding (text, json, cbor)")
	f.StringVar(&opts.cfg.Hash, "hash", def.Hash, "message digest ("+strings.Join(ecsver.HashNames(), ", ")+")")
	f.IntVar(&opts.cfg.Jobs, "jobs", def.Jobs, "files verified in parallel")
	f.StringVar(&opts.cfg.LogLevel, "log-level", def.LogLevel, "log level (debug, info, warn, error)")

	cmd.AddCommand(newConvertCmd(stdout))
	return cmd
}

// resolveConfig layers the configuration file, if any, under the flags that
// were set explicitly.
func resolveConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return config.Config{}, err
		}
	}

	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("domain", func() {
		cfg.DomainFile = opts.cfg.DomainFile
		cfg.Curve = ""
	})
	set("curve", func() { cfg.Curve = opts.cfg.Curve })
	set("public-key", func() { cfg.PublicKeyFile = opts.cfg.PublicKeyFile })
	set("ext", func() { cfg.SignatureExt = opts.cfg.SignatureExt })
	set("format", func() { cfg.SignatureFormat = opts.cfg.SignatureFormat })
	set("hash", func() { cfg.Hash = opts.cfg.Hash })
	set("jobs", func() { cfg.Jobs = opts.cfg.Jobs })
	set("log-level", func() { cfg.LogLevel = opts.cfg.LogLevel })

	return cfg, cfg.Validate()
}

func runVerify(cmd *cobra.Command, opts *rootOptions, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return fail(exitUsage, err)
	}

	log, err := logging.New(stderr, cfg.LogLevel)
	if err != nil {
		return fail(exitUsage, err)
	}
	defer func() { _ = log.Sync() }()

	domain, err := loadDomain(cfg)
	if err != nil {
		return fail(exitFailure, err)
	}
	log.Info("loaded domain parameters",
		zap.Int("bits", domain.Bits),
		zap.String("q", domain.Q.Text(16)),
		zap.String("backend", fmt.Sprintf("%T", domain.Curve)),
	)

	key, err := ecsver.LoadPublicKeyFile(cfg.PublicKeyFile, domain)
	if err != nil {
		return fail(exitFailure, err)
	}

	// validated above
	hash, _ := ecsver.LookupHash(cfg.Hash)
	codec, _ := ecsver.CodecFor(cfg.SignatureFormat)

	verifier := ecsver.NewVerifier(domain, key).
		WithHash(hash).
		WithParser(codec).
		WithSignatureExtension(cfg.SignatureExt).
		WithWorkers(cfg.Jobs).
		WithLogger(log)

	files := args
	if len(files) == 0 {
		name, err := promptFile(stdin, stdout)
		if err != nil {
			return fail(exitUsage, err)
		}
		files = []string{name}
	}

	ctx := cmd.Context()
	if len(files) == 1 {
		res, err := verifier.VerifyFile(ctx, files[0])
		if err != nil {
			return fail(exitFailure, err)
		}
		fmt.Fprintln(stdout, statusLine(res))
		if !res.Valid {
			return fail(exitNotVerified, nil)
		}
		return nil
	}

	results, err := verifier.VerifyFiles(ctx, files)
	if err != nil {
		return fail(exitFailure, err)
	}
	code := exitVerified
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(stderr, "%s: %v\n", r.Path, r.Err)
			code = exitFailure
		case r.Valid:
			fmt.Fprintf(stdout, "%s: %s\n", r.Path, msgVerified)
		default:
			fmt.Fprintf(stdout, "%s: %s\n", r.Path, msgNotVerified)
			if code == exitVerified {
				code = exitNotVerified
			}
		}
	}
	if code != exitVerified {
		return fail(code, nil)
	}
	return nil
}

func loadDomain(cfg config.Config) (*ecsver.DomainParameters, error) {
	if cfg.Curve != "" {
		return ecsver.NamedDomain(cfg.Curve)
	}
	return ecsver.LoadDomainFile(cfg.DomainFile)
}

// promptFile asks for the signed file on stdout and reads one line.
func promptFile(stdin io.Reader, stdout io.Writer) (string, error) {
	fmt.Fprint(stdout, "signed file = ")
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	name := strings.TrimRight(line, "\r\n")
	if name == "" {
		return "", errors.New("no signed file given")
	}
	return name, nil
}

func statusLine(res ecsver.Result) string {
	if res.Valid {
		return msgVerified
	}
	return msgNotVerified
}

func newConvertCmd(stdout io.Writer) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert a signature record between encodings",
		Long: `Convert a signature record between the text, json and cbor encodings.
OUT may be "-" for standard output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := ecsver.CodecFor(from)
			if err != nil {
				return fail(exitUsage, err)
			}
			dst, err := ecsver.CodecFor(to)
			if err != nil {
				return fail(exitUsage, err)
			}

			sig, err := ecsver.ParseSignatureFile(args[0], src)
			if err != nil {
				return fail(exitFailure, err)
			}
			if err := writeSignature(args[1], dst, sig, stdout); err != nil {
				return fail(exitFailure, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "text", "input encoding")
	cmd.Flags().StringVar(&to, "to", "json", "output encoding")
	return cmd
}

func writeSignature(path string, w ecsver.SignatureWriter, sig *ecsver.Signature, stdout io.Writer) error {
	if path == "-" {
		return w.WriteSignature(stdout, sig)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ecsver.ErrIO, err)
	}
	if err := w.WriteSignature(f, sig); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
