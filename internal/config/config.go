// Package config loads the ecsver configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/mahdiidarabi/ecsver/pkg/ecsver"
)

// Config holds the settings of one ecsver run. Zero values are filled from
// Default by Load.
type Config struct {
	DomainFile      string `yaml:"domain_file"`
	Curve           string `yaml:"curve"` // Built-in domain; overrides DomainFile when set
	PublicKeyFile   string `yaml:"public_key_file"`
	SignatureExt    string `yaml:"signature_ext"`
	SignatureFormat string `yaml:"signature_format"`
	Hash            string `yaml:"hash"`
	Jobs            int    `yaml:"jobs"`
	LogLevel        string `yaml:"log_level"`
}

// Default returns the settings for common.ecs and public.ecs in the working
// directory.
func Default() Config {
	return Config{
		DomainFile:      "common.ecs",
		PublicKeyFile:   "public.ecs",
		SignatureExt:    ecsver.DefaultSignatureExtension,
		SignatureFormat: "text",
		Hash:            "sha1",
		Jobs:            1,
		LogLevel:        "warn",
	}
}

// Load reads a YAML configuration from path on top of Default. Unknown keys
// are rejected.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	c, err := Parse(b)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML configuration on top of Default.
func Parse(b []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that every setting names something that exists.
func (c Config) Validate() error {
	if c.Curve == "" && c.DomainFile == "" {
		return errors.New("either domain_file or curve must be set")
	}
	if c.Curve != "" {
		if _, err := ecsver.NamedDomain(c.Curve); err != nil {
			return fmt.Errorf("curve: %w", err)
		}
	}
	if c.PublicKeyFile == "" {
		return errors.New("public_key_file must be set")
	}
	if c.SignatureExt == "" {
		return errors.New("signature_ext must be set")
	}
	if _, err := ecsver.CodecFor(c.SignatureFormat); err != nil {
		return fmt.Errorf("signature_format: %w", err)
	}
	if _, err := ecsver.LookupHash(c.Hash); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be positive, got %d", c.Jobs)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}
