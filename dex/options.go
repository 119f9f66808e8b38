package dex

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/errs"
	"github.com/arloliu/dexkit/internal/options"
	"github.com/arloliu/dexkit/section"
)

// Config holds the settings shared by Parse, Open and New.
type Config struct {
	logger         zerolog.Logger
	verifyChecksum bool
	magic          [section.MagicSize]byte
	engine         endian.EndianEngine
}

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		logger: zerolog.Nop(),
		magic:  section.DefaultMagic,
		engine: endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Option represents a functional option for configuring a container.
// This is a type alias for the generic Option interface specialized for Config.
type Option = options.Option[*Config]

// WithLogger sets the logger used for per-step debug events and warnings.
// The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logger
	})
}

// WithVerifyChecksum makes Parse reject inputs whose stored signature or checksum
// does not match their content.
func WithVerifyChecksum(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.verifyChecksum = enabled
	})
}

// WithMagic sets the format version written by containers created with New,
// e.g. "035" or "039".
func WithMagic(version string) Option {
	return options.New(func(c *Config) error {
		if len(version) != 3 {
			return fmt.Errorf("%w: version %q", errs.ErrInvalidMagic, version)
		}
		var magic [section.MagicSize]byte
		copy(magic[:], section.MagicPrefix+version)
		if err := section.ValidateMagic(magic); err != nil {
			return err
		}
		c.magic = magic

		return nil
	})
}

// WithBigEndian makes containers created with New use big-endian byte order.
// It rarely needs to be used; every mainstream runtime expects little-endian.
func WithBigEndian() Option {
	return options.NoError(func(c *Config) {
		c.engine = endian.GetBigEndianEngine()
	})
}
