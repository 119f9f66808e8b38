package codestore

import (
	"github.com/rs/zerolog"

	"github.com/arloliu/dexkit/compress"
	"github.com/arloliu/dexkit/endian"
	"github.com/arloliu/dexkit/format"
	"github.com/arloliu/dexkit/internal/options"
)

// Config holds the settings of a Writer.
type Config struct {
	compression format.CompressionType
	engine      endian.EndianEngine
	logger      zerolog.Logger
}

// NewConfig returns the defaults: Zstd payloads, little-endian, no logging.
func NewConfig() *Config {
	return &Config{
		compression: format.CompressionZstd,
		engine:      endian.GetLittleEndianEngine(),
		logger:      zerolog.Nop(),
	}
}

// Option configures a Writer.
type Option = options.Option[*Config]

// WithCompression selects the codec applied to file payloads.
func WithCompression(compression format.CompressionType) Option {
	return options.New(func(c *Config) error {
		if _, err := compress.GetCodec(compression); err != nil {
			return err
		}
		c.compression = compression

		return nil
	})
}

// WithEngine sets the byte order of every integer in the store.
func WithEngine(engine endian.EndianEngine) Option {
	return options.NoError(func(c *Config) {
		c.engine = engine
	})
}

// WithLogger sets the logger used for per-entry debug events.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.logger = logger
	})
}
