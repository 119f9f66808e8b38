package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type writerConfig struct {
	level   int
	verify  bool
	applied []string
}

func withLevel(level int) Option[*writerConfig] {
	return New(func(c *writerConfig) error {
		if level < 0 {
			return errors.New("negative level")
		}
		c.level = level
		c.applied = append(c.applied, "level")

		return nil
	})
}

func withVerify(v bool) Option[*writerConfig] {
	return NoError(func(c *writerConfig) {
		c.verify = v
		c.applied = append(c.applied, "verify")
	})
}

func TestApply(t *testing.T) {
	cfg := &writerConfig{}
	err := Apply(cfg, withLevel(3), nil, withVerify(true))
	require.NoError(t, err)
	require.Equal(t, 3, cfg.level)
	require.True(t, cfg.verify)
	require.Equal(t, []string{"level", "verify"}, cfg.applied)
}

func TestApplyStopsAtError(t *testing.T) {
	cfg := &writerConfig{}
	err := Apply(cfg, withVerify(true), withLevel(-1), withLevel(5))
	require.EqualError(t, err, "negative level")
	require.Equal(t, []string{"verify"}, cfg.applied)
	require.Equal(t, 0, cfg.level)
}

func TestApplyEmpty(t *testing.T) {
	cfg := &writerConfig{level: 7}
	require.NoError(t, Apply(cfg))
	require.Equal(t, 7, cfg.level)
}
