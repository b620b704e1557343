package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, mgl64.Vec3{0, -9.81, 0}, cfg.Physics.GravityVec())
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	path := writeFile(t, `
physics:
  iterations: 30
  gravity: [0, 0, -1]
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Physics.Iterations)
	assert.Equal(t, 1.0/60.0, cfg.Physics.Timestep)
	assert.Equal(t, mgl64.Vec3{0, 0, -1}, cfg.Physics.GravityVec())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"negative_timestep", "physics: {timestep: -1}"},
		{"zero_iterations", "physics: {iterations: 0}"},
		{"short_gravity", "physics: {gravity: [1]}"},
		{"zero_damping", "physics: {damping: 0}"},
		{"amplifying_damping", "physics: {damping: 1.5}"},
		{"bad_level", "log: {level: loud}"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Load(writeFile(t, c.body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "physics: [oops"))
	assert.Error(t, err)
}

func TestLogBuild(t *testing.T) {
	for _, dev := range []bool{false, true} {
		logger, err := LogConfig{Level: "warn", Development: dev}.Build()
		require.NoError(t, err)
		assert.False(t, logger.Core().Enabled(-1), "debug disabled")
	}
	_, err := LogConfig{Level: "nope"}.Build()
	assert.Error(t, err)
}
