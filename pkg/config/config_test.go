package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PuertoDesdeEnv(t *testing.T) {
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestLoad_PuertoMalformadoCaeAlDefault(t *testing.T) {
	// DB_PORT=abc no debe convertirse en puerto 0.
	t.Setenv("DB_PORT", "abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5432, cfg.DB.Port)
}

func TestLoad_UmbralesPorDefecto(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Expiry.CriticalDays)
	assert.Equal(t, 30, cfg.Expiry.HighDays)
	assert.Equal(t, 90, cfg.Expiry.MediumDays)
	assert.Equal(t, 180, cfg.Expiry.LowDays)
}
