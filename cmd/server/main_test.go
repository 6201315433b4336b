package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/zhangjie25/VideoBoard-Develop/internal/api/http"
	"github.com/zhangjie25/VideoBoard-Develop/internal/infrastructure/config"
)

func TestApplyFlags(t *testing.T) {
	require.NoError(t, rootCmd.Flags().Parse([]string{"--port", "9100", "--dev", "--id-strategy", "ulid"}))

	cfg := config.Default()
	applyFlags(rootCmd, cfg)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "ulid", cfg.Editor.IDStrategy)

	// Untouched flags keep the environment's values
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Palette.File)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, apihttp.Version+"\n", out.String())
}
