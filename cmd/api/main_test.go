package main

import (
	"bytes"
	"testing"

	"github.com/josenava/meal-calendar/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"
)

func TestGenhashCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"genhash", "s3cret"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.NoError(t, bcrypt.CompareHashAndPassword(out.Bytes(), []byte("s3cret")))
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(config.AppConfig{Env: "prod", Version: "1.2.3", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = newLogger(config.AppConfig{Env: "dev", LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	_, err = newLogger(config.AppConfig{Env: "dev", LogLevel: "loud"})
	assert.Error(t, err)
}
