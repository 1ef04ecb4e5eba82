package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gonuts/flag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharnoff/panelnet/internal/config"
	"github.com/sharnoff/panelnet/internal/model"
	"github.com/sharnoff/panelnet/internal/store"
)

func TestCVFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cv:\n  folds: 5\n  seed: 3\nreport:\n  out: reports\n"), 0o600))

	var f cvFlags
	fs := flag.NewFlagSet("cv", flag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse([]string{"-c", path, "-epochs", "2", "-out", "elsewhere", "-reuse"}))

	cfg, err := f.load(f.apply)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.CV.Folds)
	assert.Equal(t, int64(3), cfg.CV.Seed)
	assert.Equal(t, 2, cfg.CV.Epochs)
	assert.True(t, cfg.CV.ReuseModel)
	assert.Equal(t, "elsewhere", cfg.Report.Out)
}

func TestCVFlagsZeroSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cv:\n  seed: 3\n  reuse_model: true\n"), 0o600))

	var f cvFlags
	fs := flag.NewFlagSet("cv", flag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse([]string{"-c", path, "-seed", "0", "-reuse=false"}))

	cfg, err := f.load(f.apply)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cfg.CV.Seed)
	assert.False(t, cfg.CV.ReuseModel)
}

func TestCVFlagsUnset(t *testing.T) {
	var f cvFlags
	fs := flag.NewFlagSet("cv", flag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := f.load(f.apply)
	require.NoError(t, err)
	assert.Equal(t, config.Default().CV, cfg.CV)
}

func TestInvalidConfig(t *testing.T) {
	var f cvFlags
	fs := flag.NewFlagSet("cv", flag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse([]string{"-folds", "1"}))

	_, err := f.load(f.apply)
	assert.Error(t, err)
}

func TestBuildOptions(t *testing.T) {
	opts := buildOptions(config.Default())
	assert.Equal(t, []int{101, 101, 3}, opts.Dims)
	assert.Equal(t, model.Standard, opts.Layout)

	net, err := model.Build(opts, newRand(1))
	require.NoError(t, err)
	assert.Equal(t, 101*101*3, net.InputSize())
}

func TestOpenStore(t *testing.T) {
	cfg := config.Default().Data
	s, err := openStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, store.Dir(""), s)

	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	cfg.Store = "s3"
	cfg.S3.Bucket = "panels"
	cfg.S3.Region = "us-east-1"
	cfg.S3.AccessKey, cfg.S3.SecretKey = "key", "secret"
	s, err = openStore(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotEqual(t, store.Dir(""), s)
}

func TestSubcommands(t *testing.T) {
	assert.Equal(t, "cv", cvCmd().Name())
	assert.Equal(t, "score", scoreCmd().Name())
	assert.Equal(t, "summary", summaryCmd().Name())
}
