package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 3, c.CV.Folds)
	assert.Equal(t, int64(1), c.CV.Seed)
	assert.Equal(t, 10, c.CV.Epochs)
	assert.Equal(t, 32, c.CV.BatchSize)
	assert.InDelta(t, 505.0/1500, c.CV.ClassWeights[0], 1e-12)
	assert.InDelta(t, 995.0/1500, c.CV.ClassWeights[1], 1e-12)
	assert.False(t, c.CV.ReuseModel)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := write(t, `
data:
  store: s3
  s3:
    bucket: panels
    region: us-east-1
cv:
  folds: 5
  reuse_model: true
model:
  schedule:
    - iter: 100
      learning_rate: 0.0001
`)

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "s3", c.Data.Store)
	assert.Equal(t, "panels", c.Data.S3.Bucket)
	assert.Equal(t, 5, c.CV.Folds)
	assert.True(t, c.CV.ReuseModel)
	assert.Equal(t, []Step{{Iter: 100, LearningRate: 0.0001}}, c.Model.Schedule)

	// untouched values keep their defaults
	assert.Equal(t, 101, c.Data.Height)
	assert.Equal(t, "tif", c.Data.Extension)
	assert.Equal(t, 10, c.CV.Epochs)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(write(t, "cv:\n  fold: 5\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"one fold":          func(c *Config) { c.CV.Folds = 1 },
		"no epochs":         func(c *Config) { c.CV.Epochs = 0 },
		"zero batch":        func(c *Config) { c.CV.BatchSize = 0 },
		"negative weight":   func(c *Config) { c.CV.ClassWeights[1] = -1 },
		"threshold of one":  func(c *Config) { c.Report.Threshold = 1 },
		"unknown store":     func(c *Config) { c.Data.Store = "gcs" },
		"s3 without bucket": func(c *Config) { c.Data.Store = "s3" },
		"two channels":      func(c *Config) { c.Data.Channels = 2 },
		"bad schedule":      func(c *Config) { c.Model.Schedule = []Step{{Iter: -1, LearningRate: 1}} },
		"learning rate":     func(c *Config) { c.Model.LearningRate = 0 },
	}

	for name, change := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			change(&c)
			assert.Error(t, c.Validate())
		})
	}
}
