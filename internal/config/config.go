// Package config holds the settings of a run, loaded from YAML.
package config

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Data   Data   `yaml:"data"`
	Model  Model  `yaml:"model"`
	CV     CV     `yaml:"cv"`
	Report Report `yaml:"report"`
	ONNX   ONNX   `yaml:"onnx"`
}

// Data describes where the manifest and images come from, and their expected shape.
type Data struct {
	// either "dir" or "s3"
	Store string `yaml:"store"`

	// directory (or key prefix) holding <id>.<extension> images
	Images   string `yaml:"images"`
	Manifest string `yaml:"manifest"`

	Extension string `yaml:"extension"`

	Height   int `yaml:"height"`
	Width    int `yaml:"width"`
	Channels int `yaml:"channels"`

	S3 S3 `yaml:"s3"`
}

type S3 struct {
	// "http://127.0.0.1:9000"
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type Model struct {
	LearningRate float64 `yaml:"learning_rate"`

	// learning rates that take effect at a given number of batches
	Schedule []Step `yaml:"schedule"`

	Optimizer   string `yaml:"optimizer"`
	Initializer string `yaml:"initializer"`
	Activation  string `yaml:"activation"`

	// 0 seeds weight initialization from the clock
	Seed int64 `yaml:"seed"`
}

type Step struct {
	Iter         int     `yaml:"iter"`
	LearningRate float64 `yaml:"learning_rate"`
}

type CV struct {
	Folds     int   `yaml:"folds"`
	Seed      int64 `yaml:"seed"`
	Epochs    int   `yaml:"epochs"`
	BatchSize int   `yaml:"batch_size"`

	// weights for class 0 and class 1
	ClassWeights [2]float64 `yaml:"class_weights"`

	// continue training one model across all folds instead of building one per fold
	ReuseModel bool `yaml:"reuse_model"`
	Shuffle    bool `yaml:"shuffle"`
}

type Report struct {
	Out       string  `yaml:"out"`
	Threshold float64 `yaml:"threshold"`

	// the number of images shown for each outcome
	Examples int `yaml:"examples"`
	// the side length of each example, in pixels
	Thumb int `yaml:"thumb"`
}

type ONNX struct {
	Model   string `yaml:"model"`
	Library string `yaml:"library"`
	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
}

// Default returns the configuration used for any value not given in the YAML file.
func Default() Config {
	return Config{
		Data: Data{
			Store:     "dir",
			Images:    "data/training",
			Manifest:  "data/labels_training.csv",
			Extension: "tif",
			Height:    101,
			Width:     101,
			Channels:  3,
		},
		Model: Model{
			LearningRate: 0.001,
			Optimizer:    "adam",
			Initializer:  "glorot-uniform",
			Activation:   "relu",
		},
		CV: CV{
			Folds:        3,
			Seed:         1,
			Epochs:       10,
			BatchSize:    32,
			ClassWeights: [2]float64{505.0 / 1500, 995.0 / 1500},
			Shuffle:      true,
		},
		Report: Report{
			Out:       "out",
			Threshold: 0.5,
			Examples:  7,
			Thumb:     101,
		},
		ONNX: ONNX{
			Input:  "input",
			Output: "output",
		},
	}
}

// Load reads the YAML file at path over Default. Unknown keys are an error. An empty path
// returns Default.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return c, errors.Wrapf(err, "Failed to read config %q\n", path)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err = dec.Decode(&c); err != nil {
		return c, errors.Wrapf(err, "Failed to parse config %q\n", path)
	}

	return c, nil
}

// Validate returns an error describing the first invalid value
func (c Config) Validate() error {
	switch {
	case c.Data.Store != "dir" && c.Data.Store != "s3":
		return errors.Errorf("data.store must be \"dir\" or \"s3\" (got %q)", c.Data.Store)
	case c.Data.Store == "s3" && c.Data.S3.Bucket == "":
		return errors.Errorf("data.s3.bucket is required for the s3 store")
	case c.Data.Manifest == "":
		return errors.Errorf("data.manifest is required")
	case c.Data.Height < 1 || c.Data.Width < 1:
		return errors.Errorf("data.height and data.width must be ≥ 1 (got %dx%d)", c.Data.Height, c.Data.Width)
	case c.Data.Channels != 1 && c.Data.Channels != 3:
		return errors.Errorf("data.channels must be 1 or 3 (got %d)", c.Data.Channels)
	case c.Model.LearningRate <= 0:
		return errors.Errorf("model.learning_rate must be > 0 (got %v)", c.Model.LearningRate)
	case c.CV.Folds < 2:
		return errors.Errorf("cv.folds must be ≥ 2 (got %d)", c.CV.Folds)
	case c.CV.Epochs < 1:
		return errors.Errorf("cv.epochs must be ≥ 1 (got %d)", c.CV.Epochs)
	case c.CV.BatchSize < 1:
		return errors.Errorf("cv.batch_size must be ≥ 1 (got %d)", c.CV.BatchSize)
	case c.CV.ClassWeights[0] <= 0 || c.CV.ClassWeights[1] <= 0:
		return errors.Errorf("cv.class_weights must both be > 0 (got %v)", c.CV.ClassWeights)
	case c.Report.Threshold <= 0 || c.Report.Threshold >= 1:
		return errors.Errorf("report.threshold must be in (0, 1) (got %v)", c.Report.Threshold)
	case c.Report.Examples < 0:
		return errors.Errorf("report.examples must be ≥ 0 (got %d)", c.Report.Examples)
	case c.Report.Thumb < 1:
		return errors.Errorf("report.thumb must be ≥ 1 (got %d)", c.Report.Thumb)
	}

	for i, s := range c.Model.Schedule {
		if s.Iter < 0 || s.LearningRate <= 0 {
			return errors.Errorf("model.schedule[%d] must have iter ≥ 0 and learning_rate > 0", i)
		}
	}

	return nil
}
