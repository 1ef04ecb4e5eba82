package main

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"github.com/pkg/errors"

	"github.com/sharnoff/panelnet/internal/config"
	"github.com/sharnoff/panelnet/internal/cv"
	"github.com/sharnoff/panelnet/internal/dataset"
	"github.com/sharnoff/panelnet/internal/evaluate"
	"github.com/sharnoff/panelnet/internal/model"
	"github.com/sharnoff/panelnet/internal/onnx"
	"github.com/sharnoff/panelnet/internal/report"
	"github.com/sharnoff/panelnet/internal/store"
)

// flags shared by every command
type common struct {
	config  string
	out     string
	verbose bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.config, "c", "", "YAML configuration file (defaults are used if empty)")
	fs.StringVar(&c.out, "out", "", "Parent directory of the report (overrides report.out)")
	fs.BoolVar(&c.verbose, "v", false, "Log at debug level")
}

// load reads and validates the configuration, with the common flags applied
func (c *common) load(override func(*config.Config)) (config.Config, error) {
	setupLogging(c.verbose)

	cfg, err := config.Load(c.config)
	if err != nil {
		return cfg, err
	}

	if c.out != "" {
		cfg.Report.Out = c.out
	}
	if override != nil {
		override(&cfg)
	}

	if err = cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "Invalid configuration\n")
	}
	return cfg, nil
}

type cvFlags struct {
	common
	fs *flag.FlagSet

	folds  int
	seed   int64
	epochs int
	reuse  bool
}

func (f *cvFlags) register(fs *flag.FlagSet) {
	f.fs = fs
	f.common.register(fs)
	fs.IntVar(&f.folds, "folds", 0, "Number of folds (overrides cv.folds)")
	fs.Int64Var(&f.seed, "seed", 0, "Seed of the fold assignment (overrides cv.seed)")
	fs.IntVar(&f.epochs, "epochs", 0, "Epochs per fold (overrides cv.epochs)")
	fs.BoolVar(&f.reuse, "reuse", false, "Continue training one model through every fold (overrides cv.reuse_model)")
}

// apply overrides the configuration with every flag given on the command line
func (f *cvFlags) apply(c *config.Config) {
	set := make(map[string]bool)
	if f.fs != nil {
		f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	}

	if set["folds"] {
		c.CV.Folds = f.folds
	}
	if set["seed"] {
		c.CV.Seed = f.seed
	}
	if set["epochs"] {
		c.CV.Epochs = f.epochs
	}
	if set["reuse"] {
		c.CV.ReuseModel = f.reuse
	}
}

func cvCmd() *commander.Command {
	var flags cvFlags

	cmd := &commander.Command{
		UsageLine: "cv [-c config] [-folds k] [-seed s] [-epochs e] [-out dir] [-reuse]",
		Short:     "cross-validates the classifier and reports its out-of-fold predictions",
		Long: `
cv loads the labelled images, builds a network for each fold of a stratified k-fold split, trains
it on the other folds and predicts the held-out images. The predictions of every fold are
evaluated together and written to a new directory under the report output directory.

	$ panelnet cv -c config.yaml -folds 5
`,
		Flag: *flag.NewFlagSet("cv", flag.ExitOnError),
	}
	flags.register(&cmd.Flag)

	cmd.Run = func(cmd *commander.Command, args []string) error {
		cfg, err := flags.load(flags.apply)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return crossValidate(ctx, cfg)
	}

	return cmd
}

func scoreCmd() *commander.Command {
	var (
		flags   common
		modelF  string
		library string
	)

	cmd := &commander.Command{
		UsageLine: "score [-c config] -model file.onnx [-lib onnxruntime.so] [-out dir]",
		Short:     "scores the labelled images with an exported ONNX model",
		Long: `
score runs every labelled image through an ONNX export of the network, then evaluates and reports
the predictions in the same way as cv. No training happens.

	$ panelnet score -c config.yaml -model panelnet.onnx
`,
		Flag: *flag.NewFlagSet("score", flag.ExitOnError),
	}
	flags.register(&cmd.Flag)
	cmd.Flag.StringVar(&modelF, "model", "", "ONNX model file (overrides onnx.model)")
	cmd.Flag.StringVar(&library, "lib", "", "ONNX Runtime shared library (overrides onnx.library)")

	cmd.Run = func(cmd *commander.Command, args []string) error {
		cfg, err := flags.load(func(c *config.Config) {
			if modelF != "" {
				c.ONNX.Model = modelF
			}
			if library != "" {
				c.ONNX.Library = library
			}
		})
		if err != nil {
			return err
		} else if cfg.ONNX.Model == "" {
			return errors.Errorf("No ONNX model given; set onnx.model or -model")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return score(ctx, cfg)
	}

	return cmd
}

func summaryCmd() *commander.Command {
	var flags common

	cmd := &commander.Command{
		UsageLine: "summary [-c config]",
		Short:     "prints the layers of the network",
		Flag:      *flag.NewFlagSet("summary", flag.ExitOnError),
	}
	flags.register(&cmd.Flag)

	cmd.Run = func(cmd *commander.Command, args []string) error {
		cfg, err := flags.load(nil)
		if err != nil {
			return err
		}

		net, err := model.Build(buildOptions(cfg), newRand(cfg.Model.Seed))
		if err != nil {
			return err
		}

		fmt.Print(model.Summary(net))
		return nil
	}

	return cmd
}

func openStore(ctx context.Context, cfg config.Data) (store.Store, error) {
	if cfg.Store == "s3" {
		client, err := store.Connect(ctx, store.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return store.Bucket(client, cfg.S3.Bucket, ""), nil
	}

	// names in the configuration are paths, either absolute or relative to the working directory
	return store.Dir(""), nil
}

// loadScaled loads the dataset described by the configuration and scales its pixels
func loadScaled(ctx context.Context, cfg config.Config) (*dataset.Dataset, error) {
	s, err := openStore(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}

	l := dataset.Loader{
		Store:     s,
		Manifest:  cfg.Data.Manifest,
		Images:    cfg.Data.Images,
		Extension: cfg.Data.Extension,
		Shape: dataset.Shape{
			Width:    cfg.Data.Width,
			Height:   cfg.Data.Height,
			Channels: cfg.Data.Channels,
		},
	}

	d, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}

	return dataset.Scale(d)
}

func reportOptions(cfg config.Config) report.Options {
	return report.Options{
		Out:       cfg.Report.Out,
		Threshold: cfg.Report.Threshold,
		Examples:  cfg.Report.Examples,
		Thumb:     cfg.Report.Thumb,
	}
}

func crossValidate(ctx context.Context, cfg config.Config) error {
	d, err := loadScaled(ctx, cfg)
	if err != nil {
		return err
	}

	opts := buildOptions(cfg)
	training := model.Training{
		Epochs:       cfg.CV.Epochs,
		BatchSize:    cfg.CV.BatchSize,
		Shuffle:      cfg.CV.Shuffle,
		ClassWeights: cfg.CV.ClassWeights,
	}

	net, err := model.Build(opts, newRand(cfg.Model.Seed))
	if err != nil {
		return err
	}
	log.Info("network:\n" + model.Summary(net))

	res, err := cv.Run(ctx, d, cv.Options{
		Folds:      cfg.CV.Folds,
		Seed:       cfg.CV.Seed,
		ReuseModel: cfg.CV.ReuseModel,
	}, model.Factory(opts, training, model.Seed(cfg.Model.Seed)))
	if err != nil {
		return err
	}

	_, err = report.Write(d, res.Predictions, reportOptions(cfg))
	return err
}

func score(ctx context.Context, cfg config.Config) error {
	d, err := loadScaled(ctx, cfg)
	if err != nil {
		return err
	}

	s, err := onnx.New(onnx.Options{
		Model:   cfg.ONNX.Model,
		Library: cfg.ONNX.Library,
		Input:   cfg.ONNX.Input,
		Output:  cfg.ONNX.Output,
		Dims:    d.Shape.Dims(),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	probs, err := s.Predict(ctx, d.Images)
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("scored %d images, mean probability %.4f", len(probs), evaluate.Mean(probs)))

	_, err = report.Write(d, probs, reportOptions(cfg))
	return err
}
