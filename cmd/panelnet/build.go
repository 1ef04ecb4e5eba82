package main

import (
	"math/rand"

	"github.com/sharnoff/panelnet/internal/config"
	"github.com/sharnoff/panelnet/internal/model"
)

func buildOptions(cfg config.Config) model.Options {
	return model.Options{
		Dims:   []int{cfg.Data.Width, cfg.Data.Height, cfg.Data.Channels},
		Layout: model.Standard,
		Model:  cfg.Model,
	}
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(model.Seed(seed)))
}
