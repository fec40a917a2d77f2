package config

import (
	"os"

	"github.com/go-yaml/yaml"
)

const (
	OverloadThreshold = 0.8
	OverloadPenalty   = 0.3
	DirectionBonus    = 2.0
	EmptyThreshold    = 0.1
	IdleCycle         = 100
	IdlePhaseStride   = 25
)

// Tuning mirrors the dispatch constants so a deployment can override them from
// a YAML file without rebuilding.
type Tuning struct {
	OverloadThreshold float64 `yaml:"OverloadThreshold"`
	OverloadPenalty   float64 `yaml:"OverloadPenalty"`
	DirectionBonus    float64 `yaml:"DirectionBonus"`
	EmptyThreshold    float64 `yaml:"EmptyThreshold"`
	IdleCycle         int     `yaml:"IdleCycle"`
	IdlePhaseStride   int     `yaml:"IdlePhaseStride"`
}

func Defaults() Tuning {
	return Tuning{
		OverloadThreshold: OverloadThreshold,
		OverloadPenalty:   OverloadPenalty,
		DirectionBonus:    DirectionBonus,
		EmptyThreshold:    EmptyThreshold,
		IdleCycle:         IdleCycle,
		IdlePhaseStride:   IdlePhaseStride,
	}
}

// Load reads a tuning override file. An empty path returns the defaults.
func Load(path string) (Tuning, error) {
	tuning := Defaults()
	if path == "" {
		return tuning, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return tuning, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&tuning); err != nil {
		return tuning, err
	}
	return tuning, nil
}
