package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mayalias/internal/analysis"
	"github.com/roach88/mayalias/internal/rules"
)

// configDoc is the YAML options file. Absent keys keep their defaults:
// print-program off, print-points-to on, algorithm andersen.
type configDoc struct {
	PrintProgram  *bool  `yaml:"print-program"`
	PrintPointsTo *bool  `yaml:"print-points-to"`
	Algorithm     string `yaml:"algorithm"`
}

// LoadOptions reads an options file, or returns the defaults for an empty
// path. Unknown algorithm names are rejected here rather than deep inside a
// run.
func LoadOptions(path string) (analysis.Options, error) {
	opts := analysis.DefaultOptions()
	if path == "" {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("read options: %w", err)
	}
	var doc configDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return opts, fmt.Errorf("parse options: %w", err)
	}

	if doc.PrintProgram != nil {
		opts.PrintProgram = *doc.PrintProgram
	}
	if doc.PrintPointsTo != nil {
		opts.PrintPointsTo = *doc.PrintPointsTo
	}
	if doc.Algorithm != "" {
		opts.Algorithm = doc.Algorithm
	}

	if !knownAlgorithm(opts.Algorithm) {
		return opts, fmt.Errorf("unknown algorithm %q (known: %v)", opts.Algorithm, rules.Algorithms())
	}
	return opts, nil
}

func knownAlgorithm(name string) bool {
	for _, known := range rules.Algorithms() {
		if known == name {
			return true
		}
	}
	return false
}
