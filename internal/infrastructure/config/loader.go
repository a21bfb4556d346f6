package config

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/covrun/internal/application"
)

type Loader struct{}

type fileConfig struct {
	Version   int           `yaml:"version"`
	Features  []string      `yaml:"features"`
	Exclude   []string      `yaml:"exclude"`
	Artifacts fileArtifacts `yaml:"artifacts"`
	Report    fileReport    `yaml:"report"`
	History   string        `yaml:"history"`
}

type fileArtifacts struct {
	Extensions []string `yaml:"extensions"`
}

type fileReport struct {
	Output string `yaml:"output"`
}

func (l Loader) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load reads a config file. Fields the file leaves out keep their
// built-in defaults.
func (l Loader) Load(path string) (application.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return application.Config{}, err
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return application.Config{}, err
	}

	out := application.DefaultConfig()
	if cfg.Version != 0 {
		out.Version = cfg.Version
	}
	out.Features = cfg.Features
	out.Exclude = cfg.Exclude
	if len(cfg.Artifacts.Extensions) > 0 {
		out.Artifacts.Extensions = cfg.Artifacts.Extensions
	}
	if cfg.Report.Output != "" {
		out.Report.Output = cfg.Report.Output
	}
	if cfg.History != "" {
		out.HistoryPath = cfg.History
	}
	return out, nil
}

func Write(w io.Writer, cfg application.Config) error {
	out := fileConfig{
		Version:   cfg.Version,
		Features:  cfg.Features,
		Exclude:   cfg.Exclude,
		Artifacts: fileArtifacts{Extensions: cfg.Artifacts.Extensions},
		Report:    fileReport{Output: cfg.Report.Output},
		History:   cfg.HistoryPath,
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return enc.Encode(out)
}
