package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"settlement-pipeline/internal/model"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
// Every field is optional; missing fields keep the values from Default.
type Config struct {
	Inputs  InputsConfig  `yaml:"inputs"`
	Outputs OutputsConfig `yaml:"outputs"`
	Window  WindowConfig  `yaml:"window"`
}

// InputsConfig lists the raw source files.
type InputsConfig struct {
	Cost       string `yaml:"cost" validate:"required"`
	Generation string `yaml:"generation" validate:"required"`
	Demand     string `yaml:"demand" validate:"required"`
}

// OutputsConfig lists the intermediate and final files.
// MergedXLSX, Metrics and Summary are optional extra outputs.
type OutputsConfig struct {
	Cost       string `yaml:"cost" validate:"required"`
	Generation string `yaml:"generation" validate:"required"`
	Demand     string `yaml:"demand" validate:"required"`
	Merged     string `yaml:"merged" validate:"required"`
	MergedXLSX string `yaml:"merged_xlsx"`
	Metrics    string `yaml:"metrics"`
	// Summary receives the JSON run report of the last successful command.
	Summary string `yaml:"summary"`
}

// WindowConfig bounds the generation and demand tables. Both bounds are
// exclusive: a row dated exactly Start or End is dropped.
type WindowConfig struct {
	Start model.Date `yaml:"start"`
	End   model.Date `yaml:"end"`
}

// Default returns the configuration the pipeline historically ran with.
func Default() *Config {
	return &Config{
		Inputs: InputsConfig{
			Cost:       "Datasets/Original_Cost.csv",
			Generation: "Datasets/Original_Generation.csv",
			Demand:     "Datasets/Original_Demand.csv",
		},
		Outputs: OutputsConfig{
			Cost:       "Datasets/preprocessed_cost.csv",
			Generation: "Datasets/preprocessed_generation.csv",
			Demand:     "Datasets/preprocessed_demand.csv",
			Merged:     "Datasets/merged_generation_demand.csv",
		},
		Window: WindowConfig{
			Start: model.NewDate(2016, 1, 6),
			End:   model.NewDate(2024, 4, 1),
		},
	}
}

// Load reads path over the defaults and validates the result.
// An empty path yields the validated defaults.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and resolves the config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c.resolve(filepath.Dir(path))
	return c, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", model.ErrInvalidConfig)
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is required", model.ErrInvalidConfig, verrs[0].Namespace())
		}
		return fmt.Errorf("%w: %v", model.ErrInvalidConfig, err)
	}
	if c.Window.Start.IsZero() || c.Window.End.IsZero() {
		return fmt.Errorf("%w: window.start and window.end are required", model.ErrInvalidConfig)
	}
	if !c.Window.Start.Before(c.Window.End) {
		return fmt.Errorf("%w: window.start %s must be before window.end %s",
			model.ErrInvalidConfig, c.Window.Start, c.Window.End)
	}
	return nil
}

// resolve rewrites relative paths against the config file directory.
// An input is only rewritten if the file exists there, so paths relative to
// the working directory keep working. Outputs are always rewritten.
func (c *Config) resolve(dir string) {
	if dir == "" || dir == "." {
		return
	}
	for _, p := range []*string{&c.Inputs.Cost, &c.Inputs.Generation, &c.Inputs.Demand} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		cand := filepath.Join(dir, *p)
		if _, err := os.Stat(cand); err == nil {
			*p = cand
		}
	}
	for _, p := range c.Outputs.paths() {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		*p = filepath.Join(dir, *p)
	}
}

func (o *OutputsConfig) paths() []*string {
	return []*string{&o.Cost, &o.Generation, &o.Demand, &o.Merged, &o.MergedXLSX, &o.Metrics, &o.Summary}
}
