package usecase

import (
	"fmt"

	"SignalDesk/internal/services/filter"
	"SignalDesk/internal/services/prediction"
	"SignalDesk/internal/services/screener"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Thresholds is everything a caller can tune for one pass.
type Thresholds struct {
	Screener screener.Thresholds `yaml:"screener"`
	Filter   filter.Rules        `yaml:"filter"`
	Quant    Quant               `yaml:"quant"`
	Model    prediction.Params   `yaml:"model"`

	// complete is set once defaults have been applied, after which a zero
	// is an explicit value and Normalize leaves it alone.
	complete bool
}

// Quant gates the emitted predictions.
type Quant struct {
	MinProbability float64 `yaml:"min_probability" default:"0.40" validate:"gte=0,lte=1"`
	MaxResults     int     `yaml:"max_results" validate:"gte=0"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Screener: screener.DefaultThresholds(),
		Filter:   filter.DefaultRules(),
		Quant:    Quant{MinProbability: 0.40},
		Model:    prediction.DefaultParams(),
		complete: true,
	}
}

// UnmarshalYAML fills defaults before decoding, so keys absent from the
// document keep their defaults and keys set to 0 stay 0.
func (t *Thresholds) UnmarshalYAML(node *yaml.Node) error {
	type plain Thresholds
	var p plain
	if err := defaults.Set(&p); err != nil {
		return fmt.Errorf("threshold defaults: %w", err)
	}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*t = Thresholds(p)
	t.complete = true
	return nil
}

// Normalize fills omitted keys with their defaults and validates. On a
// value built in code, omitted means zero; values from DefaultThresholds
// or a YAML document are already complete and only validated.
func (t *Thresholds) Normalize() error {
	if !t.complete {
		if err := defaults.Set(t); err != nil {
			return fmt.Errorf("threshold defaults: %w", err)
		}
		t.complete = true
	}
	return t.Validate()
}

func (t *Thresholds) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid thresholds: %w", err)
	}
	return nil
}
