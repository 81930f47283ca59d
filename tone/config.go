package tone

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const (
	DefaultDeviceName = "Line 1/2 (Digidesign Mbox 2 Mini Audio)"
	DefaultSampleRate = 44100
	DefaultDuration   = 4 * time.Second
)

// Config controls a Player run.
type Config struct {
	DeviceName string        `validate:"required"`
	SampleRate float64       `validate:"gt=0,lte=384000"`
	Duration   time.Duration `validate:"gt=0"`
}

// fileConfig is the JSON form of Config; Duration is a Go duration string.
type fileConfig struct {
	DeviceName *string  `json:"device_name"`
	SampleRate *float64 `json:"sample_rate"`
	Duration   *string  `json:"duration"`
}

func DefaultConfig() Config {
	return Config{
		DeviceName: DefaultDeviceName,
		SampleRate: DefaultSampleRate,
		Duration:   DefaultDuration,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("tone: invalid config: %w", err)
	}
	return nil
}

// LoadConfig reads a JSON config file over DefaultConfig. Keys left out keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("tone: reading config: %w", err)
	}

	var fc fileConfig
	if err = json.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("tone: decoding %s: %w", path, err)
	}

	if fc.DeviceName != nil {
		cfg.DeviceName = *fc.DeviceName
	}
	if fc.SampleRate != nil {
		cfg.SampleRate = *fc.SampleRate
	}
	if fc.Duration != nil {
		d, err := time.ParseDuration(*fc.Duration)
		if err != nil {
			return cfg, fmt.Errorf("tone: duration %q: %w", *fc.Duration, err)
		}
		cfg.Duration = d
	}

	return cfg, cfg.Validate()
}
