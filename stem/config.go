package stem

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a RegistrationConfig from a YAML file, starting from
// DefaultRegistrationConfig and overlaying whatever fields the file
// sets. Mirrors the teacher's config_loader.go LoadConfig contract:
// missing file is not an error (defaults are returned), any other I/O
// or parse error is wrapped.
func LoadConfig(path string) (RegistrationConfig, error) {
	cfg := DefaultRegistrationConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("stem: read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("stem: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as YAML.
func SaveConfig(path string, cfg RegistrationConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("stem: marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("stem: write config %s: %w", path, err)
	}
	return nil
}

// MergeOverrides applies CLI flag overrides onto a loaded config: a
// zero-value override field leaves the base config's value untouched.
// This mirrors the teacher's CLI > config > computed precedence from
// MergeCalibrationIntoConfig, generalized from calibration offsets to
// tolerance constants.
func MergeOverrides(base RegistrationConfig, diamTol, ransacTol, linearityTol *float64, workers *int, filterDegenerate *bool) RegistrationConfig {
	out := base
	if diamTol != nil {
		out.DiameterErrorTol = *diamTol
	}
	if ransacTol != nil {
		out.RansacTol = *ransacTol
	}
	if linearityTol != nil {
		out.LinearityTol = *linearityTol
	}
	if workers != nil {
		out.Workers = *workers
	}
	if filterDegenerate != nil {
		out.FilterDegenerate = *filterDegenerate
	}
	return out
}
