package config

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/profile.yaml
var defaultProfileYAML embed.FS

// Sender is the signature appended to every proposal email.
type Sender struct {
	Name  string `yaml:"name"`
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// Profile holds the prompt and generation settings.
type Profile struct {
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	Count       int     `yaml:"count"`
	DateLayout  string  `yaml:"date_layout"` // Go layout for tracking dates, es-ES by default
	Sender      Sender  `yaml:"sender"`
}

// DefaultProfile returns the embedded profile.
func DefaultProfile() Profile {
	data, err := defaultProfileYAML.ReadFile("defaults/profile.yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded profile missing: %v", err))
	}
	p, err := parseProfile(data)
	if err != nil {
		panic(fmt.Sprintf("embedded profile invalid: %v", err))
	}
	return p
}

// LoadProfile starts from the embedded profile and overlays the file at path
// when it exists. Environment variables inside the file are expanded.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		return p, fmt.Errorf("read profile %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &p); err != nil {
		return p, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return p, p.validate()
}

func parseProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &p); err != nil {
		return p, err
	}
	return p, p.validate()
}

func (p Profile) validate() error {
	if p.Model == "" {
		return errors.New("profile: model is required")
	}
	if p.Temperature <= 0 || p.Temperature > 2 {
		return fmt.Errorf("profile: temperature %.2f out of range (0, 2]", p.Temperature)
	}
	if p.Count < 1 {
		return fmt.Errorf("profile: count must be positive, got %d", p.Count)
	}
	if p.DateLayout == "" {
		return errors.New("profile: date_layout is required")
	}
	return nil
}
