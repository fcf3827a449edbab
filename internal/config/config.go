package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/greatbody/encoding-util/transcoder"
)

type Config struct {
	// Backend selects the transcoding service: auto, xtext or win32.
	Backend           string   `json:"backend" yaml:"backend"`
	PhysicalPath      string   `json:"physical_path" yaml:"physical_path"`
	MountPoint        string   `json:"mount_point" yaml:"mount_point"`
	AllowedProcesses  []string `json:"allowed_processes" yaml:"allowed_processes"`
	AllowedExtensions []string `json:"allowed_extensions" yaml:"allowed_extensions"`
}

// LoadConfig reads a JSON config, or YAML when path ends in .yaml or .yml.
// Fields missing from the file keep their DefaultConfig values and
// unknown fields are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Backend:           "auto",
		PhysicalPath:      "F:\\",
		MountPoint:        "Z:",
		AllowedProcesses:  []string{"a.exe"},
		AllowedExtensions: []string{".txt", ".csv", ".log", ".ini", ".conf", ".properties", ".bas", ".cls", ".frm", ".vbp"},
	}
}

// Validate checks that the backend exists on this platform and that a
// mount has somewhere to read from.
func (c *Config) Validate() error {
	if _, err := transcoder.ServiceByName(c.Backend); err != nil {
		return err
	}
	if strings.TrimSpace(c.PhysicalPath) == "" {
		return errors.New("physical_path is required")
	}
	if strings.TrimSpace(c.MountPoint) == "" {
		return errors.New("mount_point is required")
	}
	return nil
}

// Service returns the transcoding service named by Backend.
func (c *Config) Service() (transcoder.Service, error) {
	return transcoder.ServiceByName(c.Backend)
}
