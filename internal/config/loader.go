package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/surge/pkg/jsonschema"
)

// schemaValidator is compiled once at startup. configSchema is a
// compile-time constant, so schemaErr only fires on a programming
// error in the schema itself.
var schemaValidator, schemaErr = jsonschema.NewValidator(configSchema)

// Load reads, validates, and decodes a configuration file. The format
// is chosen by extension: .json is JSON, everything else is YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse validates and decodes raw configuration bytes. path is only a
// format hint; an empty path means YAML.
func Parse(data []byte, path string) (*Config, error) {
	jsonBytes, err := toJSON(data, path)
	if err != nil {
		return nil, err
	}

	if schemaErr != nil {
		return nil, schemaErr
	}
	if verrs := schemaValidator.ValidateJSON(jsonBytes); verrs != nil {
		return nil, fmt.Errorf("config does not match schema: %w", verrs)
	}

	var cfg Config
	if err := json.Unmarshal(jsonBytes, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path, formatted by the same extension rule Load
// uses to read it.
func Save(cfg *Config, path string) error {
	var data []byte
	var err error
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// toJSON normalizes file bytes to JSON so schema validation and
// decoding share one code path. YAML documents are round-tripped
// through an untyped unmarshal.
func toJSON(data []byte, path string) ([]byte, error) {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return data, nil
	}

	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML config: %w", err)
	}
	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert YAML config: %w", err)
	}
	return jsonBytes, nil
}
