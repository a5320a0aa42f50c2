package loader

import (
	"fmt"
	"os"

	"emote-pack-service/internal/model"

	"gopkg.in/yaml.v3"
)

const (
	// HeaderType must match the document header of an emote pack database.
	HeaderType = "EMOTE_DB"

	// Version is the definition source format version this loader reads.
	Version = 1
)

type document struct {
	Header struct {
		Type    string `yaml:"Type"`
		Version int    `yaml:"Version"`
	} `yaml:"Header"`
	Body []model.RawDefinition `yaml:"Body"`
}

// LoadFile reads an emote pack definition database from a YAML file and
// returns its raw records. Record-level validation is the registry's job;
// this only checks that the document is well-formed and carries the right
// header.
func LoadFile(path string) ([]model.RawDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read emote db: %w", err)
	}
	return Parse(data)
}

// Parse decodes a definition database document from raw bytes.
func Parse(data []byte) ([]model.RawDefinition, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse emote db: %w", err)
	}

	if doc.Header.Type != HeaderType {
		return nil, fmt.Errorf("unexpected database type %q, want %q", doc.Header.Type, HeaderType)
	}
	if doc.Header.Version != Version {
		return nil, fmt.Errorf("unsupported database version %d, want %d", doc.Header.Version, Version)
	}

	return doc.Body, nil
}
