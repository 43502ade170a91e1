package world

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlLocationFile is the top-level YAML structure for the locations file.
type yamlLocationFile struct {
	Start     string         `yaml:"start"`
	Locations []yamlLocation `yaml:"locations"`
}

// yamlLocation is the YAML representation of a location.
type yamlLocation struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Region      string   `yaml:"region"`
	Connections []string `yaml:"connections"`
	Difficulty  int      `yaml:"difficulty"`
	Events      []string `yaml:"events"`
	Hazards     []Hazard `yaml:"hazards"`
	Secrets     []Secret `yaml:"secrets"`
}

// Load parses a locations document and builds the graph.
//
// Precondition: r must yield YAML conforming to the locations schema.
// Postcondition: Returns a validated Graph or a non-nil error naming every violation.
func Load(r io.Reader) (*Graph, error) {
	var file yamlLocationFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing locations YAML: %w", err)
	}
	locs := make([]*Location, 0, len(file.Locations))
	for _, yl := range file.Locations {
		locs = append(locs, convertYAMLLocation(yl))
	}
	return NewGraph(locs, file.Start)
}

// LoadFile reads and parses the locations file at path.
//
// Postcondition: Returns a validated Graph or a non-nil error.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading locations file %s: %w", path, err)
	}
	g, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// convertYAMLLocation converts the parsed YAML structure into the domain type.
func convertYAMLLocation(yl yamlLocation) *Location {
	return &Location{
		ID:          yl.ID,
		Name:        yl.Name,
		Description: strings.TrimSpace(yl.Description),
		Region:      yl.Region,
		Connections: yl.Connections,
		Difficulty:  yl.Difficulty,
		Events:      yl.Events,
		Hazards:     yl.Hazards,
		Secrets:     yl.Secrets,
		Discovered:  make(map[string]bool),
	}
}
