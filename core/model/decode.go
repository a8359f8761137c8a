package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// instanceFile is the on-disk layout written by the editor. Days are keyed by
// name; missing days are treated as park closed.
type instanceFile struct {
	Rides   []Ride              `json:"rides" yaml:"rides"`
	Workers []Worker            `json:"workers" yaml:"workers"`
	Week    map[string]DayState `json:"week" yaml:"week"`
}

func (f instanceFile) instance() (Instance, error) {
	in := Instance{Rides: f.Rides, Workers: f.Workers}
	seen := make(map[Weekday]bool, len(f.Week))
	for name, st := range f.Week {
		d, err := ParseWeekday(name)
		if err != nil {
			return Instance{}, err
		}
		if seen[d] {
			return Instance{}, fmt.Errorf("weekday %s listed twice", d)
		}
		seen[d] = true
		in.Week[d] = st
	}
	return in, nil
}

// LoadInstance reads an instance snapshot from a JSON or YAML file.
func LoadInstance(path string) (Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return Instance{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "yaml", "yml", "json":
	default:
		return Instance{}, fmt.Errorf("unsupported instance format: .%s", ext)
	}
	return DecodeInstance(f, ext)
}

// DecodeInstance reads an instance snapshot from r in the given format.
func DecodeInstance(r io.Reader, format string) (Instance, error) {
	var raw instanceFile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
			return Instance{}, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return Instance{}, err
		}
	default:
		return Instance{}, fmt.Errorf("unsupported format: %s", format)
	}
	return raw.instance()
}
