// Package scenarios replays scheduling scenarios described in YAML and checks
// the generated weeks against their expectations.
package scenarios

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/solver"
)

// Expected lists the properties every generated week must have. Nil and
// empty fields are not checked.
type Expected struct {
	Complete   *bool               `yaml:"complete,omitempty"`
	Checks     *int                `yaml:"checks,omitempty"`
	Statuses   map[string]string   `yaml:"statuses,omitempty"`
	Unassigned map[string][]string `yaml:"unassigned,omitempty"`
	Closed     map[string][]string `yaml:"closed,omitempty"`
}

type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Runs is the number of generations checked, 1 when unset.
	Runs     int           `yaml:"runs,omitempty"`
	Parallel bool          `yaml:"parallel,omitempty"`
	Solver   solver.Config `yaml:"solver,omitempty"`
	// Instance uses the instance file layout.
	Instance yaml.Node `yaml:"instance"`
	Expected Expected  `yaml:"expected"`
}

// ToModel decodes the embedded instance.
func (s Scenario) ToModel() (model.Instance, error) {
	raw, err := yaml.Marshal(&s.Instance)
	if err != nil {
		return model.Instance{}, err
	}
	return model.DecodeInstance(bytes.NewReader(raw), "yaml")
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name is required", path)
	}
	if sc.Runs <= 0 {
		sc.Runs = 1
	}
	return &sc, nil
}
