package scenario

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Registry indexes scenarios by name and suite, keeping registration order.
type Registry struct {
	order  []Scenario
	byName map[string]int
	suites map[string][]int
}

// NewRegistry validates and indexes scenarios. Names must be unique.
func NewRegistry(scenarios ...Scenario) (*Registry, error) {
	r := &Registry{byName: map[string]int{}, suites: map[string][]int{}}
	for _, s := range scenarios {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers one more scenario.
func (r *Registry) Add(s Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, dup := r.byName[s.Name]; dup {
		return fmt.Errorf("duplicate scenario name %q", s.Name)
	}
	idx := len(r.order)
	r.order = append(r.order, s)
	r.byName[s.Name] = idx
	r.suites[s.Suite] = append(r.suites[s.Suite], idx)
	return nil
}

// All returns every scenario in registration order.
func (r *Registry) All() []Scenario {
	return append([]Scenario(nil), r.order...)
}

// Suites returns the suite names, sorted.
func (r *Registry) Suites() []string {
	names := make([]string, 0, len(r.suites))
	for name := range r.suites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Suite returns the scenarios of one suite in registration order.
func (r *Registry) Suite(name string) []Scenario {
	var out []Scenario
	for _, idx := range r.suites[name] {
		out = append(out, r.order[idx])
	}
	return out
}

// Select resolves scenario or suite names; no names selects everything. Each
// scenario appears once, in registration order.
func (r *Registry) Select(names ...string) ([]Scenario, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	picked := map[int]bool{}
	for _, name := range names {
		if idx, ok := r.byName[name]; ok {
			picked[idx] = true
			continue
		}
		idxs, ok := r.suites[name]
		if !ok || name == "" {
			return nil, fmt.Errorf("no scenario or suite named %q", name)
		}
		for _, idx := range idxs {
			picked[idx] = true
		}
	}
	var out []Scenario
	for idx, s := range r.order {
		if picked[idx] {
			out = append(out, s)
		}
	}
	return out, nil
}

// File is the on-disk layout of a scenario file.
type File struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Decode reads a scenario file and validates every scenario in it.
func Decode(r io.Reader) ([]Scenario, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding scenarios: %w", err)
	}
	for _, s := range f.Scenarios {
		if err := s.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Scenarios, nil
}

// LoadFile reads scenarios from a YAML file.
func LoadFile(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scenarios, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scenarios, nil
}

// Encode writes scenarios in the layout Decode reads.
func Encode(w io.Writer, scenarios []Scenario) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(File{Scenarios: scenarios}); err != nil {
		return err
	}
	return enc.Close()
}
