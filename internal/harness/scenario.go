package harness

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a group store scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Seed is the base seed of every random stream.
	Seed uint64 `yaml:"seed"`

	// Schema is an optional directory of CUE group schemas, relative to
	// the scenario file.
	Schema string `yaml:"schema,omitempty"`

	// People is the number of people created before the first step.
	// Their ids are 0..People-1.
	People int `yaml:"people"`

	// Streams declares named random streams besides the default one.
	Streams []string `yaml:"streams,omitempty"`

	// Steps are scheduled on the engine at their At time.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and the event trace.
	Assertions []Assertion `yaml:"assertions,omitempty"`

	// BaseDir is the directory of the scenario file. Set by LoadScenario.
	BaseDir string `yaml:"-"`
}

// Step is one timed operation.
type Step struct {
	At float64 `yaml:"at"`
	Op string  `yaml:"op"`

	GroupType string `yaml:"group_type,omitempty"`
	Group     *int   `yaml:"group,omitempty"`
	Person    *int   `yaml:"person,omitempty"`
	Property  string `yaml:"property,omitempty"`

	// define_property
	Kind        string      `yaml:"kind,omitempty"`
	Width       int         `yaml:"width,omitempty"`
	Symbols     []string    `yaml:"symbols,omitempty"`
	Default     any         `yaml:"default,omitempty"`
	Mutable     *bool       `yaml:"mutable,omitempty"`
	TrackTimes  bool        `yaml:"track_times,omitempty"`
	GroupValues map[int]any `yaml:"group_values,omitempty"`

	// add_group values by property, set_property value
	Values map[string]any `yaml:"values,omitempty"`
	Value  any            `yaml:"value,omitempty"`

	// sample
	Weights      map[int]float64 `yaml:"weights,omitempty"`
	Exclude      *int            `yaml:"exclude,omitempty"`
	Stream       string          `yaml:"stream,omitempty"`
	ExpectPerson *int            `yaml:"expect_person,omitempty"`
	ExpectEmpty  bool            `yaml:"expect_empty,omitempty"`

	ExpectGroup *int   `yaml:"expect_group,omitempty"`
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step operations.
const (
	OpAddGroupType   = "add_group_type"
	OpDefineProperty = "define_property"
	OpAddGroup       = "add_group"
	OpAddMember      = "add_member"
	OpRemoveMember   = "remove_member"
	OpSetProperty    = "set_property"
	OpRemoveGroup    = "remove_group"
	OpRemovePerson   = "remove_person"
	OpSample         = "sample"
)

// Assertion validates the final state or the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "group_members": Group has exactly People as members
	// - "person_groups": Person belongs to exactly Groups
	// - "property_value": Property of Group has Value
	// - "group_exists": Group is live (Exists, default true)
	// - "group_count": GroupType has Count groups
	// - "event_count": Event was published Count times
	Type string `yaml:"type"`

	Group     *int   `yaml:"group,omitempty"`
	Person    *int   `yaml:"person,omitempty"`
	People    []int  `yaml:"people,omitempty"`
	Groups    []int  `yaml:"groups,omitempty"`
	GroupType string `yaml:"group_type,omitempty"`
	Property  string `yaml:"property,omitempty"`
	Value     any    `yaml:"value,omitempty"`
	Exists    *bool  `yaml:"exists,omitempty"`
	Count     *int   `yaml:"count,omitempty"`
	Event     string `yaml:"event,omitempty"`
}

// Assertion type constants.
const (
	AssertGroupMembers  = "group_members"
	AssertPersonGroups  = "person_groups"
	AssertPropertyValue = "property_value"
	AssertGroupExists   = "group_exists"
	AssertGroupCount    = "group_count"
	AssertEventCount    = "event_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	scenario.BaseDir = filepath.Dir(path)
	return scenario, nil
}

// ParseScenario parses scenario YAML. Schema paths resolve against the
// working directory until BaseDir is set.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// SchemaDir returns the resolved schema directory, or "" if none.
func (s *Scenario) SchemaDir() string {
	if s.Schema == "" {
		return ""
	}
	if filepath.IsAbs(s.Schema) || s.BaseDir == "" {
		return s.Schema
	}
	return filepath.Join(s.BaseDir, s.Schema)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.People < 0 {
		return fmt.Errorf("people must be non-negative")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, s *Step) error {
	if math.IsNaN(s.At) || math.IsInf(s.At, 0) || s.At < 0 {
		return fmt.Errorf("steps[%d]: at must be a finite non-negative time", index)
	}

	need := func(ok bool, field string) error {
		if !ok {
			return fmt.Errorf("steps[%d]: %s is required for %s", index, field, s.Op)
		}
		return nil
	}

	switch s.Op {
	case OpAddGroupType, OpAddGroup:
		return need(s.GroupType != "", "group_type")
	case OpDefineProperty:
		if err := need(s.GroupType != "", "group_type"); err != nil {
			return err
		}
		if err := need(s.Property != "", "property"); err != nil {
			return err
		}
		return need(s.Kind != "", "kind")
	case OpAddMember, OpRemoveMember:
		if err := need(s.Person != nil, "person"); err != nil {
			return err
		}
		return need(s.Group != nil, "group")
	case OpSetProperty:
		if err := need(s.Group != nil, "group"); err != nil {
			return err
		}
		return need(s.Property != "", "property")
	case OpRemoveGroup, OpSample:
		return need(s.Group != nil, "group")
	case OpRemovePerson:
		return need(s.Person != nil, "person")
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	need := func(ok bool, field string) error {
		if !ok {
			return fmt.Errorf("assertions[%d]: %s is required for %s", index, field, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertGroupMembers, AssertGroupExists:
		return need(a.Group != nil, "group")
	case AssertPersonGroups:
		return need(a.Person != nil, "person")
	case AssertPropertyValue:
		if err := need(a.Group != nil, "group"); err != nil {
			return err
		}
		if err := need(a.Property != "", "property"); err != nil {
			return err
		}
		return need(a.Value != nil, "value")
	case AssertGroupCount:
		if err := need(a.GroupType != "", "group_type"); err != nil {
			return err
		}
		return need(a.Count != nil, "count")
	case AssertEventCount:
		if err := need(a.Event != "", "event"); err != nil {
			return err
		}
		return need(a.Count != nil, "count")
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
}
