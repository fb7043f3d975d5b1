package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/txtpgen/internal/config"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the run id.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Banks are built from inline object descriptions.
	Banks []BankSpec `yaml:"banks,omitempty"`

	// Dumps lists bank dump files, relative to the scenario file.
	Dumps []string `yaml:"dumps,omitempty"`

	// Config holds the session options, in project file layout.
	Config config.Config `yaml:"config,omitempty"`

	// Snapshot round-trips inline banks through CBOR before the run.
	Snapshot bool `yaml:"snapshot,omitempty"`

	// Assertions validate the outputs.
	Assertions []Assertion `yaml:"assertions"`
}

// BankSpec describes one inline bank.
type BankSpec struct {
	ID      uint32       `yaml:"id"`
	File    string       `yaml:"file"`
	Name    string       `yaml:"name,omitempty"`
	Version int          `yaml:"version,omitempty"`
	Media   []uint32     `yaml:"media,omitempty"`
	Objects []ObjectSpec `yaml:"objects"`
}

// ObjectSpec describes one object of an inline bank. Which fields apply
// depends on Type.
type ObjectSpec struct {
	Type string `yaml:"type"`
	ID   uint32 `yaml:"id"`
	Name string `yaml:"name,omitempty"`

	// event
	Actions []uint32 `yaml:"actions,omitempty"`

	// play
	Target uint32 `yaml:"target,omitempty"`
	Bank   uint32 `yaml:"bank,omitempty"`

	// sound
	Source uint32   `yaml:"source,omitempty"`
	Stream bool     `yaml:"stream,omitempty"`
	Plugin uint32   `yaml:"plugin,omitempty"`
	Volume *float64 `yaml:"volume,omitempty"`

	// layer, sequence, sequence_continuous, random
	Children []uint32 `yaml:"children,omitempty"`

	// switch
	Kind      string     `yaml:"kind,omitempty"`
	Group     uint32     `yaml:"group,omitempty"`
	GroupName string     `yaml:"group_name,omitempty"`
	Cases     []CaseSpec `yaml:"cases,omitempty"`
}

// CaseSpec is one value of a switch object.
type CaseSpec struct {
	Value   uint32   `yaml:"value"`
	Name    string   `yaml:"name,omitempty"`
	Targets []uint32 `yaml:"targets"`
}

// Assertion validates the outputs of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Names are the expected output names (outputs).
	Names []string `yaml:"names,omitempty"`

	// Name is the output checked (output_contains, output_absent).
	Name string `yaml:"name,omitempty"`

	// Text lists substrings the output must hold (output_contains).
	Text []string `yaml:"text,omitempty"`

	// Stats are expected counters, by JSON name (stats).
	Stats map[string]int `yaml:"stats,omitempty"`

	// Count is the expected number of failed entries (errors).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertOutputs        = "outputs"
	AssertOutputContains = "output_contains"
	AssertOutputAbsent   = "output_absent"
	AssertStats          = "stats"
	AssertErrors         = "errors"
)

// Object type constants.
const (
	ObjectEvent              = "event"
	ObjectPlay               = "play"
	ObjectSound              = "sound"
	ObjectLayer              = "layer"
	ObjectSequence           = "sequence"
	ObjectSequenceContinuous = "sequence_continuous"
	ObjectRandom             = "random"
	ObjectSwitch             = "switch"
)

// LoadScenario reads and parses a scenario YAML file. Dump paths are
// resolved relative to the file.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields, or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving dump paths against
// basePath.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range scenario.Dumps {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Dumps[i] = filepath.Join(basePath, p)
		}
	}
	scenario.Config.Dir = basePath

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Banks) == 0 && len(s.Dumps) == 0 {
		return fmt.Errorf("banks or dumps are required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, p := range s.Dumps {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("dump file not found: %s", p)
		}
	}

	for i, b := range s.Banks {
		if b.File == "" {
			return fmt.Errorf("banks[%d]: file is required", i)
		}
		for j, obj := range b.Objects {
			if err := validateObject(obj); err != nil {
				return fmt.Errorf("banks[%d].objects[%d]: %w", i, j, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateObject(o ObjectSpec) error {
	if o.ID == 0 {
		return fmt.Errorf("id is required")
	}
	switch o.Type {
	case ObjectEvent:
		if len(o.Actions) == 0 {
			return fmt.Errorf("actions are required for event")
		}
	case ObjectPlay:
		if o.Target == 0 {
			return fmt.Errorf("target is required for play")
		}
	case ObjectSound, ObjectLayer, ObjectSequence, ObjectSequenceContinuous, ObjectRandom:
	case ObjectSwitch:
		if o.Group == 0 {
			return fmt.Errorf("group is required for switch")
		}
		if _, err := switchKind(o.Kind); err != nil {
			return err
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown object type %q", o.Type)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertOutputs:
	case AssertOutputContains:
		if a.Name == "" || len(a.Text) == 0 {
			return fmt.Errorf("assertions[%d]: name and text are required for output_contains", index)
		}
	case AssertOutputAbsent:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for output_absent", index)
		}
	case AssertStats:
		if len(a.Stats) == 0 {
			return fmt.Errorf("assertions[%d]: stats are required for stats", index)
		}
		for k := range a.Stats {
			if _, ok := statFields[k]; !ok {
				return fmt.Errorf("assertions[%d]: unknown stat %q", index, k)
			}
		}
	case AssertErrors:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for errors", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
