package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/telemetryhq/trace-smoke/internal/otlp"
	"github.com/telemetryhq/trace-smoke/internal/verify"
)

// Config drives one smoke-runner invocation: a list of scenarios, each
// pairing a triggering request with the spans it must produce.
type Config struct {
	Scenarios []*Scenario `yaml:"scenarios"`
}

type Scenario struct {
	Name          string          `yaml:"name"`
	Trigger       Trigger         `yaml:"trigger"`
	ExpectedSpans []*ExpectedSpan `yaml:"expectedSpans"`

	expectations []verify.Expectation
}

// Trigger is the request issued against the instrumented application.
// Its status and body are checked independently of trace verification.
type Trigger struct {
	Path       string `yaml:"path"`
	ExpectBody string `yaml:"expectBody"`
}

// ExpectedSpan names one span that must appear in the exported trace
// data. Kind uses the short form (SERVER, CLIENT, INTERNAL, PRODUCER,
// CONSUMER); Name may be a glob pattern.
type ExpectedSpan struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

// Expectations returns the compiled form of ExpectedSpans.
func (s *Scenario) Expectations() []verify.Expectation {
	return s.expectations
}

// FromFile loads the scenario configuration from a given file.
func FromFile(filename string) (*Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to load scenario file: %v", err)
	}
	return FromYAML(contents)
}

// FromYAML loads the scenario configuration from a blob of YAML.
func FromYAML(contents []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse scenario configuration: %v", err)
	}
	if err := cfg.compile(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) compile() error {
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("scenario configuration names no scenarios")
	}
	for i, sc := range c.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario %d has no name", i)
		}
		if !strings.HasPrefix(sc.Trigger.Path, "/") {
			return fmt.Errorf("scenario %q: trigger path %q must start with /", sc.Name, sc.Trigger.Path)
		}
		if len(sc.ExpectedSpans) == 0 {
			return fmt.Errorf("scenario %q expects no spans", sc.Name)
		}
		sc.expectations = make([]verify.Expectation, 0, len(sc.ExpectedSpans))
		for _, expected := range sc.ExpectedSpans {
			kind, ok := otlp.ParseSpanKind(expected.Kind)
			if !ok {
				return fmt.Errorf("scenario %q: unknown span kind %q", sc.Name, expected.Kind)
			}
			if expected.Name == "" {
				return fmt.Errorf("scenario %q: expected span has no name", sc.Name)
			}
			expectation, err := verify.NewExpectation(kind, expected.Name)
			if err != nil {
				return fmt.Errorf("scenario %q: %v", sc.Name, err)
			}
			sc.expectations = append(sc.expectations, expectation)
		}
	}
	return nil
}
