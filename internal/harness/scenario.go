package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Session modes: what the session database holds before the flow starts.
const (
	SessionValid     = "valid"
	SessionExpired   = "expired"
	SessionMalformed = "malformed"
	SessionNone      = "none"
)

// Scenario defines a cart conformance scenario.
type Scenario struct {
	// Name also names the golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Session selects the stored credential. Empty means valid.
	Session string `yaml:"session,omitempty"`

	// Catalog lists the products the backend serves.
	Catalog []ProductFixture `yaml:"catalog"`

	// Setup contains backend actions run before the flow. They are traced
	// but must succeed.
	Setup []ActionStep `yaml:"setup,omitempty"`

	// Flow contains the steps under test.
	Flow []FlowStep `yaml:"flow"`

	Assertions []Assertion `yaml:"assertions"`
}

// ProductFixture is a catalog entry. Price is decimal text.
type ProductFixture struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Price       string `yaml:"price"`
	Stock       int    `yaml:"stock"`
	Category    int64  `yaml:"category,omitempty"`
}

// ActionStep is a backend action used in Setup.
type ActionStep struct {
	// Action is one of the backend actions, e.g. "fail_next".
	Action string `yaml:"action"`

	Args map[string]interface{} `yaml:"args"`
}

// FlowStep is one step of the flow: a cart operation or a backend action.
type FlowStep struct {
	// Invoke names the operation, e.g. "add".
	Invoke string `yaml:"invoke"`

	Args map[string]interface{} `yaml:"args"`

	// Expect specifies the expected completion. If nil, any outcome passes.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause is the outcome a flow step must complete with.
type ExpectClause struct {
	// Case is the expected outcome, e.g. "ok" or "insufficient_stock".
	Case string `yaml:"case"`

	// Result holds expected completion fields (status, total_items,
	// total_price, lines, error). Subset match.
	Result map[string]interface{} `yaml:"result,omitempty"`
}

// Assertion is a check run after the flow. Which fields apply depends on
// Type.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Action is an operation name or "METHOD /path" (trace_contains,
	// trace_count).
	Action string `yaml:"action,omitempty"`

	// Args are the expected arguments or request body (trace_contains).
	// Subset match.
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Table is the session table name (final_state, state_absent).
	Table string `yaml:"table,omitempty"`

	// Where selects rows by exact column values (final_state, state_absent).
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected column values (final_state). Subset match.
	Expect map[string]interface{} `yaml:"expect,omitempty"`

	// Count is the expected number of occurrences (trace_count,
	// request_count).
	Count int `yaml:"count,omitempty"`

	// Actions is the expected order (trace_order).
	Actions []string `yaml:"actions,omitempty"`

	// URL is the expected login URL (redirect).
	URL string `yaml:"url,omitempty"`
}

// Assertion types.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertRequestCount  = "request_count"
	AssertFinalState    = "final_state"
	AssertStateAbsent   = "state_absent"
	AssertRedirect      = "redirect"
)

// LoadScenario reads one scenario file. Unknown keys are rejected so a
// misspelt field cannot silently disable an assertion.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// LoadScenarioDir loads every *.yaml scenario in dir, sorted by file name.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	switch {
	case s.Name == "":
		return errors.New("missing name")
	case s.Description == "":
		return errors.New("missing description")
	case len(s.Flow) == 0:
		return errors.New("empty flow")
	case len(s.Assertions) == 0:
		return errors.New("no assertions")
	}

	switch s.Session {
	case "", SessionValid, SessionExpired, SessionMalformed, SessionNone:
	default:
		return fmt.Errorf("unknown session mode %q", s.Session)
	}

	ids := make(map[int64]bool, len(s.Catalog))
	for i, p := range s.Catalog {
		switch {
		case p.ID < 1:
			return fmt.Errorf("catalog[%d]: id must be positive", i)
		case ids[p.ID]:
			return fmt.Errorf("catalog[%d]: duplicate id %d", i, p.ID)
		case p.Price == "":
			return fmt.Errorf("catalog[%d]: missing price", i)
		}
		ids[p.ID] = true
	}

	for i, step := range s.Setup {
		if !backendActions[step.Action] {
			return fmt.Errorf("setup[%d]: %q is not a backend action", i, step.Action)
		}
		if step.Args == nil {
			return fmt.Errorf("setup[%d] %s: missing args (use {} for none)", i, step.Action)
		}
	}

	for i, step := range s.Flow {
		switch {
		case step.Invoke == "":
			return fmt.Errorf("flow[%d]: missing invoke", i)
		case !cartOperations[step.Invoke] && !backendActions[step.Invoke]:
			return fmt.Errorf("flow[%d]: unknown action %q", i, step.Invoke)
		case step.Args == nil:
			return fmt.Errorf("flow[%d] %s: missing args (use {} for none)", i, step.Invoke)
		case step.Expect != nil && step.Expect.Case == "":
			return fmt.Errorf("flow[%d] %s: expect needs a case", i, step.Invoke)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion checks the fields each assertion type depends on.
func validateAssertion(index int, a *Assertion) error {
	var missing string
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: missing type", index)
	case AssertTraceContains:
		if a.Action == "" {
			missing = "action"
		}
	case AssertTraceOrder:
		if len(a.Actions) == 0 {
			missing = "actions"
		}
	case AssertTraceCount, AssertRequestCount:
		if a.Type == AssertTraceCount && a.Action == "" {
			missing = "action"
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d] %s: negative count", index, a.Type)
		}
	case AssertFinalState:
		if a.Table == "" {
			missing = "table"
		} else if len(a.Expect) == 0 {
			missing = "expect"
		}
	case AssertStateAbsent:
		if a.Table == "" {
			missing = "table"
		}
	case AssertRedirect:
		if a.URL == "" {
			missing = "url"
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if missing != "" {
		return fmt.Errorf("assertions[%d] %s: missing %s", index, a.Type, missing)
	}
	return nil
}
