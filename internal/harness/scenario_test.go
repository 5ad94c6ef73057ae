package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
session: expired
catalog:
  - { id: 1, name: Mug, price: "9.99", stock: 10, category: 2 }
setup:
  - action: fail_next
    args: { method: GET, path: /cart/my-cart, status: 500 }
flow:
  - invoke: add
    args:
      product: 1
      quantity: 2
    expect:
      case: auth_lost
assertions:
  - type: request_count
    count: 0
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, SessionExpired, scenario.Session)
	require.Len(t, scenario.Catalog, 1)
	assert.Equal(t, "9.99", scenario.Catalog[0].Price)
	assert.Equal(t, int64(2), scenario.Catalog[0].Category)
	require.Len(t, scenario.Setup, 1)
	assert.Equal(t, "fail_next", scenario.Setup[0].Action)
	require.Len(t, scenario.Flow, 1)
	assert.Equal(t, "add", scenario.Flow[0].Invoke)
	assert.Equal(t, 1, scenario.Flow[0].Args["product"])
	assert.Equal(t, CaseAuthLost, scenario.Flow[0].Expect.Case)
	assert.Len(t, scenario.Assertions, 1)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "assertion instead of assertions"
flow:
  - invoke: fetch
    args: {}
assertion:
  - type: request_count
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario")
}

func TestLoadScenario_Invalid(t *testing.T) {
	const flow = `
flow:
  - invoke: fetch
    args: {}
`
	const asserts = `
assertions:
  - type: request_count
`
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d" + flow + asserts,
			wantErr: "missing name",
		},
		{
			name:    "missing description",
			content: "name: n" + flow + asserts,
			wantErr: "missing description",
		},
		{
			name:    "unknown session mode",
			content: "name: n\ndescription: d\nsession: stale" + flow + asserts,
			wantErr: `unknown session mode "stale"`,
		},
		{
			name:    "empty flow",
			content: "name: n\ndescription: d\nflow: []" + asserts,
			wantErr: "empty flow",
		},
		{
			name:    "no assertions",
			content: "name: n\ndescription: d" + flow,
			wantErr: "no assertions",
		},
		{
			name:    "unknown flow action",
			content: "name: n\ndescription: d\nflow:\n  - invoke: checkout\n    args: {}" + asserts,
			wantErr: `flow[0]: unknown action "checkout"`,
		},
		{
			name:    "flow args missing",
			content: "name: n\ndescription: d\nflow:\n  - invoke: fetch" + asserts,
			wantErr: "flow[0] fetch: missing args",
		},
		{
			name:    "expect without case",
			content: "name: n\ndescription: d\nflow:\n  - invoke: fetch\n    args: {}\n    expect: { result: { lines: 0 } }" + asserts,
			wantErr: "flow[0] fetch: expect needs a case",
		},
		{
			name:    "cart operation in setup",
			content: "name: n\ndescription: d\nsetup:\n  - action: add\n    args: {}" + flow + asserts,
			wantErr: `setup[0]: "add" is not a backend action`,
		},
		{
			name:    "duplicate catalog id",
			content: "name: n\ndescription: d\ncatalog:\n  - { id: 1, name: A, price: \"1\" }\n  - { id: 1, name: B, price: \"2\" }" + flow + asserts,
			wantErr: "catalog[1]: duplicate id 1",
		},
		{
			name:    "catalog price missing",
			content: "name: n\ndescription: d\ncatalog:\n  - { id: 1, name: A }" + flow + asserts,
			wantErr: "catalog[0]: missing price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAssertion(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"missing type", Assertion{}, "assertions[0]: missing type"},
		{"unknown type", Assertion{Type: "eventually"}, `unknown assertion type "eventually"`},
		{"trace_contains without action", Assertion{Type: AssertTraceContains}, "trace_contains: missing action"},
		{"trace_order without actions", Assertion{Type: AssertTraceOrder}, "trace_order: missing actions"},
		{"trace_count negative", Assertion{Type: AssertTraceCount, Action: "add", Count: -1}, "trace_count: negative count"},
		{"request_count negative", Assertion{Type: AssertRequestCount, Count: -1}, "request_count: negative count"},
		{"final_state without table", Assertion{Type: AssertFinalState, Expect: map[string]interface{}{"a": 1}}, "final_state: missing table"},
		{"final_state without expect", Assertion{Type: AssertFinalState, Table: "kv"}, "final_state: missing expect"},
		{"state_absent without table", Assertion{Type: AssertStateAbsent}, "state_absent: missing table"},
		{"redirect without url", Assertion{Type: AssertRedirect}, "redirect: missing url"},
		{"valid redirect", Assertion{Type: AssertRedirect, URL: "/login"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAssertion(0, &tt.assertion)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarioDir(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)

	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Contains(t, names, "add_update_remove")
	assert.Contains(t, names, "expired_session")
	assert.IsIncreasing(t, names)
}

func TestLoadScenarioDir_ReportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: x\n"), 0644))

	_, err := LoadScenarioDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}
