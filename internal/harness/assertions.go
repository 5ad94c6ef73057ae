package harness

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/roach88/storefront/internal/session"
)

// identifier guards table and column names, which are interpolated into SQL.
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError describes a failed assertion together with the trace it
// was checked against.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: want %s, got %s", e.Type, e.Expected, e.Actual)
	if len(e.Trace) == 0 {
		return b.String()
	}
	b.WriteString("\ntrace:")
	for _, ev := range e.Trace {
		switch ev.Type {
		case EventInvocation:
			fmt.Fprintf(&b, "\n  %3d %s %v", ev.Seq, ev.Action, ev.Args)
		case EventRequest:
			fmt.Fprintf(&b, "\n  %3d   -> %s %v", ev.Seq, ev.Action, ev.Args)
		case EventCompletion:
			fmt.Fprintf(&b, "\n  %3d   <- %s", ev.Seq, ev.OutputCase)
		}
	}
	return b.String()
}

func failure(kind, expected, actual string, trace []TraceEvent) *AssertionError {
	return &AssertionError{Type: kind, Expected: expected, Actual: actual, Trace: trace}
}

// steps returns the invocation and request events of a trace, the entries
// trace assertions match against by action.
func steps(trace []TraceEvent) []TraceEvent {
	out := make([]TraceEvent, 0, len(trace))
	for _, ev := range trace {
		if ev.Type != EventCompletion {
			out = append(out, ev)
		}
	}
	return out
}

// assertTraceContains passes when some operation or request named
// a.Action carries at least the arguments in a.Args.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range steps(trace) {
		if ev.Action == a.Action && matchArgs(ev.Args, a.Args) {
			return nil
		}
	}
	return failure(AssertTraceContains,
		fmt.Sprintf("%s with %v", a.Action, a.Args), "no such step", trace)
}

// assertTraceOrder passes when the first occurrences of a.Actions appear in
// the given order. Other steps may sit between them.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	first := map[string]int{}
	for i, ev := range steps(trace) {
		if _, seen := first[ev.Action]; !seen {
			first[ev.Action] = i
		}
	}

	last := -1
	for i, action := range a.Actions {
		pos, ok := first[action]
		if !ok {
			return failure(AssertTraceOrder,
				fmt.Sprintf("order %v", a.Actions), "missing action: "+action, trace)
		}
		if pos <= last {
			return failure(AssertTraceOrder,
				fmt.Sprintf("order %v", a.Actions),
				fmt.Sprintf("%s should be before %s", a.Actions[i-1], action), trace)
		}
		last = pos
	}
	return nil
}

// assertTraceCount passes when exactly a.Count steps are named a.Action.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, ev := range steps(trace) {
		if ev.Action == a.Action {
			n++
		}
	}
	if n != a.Count {
		return failure(AssertTraceCount,
			fmt.Sprintf("%d x %s", a.Count, a.Action), fmt.Sprintf("%d occurrences", n), trace)
	}
	return nil
}

func assertRequestCount(r *Result, a Assertion) error {
	if r.Requests != a.Count {
		return failure(AssertRequestCount,
			fmt.Sprintf("%d requests", a.Count), fmt.Sprintf("%d requests", r.Requests), r.Trace)
	}
	return nil
}

func assertRedirect(r *Result, a Assertion) error {
	for _, u := range r.Redirects {
		if u == a.URL {
			return nil
		}
	}
	return failure(AssertRedirect, "redirect to "+a.URL, fmt.Sprintf("redirects %v", r.Redirects), r.Trace)
}

// selectRows reads every row of table matching where, as column maps.
func selectRows(ctx context.Context, st *session.Store, table string, where map[string]interface{}) ([]map[string]interface{}, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	cond, args, err := buildWhereClause(where)
	if err != nil {
		return nil, err
	}
	query := "SELECT * FROM " + table
	if cond != "" {
		query += " WHERE " + cond
	}

	rows, err := st.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]interface{}
	for rows.Next() {
		vals := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// assertFinalState passes when exactly one row matches a.Where and it holds
// every value in a.Expect.
func assertFinalState(ctx context.Context, st *session.Store, a Assertion) error {
	target := fmt.Sprintf("one row in %s where %s", a.Table, describeWhere(a.Where))

	rows, err := selectRows(ctx, st, a.Table, a.Where)
	switch {
	case err != nil:
		return failure(AssertFinalState, target, "query error: "+err.Error(), nil)
	case len(rows) == 0:
		return failure(AssertFinalState, target, "row not found", nil)
	case len(rows) > 1:
		return failure(AssertFinalState, target, fmt.Sprintf("%d rows (assertion is ambiguous)", len(rows)), nil)
	}

	row := rows[0]
	for _, col := range sortedKeys(a.Expect) {
		got, ok := row[col]
		if !ok {
			return failure(AssertFinalState, fmt.Sprintf("column %q", col),
				fmt.Sprintf("column %q not present in %s", col, a.Table), nil)
		}
		if !stateValuesEqual(a.Expect[col], got) {
			return failure(AssertFinalState,
				fmt.Sprintf("column %q = %v", col, a.Expect[col]),
				fmt.Sprintf("column %q = %v (%T)", col, got, got), nil)
		}
	}
	return nil
}

// assertStateAbsent passes when no row of a.Table matches a.Where.
func assertStateAbsent(ctx context.Context, st *session.Store, a Assertion) error {
	target := fmt.Sprintf("no row in %s where %s", a.Table, describeWhere(a.Where))

	rows, err := selectRows(ctx, st, a.Table, a.Where)
	if err != nil {
		return failure(AssertStateAbsent, target, "query error: "+err.Error(), nil)
	}
	if len(rows) > 0 {
		return failure(AssertStateAbsent, target, fmt.Sprintf("%d row(s) found", len(rows)), nil)
	}
	return nil
}

// buildWhereClause renders where as "a = ? AND b = ?" in key order, with
// the values as bind arguments.
func buildWhereClause(where map[string]interface{}) (string, []interface{}, error) {
	if len(where) == 0 {
		return "", nil, nil
	}
	keys := sortedKeys(where)
	parts := make([]string, len(keys))
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		if !identifier.MatchString(k) {
			return "", nil, fmt.Errorf("invalid column name %q in where clause", k)
		}
		parts[i] = k + " = ?"
		switch v := where[k].(type) {
		case string, int, int64, bool:
			args[i] = v
		default:
			args[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, " AND "), args, nil
}

func describeWhere(where map[string]interface{}) string {
	if len(where) == 0 {
		return "(any)"
	}
	keys := sortedKeys(where)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, where[k])
	}
	return strings.Join(parts, " AND ")
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// stateValuesEqual compares a YAML value with a SQLite column value. The
// driver yields int64 for INTEGER columns and string or []byte for TEXT.
func stateValuesEqual(want, got interface{}) bool {
	if b, ok := got.([]byte); ok {
		got = string(b)
	}
	switch w := want.(type) {
	case nil:
		return got == nil
	case bool:
		if n, ok := got.(int64); ok {
			return w == (n != 0)
		}
		return got == w
	case int:
		return got == int64(w)
	}
	return reflect.DeepEqual(want, got)
}

// matchArgs reports whether actual is a map holding every key of expected
// with an equal value. Extra keys in actual are ignored.
func matchArgs(actual interface{}, expected map[string]interface{}) bool {
	if len(expected) == 0 {
		return true
	}
	m, ok := actual.(map[string]interface{})
	if !ok {
		return false
	}
	for k, want := range expected {
		got, ok := m[k]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares two decoded values. Numbers compare by value, so a
// YAML int matches a JSON float64.
func valuesEqual(a, b interface{}) bool {
	return reflect.DeepEqual(normalizeNumbers(a), normalizeNumbers(b))
}

func normalizeNumbers(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(n))
		for k, e := range n {
			out[k] = normalizeNumbers(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(n))
		for i, e := range n {
			out[i] = normalizeNumbers(e)
		}
		return out
	}
	return v
}

// AssertionContext gives state assertions access to the session database.
type AssertionContext struct {
	Store *session.Store
	Ctx   context.Context
}

// EvaluateAssertions checks every assertion against the result and returns
// one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(result, a, actx); err != nil {
			failures = append(failures, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertRequestCount:
		return assertRequestCount(result, a)
	case AssertRedirect:
		return assertRedirect(result, a)
	case AssertFinalState, AssertStateAbsent:
		if actx == nil || actx.Store == nil {
			return fmt.Errorf("%s requires database context", a.Type)
		}
		if a.Type == AssertFinalState {
			return assertFinalState(actx.Ctx, actx.Store, a)
		}
		return assertStateAbsent(actx.Ctx, actx.Store, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}
