package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/session"
)

func sampleTrace() []TraceEvent {
	r := NewResult()
	r.AddInvocationTrace("add", map[string]interface{}{"product": 1, "quantity": 2}, 1)
	r.AddRequestTrace("GET /products/1", nil, 2)
	r.AddRequestTrace("POST /cart/add", map[string]interface{}{"productId": float64(1), "quantity": float64(2)}, 3)
	r.AddCompletionTrace(CaseOK, map[string]interface{}{"lines": 1}, 4)
	r.AddInvocationTrace("remove", map[string]interface{}{"product": 1}, 5)
	r.AddRequestTrace("DELETE /cart/1", nil, 6)
	r.AddCompletionTrace(CaseOK, map[string]interface{}{"lines": 0}, 7)
	return r.Trace
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "POST /cart/add", Args: map[string]interface{}{"productId": 1}}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "add", Args: map[string]interface{}{"quantity": 2}}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Action: "DELETE /cart/1"}))

	err := assertTraceContains(trace, Assertion{Action: "POST /cart/add", Args: map[string]interface{}{"quantity": 5}})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "trace_contains", ae.Type)
	assert.Contains(t, err.Error(), "\ntrace:")
	assert.Contains(t, err.Error(), "-> POST /cart/add")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Actions: []string{"add", "POST /cart/add", "DELETE /cart/1"}}))

	err := assertTraceOrder(trace, Assertion{Actions: []string{"DELETE /cart/1", "POST /cart/add"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DELETE /cart/1 should be before POST /cart/add")

	err = assertTraceOrder(trace, Assertion{Actions: []string{"add", "PUT /cart/1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing action: PUT /cart/1")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "add", Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Action: "GET /cart/my-cart", Count: 0}))

	err := assertTraceCount(trace, Assertion{Action: "DELETE /cart/1", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 occurrences")
}

func TestAssertRequestCountAndRedirect(t *testing.T) {
	r := &Result{Requests: 3, Redirects: []string{"/login?returnUrl=%2Fcart"}}

	assert.NoError(t, assertRequestCount(r, Assertion{Count: 3}))
	assert.Error(t, assertRequestCount(r, Assertion{Count: 0}))

	assert.NoError(t, assertRedirect(r, Assertion{URL: "/login?returnUrl=%2Fcart"}))
	err := assertRedirect(r, Assertion{URL: "/login"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect to /login")
}

func TestValuesEqual(t *testing.T) {
	assert.True(t, valuesEqual(float64(2), 2))
	assert.True(t, valuesEqual(int64(2), 2))
	assert.True(t, valuesEqual("19.98", "19.98"))
	assert.True(t, valuesEqual(nil, nil))
	assert.True(t, valuesEqual(
		map[string]interface{}{"items": []interface{}{float64(1), float64(2)}},
		map[string]interface{}{"items": []interface{}{1, 2}},
	))

	assert.False(t, valuesEqual(float64(2), 3))
	assert.False(t, valuesEqual("2", 2))
	assert.False(t, valuesEqual(nil, 0))
}

func TestMatchArgs(t *testing.T) {
	actual := map[string]interface{}{"productId": float64(1), "quantity": float64(2)}

	assert.True(t, matchArgs(actual, nil))
	assert.True(t, matchArgs(actual, map[string]interface{}{"quantity": 2}))
	assert.False(t, matchArgs(actual, map[string]interface{}{"size": "L"}))
	assert.False(t, matchArgs(nil, map[string]interface{}{"quantity": 2}))
}

func TestBuildWhereClause(t *testing.T) {
	sql, args, err := buildWhereClause(map[string]interface{}{"quantity": 2, "product_id": 1})
	require.NoError(t, err)
	assert.Equal(t, "product_id = ? AND quantity = ?", sql)
	assert.Equal(t, []interface{}{1, 2}, args)

	sql, args, err = buildWhereClause(nil)
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Nil(t, args)

	_, _, err = buildWhereClause(map[string]interface{}{"id = 1 OR 1": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid column name")
}

func TestStateValuesEqual(t *testing.T) {
	assert.True(t, stateValuesEqual("9.99", "9.99"))
	assert.True(t, stateValuesEqual("9.99", []byte("9.99")))
	assert.True(t, stateValuesEqual(2, int64(2)))
	assert.True(t, stateValuesEqual(int64(2), int64(2)))
	assert.True(t, stateValuesEqual(true, int64(1)))
	assert.True(t, stateValuesEqual(nil, nil))

	assert.False(t, stateValuesEqual("9.99", "10.00"))
	assert.False(t, stateValuesEqual(2, "2"))
	assert.False(t, stateValuesEqual(nil, int64(0)))
}

func stateContext(t *testing.T) *AssertionContext {
	t.Helper()
	st, err := session.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	price, err := model.ParsePrice("9.99")
	require.NoError(t, err)
	mug := model.Product{ID: 1, Name: "Mug", Price: price, Stock: 10}
	require.NoError(t, st.SaveCartSnapshot(context.Background(), []model.CartLine{mug.Line(2)}))

	return &AssertionContext{Store: st, Ctx: context.Background()}
}

func TestAssertFinalState(t *testing.T) {
	actx := stateContext(t)

	err := assertFinalState(actx.Ctx, actx.Store, Assertion{
		Table:  "cart_lines",
		Where:  map[string]interface{}{"product_id": 1},
		Expect: map[string]interface{}{"quantity": 2, "price": "9.99", "name": "Mug"},
	})
	assert.NoError(t, err)

	err = assertFinalState(actx.Ctx, actx.Store, Assertion{
		Table:  "cart_lines",
		Where:  map[string]interface{}{"product_id": 1},
		Expect: map[string]interface{}{"quantity": 3},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "quantity" = 3`)

	err = assertFinalState(actx.Ctx, actx.Store, Assertion{
		Table:  "cart_lines",
		Where:  map[string]interface{}{"product_id": 2},
		Expect: map[string]interface{}{"quantity": 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row not found")

	err = assertFinalState(actx.Ctx, actx.Store, Assertion{
		Table:  "cart_lines",
		Where:  map[string]interface{}{"product_id": 1},
		Expect: map[string]interface{}{"colour": "red"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not present in cart_lines")

	err = assertFinalState(actx.Ctx, actx.Store, Assertion{
		Table:  "cart_lines; DROP TABLE kv",
		Expect: map[string]interface{}{"quantity": 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

func TestAssertStateAbsent(t *testing.T) {
	actx := stateContext(t)

	assert.NoError(t, assertStateAbsent(actx.Ctx, actx.Store, Assertion{
		Table: "cart_lines",
		Where: map[string]interface{}{"product_id": 2},
	}))

	err := assertStateAbsent(actx.Ctx, actx.Store, Assertion{Table: "cart_lines"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 row(s) found")
}

func TestEvaluateAssertions(t *testing.T) {
	r := NewResult()
	r.Trace = sampleTrace()
	r.Requests = 3

	errs := EvaluateAssertions(r, []Assertion{
		{Type: AssertTraceCount, Action: "add", Count: 1},
		{Type: AssertRequestCount, Count: 3},
		{Type: AssertStateAbsent, Table: "cart_lines"},
		{Type: "eventually"},
	}, nil)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "requires database context")
	assert.Contains(t, errs[1], `unknown assertion type "eventually"`)
}
