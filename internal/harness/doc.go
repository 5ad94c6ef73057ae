// Package harness runs cart conformance scenarios.
//
// A scenario drives a real cart.Store, wired to a session.Manager and an
// api.Client, against an in-process testutil.FakeShop. Every operation and
// every HTTP request it causes lands in the trace, and the persisted session
// database is available to state assertions.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	session: valid            # valid | expired | malformed | none
//	catalog:
//	  - { id: 1, name: Mug, price: "9.99", stock: 10 }
//	setup:
//	  - action: set_cart
//	    args: { lines: [{ product: 1, quantity: 2 }] }
//	flow:
//	  - invoke: add
//	    args: { product: 1, quantity: 1 }
//	    expect:
//	      case: ok
//	      result: { total_items: 3 }
//	assertions:
//	  - type: trace_contains
//	    action: POST /cart/add
//	    args: { productId: 1, quantity: 1 }
//	  - type: final_state
//	    table: cart_lines
//	    where: { product_id: 1 }
//	    expect: { quantity: 3 }
//
// # Actions
//
// Cart operations: fetch, add, update, remove, clear.
// Backend actions: set_cart, set_stock, fail_next, expire_session.
//
// # Outcome Cases
//
// Each cart operation completes with one case: ok, auth_lost,
// invalid_quantity, insufficient_stock, not_found or failed.
//
// # Assertion Types
//
//   - trace_contains: an operation or request with matching args appears
//   - trace_order: operations or requests appear in the given order
//   - trace_count: an operation or request appears exactly N times
//   - request_count: the backend saw exactly N requests in the flow
//   - final_state: one row of a session table holds the expected values
//   - state_absent: no row of a session table matches
//   - redirect: the session was invalidated towards the given login URL
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/add_update_remove.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
