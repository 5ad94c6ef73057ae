package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/model"
	"github.com/roach88/storefront/internal/session"
	"github.com/roach88/storefront/internal/testutil"
	"github.com/roach88/storefront/internal/token"
)

// Outcome cases of a cart operation.
const (
	CaseOK                = "ok"
	CaseAuthLost          = "auth_lost"
	CaseInvalidQuantity   = "invalid_quantity"
	CaseInsufficientStock = "insufficient_stock"
	CaseNotFound          = "not_found"
	CaseFailed            = "failed"
)

// Shopper is the account every scenario runs as.
var Shopper = model.User{ID: 7, Name: "Grace", Email: "grace@example.com", Role: model.RoleUser}

var cartOperations = map[string]bool{
	"fetch":  true,
	"add":    true,
	"update": true,
	"remove": true,
	"clear":  true,
}

var backendActions = map[string]bool{
	"set_cart":       true,
	"set_stock":      true,
	"fail_next":      true,
	"expire_session": true,
}

// Harness executes one scenario. Each run gets its own backend and
// in-memory session database.
type Harness struct {
	shop    *testutil.FakeShop
	store   *session.Store
	manager *session.Manager
	cart    *cart.Store
	logger  *zap.Logger

	seq       int64
	seen      int
	redirects []string
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Start a fake backend with the scenario catalog
//  2. Open an in-memory session database and seed the credential
//  3. Execute setup steps
//  4. Execute flow steps, tracing operations and the requests they cause
//  5. Evaluate assertions
//
// An error is returned only when the scenario itself cannot be executed.
func Run(scenario *Scenario) (*Result, error) {
	shop := testutil.StartFakeShop()
	defer shop.Close()

	for _, p := range scenario.Catalog {
		price, err := model.ParsePrice(p.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog product %d: %w", p.ID, err)
		}
		shop.AddProduct(model.Product{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       price,
			Stock:       p.Stock,
			CategoryID:  p.Category,
		})
	}
	shop.AddUser(Shopper, "password123")

	st, err := session.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory session store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		shop:   shop,
		store:  st,
		logger: zap.NewNop(),
	}
	h.manager = session.NewManager(st, token.NewValidator(),
		session.WithLogger(h.logger),
		session.WithRedirect(func(loginURL string) { h.redirects = append(h.redirects, loginURL) }),
	)
	client, err := api.New(shop.URL(),
		api.WithLogger(h.logger),
		api.WithRequestIDs(testutil.NewSequentialIDs("req").Next),
	)
	if err != nil {
		return nil, err
	}
	h.cart = cart.New(client, h.manager, cart.WithLogger(h.logger))
	h.cart.Subscribe(h.persist)

	ctx := context.Background()
	if err := h.seedSession(ctx, scenario.Session); err != nil {
		return nil, fmt.Errorf("failed to seed session: %w", err)
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}
	result.Requests = shop.RequestCount()
	result.Redirects = h.redirects

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func (h *Harness) next() int64 {
	h.seq++
	return h.seq
}

// persist mirrors settled cart states into the session database, as the
// CLI does.
func (h *Harness) persist(s cart.State) {
	if s.Loading || s.Status == cart.StatusErrored {
		return
	}
	if err := h.store.SaveCartSnapshot(context.Background(), s.Lines); err != nil {
		h.logger.Warn("save cart snapshot", zap.Error(err))
	}
}

func (h *Harness) seedSession(ctx context.Context, mode string) error {
	var raw string
	switch mode {
	case "", SessionValid:
		raw = h.shop.Token(Shopper)
	case SessionExpired:
		raw = h.shop.ExpiredToken(Shopper)
	case SessionMalformed:
		raw = testutil.MalformedToken
	case SessionNone:
		return nil
	default:
		return fmt.Errorf("unknown session mode %q", mode)
	}
	return h.store.SaveLogin(ctx, raw, Shopper)
}

// executeSetup runs all setup steps. Setup steps must succeed.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep, result *Result) error {
	for i, step := range setup {
		result.AddInvocationTrace(step.Action, traceArgs(step.Args), h.next())
		if err := h.backend(ctx, step.Action, step.Args); err != nil {
			return fmt.Errorf("setup step %d (%s): %w", i, step.Action, err)
		}
		result.AddCompletionTrace(CaseOK, nil, h.next())

		h.logger.Debug("setup step completed", zap.Int("step", i), zap.String("action", step.Action))
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses against what
// the cart store actually did.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) error {
	for i, step := range flow {
		result.AddInvocationTrace(step.Invoke, traceArgs(step.Args), h.next())

		if backendActions[step.Invoke] {
			if err := h.backend(ctx, step.Invoke, step.Args); err != nil {
				return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
			}
			result.AddCompletionTrace(CaseOK, nil, h.next())
			continue
		}

		redirects := len(h.redirects)
		opErr, err := h.operate(ctx, step.Invoke, step.Args)
		if err != nil {
			return fmt.Errorf("flow step %d (%s): %w", i, step.Invoke, err)
		}
		h.traceRequests(result)

		outcome := outcomeCase(opErr, len(h.redirects) > redirects)
		summary := summarize(h.cart.State())
		result.AddCompletionTrace(outcome, summary, h.next())

		if step.Expect == nil {
			continue
		}
		if outcome != step.Expect.Case {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected case %q, got %q (error: %v)",
				i, step.Invoke, step.Expect.Case, outcome, opErr))
		}
		if !matchArgs(summary, step.Expect.Result) {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected result %v, got %v",
				i, step.Invoke, step.Expect.Result, summary))
		}
	}
	return nil
}

// operate runs one cart operation. opErr is what the store returned; err
// means the step itself was malformed.
func (h *Harness) operate(ctx context.Context, op string, args map[string]interface{}) (opErr, err error) {
	switch op {
	case "fetch":
		return h.cart.FetchItems(ctx), nil
	case "add":
		id, err := intArg(args, "product", 0)
		if err != nil {
			return nil, err
		}
		qty, err := intArg(args, "quantity", 1)
		if err != nil {
			return nil, err
		}
		return h.cart.AddToCart(ctx, int64(id), qty), nil
	case "update":
		id, err := intArg(args, "product", 0)
		if err != nil {
			return nil, err
		}
		qty, err := intArg(args, "quantity", 0)
		if err != nil {
			return nil, err
		}
		return h.cart.UpdateQuantity(ctx, int64(id), qty), nil
	case "remove":
		id, err := intArg(args, "product", 0)
		if err != nil {
			return nil, err
		}
		return h.cart.RemoveFromCart(ctx, int64(id)), nil
	case "clear":
		h.cart.ClearCart()
		return nil, nil
	}
	return nil, fmt.Errorf("unknown cart operation %q", op)
}

// backend applies a backend action directly to the fake service.
func (h *Harness) backend(ctx context.Context, action string, args map[string]interface{}) error {
	switch action {
	case "set_cart":
		raw, _ := args["lines"].([]interface{})
		lines := make([]model.CartLine, 0, len(raw))
		for i, item := range raw {
			m, ok := item.(map[string]interface{})
			if !ok {
				return fmt.Errorf("lines[%d]: expected a mapping", i)
			}
			id, err := intArg(m, "product", 0)
			if err != nil {
				return fmt.Errorf("lines[%d]: %w", i, err)
			}
			qty, err := intArg(m, "quantity", 1)
			if err != nil {
				return fmt.Errorf("lines[%d]: %w", i, err)
			}
			p, ok := h.shop.Product(int64(id))
			if !ok {
				return fmt.Errorf("lines[%d]: product %d is not in the catalog", i, id)
			}
			lines = append(lines, p.Line(qty))
		}
		h.shop.SetCart(Shopper.ID, lines)

	case "set_stock":
		id, err := intArg(args, "product", 0)
		if err != nil {
			return err
		}
		stock, err := intArg(args, "stock", 0)
		if err != nil {
			return err
		}
		h.shop.SetStock(int64(id), stock)

	case "fail_next":
		method, _ := args["method"].(string)
		path, _ := args["path"].(string)
		if method == "" || path == "" {
			return errors.New("method and path are required")
		}
		status, err := intArg(args, "status", 0)
		if err != nil {
			return err
		}
		message, _ := args["message"].(string)
		if message == "" {
			message = http.StatusText(status)
		}
		h.shop.FailNext(method, path, status, message)

	case "expire_session":
		return h.store.SaveLogin(ctx, h.shop.ExpiredToken(Shopper), Shopper)

	default:
		return fmt.Errorf("unknown backend action %q", action)
	}
	return nil
}

// traceRequests appends the requests received since the last call.
func (h *Harness) traceRequests(result *Result) {
	reqs := h.shop.Requests()
	for _, r := range reqs[h.seen:] {
		var body interface{}
		if r.Body != "" {
			if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
				body = r.Body
			}
		}
		result.AddRequestTrace(r.Method+" "+r.Path, body, h.next())
	}
	h.seen = len(reqs)
}

func outcomeCase(err error, redirected bool) string {
	switch {
	case err == nil && redirected:
		return CaseAuthLost
	case err == nil:
		return CaseOK
	case errors.Is(err, cart.ErrInvalidQuantity):
		return CaseInvalidQuantity
	case errors.Is(err, cart.ErrInsufficientStock):
		return CaseInsufficientStock
	case errors.Is(err, cart.ErrNotFound), errors.Is(err, api.ErrNotFound):
		return CaseNotFound
	}
	return CaseFailed
}

// summarize is the completion result of a cart operation.
func summarize(s cart.State) map[string]interface{} {
	m := map[string]interface{}{
		"status":      s.Status.String(),
		"lines":       len(s.Lines),
		"total_items": s.TotalItems(),
		"total_price": s.TotalPrice().String(),
	}
	if s.Error != "" {
		m["error"] = s.Error
	}
	return m
}

func traceArgs(args map[string]interface{}) interface{} {
	if len(args) == 0 {
		return nil
	}
	return args
}

// intArg reads an integer argument. def is used when the key is absent;
// def 0 makes the key required.
func intArg(args map[string]interface{}, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok {
		if def == 0 {
			return 0, fmt.Errorf("argument %q is required", key)
		}
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("argument %q must be an integer, got %v", key, v)
}
