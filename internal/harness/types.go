package harness

// Trace event types.
const (
	EventInvocation = "invocation"
	EventRequest    = "request"
	EventCompletion = "completion"
)

// TraceEvent is one entry of a scenario trace: an operation being invoked,
// a request the backend received, or an operation completing.
type TraceEvent struct {
	Type       string      `json:"type"`
	Action     string      `json:"action,omitempty"`
	Args       interface{} `json:"args,omitempty"`
	OutputCase string      `json:"output_case,omitempty"`
	Result     interface{} `json:"result,omitempty"`
	Seq        int64       `json:"seq"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace contains invocations, requests and completions in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Redirects lists the login URLs of every forced logout.
	Redirects []string `json:"redirects,omitempty"`

	// Requests is the number of backend requests made during the flow.
	Requests int `json:"requests"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddInvocationTrace adds an operation invocation to the trace.
func (r *Result) AddInvocationTrace(action string, args interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   EventInvocation,
		Action: action,
		Args:   args,
		Seq:    seq,
	})
}

// AddRequestTrace adds a backend request ("POST /cart/add") to the trace.
func (r *Result) AddRequestTrace(action string, body interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:   EventRequest,
		Action: action,
		Args:   body,
		Seq:    seq,
	})
}

// AddCompletionTrace adds an operation completion to the trace.
func (r *Result) AddCompletionTrace(outputCase string, result interface{}, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:       EventCompletion,
		OutputCase: outputCase,
		Result:     result,
		Seq:        seq,
	})
}
