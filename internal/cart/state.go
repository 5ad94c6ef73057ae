package cart

import (
	"fmt"

	"github.com/roach88/storefront/internal/model"
)

// Status is the lifecycle position of a Store.
//
//	Idle -> Loading -> {Populated, Errored}
//
// Every mutating call passes through Loading again.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusPopulated
	StatusErrored
)

var statusNames = [...]string{"idle", "loading", "populated", "errored"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// MarshalText renders the status name, e.g. in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is a point-in-time copy of a Store.
type State struct {
	Lines   []model.CartLine `json:"lines"`
	Status  Status           `json:"status"`
	Loading bool             `json:"loading"`
	Error   string           `json:"error,omitempty"`
}

func (st State) clone() State {
	st.Lines = append([]model.CartLine{}, st.Lines...)
	return st
}

// TotalItems returns the sum of line quantities.
func (st State) TotalItems() int {
	n := 0
	for _, l := range st.Lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice returns the exact sum of price * quantity over all lines.
func (st State) TotalPrice() model.Price {
	var total model.Price
	for _, l := range st.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (st *State) indexOf(id int64) int {
	for i := range st.Lines {
		if st.Lines[i].ID == id {
			return i
		}
	}
	return -1
}
