package fluxo

import (
	"context"
	"errors"
	"sync"
)

// DashboardLoader loads the dashboard of a month. *Client implements it.
type DashboardLoader interface {
	Dashboard(ctx context.Context, window MonthWindow) (*Dashboard, error)
}

// Ticket identifies one initiated load. Only the ticket of the most
// recently initiated load may commit.
type Ticket struct {
	Generation uint64
	Window     MonthWindow
}

// ViewState is a snapshot of a MonthlyView
type ViewState struct {
	// Window is the month most recently requested
	Window MonthWindow
	// Dashboard is the last successfully committed data; it may belong
	// to an earlier window while a load is in flight or after a failure
	Dashboard *Dashboard
	// Err is the failure of the latest load, if any
	Err error
	// Loading is true while the latest load has not committed
	Loading bool
	// Generation of the latest initiated load
	Generation uint64
}

// MonthlyView holds the dashboard state of a month-navigating view and
// guards it against out-of-order completions: a result whose ticket was
// superseded by a newer Begin is discarded. Safe for concurrent use.
type MonthlyView struct {
	mu        sync.Mutex
	loader    DashboardLoader
	latest    uint64
	state     ViewState
	discarded uint64
}

// NewMonthlyView creates a view loading through loader. A nil loader is
// allowed when the caller drives Begin and Commit itself.
func NewMonthlyView(loader DashboardLoader) *MonthlyView {
	return &MonthlyView{loader: loader}
}

// Begin records a new load of window and returns its ticket.
// Every earlier ticket becomes stale.
func (v *MonthlyView) Begin(window MonthWindow) Ticket {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.latest++
	v.state.Window = window
	v.state.Loading = true
	v.state.Generation = v.latest

	return Ticket{Generation: v.latest, Window: window}
}

// Commit applies the outcome of the load identified by t. It returns
// false, leaving the state untouched, when a newer load has begun.
// A failed current load records err and keeps the previous dashboard.
func (v *MonthlyView) Commit(t Ticket, dashboard *Dashboard, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if t.Generation != v.latest {
		v.discarded++
		return false
	}

	v.state.Loading = false
	if err != nil {
		v.state.Err = err
		return true
	}

	v.state.Dashboard = dashboard
	v.state.Err = nil
	return true
}

// Current reports whether t is still the latest ticket
func (v *MonthlyView) Current(t Ticket) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return t.Generation == v.latest
}

// Load begins a load of window, runs it and commits the result.
// A superseded load returns ErrStale and its result is dropped.
func (v *MonthlyView) Load(ctx context.Context, window MonthWindow) (*Dashboard, error) {
	if v.loader == nil {
		return nil, errors.New("monthly view has no loader")
	}

	ticket := v.Begin(window)
	dashboard, err := v.loader.Dashboard(ctx, window)
	if !v.Commit(ticket, dashboard, err) {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

// State returns a snapshot of the view
func (v *MonthlyView) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Discarded returns how many stale results have been dropped
func (v *MonthlyView) Discarded() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.discarded
}
