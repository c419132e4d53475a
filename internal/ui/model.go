package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"traderterm/internal/blotter"
	"traderterm/internal/nav"
	"traderterm/internal/oms"
)

// View identifies which screen is shown.
type View int

const (
	ViewOrders View = iota
	ViewExecutions
	ViewSecDefs
	ViewOrderDetail
	ViewExecutionDetail
)

// pendingFetch marks a detail fetch the most recent route transition asked
// for. The router handler records it; Update turns it into a command.
type pendingFetch int

const (
	fetchNone pendingFetch = iota
	fetchOrder
	fetchExecution
)

// Model is the bubbletea model for the whole client.
type Model struct {
	app *App

	view     View
	detailID int
	pending  pendingFetch

	orderDetail *oms.Order
	execDetail  *oms.Execution

	// Blotter state, refreshed from the collections on every event.
	orderRows []oms.Order
	execRows  []oms.Execution
	selected  int

	ticket      *orderForm
	secdef      *secdefForm
	formFocused bool

	gotoActive bool
	gotoInput  textinput.Model

	status        string
	width, height int

	ordersSubID int
	ordersCh    <-chan blotter.Event
	execsSubID  int
	execsCh     <-chan blotter.Event
}

// NewModel creates the model and registers the route table on the app's
// router.
func NewModel(app *App) *Model {
	m := &Model{
		app:    app,
		ticket: newOrderForm(app.OrderTicket.Draft(), app.OrderTicket.Rules(), app.Config.Sessions),
		secdef: newSecdefForm(app.SecDefForm.Draft(), app.Config.Sessions),
	}

	gotoIn := textinput.New()
	gotoIn.Placeholder = "orders/42"
	gotoIn.Prompt = "go: "
	gotoIn.CharLimit = 64
	m.gotoInput = gotoIn

	r := app.Router
	showOrders := func(int) {
		m.view = ViewOrders
		m.pending = fetchNone
	}
	r.Handle("", nav.SectionOrders, showOrders)
	r.Handle("orders", nav.SectionOrders, showOrders)
	r.Handle("executions", nav.SectionExecutions, func(int) {
		m.view = ViewExecutions
		m.pending = fetchNone
	})
	r.Handle("secdefs", nav.SectionSecDefs, func(int) {
		m.view = ViewSecDefs
		m.pending = fetchNone
	})
	r.Handle("orders/:id", nav.SectionOrders, func(id int) {
		m.view = ViewOrderDetail
		m.detailID = id
		m.pending = fetchOrder
	})
	r.Handle("executions/:id", nav.SectionExecutions, func(id int) {
		m.view = ViewExecutionDetail
		m.detailID = id
		m.pending = fetchExecution
	})

	m.ordersSubID, m.ordersCh = app.Orders.Subscribe(8)
	m.execsSubID, m.execsCh = app.Executions.Subscribe(8)

	return m
}

// Init dispatches the root route and starts listening for collection
// events.
func (m *Model) Init() tea.Cmd {
	cmd := m.navigate("")
	return tea.Batch(cmd,
		waitEvent(m.ordersCh, func(e blotter.Event) tea.Msg { return ordersEventMsg{e} }),
		waitEvent(m.execsCh, func(e blotter.Event) tea.Msg { return execsEventMsg{e} }),
	)
}

// navigate dispatches a path through the router and returns any detail-fetch
// command the transition requires.
func (m *Model) navigate(path string) tea.Cmd {
	if err := m.app.Router.Navigate(path); err != nil {
		m.status = fmt.Sprintf("unknown path %q", path)
		return nil
	}
	return m.routeCmd()
}

// back reverses the last transition. List views are restored from the
// already-polled collections; a detail route is refetched.
func (m *Model) back() tea.Cmd {
	if !m.app.Router.Back() {
		return nil
	}
	return m.routeCmd()
}

// routeCmd consumes the pending fetch recorded by the route handlers.
func (m *Model) routeCmd() tea.Cmd {
	pending := m.pending
	m.pending = fetchNone

	switch pending {
	case fetchOrder:
		m.orderDetail = nil
		return fetchOrderCmd(m.app, m.detailID)
	case fetchExecution:
		m.execDetail = nil
		return fetchExecutionCmd(m.app, m.detailID)
	}
	return nil
}

// refreshOrders re-reads the order collection after a reset or removal.
// Previously held item references are discarded wholesale.
func (m *Model) refreshOrders() {
	m.orderRows = m.app.Orders.Snapshot()
	m.clampSelection()
}

func (m *Model) refreshExecutions() {
	m.execRows = m.app.Executions.Snapshot()
	m.clampSelection()
}

func (m *Model) clampSelection() {
	n := len(m.rows())
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// rows returns the row count source for the active list view.
func (m *Model) rows() []int {
	switch m.view {
	case ViewOrders:
		ids := make([]int, len(m.orderRows))
		for i, o := range m.orderRows {
			ids[i] = o.ID
		}
		return ids
	case ViewExecutions:
		ids := make([]int, len(m.execRows))
		for i, e := range m.execRows {
			ids[i] = e.ID
		}
		return ids
	}
	return nil
}
