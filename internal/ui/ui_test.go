package ui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"traderterm/internal/config"
	"traderterm/internal/oms"
)

// fakeSvc satisfies OrderService and counts every call so tests can assert
// exactly how many requests a user action produced.
type fakeSvc struct {
	mu     sync.Mutex
	orders map[int]oms.Order
	execs  map[int]oms.Execution

	listOrderCalls int
	getOrderCalls  int
	getExecCalls   int
	cancelCalls    []int
	createCalls    int
}

func newFakeSvc(orders ...oms.Order) *fakeSvc {
	s := &fakeSvc{orders: make(map[int]oms.Order), execs: make(map[int]oms.Execution)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeSvc) ListOrders(context.Context) ([]oms.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listOrderCalls++
	out := make([]oms.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeSvc) GetOrder(_ context.Context, id int) (*oms.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrderCalls++
	o, ok := s.orders[id]
	if !ok {
		return nil, &oms.NotFoundError{Kind: "order", ID: id}
	}
	return &o, nil
}

func (s *fakeSvc) CancelOrder(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelCalls = append(s.cancelCalls, id)
	delete(s.orders, id)
	return nil
}

func (s *fakeSvc) ListExecutions(context.Context) ([]oms.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]oms.Execution, 0, len(s.execs))
	for _, e := range s.execs {
		out = append(out, e)
	}
	return out, nil
}

func (s *fakeSvc) GetExecution(_ context.Context, id int) (*oms.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getExecCalls++
	e, ok := s.execs[id]
	if !ok {
		return nil, &oms.NotFoundError{Kind: "execution", ID: id}
	}
	return &e, nil
}

func (s *fakeSvc) CreateOrder(_ context.Context, req oms.CreateOrderRequest) (*oms.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	id := 100 + s.createCalls
	o := oms.Order{ID: id, Symbol: req.Symbol, Open: req.Quantity.String()}
	s.orders[id] = o
	return &o, nil
}

func (s *fakeSvc) CreateSecurityDefinitionRequest(context.Context, oms.SecurityDefinitionRequest) error {
	return nil
}

func testModel(svc *fakeSvc) (*Model, *App) {
	cfg := config.Default()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := NewApp(cfg, svc, nil, log)
	m := NewModel(app)
	return m, app
}

// drain runs a command tree synchronously and feeds the resulting messages
// back into Update, skipping the long-lived event waiters.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if msg == nil {
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			drain(t, m, c)
		}
		return
	}
	_, next := m.Update(msg)
	drain(t, m, next)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDetailRouteFetchesOnce(t *testing.T) {
	svc := newFakeSvc(oms.Order{ID: 42, Symbol: "IBM", Open: "10"})
	m, _ := testModel(svc)

	drain(t, m, m.navigate("orders/42"))

	if m.view != ViewOrderDetail {
		t.Fatalf("view = %d, want ViewOrderDetail", m.view)
	}
	if m.orderDetail == nil || m.orderDetail.Symbol != "IBM" {
		t.Fatalf("orderDetail = %+v, want IBM", m.orderDetail)
	}
	if svc.getOrderCalls != 1 {
		t.Errorf("getOrderCalls = %d, want 1", svc.getOrderCalls)
	}
}

func TestBackRestoresListWithoutRefetch(t *testing.T) {
	svc := newFakeSvc(oms.Order{ID: 42, Symbol: "IBM", Open: "10"})
	m, app := testModel(svc)

	drain(t, m, m.navigate("orders"))
	drain(t, m, m.navigate("orders/42"))
	if svc.getOrderCalls != 1 {
		t.Fatalf("getOrderCalls after detail = %d, want 1", svc.getOrderCalls)
	}

	drain(t, m, m.back())

	if m.view != ViewOrders {
		t.Fatalf("view after back = %d, want ViewOrders", m.view)
	}
	if got := app.Router.Current(); got != "orders" {
		t.Errorf("current path = %q, want %q", got, "orders")
	}
	// Returning to the list reuses the polled collection.
	if svc.getOrderCalls != 1 {
		t.Errorf("getOrderCalls after back = %d, want 1", svc.getOrderCalls)
	}
}

func TestDetailFetchFailureReturnsToList(t *testing.T) {
	svc := newFakeSvc()
	m, _ := testModel(svc)

	drain(t, m, m.navigate("orders"))
	drain(t, m, m.navigate("orders/7"))

	if m.view != ViewOrders {
		t.Fatalf("view = %d, want ViewOrders after failed fetch", m.view)
	}
	if m.status == "" {
		t.Error("status is empty, want fetch error")
	}
}

func TestUnknownPathRejected(t *testing.T) {
	svc := newFakeSvc()
	m, app := testModel(svc)

	drain(t, m, m.navigate("orders"))
	drain(t, m, m.navigate("orders/abc"))

	if m.view != ViewOrders {
		t.Fatalf("view = %d, want ViewOrders", m.view)
	}
	if got := app.Router.Current(); got != "orders" {
		t.Errorf("current path = %q, want %q", got, "orders")
	}
	if m.status == "" {
		t.Error("status is empty, want unknown-path message")
	}
}

func TestCancelRemovesImmediately(t *testing.T) {
	svc := newFakeSvc(
		oms.Order{ID: 1, Symbol: "IBM", Open: "10"},
		oms.Order{ID: 2, Symbol: "MSFT", Open: "5"},
	)
	m, app := testModel(svc)

	drain(t, m, m.navigate("orders"))
	app.Orders.Replace([]oms.Order{
		{ID: 1, Symbol: "IBM", Open: "10"},
		{ID: 2, Symbol: "MSFT", Open: "5"},
	})
	m.refreshOrders()

	m.selected = 0
	_, cmd := m.Update(key("x"))

	// Removal happens before the server responds.
	if app.Orders.Len() != 1 {
		t.Fatalf("collection length = %d, want 1", app.Orders.Len())
	}
	if _, ok := app.Orders.Get(1); ok {
		t.Error("order 1 still present after cancel")
	}

	drain(t, m, cmd)
	if len(svc.cancelCalls) != 1 || svc.cancelCalls[0] != 1 {
		t.Errorf("cancelCalls = %v, want [1]", svc.cancelCalls)
	}
}

func TestCancelTerminalOrderRefused(t *testing.T) {
	svc := newFakeSvc(oms.Order{ID: 3, Symbol: "IBM", Open: "0", Closed: "10"})
	m, app := testModel(svc)

	drain(t, m, m.navigate("orders"))
	app.Orders.Replace([]oms.Order{{ID: 3, Symbol: "IBM", Open: "0", Closed: "10"}})
	m.refreshOrders()

	m.selected = 0
	_, cmd := m.Update(key("x"))
	drain(t, m, cmd)

	if app.Orders.Len() != 1 {
		t.Errorf("collection length = %d, want 1", app.Orders.Len())
	}
	if len(svc.cancelCalls) != 0 {
		t.Errorf("cancelCalls = %v, want none", svc.cancelCalls)
	}
}

func TestSubmitIssuesSingleCreate(t *testing.T) {
	svc := newFakeSvc()
	m, app := testModel(svc)

	drain(t, m, m.navigate("orders"))

	m.ticket.fields[fSymbol].input.SetValue("IBM")
	m.ticket.fields[fQuantity].input.SetValue("100")
	m.ticket.sync(app.OrderTicket)

	m.formFocused = true
	_, cmd := m.Update(key("enter"))
	drain(t, m, cmd)

	if svc.createCalls != 1 {
		t.Fatalf("createCalls = %d, want 1", svc.createCalls)
	}
	// Accepted submission resets the draft.
	if got := m.ticket.fields[fSymbol].value(); got != "" {
		t.Errorf("symbol after submit = %q, want empty", got)
	}
}

func TestSubmitValidationFailureKeepsDraft(t *testing.T) {
	svc := newFakeSvc()
	m, app := testModel(svc)

	drain(t, m, m.navigate("orders"))

	m.ticket.fields[fQuantity].input.SetValue("100")
	m.ticket.sync(app.OrderTicket) // symbol left empty

	m.formFocused = true
	_, cmd := m.Update(key("enter"))
	drain(t, m, cmd)

	if svc.createCalls != 0 {
		t.Fatalf("createCalls = %d, want 0", svc.createCalls)
	}
	if got := m.ticket.fields[fQuantity].value(); got != "100" {
		t.Errorf("quantity after rejection = %q, want %q", got, "100")
	}
	if m.status == "" {
		t.Error("status is empty, want validation error")
	}
}

func TestCollectionEventRefreshesRows(t *testing.T) {
	svc := newFakeSvc()
	m, app := testModel(svc)

	drain(t, m, m.navigate("orders"))

	app.Orders.Replace([]oms.Order{
		{ID: 2, Symbol: "MSFT", Open: "5"},
		{ID: 1, Symbol: "IBM", Open: "10"},
	})
	m.Update(ordersEventMsg{event: <-m.ordersCh})

	if len(m.orderRows) != 2 {
		t.Fatalf("orderRows length = %d, want 2", len(m.orderRows))
	}
	if m.orderRows[0].ID != 1 || m.orderRows[1].ID != 2 {
		t.Errorf("rows out of order: %v, %v", m.orderRows[0].ID, m.orderRows[1].ID)
	}
}

func TestViewRendersSelection(t *testing.T) {
	svc := newFakeSvc()
	m, app := testModel(svc)

	drain(t, m, m.navigate("orders"))
	app.Orders.Replace([]oms.Order{{ID: 1, Symbol: "IBM", Quantity: "10", Open: "10"}})
	m.refreshOrders()

	out := m.View()
	for _, want := range []string{"Orders", "IBM", "Order Ticket", "Symbol"} {
		if !strings.Contains(out, want) {
			t.Errorf("view output missing %q", want)
		}
	}
}

func TestPadHandlesMultiByteRunes(t *testing.T) {
	cases := []struct {
		in   string
		w    int
		want string
	}{
		{"IBM", 5, "IBM  "},
		{"ABCDEF", 4, "ABC…"},
		{"ÀÉÎÕÜ", 4, "ÀÉÎ…"},
		{"ÀÉ", 4, "ÀÉ  "},
	}
	for _, c := range cases {
		got := pad(c.in, c.w)
		if got != c.want {
			t.Errorf("pad(%q, %d) = %q, want %q", c.in, c.w, got, c.want)
		}
		if n := len([]rune(got)); n != c.w {
			t.Errorf("pad(%q, %d) width = %d runes, want %d", c.in, c.w, n, c.w)
		}
	}
}
