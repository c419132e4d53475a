// Package simsvc is an in-memory stand-in for the order service, used for
// local development and tests. It speaks the same JSON-over-HTTP protocol
// and simulates immediate fills for market orders.
package simsvc

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"traderterm/internal/oms"
)

// referencePrice is the fill price used when a market order carries no
// price of its own.
var referencePrice = decimal.NewFromInt(100)

// Manager owns the simulated order and execution books.
type Manager struct {
	mu          sync.RWMutex
	orderID     int
	executionID int
	clOrdID     int

	orders     map[int]*oms.Order
	executions map[int]*oms.Execution
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		orders:     make(map[int]*oms.Order),
		executions: make(map[int]*oms.Execution),
	}
}

// CreateOrder books a new order from the create request. Market orders fill
// immediately and produce an execution; all other types rest open.
func (m *Manager) CreateOrder(req oms.CreateOrderRequest) *oms.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orderID++
	m.clOrdID++

	qty := req.Quantity.String()
	order := &oms.Order{
		ID:                m.orderID,
		ClOrdID:           fmt.Sprintf("%d", m.clOrdID),
		Symbol:            req.Symbol,
		Quantity:          qty,
		Account:           req.Account,
		Session:           req.Session,
		Side:              req.Side,
		OrdType:           req.OrdType,
		Price:             req.Price,
		StopPrice:         req.StopPrice,
		Closed:            "0",
		Open:              qty,
		AvgPx:             "0",
		SecurityType:      req.SecurityType,
		MaturityMonthYear: req.MaturityMonthYear,
		MaturityDay:       req.MaturityDay,
		PutOrCall:         req.PutOrCall,
		StrikePrice:       req.StrikePrice,
	}
	m.orders[order.ID] = order

	if req.OrdType == oms.OrdTypeMarket {
		m.fill(order)
	}
	return order
}

// fill closes the full open quantity at the order's price, or the reference
// price for orders without one. Caller holds the lock.
func (m *Manager) fill(order *oms.Order) {
	px := referencePrice
	if p, err := decimal.NewFromString(order.Price); err == nil && p.IsPositive() {
		px = p
	}

	order.Closed = order.Open
	order.Open = "0"
	order.AvgPx = px.String()

	m.executionID++
	m.executions[m.executionID] = &oms.Execution{
		ID:       m.executionID,
		Symbol:   order.Symbol,
		Quantity: order.Closed,
		Side:     order.Side,
		Price:    px.String(),
		Session:  order.Session,
	}
}

// Orders returns all orders sorted ascending by identifier.
func (m *Manager) Orders() []oms.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]oms.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Order returns one order by identifier.
func (m *Manager) Order(id int) (oms.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return oms.Order{}, false
	}
	return *o, true
}

// CancelOrder removes an open order from the book. Cancelling an unknown or
// terminal order fails.
func (m *Manager) CancelOrder(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("order %d not found", id)
	}
	if o.Terminal() {
		return fmt.Errorf("order %d is terminal", id)
	}
	delete(m.orders, id)
	return nil
}

// Executions returns all executions sorted ascending by identifier.
func (m *Manager) Executions() []oms.Execution {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]oms.Execution, 0, len(m.executions))
	for _, e := range m.executions {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Execution returns one execution by identifier.
func (m *Manager) Execution(id int) (oms.Execution, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.executions[id]
	if !ok {
		return oms.Execution{}, false
	}
	return *e, true
}
