package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"traderterm/internal/blotter"
	"traderterm/internal/oms"
)

// Messages delivered to Update by commands.
type (
	ordersEventMsg struct{ event blotter.Event }
	execsEventMsg  struct{ event blotter.Event }

	orderDetailMsg struct {
		id    int
		order *oms.Order
		err   error
	}
	execDetailMsg struct {
		id   int
		exec *oms.Execution
		err  error
	}

	submitResultMsg struct {
		order *oms.Order
		err   error
	}
	secdefResultMsg struct{ err error }
	cancelResultMsg struct {
		id  int
		err error
	}
)

// waitEvent blocks on a collection event channel and wraps the next event.
// The handler re-arms it after every receipt.
func waitEvent(ch <-chan blotter.Event, mk func(blotter.Event) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return mk(e)
	}
}

func fetchOrderCmd(app *App, id int) tea.Cmd {
	return func() tea.Msg {
		o, err := app.Client.GetOrder(context.Background(), id)
		return orderDetailMsg{id: id, order: o, err: err}
	}
}

func fetchExecutionCmd(app *App, id int) tea.Cmd {
	return func() tea.Msg {
		e, err := app.Client.GetExecution(context.Background(), id)
		return execDetailMsg{id: id, exec: e, err: err}
	}
}

func submitOrderCmd(app *App) tea.Cmd {
	return func() tea.Msg {
		o, err := app.OrderTicket.Submit(context.Background())
		return submitResultMsg{order: o, err: err}
	}
}

func submitSecDefCmd(app *App) tea.Cmd {
	return func() tea.Msg {
		return secdefResultMsg{err: app.SecDefForm.Submit(context.Background())}
	}
}

func cancelOrderCmd(app *App, id int) tea.Cmd {
	return func() tea.Msg {
		return cancelResultMsg{id: id, err: app.Client.CancelOrder(context.Background(), id)}
	}
}

// Update is the single event loop. Every state change flows through here.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case ordersEventMsg:
		m.refreshOrders()
		if m.view == ViewOrderDetail && msg.event.Kind == blotter.EventReset {
			if o, ok := m.app.Orders.Get(m.detailID); ok {
				m.orderDetail = &o
			}
		}
		return m, waitEvent(m.ordersCh, func(e blotter.Event) tea.Msg { return ordersEventMsg{e} })

	case execsEventMsg:
		m.refreshExecutions()
		return m, waitEvent(m.execsCh, func(e blotter.Event) tea.Msg { return execsEventMsg{e} })

	case orderDetailMsg:
		if m.view != ViewOrderDetail || msg.id != m.detailID {
			return m, nil // stale response from an abandoned transition
		}
		if msg.err != nil {
			m.status = fmt.Sprintf("order %d: %v", msg.id, msg.err)
			return m, m.returnToList("orders")
		}
		m.orderDetail = msg.order
		return m, nil

	case execDetailMsg:
		if m.view != ViewExecutionDetail || msg.id != m.detailID {
			return m, nil
		}
		if msg.err != nil {
			m.status = fmt.Sprintf("execution %d: %v", msg.id, msg.err)
			return m, m.returnToList("executions")
		}
		m.execDetail = msg.exec
		return m, nil

	case submitResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("submit: %v", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("order %d submitted", msg.order.ID)
		m.ticket.reset(m.app.OrderTicket, m.app.Config.Sessions)
		return m, nil

	case secdefResultMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("security request: %v", msg.err)
			return m, nil
		}
		m.status = "security definition request sent"
		m.secdef.reset(m.app.SecDefForm, m.app.Config.Sessions)
		return m, nil

	case cancelResultMsg:
		if msg.err != nil {
			// The next poll restores the order if the server kept it.
			m.status = fmt.Sprintf("cancel %d: %v", msg.id, msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.gotoActive {
		return m.handleGotoKey(msg)
	}
	if m.formFocused {
		return m.handleFormKey(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "o":
		return m, m.navigate("orders")
	case "e":
		return m, m.navigate("executions")
	case "s":
		return m, m.navigate("secdefs")
	case "g":
		m.gotoActive = true
		m.gotoInput.SetValue("")
		return m, m.gotoInput.Focus()
	case "esc", "backspace":
		return m, m.back()
	case "i":
		if m.view == ViewOrders || m.view == ViewSecDefs {
			m.formFocused = true
			m.ticket.focusCurrent()
			m.secdef.focusCurrent()
		}
		return m, nil
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < len(m.rows())-1 {
			m.selected++
		}
		return m, nil
	case "enter":
		switch m.view {
		case ViewOrders:
			if m.selected < len(m.orderRows) {
				return m, m.navigate(fmt.Sprintf("orders/%d", m.orderRows[m.selected].ID))
			}
		case ViewExecutions:
			if m.selected < len(m.execRows) {
				return m, m.navigate(fmt.Sprintf("executions/%d", m.execRows[m.selected].ID))
			}
		}
		return m, nil
	case "x":
		return m.cancelSelected()
	}

	return m, nil
}

// cancelSelected removes the highlighted order immediately and issues the
// cancel in the background. A rejected cancel reappears on the next poll.
func (m *Model) cancelSelected() (tea.Model, tea.Cmd) {
	var target *oms.Order
	switch m.view {
	case ViewOrders:
		if m.selected < len(m.orderRows) {
			target = &m.orderRows[m.selected]
		}
	case ViewOrderDetail:
		target = m.orderDetail
	}
	if target == nil {
		return m, nil
	}
	if target.Terminal() {
		m.status = fmt.Sprintf("order %d is already done", target.ID)
		return m, nil
	}

	id := target.ID
	m.app.Orders.Remove(id)
	m.status = fmt.Sprintf("cancel requested for order %d", id)

	if m.view == ViewOrderDetail {
		return m, tea.Batch(cancelOrderCmd(m.app, id), m.returnToList("orders"))
	}
	return m, cancelOrderCmd(m.app, id)
}

func (m *Model) handleGotoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.gotoActive = false
		m.gotoInput.Blur()
		return m, nil
	case "enter":
		path := m.gotoInput.Value()
		m.gotoActive = false
		m.gotoInput.Blur()
		return m, m.navigate(path)
	}
	var cmd tea.Cmd
	m.gotoInput, cmd = m.gotoInput.Update(msg)
	return m, cmd
}

func (m *Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.formFocused = false
		return m, nil
	}

	if m.view == ViewSecDefs {
		if msg.String() == "enter" {
			m.app.SecDefForm.SetDraft(m.secdef.draft())
			return m, submitSecDefCmd(m.app)
		}
		cmd, changed := m.secdef.handleKey(msg)
		if changed {
			m.app.SecDefForm.SetDraft(m.secdef.draft())
		}
		return m, cmd
	}

	if msg.String() == "enter" {
		m.ticket.sync(m.app.OrderTicket)
		return m, submitOrderCmd(m.app)
	}
	cmd, changed := m.ticket.handleKey(msg)
	if changed {
		m.ticket.sync(m.app.OrderTicket)
	}
	return m, cmd
}

// returnToList leaves a detail view for its owning list, preferring the
// history stack so the stored selection survives.
func (m *Model) returnToList(path string) tea.Cmd {
	if m.app.Router.Back() {
		return m.routeCmd()
	}
	return m.navigate(path)
}
