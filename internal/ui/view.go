package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"traderterm/internal/nav"
	"traderterm/internal/oms"
)

// Styles.
var (
	navActiveStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	navStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	colHeaderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedRowStyle = lipgloss.NewStyle().Background(lipgloss.Color("236"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	requiredStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	disabledStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	focusStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	doneStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var orderColumns = []struct {
	name  string
	width int
}{
	{"ID", 5},
	{"Symbol", 8},
	{"Qty", 8},
	{"Account", 9},
	{"Open", 8},
	{"Executed", 8},
	{"Side", 10},
	{"Type", 10},
	{"Limit", 8},
	{"Stop", 8},
	{"AvgPx", 8},
	{"Session", 24},
}

var execColumns = []struct {
	name  string
	width int
}{
	{"ID", 5},
	{"Symbol", 8},
	{"Qty", 8},
	{"Side", 10},
	{"Price", 8},
	{"Session", 24},
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderNav())
	b.WriteString("\n\n")

	switch m.view {
	case ViewOrders:
		b.WriteString(m.renderOrderList())
		b.WriteString("\n")
		b.WriteString(m.renderOrderTicket())
	case ViewExecutions:
		b.WriteString(m.renderExecutionList())
	case ViewSecDefs:
		b.WriteString(m.renderSecdefForm())
	case ViewOrderDetail:
		b.WriteString(m.renderOrderDetail())
	case ViewExecutionDetail:
		b.WriteString(m.renderExecutionDetail())
	}

	b.WriteString("\n")
	if m.gotoActive {
		b.WriteString(m.gotoInput.View())
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m *Model) renderNav() string {
	active := m.app.Router.ActiveSection()
	parts := make([]string, 0, 3)
	for _, s := range []nav.Section{nav.SectionOrders, nav.SectionExecutions, nav.SectionSecDefs} {
		label := " " + s.String() + " "
		if s == active {
			parts = append(parts, navActiveStyle.Render(label))
		} else {
			parts = append(parts, navStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) helpLine() string {
	if m.formFocused {
		return "tab/shift+tab move · left/right cycle · enter submit · esc leave form"
	}
	switch m.view {
	case ViewOrders:
		return "j/k select · enter detail · x cancel · i ticket · o/e/s section · g goto · q quit"
	case ViewExecutions:
		return "j/k select · enter detail · o/e/s section · g goto · q quit"
	case ViewSecDefs:
		return "i form · o/e/s section · g goto · q quit"
	}
	return "esc back · o/e/s section · g goto · q quit"
}

// pad fits s into w cells, truncating on rune boundaries.
func pad(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		return string(r[:w-1]) + "…"
	}
	return s + strings.Repeat(" ", w-len(r))
}

func (m *Model) renderOrderList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Orders"))
	b.WriteString("\n")

	var hdr strings.Builder
	for _, c := range orderColumns {
		hdr.WriteString(pad(c.name, c.width))
		hdr.WriteString(" ")
	}
	b.WriteString(colHeaderStyle.Render(hdr.String()))
	b.WriteString("\n")

	if len(m.orderRows) == 0 {
		b.WriteString(doneStyle.Render("  (no orders)"))
		b.WriteString("\n")
		return b.String()
	}

	for i, o := range m.orderRows {
		cells := []string{
			fmt.Sprintf("%d", o.ID),
			o.Symbol,
			o.Quantity,
			o.Account,
			o.Open,
			o.Closed,
			oms.SideLabel(o.Side),
			oms.OrdTypeLabel(o.OrdType),
			o.Price,
			o.StopPrice,
			o.AvgPx,
			o.Session,
		}
		var row strings.Builder
		for j, c := range orderColumns {
			row.WriteString(pad(cells[j], c.width))
			row.WriteString(" ")
		}
		line := row.String()
		if o.Terminal() {
			line = doneStyle.Render(line)
		}
		if i == m.selected {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderExecutionList() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Executions"))
	b.WriteString("\n")

	var hdr strings.Builder
	for _, c := range execColumns {
		hdr.WriteString(pad(c.name, c.width))
		hdr.WriteString(" ")
	}
	b.WriteString(colHeaderStyle.Render(hdr.String()))
	b.WriteString("\n")

	if len(m.execRows) == 0 {
		b.WriteString(doneStyle.Render("  (no executions)"))
		b.WriteString("\n")
		return b.String()
	}

	for i, e := range m.execRows {
		cells := []string{
			fmt.Sprintf("%d", e.ID),
			e.Symbol,
			e.Quantity,
			oms.SideLabel(e.Side),
			e.Price,
			e.Session,
		}
		var row strings.Builder
		for j, c := range execColumns {
			row.WriteString(pad(cells[j], c.width))
			row.WriteString(" ")
		}
		line := row.String()
		if i == m.selected {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func detailRow(label, value string) string {
	return labelStyle.Render(pad(label, 20)) + value + "\n"
}

func (m *Model) renderOrderDetail() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Order %d", m.detailID)))
	b.WriteString("\n\n")

	o := m.orderDetail
	if o == nil {
		b.WriteString(doneStyle.Render("loading…"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(detailRow("ClOrdID", o.ClOrdID))
	b.WriteString(detailRow("Symbol", o.Symbol))
	b.WriteString(detailRow("Quantity", o.Quantity))
	b.WriteString(detailRow("Account", o.Account))
	b.WriteString(detailRow("Open", o.Open))
	b.WriteString(detailRow("Executed", o.Closed))
	b.WriteString(detailRow("Side", oms.SideLabel(o.Side)))
	b.WriteString(detailRow("Type", oms.OrdTypeLabel(o.OrdType)))
	b.WriteString(detailRow("Limit", o.Price))
	b.WriteString(detailRow("Stop", o.StopPrice))
	b.WriteString(detailRow("AvgPx", o.AvgPx))
	b.WriteString(detailRow("SecurityType", oms.SecurityTypeLabel(o.SecurityType)))
	if o.SecurityType == oms.SecurityTypeFuture || o.SecurityType == oms.SecurityTypeOption {
		b.WriteString(detailRow("Maturity", fmt.Sprintf("%s / %d", o.MaturityMonthYear, o.MaturityDay)))
	}
	if o.SecurityType == oms.SecurityTypeOption {
		put := "Call"
		if o.PutOrCall == 0 {
			put = "Put"
		}
		b.WriteString(detailRow("PutOrCall", put))
		b.WriteString(detailRow("Strike", o.StrikePrice))
	}
	b.WriteString(detailRow("Session", o.Session))

	if !o.Terminal() {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("x cancel"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderExecutionDetail() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Execution %d", m.detailID)))
	b.WriteString("\n\n")

	e := m.execDetail
	if e == nil {
		b.WriteString(doneStyle.Render("loading…"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(detailRow("Symbol", e.Symbol))
	b.WriteString(detailRow("Quantity", e.Quantity))
	b.WriteString(detailRow("Side", oms.SideLabel(e.Side)))
	b.WriteString(detailRow("Price", e.Price))
	b.WriteString(detailRow("Session", e.Session))
	return b.String()
}

// renderField draws one form line: label, value, required marker. Disabled
// fields are dimmed; the focused field is highlighted when the form has
// focus.
func (m *Model) renderField(f *field, enabled, required, focused bool) string {
	label := pad(f.label, 18)
	mark := "  "
	if required {
		mark = requiredStyle.Render("* ")
	}

	var value string
	switch {
	case !enabled:
		return disabledStyle.Render(mark+label+f.display()) + "\n"
	case f.isSelect():
		value = "< " + f.display() + " >"
	default:
		value = f.input.View()
	}

	line := mark + label
	if focused && m.formFocused {
		return line + focusStyle.Render(value) + "\n"
	}
	return line + value + "\n"
}

func (m *Model) renderOrderTicket() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Order Ticket"))
	b.WriteString("\n")

	f := m.ticket
	for i, fd := range f.fields {
		b.WriteString(m.renderField(fd, f.enabled(i), f.required(i), i == f.focus))
	}
	return b.String()
}

func (m *Model) renderSecdefForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Security Definition Request"))
	b.WriteString("\n")

	f := m.secdef
	for i, fd := range f.fields {
		b.WriteString(m.renderField(fd, true, false, i == f.focus))
	}
	return b.String()
}
