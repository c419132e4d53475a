package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"traderterm/internal/oms"
	"traderterm/internal/rules"
	"traderterm/internal/ticket"
)

// option is one choice of a select field, a wire code plus its label.
type option struct {
	code  string
	label string
}

// field is a single form field: either a cycling select or a free text
// input.
type field struct {
	label   string
	options []option // nil for text inputs
	idx     int      // selected option
	input   textinput.Model
}

func newSelect(label string, options []option, code string) *field {
	f := &field{label: label, options: options}
	for i, o := range options {
		if o.code == code {
			f.idx = i
			break
		}
	}
	return f
}

func newInput(label, placeholder, value string) *field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.SetValue(value)
	in.Prompt = ""
	in.CharLimit = 32
	f := &field{label: label, input: in}
	return f
}

func (f *field) isSelect() bool {
	return f.options != nil
}

// value returns the wire value of the field.
func (f *field) value() string {
	if f.isSelect() {
		return f.options[f.idx].code
	}
	return f.input.Value()
}

// display returns the human-readable value of the field.
func (f *field) display() string {
	if f.isSelect() {
		return f.options[f.idx].label
	}
	return f.input.Value()
}

// cycle advances a select field by delta, wrapping around.
func (f *field) cycle(delta int) {
	if !f.isSelect() {
		return
	}
	n := len(f.options)
	f.idx = (f.idx + delta + n) % n
}

var (
	sideOptions = []option{
		{oms.SideBuy, "Buy"},
		{oms.SideSell, "Sell"},
		{oms.SideSellShort, "Sell Short"},
		{oms.SideSellShortExempt, "Sell Short Exempt"},
		{oms.SideCross, "Cross"},
		{oms.SideCrossShort, "Cross Short"},
		{oms.SideCrossShortExempt, "Cross Short Exempt"},
	}
	ordTypeOptions = []option{
		{oms.OrdTypeMarket, "Market"},
		{oms.OrdTypeLimit, "Limit"},
		{oms.OrdTypeStop, "Stop"},
		{oms.OrdTypeStopLimit, "Stop Limit"},
	}
	securityTypeOptions = []option{
		{oms.SecurityTypeCommonStock, "Common Stock"},
		{oms.SecurityTypeFuture, "Future"},
		{oms.SecurityTypeOption, "Option"},
	}
	tifOptions = []option{
		{oms.TIFDay, "Day"},
		{oms.TIFIOC, "IOC"},
		{oms.TIFOPG, "OPG"},
		{oms.TIFGTC, "GTC"},
		{oms.TIFGTX, "GTX"},
	}
	putOrCallOptions = []option{
		{"1", "Call"},
		{"0", "Put"},
	}
	secReqTypeOptions = []option{
		{"0", "Security Identity and Specifications"},
		{"1", "Security Identity for the Specifications Provided"},
		{"2", "List Security Types"},
		{"3", "List Securities"},
	}
)

// Order-ticket field positions.
const (
	fSide = iota
	fQuantity
	fSymbol
	fSecurityType
	fMaturityMonthYear
	fMaturityDay
	fPutOrCall
	fStrikePrice
	fOrdType
	fPrice
	fStopPrice
	fAccount
	fTIF
	fSession
	orderFieldCount
)

// orderForm is the interactive order ticket. Field enablement follows the
// rule set; disabled fields keep their value but cannot take focus.
type orderForm struct {
	fields  [orderFieldCount]*field
	focus   int
	ruleSet rules.FieldRuleSet
}

func sessionOptions(sessions []string) []option {
	opts := make([]option, len(sessions))
	for i, s := range sessions {
		opts[i] = option{s, s}
	}
	if len(opts) == 0 {
		opts = []option{{"", "(no sessions)"}}
	}
	return opts
}

func newOrderForm(draft oms.OrderDraft, rs rules.FieldRuleSet, sessions []string) *orderForm {
	f := &orderForm{ruleSet: rs}
	f.fields[fSide] = newSelect("Side", sideOptions, draft.Side)
	f.fields[fQuantity] = newInput("Quantity", "qty", draft.Quantity)
	f.fields[fSymbol] = newInput("Symbol", "symbol", draft.Symbol)
	f.fields[fSecurityType] = newSelect("SecurityType", securityTypeOptions, draft.SecurityType)
	f.fields[fMaturityMonthYear] = newInput("MaturityMonthYear", "yyyymm", draft.MaturityMonthYear)
	f.fields[fMaturityDay] = newInput("MaturityDay", "dd", draft.MaturityDay)
	f.fields[fPutOrCall] = newSelect("PutOrCall", putOrCallOptions, draft.PutOrCall)
	f.fields[fStrikePrice] = newInput("StrikePrice", "0.00", draft.StrikePrice)
	f.fields[fOrdType] = newSelect("Type", ordTypeOptions, draft.OrdType)
	f.fields[fPrice] = newInput("Limit", "0.00", draft.Price)
	f.fields[fStopPrice] = newInput("Stop", "0.00", draft.StopPrice)
	f.fields[fAccount] = newInput("Account", "account", draft.Account)
	f.fields[fTIF] = newSelect("TIF", tifOptions, draft.TIF)
	f.fields[fSession] = newSelect("Session", sessionOptions(sessions), draft.Session)
	f.focusCurrent()
	return f
}

// enabled reports whether the field at position i accepts input under the
// current rule set.
func (f *orderForm) enabled(i int) bool {
	switch i {
	case fMaturityMonthYear:
		return f.ruleSet.MaturityMonthYear.Enabled
	case fMaturityDay:
		return f.ruleSet.MaturityDay.Enabled
	case fPutOrCall:
		return f.ruleSet.PutOrCall.Enabled
	case fStrikePrice:
		return f.ruleSet.StrikePrice.Enabled
	case fPrice:
		return f.ruleSet.Price.Enabled
	case fStopPrice:
		return f.ruleSet.StopPrice.Enabled
	}
	return true
}

// required reports whether the field at position i is required under the
// current rule set.
func (f *orderForm) required(i int) bool {
	switch i {
	case fQuantity, fSymbol:
		return true
	case fMaturityMonthYear:
		return f.ruleSet.MaturityMonthYear.Required
	case fPutOrCall:
		return f.ruleSet.PutOrCall.Required
	case fStrikePrice:
		return f.ruleSet.StrikePrice.Required
	case fPrice:
		return f.ruleSet.Price.Required
	case fStopPrice:
		return f.ruleSet.StopPrice.Required
	}
	return false
}

// draft assembles the current field values. Disabled fields contribute their
// retained values; the controller ignores them during validation.
func (f *orderForm) draft() oms.OrderDraft {
	return oms.OrderDraft{
		Side:              f.fields[fSide].value(),
		Quantity:          f.fields[fQuantity].value(),
		Symbol:            f.fields[fSymbol].value(),
		SecurityType:      f.fields[fSecurityType].value(),
		OrdType:           f.fields[fOrdType].value(),
		Price:             f.fields[fPrice].value(),
		StopPrice:         f.fields[fStopPrice].value(),
		Account:           f.fields[fAccount].value(),
		TIF:               f.fields[fTIF].value(),
		Session:           f.fields[fSession].value(),
		MaturityMonthYear: f.fields[fMaturityMonthYear].value(),
		MaturityDay:       f.fields[fMaturityDay].value(),
		PutOrCall:         f.fields[fPutOrCall].value(),
		StrikePrice:       f.fields[fStrikePrice].value(),
	}
}

// sync pushes the form state into the controller and pulls the recomputed
// rule set back. Focus moves off a field that became disabled.
func (f *orderForm) sync(t *ticket.OrderTicket) {
	t.SetDraft(f.draft())
	f.ruleSet = t.Rules()
	if !f.enabled(f.focus) {
		f.moveFocus(1)
	}
}

// reset rebuilds the form from a fresh controller draft.
func (f *orderForm) reset(t *ticket.OrderTicket, sessions []string) {
	*f = *newOrderForm(t.Draft(), t.Rules(), sessions)
}

func (f *orderForm) focusCurrent() {
	for i, fd := range f.fields {
		if fd.isSelect() {
			continue
		}
		if i == f.focus {
			fd.input.Focus()
		} else {
			fd.input.Blur()
		}
	}
}

// moveFocus advances focus by step, skipping disabled fields.
func (f *orderForm) moveFocus(step int) {
	for range f.fields {
		f.focus = (f.focus + step + orderFieldCount) % orderFieldCount
		if f.enabled(f.focus) {
			break
		}
	}
	f.focusCurrent()
}

// handleKey routes one key to the form. It reports whether the draft may
// have changed so the caller can resync the controller.
func (f *orderForm) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	cur := f.fields[f.focus]

	switch msg.String() {
	case "tab", "down":
		f.moveFocus(1)
		return nil, false
	case "shift+tab", "up":
		f.moveFocus(-1)
		return nil, false
	case "left":
		if cur.isSelect() {
			cur.cycle(-1)
			return nil, true
		}
	case "right":
		if cur.isSelect() {
			cur.cycle(1)
			return nil, true
		}
	}

	if cur.isSelect() {
		return nil, false
	}
	var cmd tea.Cmd
	cur.input, cmd = cur.input.Update(msg)
	return cmd, true
}

// Security-definition form field positions.
const (
	sfRequestType = iota
	sfSecurityType
	sfSymbol
	sfSession
	secdefFieldCount
)

// secdefForm is the security-definition request form. All fields are always
// enabled.
type secdefForm struct {
	fields [secdefFieldCount]*field
	focus  int
}

func newSecdefForm(draft oms.SecurityDefinitionRequestDraft, sessions []string) *secdefForm {
	f := &secdefForm{}
	f.fields[sfRequestType] = newSelect("Security Request Type", secReqTypeOptions, draft.SecurityRequestType)
	f.fields[sfSecurityType] = newSelect("SecurityType", securityTypeOptions, draft.SecurityType)
	f.fields[sfSymbol] = newInput("Symbol", "symbol", draft.Symbol)
	f.fields[sfSession] = newSelect("Session", sessionOptions(sessions), draft.Session)
	f.focusCurrent()
	return f
}

func (f *secdefForm) draft() oms.SecurityDefinitionRequestDraft {
	return oms.SecurityDefinitionRequestDraft{
		SecurityRequestType: f.fields[sfRequestType].value(),
		SecurityType:        f.fields[sfSecurityType].value(),
		Symbol:              f.fields[sfSymbol].value(),
		Session:             f.fields[sfSession].value(),
	}
}

func (f *secdefForm) reset(t *ticket.SecDefForm, sessions []string) {
	*f = *newSecdefForm(t.Draft(), sessions)
}

func (f *secdefForm) focusCurrent() {
	for i, fd := range f.fields {
		if fd.isSelect() {
			continue
		}
		if i == f.focus {
			fd.input.Focus()
		} else {
			fd.input.Blur()
		}
	}
}

func (f *secdefForm) moveFocus(step int) {
	f.focus = (f.focus + step + secdefFieldCount) % secdefFieldCount
	f.focusCurrent()
}

func (f *secdefForm) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	cur := f.fields[f.focus]

	switch msg.String() {
	case "tab", "down":
		f.moveFocus(1)
		return nil, false
	case "shift+tab", "up":
		f.moveFocus(-1)
		return nil, false
	case "left":
		if cur.isSelect() {
			cur.cycle(-1)
			return nil, true
		}
	case "right":
		if cur.isSelect() {
			cur.cycle(1)
			return nil, true
		}
	}

	if cur.isSelect() {
		return nil, false
	}
	var cmd tea.Cmd
	cur.input, cmd = cur.input.Update(msg)
	return cmd, true
}
