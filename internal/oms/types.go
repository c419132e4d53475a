// Package oms defines the wire types, error taxonomy, and HTTP client for
// the remote order service.
package oms

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Order is an order as owned by the order service. All numeric-looking
// fields arrive as strings on the wire except MaturityDay and PutOrCall.
type Order struct {
	ID                int    `json:"id"`
	ClOrdID           string `json:"clord_id"`
	Symbol            string `json:"symbol"`
	Quantity          string `json:"quantity"`
	Account           string `json:"account"`
	Session           string `json:"session_id"`
	Side              string `json:"side"`
	OrdType           string `json:"ord_type"`
	Price             string `json:"price"`
	StopPrice         string `json:"stop_price"`
	Closed            string `json:"closed"`
	Open              string `json:"open"`
	AvgPx             string `json:"avg_px"`
	SecurityType      string `json:"security_type"`
	MaturityMonthYear string `json:"maturity_month_year"`
	MaturityDay       int    `json:"maturity_day"`
	PutOrCall         int    `json:"put_or_call"`
	StrikePrice       string `json:"strike_price"`
}

// EntityID returns the server-assigned identifier.
func (o Order) EntityID() int {
	return o.ID
}

// Terminal reports whether the order is fully closed. A terminal order
// accepts no further cancel or amend. A missing or malformed open quantity
// counts as closed.
func (o *Order) Terminal() bool {
	return o.OpenQuantity().IsZero()
}

// OpenQuantity returns the open quantity as a decimal, or zero if the field
// is empty or malformed.
func (o *Order) OpenQuantity() decimal.Decimal {
	d, err := decimal.NewFromString(o.Open)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Execution is a fill report owned by the order service, read-only for this
// client.
type Execution struct {
	ID       int    `json:"id"`
	Symbol   string `json:"symbol"`
	Quantity string `json:"quantity"`
	Side     string `json:"side"`
	Price    string `json:"price"`
	Session  string `json:"session_id"`
}

// EntityID returns the server-assigned identifier.
func (e Execution) EntityID() int {
	return e.ID
}

// OrderDraft is an order under construction client-side. Every field holds
// the raw user input; typing happens at submit time.
type OrderDraft struct {
	Side              string
	Quantity          string
	Symbol            string
	SecurityType      string
	OrdType           string
	Price             string
	StopPrice         string
	Account           string
	TIF               string
	Session           string
	MaturityMonthYear string
	MaturityDay       string
	PutOrCall         string
	StrikePrice       string
}

// SecurityDefinitionRequestDraft is a security-definition request under
// construction client-side.
type SecurityDefinitionRequestDraft struct {
	SecurityRequestType string
	SecurityType        string
	Symbol              string
	Session             string
}

// CreateOrderRequest is the JSON body of POST /orders. Quantity goes out as
// a number and MaturityDay/PutOrCall as integers; everything else is passed
// through as entered.
type CreateOrderRequest struct {
	Side              string      `json:"side"`
	Quantity          json.Number `json:"quantity"`
	Symbol            string      `json:"symbol"`
	SecurityType      string      `json:"security_type"`
	OrdType           string      `json:"ord_type"`
	Price             string      `json:"price"`
	StopPrice         string      `json:"stop_price"`
	Account           string      `json:"account"`
	TIF               string      `json:"tif"`
	Session           string      `json:"session_id"`
	MaturityMonthYear string      `json:"maturity_month_year"`
	MaturityDay       int         `json:"maturity_day"`
	PutOrCall         int         `json:"put_or_call"`
	StrikePrice       string      `json:"strike_price"`
}

// SecurityDefinitionRequest is the JSON body of POST /securitydefinitionrequest.
type SecurityDefinitionRequest struct {
	SecurityRequestType int    `json:"security_request_type"`
	SecurityType        string `json:"security_type"`
	Symbol              string `json:"symbol"`
	Session             string `json:"session_id"`
}
