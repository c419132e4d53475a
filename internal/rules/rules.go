// Package rules derives which order-ticket fields are enabled and required
// for a given instrument-type and order-type selection.
package rules

import "traderterm/internal/oms"

// FieldRule describes the state of a single conditional ticket field. A
// disabled field keeps whatever value it last held but is excluded from
// required-validation.
type FieldRule struct {
	Enabled  bool
	Required bool
}

// FieldRuleSet is the full enablement descriptor for a ticket. It is a pure
// function of (instrument type, order type); prior draft history never
// contributes.
type FieldRuleSet struct {
	MaturityMonthYear FieldRule
	MaturityDay       FieldRule
	PutOrCall         FieldRule
	StrikePrice       FieldRule
	Price             FieldRule
	StopPrice         FieldRule
}

// Rules composes the instrument-type and order-type tables. The instrument
// axis governs maturity, put-or-call, and strike; the order-type axis governs
// limit and stop price. The two axes never interact.
func Rules(securityType, ordType string) FieldRuleSet {
	var rs FieldRuleSet

	switch securityType {
	case oms.SecurityTypeFuture:
		rs.MaturityMonthYear = FieldRule{Enabled: true, Required: true}
		rs.MaturityDay = FieldRule{Enabled: true}
	case oms.SecurityTypeOption:
		rs.MaturityMonthYear = FieldRule{Enabled: true, Required: true}
		rs.MaturityDay = FieldRule{Enabled: true}
		rs.PutOrCall = FieldRule{Enabled: true, Required: true}
		rs.StrikePrice = FieldRule{Enabled: true, Required: true}
	}

	switch ordType {
	case oms.OrdTypeLimit:
		rs.Price = FieldRule{Enabled: true, Required: true}
	case oms.OrdTypeStop:
		rs.StopPrice = FieldRule{Enabled: true, Required: true}
	case oms.OrdTypeStopLimit:
		rs.Price = FieldRule{Enabled: true, Required: true}
		rs.StopPrice = FieldRule{Enabled: true, Required: true}
	}

	return rs
}
