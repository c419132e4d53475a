package oms

// FIX wire codes used by the order service.
const (
	SideBuy              = "1"
	SideSell             = "2"
	SideSellShort        = "5"
	SideSellShortExempt  = "6"
	SideCross            = "8"
	SideCrossShort       = "9"
	SideCrossShortExempt = "A"

	OrdTypeMarket    = "1"
	OrdTypeLimit     = "2"
	OrdTypeStop      = "3"
	OrdTypeStopLimit = "4"

	TIFDay = "0"
	TIFGTC = "1"
	TIFOPG = "2"
	TIFIOC = "3"
	TIFGTX = "5"

	SecurityTypeCommonStock = "CS"
	SecurityTypeFuture      = "FUT"
	SecurityTypeOption      = "OPT"
)

var sideLabels = map[string]string{
	SideBuy:              "Buy",
	SideSell:             "Sell",
	SideSellShort:        "Sell Short",
	SideSellShortExempt:  "Sell Short Exempt",
	SideCross:            "Cross",
	SideCrossShort:       "Cross Short",
	SideCrossShortExempt: "Cross Short Exempt",
}

var ordTypeLabels = map[string]string{
	OrdTypeMarket:    "Market",
	OrdTypeLimit:     "Limit",
	OrdTypeStop:      "Stop",
	OrdTypeStopLimit: "Stop Limit",
}

var tifLabels = map[string]string{
	TIFDay: "Day",
	TIFGTC: "GTC",
	TIFOPG: "OPG",
	TIFIOC: "IOC",
	TIFGTX: "GTX",
}

var securityTypeLabels = map[string]string{
	SecurityTypeCommonStock: "Common Stock",
	SecurityTypeFuture:      "Future",
	SecurityTypeOption:      "Option",
}

// SideLabel returns the display label for a side code. Unrecognized codes
// are echoed unchanged.
func SideLabel(code string) string {
	if label, ok := sideLabels[code]; ok {
		return label
	}
	return code
}

// OrdTypeLabel returns the display label for an order-type code.
// Unrecognized codes are echoed unchanged.
func OrdTypeLabel(code string) string {
	if label, ok := ordTypeLabels[code]; ok {
		return label
	}
	return code
}

// TIFLabel returns the display label for a time-in-force code. Unrecognized
// codes are echoed unchanged.
func TIFLabel(code string) string {
	if label, ok := tifLabels[code]; ok {
		return label
	}
	return code
}

// SecurityTypeLabel returns the display label for an instrument-type code.
// Unrecognized codes are echoed unchanged.
func SecurityTypeLabel(code string) string {
	if label, ok := securityTypeLabels[code]; ok {
		return label
	}
	return code
}
