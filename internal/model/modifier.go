package model

// Modifier is a (flat, rate) pair applied on top of an attribute's base.
// Rate follows the (rate+100)/100 convention: Rate 20 means ×1.2.
// Formulas, when present, replace the literal value they correspond to.
type Modifier struct {
	Flat        float64 `json:"flat"`
	Rate        float64 `json:"rate"`
	FlatFormula string  `json:"flat_formula,omitempty"`
	RateFormula string  `json:"rate_formula,omitempty"`
}

// IsZero reports whether the modifier contributes nothing.
func (m Modifier) IsZero() bool {
	return m.Flat == 0 && m.Rate == 0 && m.FlatFormula == "" && m.RateFormula == ""
}
