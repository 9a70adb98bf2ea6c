package models

// CreditProposal is the structured output of the second analysis stage.
// The JSON keys are the ones the proposal instruction asks the model to emit.
type CreditProposal struct {
	SuggestedAmount     int64   `json:"valor_sugerido"`
	MonthlyInterestRate float64 `json:"taxa_juros"`
	TermMonths          int     `json:"prazo_pagamento"`
	Justification       string  `json:"justificativa"`
}
