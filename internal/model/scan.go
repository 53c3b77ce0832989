package model

// ScanRow is one symbol's line in a scan report. Exactly one of Result and
// Error is set.
type ScanRow struct {
	Symbol string        `json:"symbol"`
	Status Status        `json:"status,omitempty"`
	Result *SignalResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// IsStrong reports whether the row carries a strong signal.
func (r ScanRow) IsStrong() bool {
	return r.Result != nil && r.Result.IsStrongSignal
}
