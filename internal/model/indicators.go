package model

// IndicatorFrame holds derived columns aligned index-for-index with a PriceSeries.
// Column i depends only on bars 0..i.
type IndicatorFrame struct {
	MA20           []Value
	MA50           []Value
	MA200          []Value
	RSI            []Value
	MACD           []Value
	MACDSignalLine []Value
	MACDHist       []Value
	TR             []Value
	ATR            []Value
	ATRPercent     []Value
	VolumeMA       []Value
	VolumeStd      []Value
	VolumeZScore   []Value
	MA20Slope      []Value
}

// Len returns the number of rows.
func (f *IndicatorFrame) Len() int { return len(f.MA20) }

// IndicatorRow is a single row of an IndicatorFrame.
type IndicatorRow struct {
	MA20           Value `json:"ma20"`
	MA50           Value `json:"ma50"`
	MA200          Value `json:"ma200"`
	RSI            Value `json:"rsi"`
	MACD           Value `json:"macd"`
	MACDSignalLine Value `json:"macd_signal_line"`
	MACDHist       Value `json:"macd_hist"`
	TR             Value `json:"tr"`
	ATR            Value `json:"atr"`
	ATRPercent     Value `json:"atr_percent"`
	VolumeMA       Value `json:"volume_ma"`
	VolumeStd      Value `json:"volume_std"`
	VolumeZScore   Value `json:"volume_zscore"`
	MA20Slope      Value `json:"ma20_slope"`
}

// Row returns row i. The caller must bounds-check i.
func (f *IndicatorFrame) Row(i int) IndicatorRow {
	return IndicatorRow{
		MA20:           f.MA20[i],
		MA50:           f.MA50[i],
		MA200:          f.MA200[i],
		RSI:            f.RSI[i],
		MACD:           f.MACD[i],
		MACDSignalLine: f.MACDSignalLine[i],
		MACDHist:       f.MACDHist[i],
		TR:             f.TR[i],
		ATR:            f.ATR[i],
		ATRPercent:     f.ATRPercent[i],
		VolumeMA:       f.VolumeMA[i],
		VolumeStd:      f.VolumeStd[i],
		VolumeZScore:   f.VolumeZScore[i],
		MA20Slope:      f.MA20Slope[i],
	}
}
