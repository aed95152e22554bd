package preview

import "strconv"

// SyncColumns replaces every option of sel with one option per column,
// in column order. Prior options are discarded without diffing.
func SyncColumns(sel ColumnSelector, columns []string) {
	opts := make([]Option, len(columns))
	for i, c := range columns {
		opts[i] = Option{Label: c, Value: c}
	}
	sel.SetOptions(opts)
}

// SyncRange resets the slider to [0, rowCount] with both handles at the
// ends, writes the same values into start and stop, and mirrors every
// later slide into them. Ordering of the handles is left to the slider.
//
// The fields are written before Configure so a slider that mirrors its
// initial handles has the last word over a slide still in flight.
func SyncRange(slider RangeSlider, start, stop TextField, rowCount int) {
	if rowCount < 0 {
		rowCount = 0
	}

	start.SetValue("0")
	stop.SetValue(strconv.Itoa(rowCount))

	slider.Configure(SliderConfig{
		Min:    0,
		Max:    rowCount,
		Values: [2]int{0, rowCount},
		OnSlide: func(lo, hi int) {
			start.SetValue(strconv.Itoa(lo))
			stop.SetValue(strconv.Itoa(hi))
		},
	})
}
