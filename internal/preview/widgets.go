package preview

// Option is one entry of a ColumnSelector.
type Option struct {
	Label string
	Value string
}

// ColumnSelector is a dropdown whose option list can be replaced wholesale.
type ColumnSelector interface {
	SetOptions(opts []Option)
}

// TextField is a single-value text input.
type TextField interface {
	SetValue(v string)
}

// SliderConfig configures a dual-handle range slider.
type SliderConfig struct {
	Min    int
	Max    int
	Values [2]int

	// OnSlide is called on every handle movement with the current low and
	// high positions.
	OnSlide func(lo, hi int)
}

// RangeSlider is a two-handle slider. Implementations keep lo <= hi.
type RangeSlider interface {
	Configure(cfg SliderConfig)
}

// Notifier surfaces pipeline failures to the user.
type Notifier interface {
	Notify(err error)
	Clear()
}

// Handles groups the UI elements an Orchestrator writes to.
type Handles struct {
	Columns  ColumnSelector
	Slider   RangeSlider
	Start    TextField
	Stop     TextField
	Notifier Notifier
}

func (h Handles) validate() error {
	switch {
	case h.Columns == nil:
		return ErrMissingHandle
	case h.Slider == nil:
		return ErrMissingHandle
	case h.Start == nil, h.Stop == nil:
		return ErrMissingHandle
	case h.Notifier == nil:
		return ErrMissingHandle
	}
	return nil
}
