package preview

// models.go holds in-memory widget models. A UI surface renders them; the
// Orchestrator only sees them through the Handles interfaces.

import (
	"errors"
	"strconv"
	"sync"
)

// ErrUnknownOption is returned when selecting a value the select does not offer.
var ErrUnknownOption = errors.New("unknown option")

// Select is a ColumnSelector that remembers its options and chosen value.
type Select struct {
	mu      sync.RWMutex
	options []Option
	value   string
}

// SetOptions replaces the option list. Like a rebuilt HTML select, the
// first option becomes the selected value.
func (s *Select) SetOptions(opts []Option) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.options = append([]Option(nil), opts...)
	s.value = ""
	if len(s.options) > 0 {
		s.value = s.options[0].Value
	}
}

// Options returns a copy of the current options.
func (s *Select) Options() []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Option(nil), s.options...)
}

// Value returns the selected value, or "" when there are no options.
func (s *Select) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Choose selects value if it is one of the options.
func (s *Select) Choose(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.options {
		if o.Value == value {
			s.value = value
			return nil
		}
	}
	return ErrUnknownOption
}

// Field is a TextField that stores its value.
type Field struct {
	mu    sync.RWMutex
	value string
}

func (f *Field) SetValue(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

func (f *Field) Value() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.value
}

// Int parses the value as an integer.
func (f *Field) Int() (int, error) {
	return strconv.Atoi(f.Value())
}

// Slider is a RangeSlider with two handles that cannot cross.
type Slider struct {
	mu         sync.RWMutex
	min, max   int
	values     [2]int
	onSlide    func(lo, hi int)
	configured bool
}

// Configure resets the domain, the handles and the slide hook. The hook
// is called once with the initial handles so mirrors start in step.
func (s *Slider) Configure(cfg SliderConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Max < cfg.Min {
		cfg.Max = cfg.Min
	}
	s.min, s.max = cfg.Min, cfg.Max
	lo := clamp(cfg.Values[0], s.min, s.max)
	hi := clamp(cfg.Values[1], lo, s.max)
	s.values = [2]int{lo, hi}
	s.onSlide = cfg.OnSlide
	s.configured = true

	if s.onSlide != nil {
		s.onSlide(lo, hi)
	}
}

// Configured reports whether Configure has been called.
func (s *Slider) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configured
}

// Bounds returns the slider domain.
func (s *Slider) Bounds() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.min, s.max
}

// Values returns the low and high handle positions.
func (s *Slider) Values() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[0], s.values[1]
}

// Slide moves both handles, the way a drag reports them. Positions are
// clamped to the domain. If the handles would cross, the handle that moved
// stops at the other one. The hook runs with the final positions, which
// are also returned.
//
// The hook runs under the slider lock: concurrent slides reach the mirrored
// fields in the same order they reach the handles. It must not call back
// into the slider.
func (s *Slider) Slide(lo, hi int) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slide(lo, hi)
}

// Nudge moves one handle (0 low, 1 high) by delta.
func (s *Slider) Nudge(handle, delta int) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi := s.values[0], s.values[1]
	if handle == 0 {
		return s.slide(min(lo+delta, hi), hi)
	}
	return s.slide(lo, max(hi+delta, lo))
}

// slide requires s.mu held.
func (s *Slider) slide(lo, hi int) (int, int) {
	lo = clamp(lo, s.min, s.max)
	hi = clamp(hi, s.min, s.max)
	if lo > hi {
		if lo != s.values[0] {
			lo = hi
		} else {
			hi = lo
		}
	}
	s.values = [2]int{lo, hi}

	if s.onSlide != nil {
		s.onSlide(lo, hi)
	}
	return lo, hi
}

// Banner is a Notifier holding the last surfaced error.
type Banner struct {
	mu  sync.RWMutex
	err error
}

func (b *Banner) Notify(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

func (b *Banner) Clear() {
	b.mu.Lock()
	b.err = nil
	b.mu.Unlock()
}

// Err returns the surfaced error, or nil.
func (b *Banner) Err() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}
