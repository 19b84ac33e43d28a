package catalog

import (
	"errors"
	"fmt"
	"math"

	"github.com/MogaPreet/maccindia/internal/models"
)

const (
	// PriceHeadroom is added to the highest product price to form the slider maximum.
	PriceHeadroom = 10000
	// DefaultMaxPrice is the slider maximum for an empty collection.
	DefaultMaxPrice = 200000
	PriceStep       = 5000
	PriceMinGap     = 5000
)

var ErrRangeTooNarrow = errors.New("price range narrower than the minimum gap")

// MaxPrice returns the slider maximum for products.
func MaxPrice(products []models.Product) float64 {
	if len(products) == 0 {
		return DefaultMaxPrice
	}
	highest := products[0].Price
	for _, p := range products[1:] {
		if p.Price > highest {
			highest = p.Price
		}
	}
	return highest + PriceHeadroom
}

// Preset is a named price interval offered as a shortcut.
type Preset struct {
	Key   string
	Label string
	Range PriceRange
	// All marks the preset that resets to the full range.
	All bool
}

var Presets = []Preset{
	{Key: "under-50k", Label: "Under ₹50K", Range: PriceRange{Low: 0, High: 50000}},
	{Key: "50k-80k", Label: "₹50K-80K", Range: PriceRange{Low: 50000, High: 80000}},
	{Key: "all", Label: "All", All: true},
}

// LookupPreset finds a preset by key.
func LookupPreset(key string) (Preset, bool) {
	for _, p := range Presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// RangeSelector is a two-handed price interval over [0, Max]. Every operation returns
// a new selector satisfying Low <= High-MinGap.
type RangeSelector struct {
	Max    float64
	Step   float64
	MinGap float64
	Value  PriceRange
}

// NewRangeSelector starts at the full range [0, maxPrice].
func NewRangeSelector(maxPrice, step, minGap float64) (RangeSelector, error) {
	if maxPrice < minGap {
		return RangeSelector{}, fmt.Errorf("max %.0f, gap %.0f: %w", maxPrice, minGap, ErrRangeTooNarrow)
	}
	return RangeSelector{
		Max:    maxPrice,
		Step:   step,
		MinGap: minGap,
		Value:  PriceRange{Low: 0, High: maxPrice},
	}, nil
}

func (s RangeSelector) snap(v float64) float64 {
	if s.Step <= 0 {
		return v
	}
	return math.Round(v/s.Step) * s.Step
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SetLow snaps v to the step and clamps it to [0, High-MinGap]. A NaN or infinite v
// leaves the selector unchanged.
func (s RangeSelector) SetLow(v float64) RangeSelector {
	if !finite(v) {
		return s
	}
	v = math.Min(s.snap(v), s.Value.High-s.MinGap)
	s.Value.Low = math.Max(0, v)
	return s
}

// SetHigh snaps v to the step and clamps it to [Low+MinGap, Max]. A NaN or infinite v
// leaves the selector unchanged.
func (s RangeSelector) SetHigh(v float64) RangeSelector {
	if !finite(v) {
		return s
	}
	v = math.Max(s.snap(v), s.Value.Low+s.MinGap)
	s.Value.High = math.Min(s.Max, v)
	return s
}

// MoveNearest moves whichever handle is closer to v. Ties move the high handle.
func (s RangeSelector) MoveNearest(v float64) RangeSelector {
	if !finite(v) {
		return s
	}
	v = s.snap(v)
	if math.Abs(v-s.Value.Low) < math.Abs(v-s.Value.High) {
		return s.SetLow(v)
	}
	return s.SetHigh(v)
}

// Reset selects the full range.
func (s RangeSelector) Reset() RangeSelector {
	s.Value = PriceRange{Low: 0, High: s.Max}
	return s
}

// ApplyPreset sets the interval directly, skipping the step and gap rules. A preset
// reaching past Max has High capped at Max and Low kept MinGap below it.
func (s RangeSelector) ApplyPreset(p Preset) RangeSelector {
	s.Value = s.presetRange(p)
	return s
}

// PresetActive reports whether the current interval equals the preset's.
func (s RangeSelector) PresetActive(p Preset) bool {
	return s.Value == s.presetRange(p)
}

func (s RangeSelector) presetRange(p Preset) PriceRange {
	if p.All {
		return PriceRange{Low: 0, High: s.Max}
	}
	r := p.Range
	if r.High > s.Max {
		r.High = s.Max
		r.Low = math.Max(0, math.Min(r.Low, s.Max-s.MinGap))
	}
	return r
}

// ValueAt converts a track position in [0,1] to a snapped value. Positions outside
// the track are pinned to its ends.
func (s RangeSelector) ValueAt(fraction float64) float64 {
	if math.IsNaN(fraction) {
		fraction = 0
	}
	fraction = math.Max(0, math.Min(1, fraction))
	return s.snap(fraction * s.Max)
}

// Percent maps v onto the track as a percentage of Max.
func (s RangeSelector) Percent(v float64) float64 {
	if s.Max <= 0 {
		return 0
	}
	return v / s.Max * 100
}

// Highlight returns the CSS left and right offsets, in percent, of the active range.
func (s RangeSelector) Highlight() (left, right float64) {
	return s.Percent(s.Value.Low), 100 - s.Percent(s.Value.High)
}
