package roast

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

var (
	// ErrMalformed reports document data that lacks the keys or shapes a
	// resolver needs.
	ErrMalformed = errors.New("malformed roast data")

	// ErrOutOfRange reports a control lookup at an index earlier than every
	// action recorded for the channel.
	ErrOutOfRange = errors.New("not within control range")
)

// SampleRateField holds the number of samples per second.
const SampleRateField = "sampleRate"

// ResolveControl returns the value of channel ch in effect at sample index
// target.
//
// Actions are read from actions.actionTimeList. Actions of ch are ordered
// by index (stably, so of two actions at the same index the later one in
// the log wins) and the last one at or before target supplies the value.
// When every action of ch comes after target the error wraps
// ErrOutOfRange.
func ResolveControl(doc *Document, ch Channel, target float64) (Value, error) {
	actions, ok := doc.Lookup("actions")
	if !ok || !actions.IsObject() {
		return Null(), fmt.Errorf("%w: actions missing", ErrMalformed)
	}
	list := actions.Get("actionTimeList")
	if !list.IsArray() {
		return Null(), fmt.Errorf("%w: actions.actionTimeList missing", ErrMalformed)
	}

	type breakpoint struct {
		index float64
		value gjson.Result
	}
	var points []breakpoint
	for i, action := range list.Array() {
		code := action.Get("ctrlType")
		if !code.Exists() {
			return Null(), fmt.Errorf("%w: action %d has no ctrlType", ErrMalformed, i)
		}
		if code.Type != gjson.Number || code.Num != float64(ch.Code()) {
			continue
		}
		index := action.Get("index")
		if index.Type != gjson.Number {
			return Null(), fmt.Errorf("%w: action %d has no index", ErrMalformed, i)
		}
		value := action.Get("value")
		if !value.Exists() {
			return Null(), fmt.Errorf("%w: action %d has no value", ErrMalformed, i)
		}
		points = append(points, breakpoint{index: index.Num, value: value})
	}
	slices.SortStableFunc(points, func(a, b breakpoint) int {
		return cmp.Compare(a.index, b.index)
	})

	current := -1
	for i, p := range points {
		if p.index > target {
			break
		}
		current = i
	}
	if current < 0 {
		return Null(), fmt.Errorf("index value %s %w", formatIndex(target), ErrOutOfRange)
	}
	return valueOf(points[current].value), nil
}

// ResolveSample returns element target of the sampled series stored under
// series. target is clamped into [0, len-1]: boundary events may record an
// index one past the last sample, and a negative index maps to the first
// sample.
func ResolveSample(doc *Document, series string, target float64) (Value, error) {
	r, ok := doc.Lookup(series)
	if !ok {
		return Null(), fmt.Errorf("%w: %s missing", ErrMalformed, series)
	}
	if !r.IsArray() {
		return Null(), fmt.Errorf("%w: %s is not a sampled series", ErrMalformed, series)
	}
	if target != math.Trunc(target) {
		return Null(), fmt.Errorf("%w: index %s is not an integer", ErrMalformed, formatIndex(target))
	}
	samples := r.Array()
	if len(samples) == 0 {
		return Null(), fmt.Errorf("%w: %s is empty", ErrMalformed, series)
	}
	last := float64(len(samples) - 1)
	return valueOf(samples[int(max(0, min(target, last)))]), nil
}

// ResolveSeconds converts sample index target into elapsed seconds using
// the document's sample rate.
func ResolveSeconds(doc *Document, target float64) (Value, error) {
	rate, err := doc.number(SampleRateField)
	if err != nil {
		return Null(), err
	}
	if rate == 0 {
		return Null(), fmt.Errorf("%w: %s is zero", ErrMalformed, SampleRateField)
	}
	return Float(target / rate), nil
}

// ResolveCalendar formats an epoch-millisecond timestamp in loc using a
// time layout.
func ResolveCalendar(ms float64, loc *time.Location, layout string) Value {
	t := time.UnixMilli(int64(math.Floor(ms))).In(loc)
	return String(t.Format(layout))
}

func formatIndex(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
