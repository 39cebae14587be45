package roast

import (
	"slices"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Event is a named point on the roast timeline. The device names the
// index fields of the two terminal events <event><Quantity> and those of
// interior events <quantity><Event>; column names keep that split.
type Event struct {
	Name     string
	Terminal bool
}

var events = []Event{
	{Name: "roastStart", Terminal: true},
	{Name: "roastEnd", Terminal: true},
	{Name: "YellowingStart"},
	{Name: "FirstCrackStart"},
	{Name: "FirstCrackEnd"},
	{Name: "SecondCrackStart"},
	{Name: "SecondCrackEnd"},
}

// Sampled series read at every event, in column order.
var sampleSeries = []string{
	"beanDerivative",
	"beanTemperature",
	"drumTemperature",
}

// Events returns the roast events in column order.
func Events() []Event {
	return slices.Clone(events)
}

// SampleSeries returns the names of the sampled series read at events.
func SampleSeries() []string {
	return slices.Clone(sampleSeries)
}

// Field names quantity for this event, e.g. roastStartIndex,
// roastEndBeantemperature or indexFirstCrackStart.
//
// Terminal events capitalise the quantity: first letter upper, every
// following letter lower.
func (e Event) Field(quantity string) string {
	if e.Terminal {
		return e.Name + cases.Title(language.Und).String(quantity)
	}
	return quantity + e.Name
}

// IndexField is the document key holding the sample index of the event.
func (e Event) IndexField() string {
	return e.Field("index")
}

// ExpandEvents generates the computed descriptors for evs: per event the
// elapsed seconds, one value per control channel and one value per
// sampled series.
func ExpandEvents(evs []Event) []Descriptor {
	out := make([]Descriptor, 0, len(evs)*(1+len(Channels())+len(sampleSeries)))
	for _, ev := range evs {
		indexField := ev.IndexField()
		out = append(out, SecondsField(ev.Field("seconds"), indexField))
		for _, ch := range Channels() {
			out = append(out, ControlField(ev.Field(ch.String()), ch, indexField))
		}
		for _, series := range sampleSeries {
			out = append(out, SampleField(ev.Field(series), series, indexField))
		}
	}
	return out
}
