package roast

import (
	"fmt"
	"slices"
)

// DescriptorKind is the variant of a Descriptor.
type DescriptorKind int

const (
	// Direct copies the document key named like the column.
	Direct DescriptorKind = iota
	// Aliased takes the first present candidate key and coerces it to a
	// float; the cell is empty when no candidate is present.
	Aliased
	// Computed passes the first present trigger key to a resolver; the
	// cell is null, with a diagnostic, when no trigger is present.
	Computed
)

func (k DescriptorKind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Aliased:
		return "aliased"
	case Computed:
		return "computed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Resolver selects the function a Computed descriptor is bound to.
type Resolver int

const (
	ResolverNone Resolver = iota
	// ResolverSeconds: trigger is an index field, output elapsed seconds.
	ResolverSeconds
	// ResolverControl: trigger is an index field, output the value of
	// Descriptor.Channel at that index.
	ResolverControl
	// ResolverSample: trigger is the series name, the index is read from
	// Descriptor.IndexField.
	ResolverSample
	// ResolverDate: trigger is an epoch-ms timestamp, output YYYY-MM-DD.
	ResolverDate
	// ResolverClock: trigger is an epoch-ms timestamp, output HH:MM:SS.
	ResolverClock
)

func (r Resolver) String() string {
	switch r {
	case ResolverNone:
		return "none"
	case ResolverSeconds:
		return "seconds"
	case ResolverControl:
		return "control"
	case ResolverSample:
		return "sample"
	case ResolverDate:
		return "date"
	case ResolverClock:
		return "clock"
	default:
		return fmt.Sprintf("resolver(%d)", int(r))
	}
}

// Descriptor is one entry of a Table. It is plain data; Builder
// interprets it.
type Descriptor struct {
	Kind   DescriptorKind
	Column string
	// Sources are the candidate keys tried in order: the column itself for
	// Direct, aliases for Aliased, trigger keys for Computed.
	Sources []string

	Resolver   Resolver
	Channel    Channel
	IndexField string
}

// DirectField copies key to the column of the same name.
func DirectField(key string) Descriptor {
	return Descriptor{Kind: Direct, Column: key, Sources: []string{key}}
}

// AliasedField maps the first present of candidates to column as a float.
func AliasedField(column string, candidates ...string) Descriptor {
	return Descriptor{Kind: Aliased, Column: column, Sources: candidates}
}

// ComputedField binds column to resolver r, triggered by the first present
// of triggers.
func ComputedField(column string, r Resolver, triggers ...string) Descriptor {
	return Descriptor{Kind: Computed, Column: column, Sources: triggers, Resolver: r}
}

// SecondsField converts indexField to elapsed seconds.
func SecondsField(column, indexField string) Descriptor {
	return ComputedField(column, ResolverSeconds, indexField)
}

// ControlField reads channel ch at the index stored in indexField.
func ControlField(column string, ch Channel, indexField string) Descriptor {
	d := ComputedField(column, ResolverControl, indexField)
	d.Channel = ch
	return d
}

// SampleField reads series at the index stored in indexField.
func SampleField(column, series, indexField string) Descriptor {
	d := ComputedField(column, ResolverSample, series)
	d.IndexField = indexField
	return d
}

//
// Table
//

// Table is an ordered, immutable list of descriptors. Declaration order is
// column order.
type Table struct {
	descriptors []Descriptor
	index       map[string]int
}

// NewTable builds a Table. Empty or duplicate column names are authoring
// bugs and make NewTable panic.
func NewTable(ds ...Descriptor) *Table {
	t := &Table{
		descriptors: make([]Descriptor, len(ds)),
		index:       make(map[string]int, len(ds)),
	}
	for i, d := range ds {
		if d.Column == "" {
			panic(fmt.Sprintf("roast: descriptor %d has no column", i))
		}
		if _, dup := t.index[d.Column]; dup {
			panic(fmt.Sprintf("roast: duplicate column %q", d.Column))
		}
		if len(d.Sources) == 0 {
			panic(fmt.Sprintf("roast: column %q has no source keys", d.Column))
		}
		t.descriptors[i] = d.clone()
		t.index[d.Column] = i
	}
	return t
}

// Len returns the number of columns.
func (t *Table) Len() int { return len(t.descriptors) }

// Columns returns the column names in declaration order. The slice is a
// fresh copy.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.descriptors))
	for i, d := range t.descriptors {
		cols[i] = d.Column
	}
	return cols
}

// Descriptors returns a deep copy of the descriptors in declaration
// order. Changing it does not affect the table.
func (t *Table) Descriptors() []Descriptor {
	ds := make([]Descriptor, len(t.descriptors))
	for i, d := range t.descriptors {
		ds[i] = d.clone()
	}
	return ds
}

// Lookup returns the descriptor producing column.
func (t *Table) Lookup(column string) (Descriptor, bool) {
	i, ok := t.index[column]
	if !ok {
		return Descriptor{}, false
	}
	return t.descriptors[i].clone(), true
}

func (d Descriptor) clone() Descriptor {
	d.Sources = slices.Clone(d.Sources)
	return d
}

// Has reports whether column is produced by the table.
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// CheckColumns returns an error wrapping ErrUnknownColumn for the first
// name the table does not produce.
func (t *Table) CheckColumns(columns []string) error {
	for _, c := range columns {
		if !t.Has(c) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	return nil
}

//
// Default roast schema
//

// DateTimeField holds the roast start as epoch milliseconds.
const DateTimeField = "dateTime"

var defaultTable = NewTable(defaultDescriptors()...)

// DefaultTable returns the process-wide roast schema.
func DefaultTable() *Table { return defaultTable }

func defaultDescriptors() []Descriptor {
	ds := []Descriptor{
		ComputedField("date", ResolverDate, DateTimeField),
		ComputedField("time", ResolverClock, DateTimeField),
	}
	for _, key := range []string{
		DateTimeField,
		"uid",
		"roastNumber",
		"roastName",
		"beanId",
		"rating",

		"serialNumber",
		"firmware",
		"hardware",
	} {
		ds = append(ds, DirectField(key))
	}

	ds = append(ds,
		AliasedField("ambient", "ambient", "ambientTemp"),
		AliasedField("humidity", "humidity", "roomHumidity"),
		AliasedField("weightGreen", "weightGreen"),
		AliasedField("weightRoasted", "weightRoasted"),
	)

	for _, key := range []string{
		"preheatTemperature",
		"beanChargeTemperature",
		"beanDropTemperature",
		"drumChargeTemperature",
		"drumDropTemperature",

		"totalRoastTime",
		SampleRateField,
		"roastStartIndex",
		"indexYellowingStart",
		"indexFirstCrackStart",
		"indexFirstCrackEnd",
		"indexSecondCrackStart",
		"indexSecondCrackEnd",
		"roastEndIndex",
	} {
		ds = append(ds, DirectField(key))
	}

	return append(ds, ExpandEvents(events)...)
}
