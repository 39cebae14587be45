package roast

import (
	"errors"
	"fmt"
	"time"
)

// Builder evaluates a Table against documents. It holds no per-document
// state and may be shared between goroutines.
type Builder struct {
	table *Table
	loc   *time.Location
}

// Option configures a Builder.
type Option func(*Builder)

// WithLocation sets the zone used for the date and time columns. The
// default is time.Local.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// NewBuilder returns a Builder over table. A nil table panics.
func NewBuilder(table *Table, opts ...Option) *Builder {
	if table == nil {
		panic("roast: NewBuilder: table is nil")
	}
	b := &Builder{table: table, loc: time.Local}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Table returns the table the builder evaluates.
func (b *Builder) Table() *Table { return b.table }

// Build evaluates every descriptor against doc in declaration order. Field
// failures never abort the record: the cell becomes null and a diagnostic
// is returned.
func (b *Builder) Build(doc *Document) (Record, []Diagnostic) {
	rec := Record{
		table:  b.table,
		source: doc.Name(),
		values: make([]Value, len(b.table.descriptors)),
	}
	var diags []Diagnostic
	report := func(column, msg string) {
		diags = append(diags, Diagnostic{Document: doc.Name(), Column: column, Message: msg})
	}
	for i, d := range b.table.descriptors {
		rec.values[i] = b.evaluate(doc, d, report)
	}
	return rec, diags
}

func (b *Builder) evaluate(doc *Document, d Descriptor, report func(column, msg string)) Value {
	switch d.Kind {
	case Direct:
		r, ok := doc.Lookup(d.Sources[0])
		if !ok {
			return Null()
		}
		return valueOf(r)

	case Aliased:
		for _, key := range d.Sources {
			r, ok := doc.Lookup(key)
			if !ok {
				continue
			}
			f, ok := toFloat(r)
			if !ok {
				report(d.Column, fmt.Sprintf("failed to convert %s to float for %s", key, d.Column))
				return Null()
			}
			return Float(f)
		}
		return Empty()

	case Computed:
		for _, key := range d.Sources {
			if !doc.Has(key) {
				continue
			}
			v, err := b.resolve(doc, d, key)
			if err != nil {
				report(d.Column, err.Error())
				return Null()
			}
			return v
		}
		report(d.Column, "failed to retrieve data for "+d.Column)
		return Null()

	default:
		report(d.Column, fmt.Sprintf("unsupported descriptor kind %s", d.Kind))
		return Null()
	}
}

// resolve runs the resolver bound to d with the trigger key that was found
// in doc.
func (b *Builder) resolve(doc *Document, d Descriptor, key string) (Value, error) {
	switch d.Resolver {
	case ResolverSeconds:
		target, err := doc.number(key)
		if err != nil {
			return Null(), fmt.Errorf("failed to convert %s to time value: %w", key, err)
		}
		v, err := ResolveSeconds(doc, target)
		if err != nil {
			return Null(), fmt.Errorf("failed to convert %s to time value: %w", key, err)
		}
		return v, nil

	case ResolverControl:
		target, err := doc.number(key)
		if err != nil {
			return Null(), fmt.Errorf("failed to get control %s using index field %s: %w", d.Channel, key, err)
		}
		v, err := ResolveControl(doc, d.Channel, target)
		switch {
		case errors.Is(err, ErrOutOfRange):
			return Null(), err
		case err != nil:
			return Null(), fmt.Errorf("failed to get control %s using index field %s: %w", d.Channel, key, err)
		}
		return v, nil

	case ResolverSample:
		target, err := doc.number(d.IndexField)
		if err != nil {
			return Null(), fmt.Errorf("failed to get sample %s using index field %s: %w", key, d.IndexField, err)
		}
		v, err := ResolveSample(doc, key, target)
		if err != nil {
			return Null(), fmt.Errorf("failed to get sample %s using index field %s: %w", key, d.IndexField, err)
		}
		return v, nil

	case ResolverDate, ResolverClock:
		ms, err := doc.number(key)
		if err != nil {
			return Null(), fmt.Errorf("failed to convert %s to %s: %w", key, d.Column, err)
		}
		layout := time.DateOnly
		if d.Resolver == ResolverClock {
			layout = time.TimeOnly
		}
		return ResolveCalendar(ms, b.loc, layout), nil

	default:
		return Null(), fmt.Errorf("no resolver bound to %s", d.Column)
	}
}
