// Package roast turns one parsed roast-telemetry document into one flat
// record of spreadsheet columns.
//
// The pipeline is:
//
//	Document (parsed JSON)
//	  → Table (ordered, declarative field descriptors)
//	  → Builder.Build (evaluates every descriptor in declaration order)
//	  → Record (+ per-call []Diagnostic)
//
// Descriptors come in three variants:
//
//   - Direct: the column copies the document key of the same name.
//   - Aliased: the first present candidate key is coerced to a float.
//   - Computed: the first present trigger key feeds a resolver
//     (elapsed seconds, control channel value, sampled series value,
//     calendar date or clock time).
//
// Every per-field failure is absorbed into a Diagnostic and a Null value;
// Build never returns an error. Table and Builder are immutable after
// construction and safe for concurrent use.
package roast
