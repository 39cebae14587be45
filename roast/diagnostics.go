package roast

import "sync"

// Diagnostic is one advisory line about a field that could not be
// resolved.
type Diagnostic struct {
	Document string
	Column   string
	Message  string
}

func (d Diagnostic) String() string {
	if d.Document == "" {
		return d.Message
	}
	return d.Document + ": " + d.Message
}

// Diagnostics is an append-only collector safe for concurrent use.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Add appends ds.
func (c *Diagnostics) Add(ds ...Diagnostic) {
	if len(ds) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, ds...)
}

// Items returns a copy of everything collected so far.
func (c *Diagnostics) Items() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}

// Len returns the number of collected diagnostics.
func (c *Diagnostics) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
