package opener

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Factory expands a source specification into openers.
type Factory func(spec string) ([]Opener, error)

// Scheme identifies how a specification is accessed.
type Scheme string

const (
	// SchemeUnknown is reported for "x://" prefixes nobody handles.
	SchemeUnknown Scheme = "unknown"
	// SchemeFile covers file:// URLs and bare paths.
	SchemeFile Scheme = "file"
)

var (
	regMu    sync.RWMutex
	registry = map[Scheme]Factory{}
)

func init() {
	if err := Register(SchemeFile, RoastFiles); err != nil {
		panic(err)
	}
}

// Register installs the factory for scheme. Registration is process-wide;
// registering a scheme twice is an error.
func Register(scheme Scheme, f Factory) error {
	regMu.Lock()
	defer regMu.Unlock()
	if _, ok := registry[scheme]; ok {
		return fmt.Errorf("opener for scheme %q already registered", scheme)
	}
	registry[scheme] = f
	return nil
}

// FromSpec detects the scheme of spec and expands it with the registered
// factory.
//
//	file:///data/roasts → SchemeFile
//	~/roasts/*.json     → SchemeFile (bare path)
//	s3://bucket/key     → error unless a factory for "s3" was registered
//
// Errors name the roast source; factory errors are wrapped so sentinels
// such as ErrNoSources stay matchable.
func FromSpec(spec string) ([]Opener, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, errors.New("roast source: no directory, glob or URL given")
	}
	factory, scheme, err := lookupFactory(spec)
	if err != nil {
		return nil, fmt.Errorf("roast source %q: %w", spec, err)
	}
	ops, err := factory(spec)
	if err != nil {
		return nil, fmt.Errorf("roast source %q (%s): %w", spec, scheme, err)
	}
	return ops, nil
}

func lookupFactory(spec string) (Factory, Scheme, error) {
	scheme := DetectScheme(spec)
	if scheme == SchemeUnknown {
		return nil, scheme, errors.New("unknown scheme")
	}
	regMu.RLock()
	defer regMu.RUnlock()
	f, ok := registry[scheme]
	if !ok {
		return nil, scheme, fmt.Errorf("no opener registered for scheme %q", scheme)
	}
	return f, scheme, nil
}

// DetectScheme returns the scheme of spec. Bare paths, including Windows
// drive paths, are SchemeFile; any other "name://" prefix is returned as
// is when registered and SchemeUnknown otherwise.
func DetectScheme(spec string) Scheme {
	spec = strings.ToLower(strings.TrimSpace(spec))
	name, _, found := strings.Cut(spec, "://")
	switch {
	case !found, name == "file":
		return SchemeFile
	}
	regMu.RLock()
	_, ok := registry[Scheme(name)]
	regMu.RUnlock()
	if ok {
		return Scheme(name)
	}
	return SchemeUnknown
}
