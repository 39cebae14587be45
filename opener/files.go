package opener

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoSources is returned when a specification matches no roast files.
var ErrNoSources = errors.New("no roast files matched")

// RoastFiles expands spec into one File opener per roast document.
//
// spec may be:
//   - a directory: every regular, non-hidden file directly inside it
//     (the roast-time application keeps one JSON file per roast there);
//   - a path or glob, e.g. "roasts/*.json";
//   - a file URL, hierarchical (file:///abs/path) or opaque (file:rel/path),
//     with percent-encoding decoded.
//
// Results are sorted lexically by path. Directories matched by a glob are
// skipped.
func RoastFiles(spec string) ([]Opener, error) {
	path, err := localPath(spec)
	if err != nil {
		return nil, err
	}

	var names []string
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		names, err = listRoastDir(path)
		if err != nil {
			return nil, err
		}
	} else {
		matches, err := filepath.Glob(path)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", path, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				names = append(names, m)
			}
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSources, path)
	}

	slices.Sort(names)
	ops := make([]Opener, len(names))
	for i, n := range names {
		ops[i] = NewFile(n)
	}
	return ops, nil
}

func listRoastDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read roast dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}
		names = append(names, filepath.Join(dir, e.Name()))
	}
	return names, nil
}

// localPath turns a user-facing specification into a filesystem path or
// glob. Only the file scheme is accepted.
func localPath(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if isDrivePath(spec) || strings.HasPrefix(spec, `\\`) {
		return spec, nil
	}
	if len(spec) < 5 || !strings.EqualFold(spec[:5], "file:") {
		if u, err := url.Parse(spec); err == nil && u.Scheme != "" {
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		return spec, nil
	}

	u, err := url.Parse(spec)
	if err != nil {
		return "", err
	}
	path := u.Path
	switch {
	case path == "" && u.Opaque != "":
		path = u.Opaque
	case u.Host != "" && !strings.EqualFold(u.Host, "localhost"):
		path = "//" + u.Host + u.Path
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}
	// file:///C:/x parses to /C:/x.
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	if path == "" {
		return "", fmt.Errorf("empty file URI: %q", spec)
	}
	return filepath.FromSlash(path), nil
}

// isDrivePath reports whether spec starts like C:\ or C:/.
func isDrivePath(spec string) bool {
	if len(spec) < 2 || spec[1] != ':' {
		return false
	}
	c := spec[0] | 0x20
	if c < 'a' || c > 'z' {
		return false
	}
	return len(spec) == 2 || spec[2] == '\\' || spec[2] == '/'
}
