package opener

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func Test_localPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		spec string
		ok   bool
		want string
	}{
		{"trims whitespace", "   *.json   ", true, "*.json"},
		{"unsupported scheme", "http://example.com/roast.json", false, ""},
		{"malformed file URL", "file://%ZZ", false, ""},
		{"hierarchical file URL", "file:///tmp/a%20b.json", true, filepath.FromSlash("/tmp/a b.json")},
		{"opaque file URL", "file:/tmp/A%20B.json", true, filepath.FromSlash("/tmp/A B.json")},
		{"drive letter in file URL", "file:///C:/Roasts/r.json", true, filepath.FromSlash("C:/Roasts/r.json")},
		{"colon in posix path", "/tmp/a:b.json", true, "/tmp/a:b.json"},
		{"drive path as is", `C:\Roasts\r.json`, true, `C:\Roasts\r.json`},
		{"UNC path as is", `\\server\share\r.json`, true, `\\server\share\r.json`},
		{"empty file URI", "file:", false, ""},
		{"file URL with remote host", "file://server/share/r.json", true, filepath.FromSlash("//server/share/r.json")},
		{"relative opaque file URL", "file:./rel/r.json", true, filepath.FromSlash("./rel/r.json")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := localPath(tc.spec)
			if !tc.ok {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func Test_RoastFiles(t *testing.T) {
	t.Parallel()

	type file struct{ rel, data string }
	cases := []struct {
		name  string
		spec  string
		files []file
		dirs  []string
		want  []string
		err   bool
	}{
		{
			name:  "directory lists regular files sorted",
			spec:  "{TMP}",
			files: []file{{"c.json", "{}"}, {"a.json", "{}"}, {"b", "{}"}},
			want:  []string{"a.json", "b", "c.json"},
		},
		{
			name:  "directory skips dot-files and subdirectories",
			spec:  "{TMP}",
			files: []file{{".DS_Store", ""}, {"r.json", "{}"}, {"sub/x.json", "{}"}},
			want:  []string{"r.json"},
		},
		{
			name:  "glob",
			spec:  "{TMP}/*.json",
			files: []file{{"b.json", ""}, {"a.json", ""}, {"notes.txt", ""}},
			want:  []string{"a.json", "b.json"},
		},
		{
			name:  "glob skips matching directories",
			spec:  "{TMP}/*",
			files: []file{{"r.json", ""}},
			dirs:  []string{"archive"},
			want:  []string{"r.json"},
		},
		{
			name:  "file URL",
			spec:  "file://{TMP}/kenya%20aa.json",
			files: []file{{"kenya aa.json", "{}"}},
			want:  []string{"kenya aa.json"},
		},
		{
			name: "empty directory",
			spec: "{TMP}",
			err:  true,
		},
		{
			name:  "no matches",
			spec:  "{TMP}/*.none",
			files: []file{{"a.json", ""}},
			err:   true,
		},
		{
			name: "bad pattern",
			spec: "{TMP}/[",
			err:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			for _, d := range tc.dirs {
				if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
					t.Fatalf("mkdir: %v", err)
				}
			}
			for _, f := range tc.files {
				full := filepath.Join(root, filepath.FromSlash(f.rel))
				if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
					t.Fatalf("mkdir: %v", err)
				}
				if err := os.WriteFile(full, []byte(f.data), 0o644); err != nil {
					t.Fatalf("write: %v", err)
				}
			}

			spec := strings.ReplaceAll(tc.spec, "{TMP}", filepath.ToSlash(root))
			ops, err := RoastFiles(spec)
			if tc.err {
				if err == nil {
					t.Fatalf("expected error, got %d openers", len(ops))
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}

			got := make([]string, len(ops))
			for i, o := range ops {
				rel, err := filepath.Rel(root, o.Name())
				if err != nil {
					t.Fatalf("rel: %v", err)
				}
				got[i] = filepath.ToSlash(rel)
			}
			if !slices.Equal(got, tc.want) {
				t.Fatalf("\nwant: %v\ngot:  %v", tc.want, got)
			}
		})
	}
}

func Test_RoastFiles_NoSourcesError(t *testing.T) {
	t.Parallel()
	_, err := RoastFiles(t.TempDir())
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}

func TestFile_Open(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "roast.json")
	if err := os.WriteFile(p, []byte(`{"beanId":"x"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f := NewFile(p)
	if f.Name() != p {
		t.Fatalf("Name() = %q, want %q", f.Name(), p)
	}
	rc, err := f.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"beanId":"x"}` {
		t.Fatalf("read %q", data)
	}
}

func TestFile_OpenCanceledContext(t *testing.T) {
	t.Parallel()
	p := filepath.Join(t.TempDir(), "roast.json")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if rc, err := NewFile(p).Open(ctx); err == nil {
		rc.Close()
		t.Fatalf("Open with canceled context: got nil error")
	}
}

func TestInMemorySource_IndependentReaders(t *testing.T) {
	t.Parallel()
	src := InMemorySource{SourceName: "mem.json", Data: []byte("{}")}
	for range 2 {
		rc, err := src.Open(context.Background())
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != "{}" {
			t.Fatalf("read %q", data)
		}
	}
	if src.Name() != "mem.json" {
		t.Fatalf("Name() = %q", src.Name())
	}
}
