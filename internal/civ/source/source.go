// Package source loads civilization datasets from a data directory, a
// remote URL template or the datasets compiled into the binary.
package source

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/civcards/internal/civ"
)

//go:embed builtin/*.json
var builtin embed.FS

// ErrUnknownCiv is returned when no location provides the requested
// civilization.
var ErrUnknownCiv = errors.New("unknown civilization")

// CivPlaceholder is replaced by the civilization name in URL templates.
const CivPlaceholder = "{civ}"

// Loader resolves a civilization name to a dataset document. Locations are
// tried in order: DataDir, URLTemplate, then the builtin datasets. A
// location that does not have the civilization is skipped; any other
// failure stops the search.
type Loader struct {
	DataDir     string
	URLTemplate string
	// NoBuiltin disables the compiled-in datasets.
	NoBuiltin  bool
	HTTPClient *http.Client
}

// NewLoader creates a loader with a default HTTP client.
func NewLoader(dataDir, urlTemplate string) *Loader {
	return &Loader{
		DataDir:     dataDir,
		URLTemplate: urlTemplate,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Load finds and decodes the dataset for name.
func (l *Loader) Load(ctx context.Context, name string) (*civ.Dataset, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	if l.DataDir != "" {
		ds, err := l.loadDir(name)
		if err == nil || !errors.Is(err, ErrUnknownCiv) {
			return ds, err
		}
	}
	if l.URLTemplate != "" {
		ds, err := l.loadURL(ctx, name)
		if err == nil || !errors.Is(err, ErrUnknownCiv) {
			return ds, err
		}
	}
	if !l.NoBuiltin {
		ds, err := loadFS(builtin, "builtin/"+name+".json")
		if err == nil || !errors.Is(err, ErrUnknownCiv) {
			return ds, err
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCiv, name)
}

// Available lists the civilization names that Load can find without a
// network round trip, sorted and without duplicates.
func (l *Loader) Available() ([]string, error) {
	seen := make(map[string]bool)

	if !l.NoBuiltin {
		matches, err := doublestar.Glob(builtin, "builtin/*.json")
		if err != nil {
			return nil, fmt.Errorf("listing builtin datasets: %w", err)
		}
		for _, m := range matches {
			seen[civName(m)] = true
		}
	}

	if l.DataDir != "" {
		matches, err := doublestar.Glob(os.DirFS(l.DataDir), "**/*.json")
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", l.DataDir, err)
		}
		for _, m := range matches {
			seen[civName(m)] = true
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (l *Loader) loadDir(name string) (*civ.Dataset, error) {
	fsys := os.DirFS(l.DataDir)
	matches, err := doublestar.Glob(fsys, "**/"+name+".json")
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", l.DataDir, err)
	}
	if len(matches) == 0 {
		return nil, ErrUnknownCiv
	}
	// Shallowest match wins so a top-level file shadows nested copies.
	sort.Slice(matches, func(i, j int) bool {
		di, dj := strings.Count(matches[i], "/"), strings.Count(matches[j], "/")
		if di != dj {
			return di < dj
		}
		return matches[i] < matches[j]
	})
	return loadFS(fsys, matches[0])
}

func (l *Loader) loadURL(ctx context.Context, name string) (*civ.Dataset, error) {
	endpoint := strings.ReplaceAll(l.URLTemplate, CivPlaceholder, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrUnknownCiv
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("dataset server error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return civ.Decode(resp.Body)
}

func loadFS(fsys fs.FS, name string) (*civ.Dataset, error) {
	f, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUnknownCiv
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	ds, err := civ.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ds, nil
}

func checkName(name string) error {
	if name == "" {
		return errors.New("civilization name is empty")
	}
	if strings.ContainsAny(name, `/\*?[]{}`) || name == "." || name == ".." {
		return fmt.Errorf("invalid civilization name %q", name)
	}
	return nil
}

func civName(p string) string {
	return strings.TrimSuffix(path.Base(p), ".json")
}
