package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var resultsPattern = regexp.MustCompile(`(?i)^results_(\d{8})\.(csv|xlsx|xls)$`)

// Source is one tournament's match file, identified by its date token.
type Source struct {
	Date string
	Name string
	Open func(ctx context.Context) ([]byte, error)
}

// DateFromName returns the YYYYMMDD token of a results file name.
func DateFromName(name string) (string, bool) {
	m := resultsPattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", false
	}
	return m[1], true
}

func FileSource(path string) (Source, error) {
	date, ok := DateFromName(path)
	if !ok {
		return Source{}, fmt.Errorf("%w: %q is not a results file", ErrMalformedInput, path)
	}
	return Source{
		Date: date,
		Name: filepath.Base(path),
		Open: func(ctx context.Context) ([]byte, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return os.ReadFile(path)
		},
	}, nil
}

// Discover lists the results files in dir, oldest first.
func Discover(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data dir: %w", err)
	}

	var sources []Source
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		src, err := FileSource(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		sources = append(sources, src)
	}

	if err := SortSources(sources); err != nil {
		return nil, err
	}
	return sources, nil
}

// SortSources orders sources by date and rejects two sources for one date.
func SortSources(sources []Source) error {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].Date != sources[j].Date {
			return sources[i].Date < sources[j].Date
		}
		return sources[i].Name < sources[j].Name
	})
	for i := 1; i < len(sources); i++ {
		if sources[i].Date == sources[i-1].Date {
			return fmt.Errorf("%w: %s and %s share date %s", ErrMalformedInput, sources[i-1].Name, sources[i].Name, sources[i].Date)
		}
	}
	return nil
}
