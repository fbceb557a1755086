package loader

import (
	"fmt"
	"os"
	"path/filepath"
)

const colPlayerTag = "player_tag"

// LoadRoster reads a list of known player tags. The roster only pre-seeds
// the universe; match data stays the source of truth.
func (l *Loader) LoadRoster(path string) ([]string, error) {
	parser, err := l.factory.GetParser(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	table, err := parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	col := table.Column(colPlayerTag)
	if col < 0 {
		return nil, fmt.Errorf("%s: %w: missing column %q", filepath.Base(path), ErrMalformedInput, colPlayerTag)
	}

	tags := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		if tag := cell(row, col); tag != "" {
			tags = append(tags, tag)
		}
	}

	l.logger.Info().Str("path", path).Int("players", len(tags)).Msg("roster loaded")
	return tags, nil
}
