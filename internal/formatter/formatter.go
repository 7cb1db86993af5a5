// package formatter renders playlists, snapshot listings and scenario results as CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// Formats accepted by [Playlist].
const (
	FormatText     = "text"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Playlist renders p in the given format.
func Playlist(p *models.Playlist, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return PlaylistToCSV(p)
	case FormatMarkdown:
		return PlaylistToMarkdown(p), nil
	case FormatText, "":
		return PlaylistToText(p), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// PlaylistToCSV writes one row per song with columns: Position, SongID, Title, ArtistID, Artist, Genre, Country
func PlaylistToCSV(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "SongID", "Title", "ArtistID", "Artist", "Genre", "Country"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, s := range p.Songs() {
		record := []string{strconv.Itoa(i + 1), strconv.FormatInt(s.ID(), 10), s.Title(), "", "", "", ""}
		if a := s.Artist(); a != nil {
			record[3] = strconv.FormatInt(a.ID(), 10)
			record[4] = a.Name()
			record[5] = a.Genre()
			record[6] = a.Country()
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// PlaylistToMarkdown renders p as a Markdown document with a numbered track list
func PlaylistToMarkdown(p *models.Playlist) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", p.Name())
	fmt.Fprintf(&buf, "**Tracks**: %d\n", p.Len())
	fmt.Fprintf(&buf, "**Usage**: %d\n\n", p.Usage())

	buf.WriteString("## Tracks\n\n")
	for i, s := range p.Songs() {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, songLine(s))
	}
	return buf.Bytes()
}

// PlaylistToText renders p as plain text
func PlaylistToText(p *models.Playlist) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s (usage %d)\n", p.Name(), p.Usage())
	fmt.Fprintf(&buf, "Tracks: %d\n", p.Len())
	for i, s := range p.Songs() {
		fmt.Fprintf(&buf, "  %d. %s\n", i+1, songLine(s))
	}
	return buf.Bytes()
}

func songLine(s *models.Song) string {
	a := s.Artist()
	if a == nil {
		return fmt.Sprintf("%s [song #%d]", s.Title(), s.ID())
	}
	return fmt.Sprintf("%s - %s (%s, %s) [song #%d, artist #%d]", a.Name(), s.Title(), a.Genre(), a.Country(), s.ID(), a.ID())
}

// WritePlaylistExport renders p and writes it to path.
//
// Defaults to "{name}.{ext}" in the working directory.
func WritePlaylistExport(p *models.Playlist, format, path string) (string, error) {
	data, err := Playlist(p, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = fileSafe(p.Name()) + "." + extension(format)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

func extension(format string) string {
	switch format {
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

func fileSafe(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" {
		return "playlist"
	}
	return name
}

// SnapshotTable renders stored snapshots as an aligned table
func SnapshotTable(infos []models.SnapshotInfo) []byte {
	var buf bytes.Buffer
	if len(infos) == 0 {
		buf.WriteString("No stored playlists.\n")
		return buf.Bytes()
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Name", "Usage", "Size", "Updated"})
	for _, info := range infos {
		size := "-"
		if info.Size > 0 {
			size = FormatBytes(int64(info.Size))
		}
		updated := "-"
		if !info.UpdatedAt.IsZero() {
			updated = info.UpdatedAt.Local().Format(time.DateTime)
		}
		tw.AppendRow(table.Row{info.Name, info.Usage, size, updated})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	buf.WriteString(tw.Render())
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "\n%d stored playlist(s)\n", len(infos))
	return buf.Bytes()
}

// ScenarioSummary renders the counters of a scenario run
func ScenarioSummary(res *tasks.ScenarioResult) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", res.Label)
	fmt.Fprintf(&buf, "  Playlists built:        %d\n", res.Playlists)
	fmt.Fprintf(&buf, "  Songs added:            %d\n", res.SongsAdded)
	fmt.Fprintf(&buf, "  Song objects created:   %d (pooled %d)\n", res.SongsCreated, res.UniqueSongs)
	fmt.Fprintf(&buf, "  Artist objects created: %d (pooled %d)\n", res.ArtistsCreated, res.UniqueArtists)
	fmt.Fprintf(&buf, "  Heap delta:             %s\n", FormatBytes(res.HeapBytes))
	fmt.Fprintf(&buf, "  Elapsed:                %s\n", res.Duration.Round(time.Microsecond))
	fmt.Fprintf(&buf, "  Objects avoided:        %d (~%.1f%% saved)\n", res.SongsAdded-int(res.SongsCreated), res.Savings)

	if res.Cache != nil {
		c := res.Cache
		fmt.Fprintf(&buf, "  Cache:                  %d/%d resident, %d evicted, %d persisted, %d dropped, %d failed\n",
			c.Resident, c.Capacity, c.Evictions, c.Persisted, c.Dropped, c.Failures)
		fmt.Fprintf(&buf, "  Persist threshold:      usage < %d\n", c.Threshold)
	}
	return buf.Bytes()
}

// ComparisonSummary renders an ON vs OFF comparison
func ComparisonSummary(cmp *tasks.Comparison) []byte {
	var buf bytes.Buffer
	buf.Write(ScenarioSummary(cmp.On))
	buf.WriteString("\n")
	buf.Write(ScenarioSummary(cmp.Off))
	fmt.Fprintf(&buf, "\nHeap saved with interning: %s\n", FormatBytes(cmp.HeapSaved()))
	fmt.Fprintf(&buf, "Song objects avoided:      %d\n", cmp.Off.SongsCreated-cmp.On.SongsCreated)
	fmt.Fprintf(&buf, "Artist objects avoided:    %d\n", cmp.Off.ArtistsCreated-cmp.On.ArtistsCreated)
	return buf.Bytes()
}

// FormatBytes renders n with a binary unit suffix. Negative values keep their sign.
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}
