package tasks

import (
	"fmt"

	"github.com/desertthunder/setlist/internal/cache"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Prepare Phase = iota
	BuildPlaylists
	FillCache
	Measure
	Done
)

func (p Phase) String() string {
	switch p {
	case Prepare:
		return "prepare"
	case BuildPlaylists:
		return "build_playlists"
	case FillCache:
		return "fill_cache"
	case Measure:
		return "measure"
	case Done:
		return "done"
	default:
		return ""
	}
}

func prepareUpdate(opts ScenarioOpts) ProgressUpdate {
	return ProgressUpdate{
		Phase: Prepare,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("Scenario: songs interning %s, artists interning %s",
			onOff(opts.InternSongs), onOff(opts.InternArtists)),
	}
}

func buildUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BuildPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Progress: %d%% - playlists built: %d", step*100/total, step),
	}
}

func fillCacheUpdate(step, total int, stats cache.Stats) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FillCache,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] cached %d, evicted %d, persisted %d", step, total, stats.Resident, stats.Evictions, stats.Persisted),
		Data:    stats,
	}
}

func measureUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: Measure, Step: 1, Total: 1, Message: "Measuring heap..."}
}

func doneUpdate(res *ScenarioResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%s: %d unique songs, %d unique artists in %s", res.Label, res.SongsCreated, res.ArtistsCreated, res.Duration),
		Data:    res,
	}
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
