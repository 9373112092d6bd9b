package tasks

import (
	"fmt"
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
	NormalizeNames Phase = iota
	ImportArtists
	SyncArtists
)

func (p Phase) String() string {
	switch p {
	case NormalizeNames:
		return "normalize_names"
	case ImportArtists:
		return "import_artists"
	case SyncArtists:
		return "sync_artists"
	default:
		return ""
	}
}

func normalizeUpdate(changed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   NormalizeNames,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Normalized %d artist names", changed),
		Data:    changed,
	}
}

func importUpdate(step, total int, name, outcome string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s (%s)", step, total, name, outcome),
	}
}

func syncingUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Looking up %s on Spotify...", step, total, name),
	}
}

func syncedUpdate(step, total int, name, outcome string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, name, outcome),
	}
}

func syncFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SyncArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
