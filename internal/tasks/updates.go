package tasks

import (
	"fmt"

	"github.com/desertthunder/plexlist/internal/models"
)

// ProgressUpdate represents a progress event during a curate run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Section string // Section being processed, empty outside the per-section loop
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data ([SectionOutcome], [models.PlaylistUpdate])
}

// Operation phase enumeration
type Phase int

const (
	ResolveSection Phase = iota
	LoadItems
	ScanItems
	SectionDone
	WritePlaylist
	PlaylistWritten
)

func (p Phase) String() string {
	switch p {
	case ResolveSection:
		return "resolve_section"
	case LoadItems:
		return "load_items"
	case ScanItems:
		return "scan_items"
	case SectionDone:
		return "section_done"
	case WritePlaylist:
		return "write_playlist"
	case PlaylistWritten:
		return "playlist_written"
	default:
		return ""
	}
}

func resolveSectionUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveSection,
		Section: name,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Resolving section %q...", name),
	}
}

func loadItemsUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadItems,
		Section: name,
		Message: fmt.Sprintf("Loading %q items. This may take a while for large sections...", name),
	}
}

func scanItemsUpdate(step, total int, section models.Section) ProgressUpdate {
	noun := "movies"
	if section.Kind == models.KindShow {
		noun = "shows"
	}
	return ProgressUpdate{
		Phase:   ScanItems,
		Section: section.Name,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Analyzing %s...", noun),
	}
}

func sectionDoneUpdate(step, total int, outcome SectionOutcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SectionDone,
		Section: outcome.Name,
		Step:    step,
		Total:   total,
		Message: outcome.Message(),
		Data:    outcome,
	}
}

func writePlaylistUpdate(name string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WritePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Adding %d item(s) to playlist %q...", count, name),
	}
}

func playlistWrittenUpdate(update *models.PlaylistUpdate) ProgressUpdate {
	verb := "updated"
	if update.Created {
		verb = "created"
	}
	return ProgressUpdate{
		Phase:   PlaylistWritten,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%q %s successfully!", update.Playlist.Name, verb),
		Data:    update,
	}
}
