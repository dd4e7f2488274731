package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/plexlist/internal/tasks"
	"github.com/mattn/go-isatty"
)

const (
	barWidth  = 40
	clearLine = "\r\x1b[2K"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ProgressRenderer draws [tasks.ProgressUpdate] values as a single redrawn line on a terminal,
// or as debug log lines otherwise.
type ProgressRenderer struct {
	w       io.Writer
	logger  *log.Logger
	palette *Palette
	bar     progress.Model
	tty     bool
	drawn   bool // a line is on screen and must be cleared before other output
}

// NewProgressRenderer creates a renderer for w, detecting whether w is a terminal.
func NewProgressRenderer(w io.Writer, logger *log.Logger) *ProgressRenderer {
	return newProgressRenderer(w, logger, IsTerminal(w))
}

func newProgressRenderer(w io.Writer, logger *log.Logger, tty bool) *ProgressRenderer {
	return &ProgressRenderer{
		w:       w,
		logger:  logger,
		palette: Styles,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		tty:     tty,
	}
}

// Consume renders updates until the channel is closed, then clears the progress line.
func (r *ProgressRenderer) Consume(updates <-chan tasks.ProgressUpdate) {
	for update := range updates {
		r.Render(update)
	}
	r.Clear()
}

// Render draws a single update.
func (r *ProgressRenderer) Render(update tasks.ProgressUpdate) {
	if !r.tty {
		if r.logger != nil {
			r.logger.Debug(update.Message, "phase", update.Phase, "section", update.Section, "step", update.Step, "total", update.Total)
		}
		return
	}

	switch update.Phase {
	case tasks.ScanItems:
		r.draw(r.scanLine(update))
	case tasks.SectionDone, tasks.PlaylistWritten:
		r.Clear()
	default:
		r.draw(r.palette.Help(update.Message))
	}
}

// Clear erases the progress line if one is drawn.
func (r *ProgressRenderer) Clear() {
	if r.drawn {
		fmt.Fprint(r.w, clearLine)
		r.drawn = false
	}
}

func (r *ProgressRenderer) draw(line string) {
	fmt.Fprint(r.w, clearLine+line)
	r.drawn = true
}

func (r *ProgressRenderer) scanLine(update tasks.ProgressUpdate) string {
	pct := 0.0
	if update.Total > 0 {
		pct = float64(update.Step) / float64(update.Total)
	}
	label := r.palette.Title(update.Section)
	return fmt.Sprintf("%s %s %d/%d", label, r.bar.ViewAs(pct), update.Step, update.Total)
}
