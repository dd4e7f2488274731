// Package ui renders curate progress and status lines in the terminal.
//
// [ProgressRenderer] consumes [tasks.ProgressUpdate] values from the engine's progress channel.
// On a terminal it redraws a single line holding a bubbles/progress bar (static ViewAs rendering, no bubbletea program).
// Elsewhere it falls back to debug log lines so piped output stays readable.
//
// [Palette] holds the lipgloss styles shared by the progress line and the CLI summary.
package ui
