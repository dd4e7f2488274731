// Package tasks curates media server playlists from keyword matches with real-time progress reporting.
//
// # Core Operations
//
// The [Curator] interface defines a single operation, [CurateEngine.Run], which:
//   - Resolves each requested section by name, in request order
//   - Skips sections it cannot scan, see [SkipReason]
//   - Tests movies directly and shows episode by episode with [Matches]
//   - Adds every match to the target playlist in one write, creating it when absent
//
// A section problem never aborts a run. It is recorded as a [SectionOutcome] with a [SkipReason].
// Only an invalid request or a failed playlist write is returned as an error.
//
// # Progress Reporting
//
// Runs use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for richer rendering.
// Updates use select with default to prevent blocking, so a slow consumer misses updates rather than stalling the scan.
//
// # Dry Runs
//
// With [CurateOpts.DryRun] set the run scans and matches as usual but never writes the playlist.
package tasks
