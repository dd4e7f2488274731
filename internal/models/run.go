package models

import (
	"fmt"
	"strings"
	"time"
)

// RunStatus is the terminal state of a curate run.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunFailed  RunStatus = "failed"
	RunDryRun  RunStatus = "dry_run"
)

// RunSection is the recorded outcome of one requested section.
type RunSection struct {
	Name    string
	Status  string
	Reason  string
	Scanned int
	Matched int
}

// Run is a persisted record of one curate invocation.
type Run struct {
	id         string
	sequence   int
	playlist   string
	keywords   []string
	mode       MatchMode
	sections   []string
	matchCount int
	status     RunStatus
	errText    string
	outcomes   []RunSection
	createdAt  time.Time
	updatedAt  time.Time
}

// NewRun creates a [Run] for the given playlist and filter, timestamped now.
func NewRun(sequence int, playlist string, filter Filter, sections []string) *Run {
	now := time.Now().UTC()
	return &Run{
		sequence:  sequence,
		playlist:  playlist,
		keywords:  append([]string(nil), filter.Keywords...),
		mode:      filter.Mode,
		sections:  append([]string(nil), sections...),
		createdAt: now,
		updatedAt: now,
	}
}

func (r *Run) ID() string                 { return r.id }
func (r *Run) Sequence() int              { return r.sequence }
func (r *Run) Playlist() string           { return r.playlist }
func (r *Run) Keywords() []string         { return r.keywords }
func (r *Run) Mode() MatchMode            { return r.mode }
func (r *Run) Sections() []string         { return r.sections }
func (r *Run) MatchCount() int            { return r.matchCount }
func (r *Run) Status() RunStatus          { return r.status }
func (r *Run) ErrorText() string          { return r.errText }
func (r *Run) Outcomes() []RunSection     { return r.outcomes }
func (r *Run) CreatedAt() time.Time       { return r.createdAt }
func (r *Run) UpdatedAt() time.Time       { return r.updatedAt }
func (r *Run) SetID(id string)            { r.id = id }
func (r *Run) SetSequence(seq int)        { r.sequence = seq }
func (r *Run) SetCreatedAt(t time.Time)   { r.createdAt = t }
func (r *Run) SetUpdatedAt(t time.Time)   { r.updatedAt = t }
func (r *Run) SetOutcomes(o []RunSection) { r.outcomes = o }

// Finish records the terminal state of the run. A non-nil err forces [RunFailed].
func (r *Run) Finish(status RunStatus, matchCount int, err error) {
	r.status = status
	r.matchCount = matchCount
	r.errText = ""
	if err != nil {
		r.status = RunFailed
		r.errText = err.Error()
	}
	r.updatedAt = time.Now().UTC()
}

// Validate checks required fields.
func (r *Run) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(r.playlist) == "" {
		return fmt.Errorf("playlist is required")
	}
	if len(r.keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}
	switch r.status {
	case RunSuccess, RunFailed, RunDryRun:
	default:
		return fmt.Errorf("invalid run status %q", r.status)
	}
	return nil
}
