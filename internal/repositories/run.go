package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/plexlist/internal/models"
	"github.com/desertthunder/plexlist/internal/shared"
)

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// RunRepository implements [models.Repository] for curate [models.Run] history.
//
// Keywords and section names are stored as JSON arrays; per-section outcomes live in run_sections.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a finished run and its section outcomes with generated ID and sequence
func (r *RunRepository) Create(run *models.Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.SetID(shared.GenerateID())
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	keywords, err := shared.MarshalJSON(run.Keywords(), false)
	if err != nil {
		return fmt.Errorf("failed to encode keywords: %w", err)
	}
	sections, err := shared.MarshalJSON(run.Sections(), false)
	if err != nil {
		return fmt.Errorf("failed to encode sections: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO runs (id, sequence, playlist, keywords, mode, sections, match_count, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.Exec(query,
		run.ID(),
		sequence,
		run.Playlist(),
		string(keywords),
		string(run.Mode()),
		string(sections),
		run.MatchCount(),
		string(run.Status()),
		run.ErrorText(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, o := range run.Outcomes() {
		_, err := tx.Exec(`
			INSERT INTO run_sections (run_id, position, name, status, reason, scanned, matched)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, run.ID(), i, o.Name, o.Status, o.Reason, o.Scanned, o.Matched)
		if err != nil {
			return fmt.Errorf("failed to insert run section %q: %w", o.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// Get retrieves a run and its section outcomes by ID
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT id, sequence, playlist, keywords, mode, sections, match_count, status, error, created_at, updated_at
		FROM runs
		WHERE id = ?
	`

	run, err := r.scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	outcomes, err := r.listOutcomes(run.ID())
	if err != nil {
		return nil, err
	}
	run.SetOutcomes(outcomes)

	return run, nil
}

// List retrieves runs matching the given criteria, newest first.
//
// Supported criteria: "playlist" (string, exact match) and "limit" (int, zero or less means no limit).
// Section outcomes are loaded for every returned run.
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `
		SELECT id, sequence, playlist, keywords, mode, sections, match_count, status, error, created_at, updated_at
		FROM runs
		WHERE 1 = 1
	`

	args := []any{}

	if playlist, ok := criteria["playlist"].(string); ok && playlist != "" {
		query += " AND playlist = ?"
		args = append(args, playlist)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := r.scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, run := range runs {
		outcomes, err := r.listOutcomes(run.ID())
		if err != nil {
			return nil, err
		}
		run.SetOutcomes(outcomes)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RunRepository) scanRun(row rowScanner) (*models.Run, error) {
	var (
		id         string
		sequence   int
		playlist   string
		keywords   string
		mode       string
		sections   string
		matchCount int
		status     string
		errText    string
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&id, &sequence, &playlist, &keywords, &mode, &sections, &matchCount, &status, &errText, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	filter := models.Filter{Mode: models.MatchMode(mode)}
	if err := json.Unmarshal([]byte(keywords), &filter.Keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keywords of run %s: %w", id, err)
	}

	var sectionNames []string
	if err := json.Unmarshal([]byte(sections), &sectionNames); err != nil {
		return nil, fmt.Errorf("failed to decode sections of run %s: %w", id, err)
	}

	var runErr error
	if errText != "" {
		runErr = errors.New(errText)
	}

	run := models.NewRun(sequence, playlist, filter, sectionNames)
	run.SetID(id)
	run.Finish(models.RunStatus(status), matchCount, runErr)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	return run, nil
}

func (r *RunRepository) listOutcomes(runID string) ([]models.RunSection, error) {
	rows, err := r.db.Query(`
		SELECT name, status, reason, scanned, matched
		FROM run_sections
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run sections: %w", err)
	}
	defer rows.Close()

	var outcomes []models.RunSection
	for rows.Next() {
		var o models.RunSection
		if err := rows.Scan(&o.Name, &o.Status, &o.Reason, &o.Scanned, &o.Matched); err != nil {
			return nil, fmt.Errorf("failed to scan run section: %w", err)
		}
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return outcomes, nil
}
