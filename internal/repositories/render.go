package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kgolebiewski95/Vibello/internal/models"
	"github.com/kgolebiewski95/Vibello/internal/shared"
)

// RenderRepository implements models.Repository[*models.Render] for render history.
//
// Handles render CRUD operations with soft delete support and backend render ID lookups.
type RenderRepository struct {
	db *sql.DB
}

// NewRenderRepository creates a new RenderRepository with the given database connection
func NewRenderRepository(db *sql.DB) *RenderRepository {
	return &RenderRepository{db: db}
}

// Create inserts a new render into the database with generated ID and sequence
func (r *RenderRepository) Create(render *models.Render) error {
	sequence, err := NextSequence(r.db, "renders")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	render.SetSequence(sequence)

	id := shared.GenerateID()
	render.SetID(id)

	if err := render.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO renders (id, seq, job_id, render_id, status, file_count, slide_seconds, xfade_seconds, fps, download_url, local_path, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		render.JobID(),
		render.RenderID(),
		string(render.Status()),
		render.FileCount(),
		render.SlideSeconds(),
		render.XfadeSeconds(),
		render.FPS(),
		render.DownloadURL(),
		render.LocalPath(),
		render.ErrorText(),
		render.CreatedAt(),
		render.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert render: %w", err)
	}

	return nil
}

// Get retrieves a render by ID, excluding soft-deleted renders
func (r *RenderRepository) Get(id string) (*models.Render, error) {
	query := `
		SELECT id, seq, job_id, render_id, status, file_count, slide_seconds, xfade_seconds, fps, download_url, local_path, error, created_at, updated_at, deleted_at
		FROM renders
		WHERE id = ? AND deleted_at IS NULL
	`

	render, err := scanRender(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("render not found")
	}
	return render, err
}

// GetByRenderID retrieves a render by the backend's render identifier
func (r *RenderRepository) GetByRenderID(renderID string) (*models.Render, error) {
	query := `
		SELECT id, seq, job_id, render_id, status, file_count, slide_seconds, xfade_seconds, fps, download_url, local_path, error, created_at, updated_at, deleted_at
		FROM renders
		WHERE render_id = ? AND deleted_at IS NULL
	`

	render, err := scanRender(r.db.QueryRow(query, renderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("render not found: %s", renderID)
	}
	return render, err
}

// Latest retrieves the most recently created render, excluding soft-deleted renders
func (r *RenderRepository) Latest() (*models.Render, error) {
	query := `
		SELECT id, seq, job_id, render_id, status, file_count, slide_seconds, xfade_seconds, fps, download_url, local_path, error, created_at, updated_at, deleted_at
		FROM renders
		WHERE deleted_at IS NULL
		ORDER BY seq DESC
		LIMIT 1
	`

	render, err := scanRender(r.db.QueryRow(query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no renders recorded")
	}
	return render, err
}

// Update modifies an existing render in the database. Only the fields that
// change after submission are written: status, download_url, local_path, error.
func (r *RenderRepository) Update(render *models.Render) error {
	if err := render.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	render.SetUpdatedAt(now)

	query := `
		UPDATE renders
		SET status = ?, download_url = ?, local_path = ?, error = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(render.Status()),
		render.DownloadURL(),
		render.LocalPath(),
		render.ErrorText(),
		now,
		render.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update render: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("render not found or already deleted: %s", render.ID())
	}

	return nil
}

// Delete soft-deletes a render by ID
func (r *RenderRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE renders
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete render: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("render not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves all renders matching the given criteria, excluding soft-deleted renders
func (r *RenderRepository) List(criteria map[string]any) ([]*models.Render, error) {
	query := `
		SELECT id, seq, job_id, render_id, status, file_count, slide_seconds, xfade_seconds, fps, download_url, local_path, error, created_at, updated_at, deleted_at
		FROM renders
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if jobID, ok := criteria["job_id"].(string); ok && jobID != "" {
		query += " AND job_id = ?"
		args = append(args, jobID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY seq ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query renders: %w", err)
	}
	defer rows.Close()

	var renders []*models.Render
	for rows.Next() {
		render, err := scanRender(rows)
		if err != nil {
			return nil, err
		}
		renders = append(renders, render)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return renders, nil
}

// scanRender scans one result row into a [models.Render]. Works for both
// [sql.Row] and [sql.Rows].
func scanRender(row interface{ Scan(dest ...any) error }) (*models.Render, error) {
	var (
		id           string
		seq          int
		jobID        string
		renderID     string
		status       string
		fileCount    int
		slideSeconds float64
		xfadeSeconds float64
		fps          int
		downloadURL  sql.NullString
		localPath    sql.NullString
		errorText    sql.NullString
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&id, &seq, &jobID, &renderID, &status, &fileCount, &slideSeconds, &xfadeSeconds, &fps, &downloadURL, &localPath, &errorText, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan render: %w", err)
	}

	job := models.RenderJob{
		RenderID:    renderID,
		Status:      models.RenderStatus(status),
		DownloadURL: downloadURL.String,
		Error:       errorText.String,
	}
	opts := models.RenderOptions{
		SlideSeconds: slideSeconds,
		XfadeSeconds: xfadeSeconds,
		FPS:          fps,
	}

	render := models.NewRender(seq, jobID, job, opts, fileCount)
	render.SetID(id)
	render.SetLocalPath(localPath.String)
	render.SetCreatedAt(createdAt)
	render.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		render.SetDeletedAt(&deletedAt.Time)
	}

	return render, nil
}
