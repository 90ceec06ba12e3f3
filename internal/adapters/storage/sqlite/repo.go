package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hylla/prioritas/internal/app"
	"github.com/hylla/prioritas/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			archived_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS ideas (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			position_x REAL NOT NULL DEFAULT 0.5,
			position_y REAL NOT NULL DEFAULT 0.5,
			collapsed INTEGER NOT NULL DEFAULT 0,
			content TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			archived_at TEXT,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS change_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id TEXT NOT NULL,
			idea_id TEXT NOT NULL,
			operation TEXT NOT NULL,
			metadata_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ideas_project_created_at ON ideas(project_id, created_at ASC, id ASC);`,
		`CREATE INDEX IF NOT EXISTS idx_change_events_project_created_at ON change_events(project_id, created_at DESC, id DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	ideaAlterStatements := []string{
		`ALTER TABLE ideas ADD COLUMN collapsed INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE ideas ADD COLUMN details TEXT NOT NULL DEFAULT ''`,
	}
	for _, stmt := range ideaAlterStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil && !isDuplicateColumnErr(err) {
			return fmt.Errorf("migrate sqlite ideas: %w", err)
		}
	}
	return nil
}

// CreateProject creates project.
func (r *Repository) CreateProject(ctx context.Context, p domain.Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects(id, slug, name, description, created_at, updated_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Slug, p.Name, p.Description, ts(p.CreatedAt), ts(p.UpdatedAt), nullableTS(p.ArchivedAt))
	return err
}

// UpdateProject updates state for the requested operation.
func (r *Repository) UpdateProject(ctx context.Context, p domain.Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET slug = ?, name = ?, description = ?, updated_at = ?, archived_at = ?
		WHERE id = ?
	`, p.Slug, p.Name, p.Description, ts(p.UpdatedAt), nullableTS(p.ArchivedAt), p.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetProject returns project.
func (r *Repository) GetProject(ctx context.Context, id string) (domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, slug, name, description, created_at, updated_at, archived_at
		FROM projects
		WHERE id = ?
	`, id)
	return scanProject(row)
}

// ListProjects lists projects.
func (r *Repository) ListProjects(ctx context.Context, includeArchived bool) ([]domain.Project, error) {
	query := `
		SELECT id, slug, name, description, created_at, updated_at, archived_at
		FROM projects
	`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreateIdea creates idea.
func (r *Repository) CreateIdea(ctx context.Context, i domain.Idea) error {
	i.Position = i.Position.Sanitize()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ideas(id, project_id, position_x, position_y, collapsed, content, details, created_at, updated_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		i.ID,
		i.ProjectID,
		i.Position.X,
		i.Position.Y,
		boolToInt(i.Collapsed),
		i.Content,
		i.Details,
		ts(i.CreatedAt),
		ts(i.UpdatedAt),
		nullableTS(i.ArchivedAt),
	)
	if err != nil {
		return err
	}

	err = insertIdeaChangeEvent(ctx, tx, domain.ChangeEvent{
		ProjectID: i.ProjectID,
		IdeaID:    i.ID,
		Operation: domain.ChangeOperationCreate,
		Metadata: map[string]string{
			"content":    i.Content,
			"position_x": formatCoord(i.Position.X),
			"position_y": formatCoord(i.Position.Y),
		},
		OccurredAt: i.CreatedAt,
	})
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// ImportIdeas inserts a batch of ideas in one transaction, ledgering each row
// as an import so bulk loads stay distinguishable from interactive creates.
func (r *Repository) ImportIdeas(ctx context.Context, ideas []domain.Idea) error {
	if len(ideas) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, i := range ideas {
		i.Position = i.Position.Sanitize()

		_, err = tx.ExecContext(ctx, `
			INSERT INTO ideas(id, project_id, position_x, position_y, collapsed, content, details, created_at, updated_at, archived_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			i.ID,
			i.ProjectID,
			i.Position.X,
			i.Position.Y,
			boolToInt(i.Collapsed),
			i.Content,
			i.Details,
			ts(i.CreatedAt),
			ts(i.UpdatedAt),
			nullableTS(i.ArchivedAt),
		)
		if err != nil {
			return err
		}

		err = insertIdeaChangeEvent(ctx, tx, domain.ChangeEvent{
			ProjectID: i.ProjectID,
			IdeaID:    i.ID,
			Operation: domain.ChangeOperationImport,
			Metadata: map[string]string{
				"content":    i.Content,
				"position_x": formatCoord(i.Position.X),
				"position_y": formatCoord(i.Position.Y),
			},
			OccurredAt: i.CreatedAt,
		})
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	return err
}

// UpdateIdea updates state for the requested operation.
func (r *Repository) UpdateIdea(ctx context.Context, i domain.Idea) error {
	i.Position = i.Position.Sanitize()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	prev, err := getIdeaByID(ctx, tx, i.ID)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE ideas
		SET position_x = ?, position_y = ?, collapsed = ?, content = ?, details = ?, updated_at = ?, archived_at = ?
		WHERE id = ?
	`,
		i.Position.X,
		i.Position.Y,
		boolToInt(i.Collapsed),
		i.Content,
		i.Details,
		ts(i.UpdatedAt),
		nullableTS(i.ArchivedAt),
		i.ID,
	)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}

	op, metadata := classifyIdeaTransition(prev, i)
	err = insertIdeaChangeEvent(ctx, tx, domain.ChangeEvent{
		ProjectID:  i.ProjectID,
		IdeaID:     i.ID,
		Operation:  op,
		Metadata:   metadata,
		OccurredAt: i.UpdatedAt,
	})
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// GetIdea returns idea.
func (r *Repository) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	return getIdeaByID(ctx, r.db, id)
}

// ListIdeas lists ideas in creation order.
func (r *Repository) ListIdeas(ctx context.Context, projectID string, includeArchived bool) ([]domain.Idea, error) {
	query := `
		SELECT id, project_id, position_x, position_y, collapsed, content, details, created_at, updated_at, archived_at
		FROM ideas
		WHERE project_id = ?
	`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, idea)
	}
	return out, rows.Err()
}

// DeleteIdea deletes idea.
func (r *Repository) DeleteIdea(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	idea, err := getIdeaByID(ctx, tx, id)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM ideas WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}

	err = insertIdeaChangeEvent(ctx, tx, domain.ChangeEvent{
		ProjectID: idea.ProjectID,
		IdeaID:    idea.ID,
		Operation: domain.ChangeOperationDelete,
		Metadata: map[string]string{
			"content": idea.Content,
		},
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// ListProjectChangeEvents lists recent project events for activity-log consumption.
func (r *Repository) ListProjectChangeEvents(ctx context.Context, projectID string, limit int) ([]domain.ChangeEvent, error) {
	query := `
		SELECT id, project_id, idea_id, operation, metadata_json, created_at
		FROM change_events
		WHERE project_id = ?
		ORDER BY created_at DESC, id DESC
	`
	args := []any{projectID}
	// limit <= 0 returns the full ledger, matching the serve surface contract.
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ChangeEvent, 0)
	for rows.Next() {
		var (
			event       domain.ChangeEvent
			opRaw       string
			metadataRaw string
			createdRaw  string
		)
		if err := rows.Scan(&event.ID, &event.ProjectID, &event.IdeaID, &opRaw, &metadataRaw, &createdRaw); err != nil {
			return nil, err
		}
		event.Operation = normalizeChangeOperation(opRaw)
		event.OccurredAt = parseTS(createdRaw)
		if strings.TrimSpace(metadataRaw) == "" {
			metadataRaw = "{}"
		}
		if err := json.Unmarshal([]byte(metadataRaw), &event.Metadata); err != nil {
			return nil, fmt.Errorf("decode change_events.metadata_json: %w", err)
		}
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

// queryRower represents a query-only DB contract used by DB and Tx implementations.
type queryRower interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// getIdeaByID returns an idea row.
func getIdeaByID(ctx context.Context, q queryRower, id string) (domain.Idea, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, project_id, position_x, position_y, collapsed, content, details, created_at, updated_at, archived_at
		FROM ideas
		WHERE id = ?
	`, id)
	return scanIdea(row)
}

// execerContext represents a write-only DB contract used by DB and Tx implementations.
type execerContext interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
}

// insertIdeaChangeEvent inserts a change-event ledger record.
func insertIdeaChangeEvent(ctx context.Context, execer execerContext, event domain.ChangeEvent) error {
	metadataJSON, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("encode change event metadata: %w", err)
	}
	_, err = execer.ExecContext(ctx, `
		INSERT INTO change_events(project_id, idea_id, operation, metadata_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		event.ProjectID,
		event.IdeaID,
		string(event.Operation),
		string(metadataJSON),
		ts(normalizeEventTS(event.OccurredAt)),
	)
	if err != nil {
		return fmt.Errorf("insert change event: %w", err)
	}
	return nil
}

// classifyIdeaTransition derives the best operation category and metadata for an idea update.
func classifyIdeaTransition(prev, next domain.Idea) (domain.ChangeOperation, map[string]string) {
	if prev.ArchivedAt == nil && next.ArchivedAt != nil {
		return domain.ChangeOperationArchive, map[string]string{
			"content": next.Content,
		}
	}
	if prev.ArchivedAt != nil && next.ArchivedAt == nil {
		return domain.ChangeOperationRestore, map[string]string{
			"content": next.Content,
		}
	}
	if prev.Position != next.Position {
		return domain.ChangeOperationMove, map[string]string{
			"from_x":        formatCoord(prev.Position.X),
			"from_y":        formatCoord(prev.Position.Y),
			"to_x":          formatCoord(next.Position.X),
			"to_y":          formatCoord(next.Position.Y),
			"from_quadrant": string(prev.Quadrant()),
			"to_quadrant":   string(next.Quadrant()),
		}
	}
	if prev.Collapsed != next.Collapsed {
		return domain.ChangeOperationCollapse, map[string]string{
			"collapsed": strconv.FormatBool(next.Collapsed),
		}
	}
	fields := changedIdeaFields(prev, next)
	metadata := map[string]string{}
	if len(fields) > 0 {
		metadata["changed_fields"] = strings.Join(fields, ",")
	}
	return domain.ChangeOperationUpdate, metadata
}

// changedIdeaFields identifies a deterministic set of meaningful changes for metadata.
func changedIdeaFields(prev, next domain.Idea) []string {
	changed := make([]string, 0)
	if prev.Content != next.Content {
		changed = append(changed, "content")
	}
	if prev.Details != next.Details {
		changed = append(changed, "details")
	}
	return changed
}

// normalizeChangeOperation canonicalizes persisted operation values.
func normalizeChangeOperation(raw string) domain.ChangeOperation {
	raw = strings.TrimSpace(strings.ToLower(raw))
	switch raw {
	case string(domain.ChangeOperationCreate):
		return domain.ChangeOperationCreate
	case string(domain.ChangeOperationUpdate):
		return domain.ChangeOperationUpdate
	case string(domain.ChangeOperationMove):
		return domain.ChangeOperationMove
	case string(domain.ChangeOperationCollapse):
		return domain.ChangeOperationCollapse
	case string(domain.ChangeOperationImport):
		return domain.ChangeOperationImport
	case string(domain.ChangeOperationArchive):
		return domain.ChangeOperationArchive
	case string(domain.ChangeOperationRestore):
		return domain.ChangeOperationRestore
	case string(domain.ChangeOperationDelete):
		return domain.ChangeOperationDelete
	default:
		return domain.ChangeOperationUpdate
	}
}

// normalizeEventTS ensures event timestamps are always populated and UTC-normalized.
func normalizeEventTS(in time.Time) time.Time {
	if in.IsZero() {
		return time.Now().UTC()
	}
	return in.UTC()
}

// scanner represents scanner data used by this package.
type scanner interface {
	Scan(dest ...any) error
}

// scanProject handles scan project.
func scanProject(s scanner) (domain.Project, error) {
	var (
		p          domain.Project
		createdRaw string
		updatedRaw string
		archived   sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &createdRaw, &updatedRaw, &archived); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Project{}, app.ErrNotFound
		}
		return domain.Project{}, err
	}
	p.CreatedAt = parseTS(createdRaw)
	p.UpdatedAt = parseTS(updatedRaw)
	p.ArchivedAt = parseNullTS(archived)
	return p, nil
}

// scanIdea handles scan idea. Positions are sanitized on the way out so
// a malformed row renders at a deterministic fallback instead of
// breaking the matrix.
func scanIdea(s scanner) (domain.Idea, error) {
	var (
		i          domain.Idea
		posX       sql.NullFloat64
		posY       sql.NullFloat64
		collapsed  int
		createdRaw string
		updatedRaw string
		archived   sql.NullString
	)
	if err := s.Scan(
		&i.ID,
		&i.ProjectID,
		&posX,
		&posY,
		&collapsed,
		&i.Content,
		&i.Details,
		&createdRaw,
		&updatedRaw,
		&archived,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Idea{}, app.ErrNotFound
		}
		return domain.Idea{}, err
	}
	pos := domain.CenterPosition()
	if posX.Valid {
		pos.X = posX.Float64
	}
	if posY.Valid {
		pos.Y = posY.Float64
	}
	i.Position = pos.Sanitize()
	i.Collapsed = collapsed != 0
	i.CreatedAt = parseTS(createdRaw)
	i.UpdatedAt = parseTS(updatedRaw)
	i.ArchivedAt = parseNullTS(archived)
	return i, nil
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// nullableTS handles nullable ts.
func nullableTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// parseNullTS parses input into a normalized form.
func parseNullTS(v sql.NullString) *time.Time {
	if !v.Valid || strings.TrimSpace(v.String) == "" {
		return nil
	}
	ts := parseTS(v.String)
	return &ts
}

// formatCoord formats one normalized coordinate for ledger metadata.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// boolToInt converts bool to int.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isDuplicateColumnErr reports whether the expected condition is satisfied.
func isDuplicateColumnErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}
