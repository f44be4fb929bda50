package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/signwave/sign-video-service/internal/types"
)

// MetadataDB keeps the generation history in SQLite
type MetadataDB struct {
	db *sql.DB
}

// NewMetadataDB opens (and if needed creates) the history database
func NewMetadataDB(dbPath string) (*MetadataDB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS generations (
		id TEXT PRIMARY KEY,
		sentence TEXT NOT NULL,
		resolved_words TEXT NOT NULL,
		clip_count INTEGER NOT NULL,
		duration REAL,
		status TEXT NOT NULL,
		error TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create table: %v", err)
	}

	return &MetadataDB{db: db}, nil
}

// SaveGeneration records the outcome of one sentence request
func (mdb *MetadataDB) SaveGeneration(rec *types.GenerationRecord) error {
	query := `
	INSERT INTO generations (id, sentence, resolved_words, clip_count, duration, status, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := mdb.db.Exec(query, rec.ID, rec.Sentence, rec.ResolvedWords,
		rec.ClipCount, rec.Duration, rec.Status, rec.Error, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save generation metadata: %v", err)
	}

	return nil
}

// GetGeneration retrieves one generation record by ID
func (mdb *MetadataDB) GetGeneration(id string) (*types.GenerationRecord, error) {
	query := `
	SELECT id, sentence, resolved_words, clip_count, duration, status, error, created_at
	FROM generations WHERE id = ?
	`

	row := mdb.db.QueryRow(query, id)

	rec, err := scanGeneration(row.Scan)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation: %v", err)
	}

	return rec, nil
}

// ListGenerations returns the most recent generation records
func (mdb *MetadataDB) ListGenerations(limit int) ([]*types.GenerationRecord, error) {
	query := `
	SELECT id, sentence, resolved_words, clip_count, duration, status, error, created_at
	FROM generations ORDER BY created_at DESC LIMIT ?
	`

	rows, err := mdb.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %v", err)
	}
	defer rows.Close()

	var records []*types.GenerationRecord
	for rows.Next() {
		rec, err := scanGeneration(rows.Scan)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// scanGeneration maps one result row onto a GenerationRecord
func scanGeneration(scan func(dest ...any) error) (*types.GenerationRecord, error) {
	var (
		rec      types.GenerationRecord
		duration sql.NullFloat64
		errText  sql.NullString
	)

	if err := scan(&rec.ID, &rec.Sentence, &rec.ResolvedWords, &rec.ClipCount,
		&duration, &rec.Status, &errText, &rec.CreatedAt); err != nil {
		return nil, err
	}

	rec.Duration = duration.Float64
	rec.Error = errText.String
	return &rec, nil
}

// Close closes the database connection
func (mdb *MetadataDB) Close() error {
	return mdb.db.Close()
}
