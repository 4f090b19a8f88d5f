// Package feedbacklog persists human feedback and corrections on generated
// narratives. Records are appended one unit per call and later exported for
// offline review and training-data preparation.
package feedbacklog

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/adces/feedback-engine/internal/narrative"
)

// Record is one human judgment of a generated narrative: the request
// snapshot, what was generated, whether the reviewer found it accurate, and
// any corrected sections.
type Record struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Request narrative.Request `json:"request"`

	GeneratedStrengths        string `json:"generated_strengths"`
	GeneratedImprovementAreas string `json:"generated_improvement_areas"`
	GeneratedRecommendations  string `json:"generated_recommendations"`

	Accurate *bool `json:"accurate,omitempty"`

	CorrectedStrengths        string `json:"corrected_strengths,omitempty"`
	CorrectedImprovementAreas string `json:"corrected_improvement_areas,omitempty"`
	CorrectedRecommendations  string `json:"corrected_recommendations,omitempty"`

	Comment string `json:"comment,omitempty"`
}

const schema = `
CREATE TABLE IF NOT EXISTS feedback (
	id                          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at                  TEXT NOT NULL,
	request_json                TEXT NOT NULL,
	generated_strengths         TEXT NOT NULL DEFAULT '',
	generated_improvement_areas TEXT NOT NULL DEFAULT '',
	generated_recommendations   TEXT NOT NULL DEFAULT '',
	accurate                    INTEGER,
	corrected_strengths         TEXT NOT NULL DEFAULT '',
	corrected_improvement_areas TEXT NOT NULL DEFAULT '',
	corrected_recommendations   TEXT NOT NULL DEFAULT '',
	comment                     TEXT NOT NULL DEFAULT ''
);
`

// Store is the append-only feedback log backed by SQLite. Appends serialize
// behind a mutex so concurrent requests cannot interleave partial writes.
type Store struct {
	db *sqlx.DB
	mu sync.Mutex
}

// Open creates or opens the log at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes one record as a single unit and returns its assigned ID.
func (s *Store) Append(rec Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reqJSON, err := json.Marshal(rec.Request)
	if err != nil {
		return 0, fmt.Errorf("marshal request snapshot: %w", err)
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var accurate any
	if rec.Accurate != nil {
		accurate = boolToInt(*rec.Accurate)
	}

	res, err := s.db.Exec(`INSERT INTO feedback (created_at, request_json,
		generated_strengths, generated_improvement_areas, generated_recommendations,
		accurate,
		corrected_strengths, corrected_improvement_areas, corrected_recommendations,
		comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.UTC().Format(time.RFC3339Nano),
		string(reqJSON),
		rec.GeneratedStrengths,
		rec.GeneratedImprovementAreas,
		rec.GeneratedRecommendations,
		accurate,
		rec.CorrectedStrengths,
		rec.CorrectedImprovementAreas,
		rec.CorrectedRecommendations,
		rec.Comment,
	)
	if err != nil {
		return 0, fmt.Errorf("append feedback: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit records, newest first. A non-positive limit
// returns everything.
func (s *Store) List(limit int) ([]Record, error) {
	query := `SELECT id, created_at, request_json,
		generated_strengths, generated_improvement_areas, generated_recommendations,
		accurate,
		corrected_strengths, corrected_improvement_areas, corrected_recommendations,
		comment
		FROM feedback ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var createdAt, reqJSON string
		var accurate *int
		if err := rows.Scan(&rec.ID, &createdAt, &reqJSON,
			&rec.GeneratedStrengths, &rec.GeneratedImprovementAreas, &rec.GeneratedRecommendations,
			&accurate,
			&rec.CorrectedStrengths, &rec.CorrectedImprovementAreas, &rec.CorrectedRecommendations,
			&rec.Comment); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if accurate != nil {
			b := *accurate != 0
			rec.Accurate = &b
		}
		_ = json.Unmarshal([]byte(reqJSON), &rec.Request)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count reports how many records the log holds.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM feedback").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
