package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrUnknownKey reports an API token with no matching key record.
var ErrUnknownKey = errors.New("catalog: unknown api key")

// ReviewStore is the durable side of collaborative annotation: API keys,
// per-symbol review state, and pending port submissions. SQLite in WAL
// mode; a single writer connection avoids SQLITE_BUSY under contention.
type ReviewStore struct {
	db *sql.DB
}

// OpenReview creates or opens the review database at path.
// Pragmas and schema are applied on every open; both are idempotent.
func OpenReview(path string) (*ReviewStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open review db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect review db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &ReviewStore{db: db}, nil
}

// Close closes the database connection.
func (s *ReviewStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// APIKey identifies one contributor or reviewer.
type APIKey struct {
	Key   string
	Label string
	Role  string
}

// RoleReviewer marks keys allowed to approve or reject submissions.
const RoleReviewer = "reviewer"

// CreateKey mints and stores a new API token with the given label and
// role, returning the raw token.
func (s *ReviewStore) CreateKey(ctx context.Context, label, role string) (string, error) {
	if role == "" {
		role = "contributor"
	}
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO api_keys (key, label, role) VALUES (?, ?, ?)",
		token, label, role)
	if err != nil {
		return "", fmt.Errorf("create api key: %w", err)
	}
	return token, nil
}

// LookupKey resolves a raw token, returning ErrUnknownKey when absent.
func (s *ReviewStore) LookupKey(ctx context.Context, token string) (APIKey, error) {
	var k APIKey
	err := s.db.QueryRowContext(ctx,
		"SELECT key, label, role FROM api_keys WHERE key = ?", token,
	).Scan(&k.Key, &k.Label, &k.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return APIKey{}, ErrUnknownKey
	}
	if err != nil {
		return APIKey{}, fmt.Errorf("lookup api key: %w", err)
	}
	return k, nil
}

// Keys lists all API keys in creation order.
func (s *ReviewStore) Keys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key, label, role FROM api_keys ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		if err := rows.Scan(&k.Key, &k.Label, &k.Role); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// SymbolState is the review status of one symbol.
type SymbolState struct {
	SymbolID    string
	Completed   bool
	Reviewed    bool
	Approved    *bool // nil while pending
	ReviewNotes string
	UpdatedAt   time.Time
}

// State returns the review state for a symbol. A symbol with no row yet
// reports the zero state rather than an error.
func (s *ReviewStore) State(ctx context.Context, symbolID string) (SymbolState, error) {
	st := SymbolState{SymbolID: symbolID}
	var approved sql.NullBool
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT completed, reviewed, approved, review_notes, updated_at
		   FROM symbol_states WHERE symbol_id = ?`, symbolID,
	).Scan(&st.Completed, &st.Reviewed, &approved, &st.ReviewNotes, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return SymbolState{}, fmt.Errorf("get symbol state: %w", err)
	}
	if approved.Valid {
		st.Approved = &approved.Bool
	}
	st.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updated)
	return st, nil
}

// SetCompleted upserts a symbol's completion flag.
func (s *ReviewStore) SetCompleted(ctx context.Context, symbolID string, done bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO symbol_states (symbol_id, completed) VALUES (?, ?)
		 ON CONFLICT(symbol_id) DO UPDATE SET
		   completed = excluded.completed, updated_at = datetime('now')`,
		symbolID, done)
	if err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	return nil
}

// SetReview upserts a symbol's review verdict.
func (s *ReviewStore) SetReview(ctx context.Context, symbolID string, approved bool, notes string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO symbol_states (symbol_id, reviewed, approved, review_notes)
		 VALUES (?, 1, ?, ?)
		 ON CONFLICT(symbol_id) DO UPDATE SET
		   reviewed = 1, approved = excluded.approved,
		   review_notes = excluded.review_notes, updated_at = datetime('now')`,
		symbolID, approved, notes)
	if err != nil {
		return fmt.Errorf("set review: %w", err)
	}
	return nil
}

// Submission is one contributed port set awaiting review. SnapPoints is
// the raw JSON array as submitted; it is not written to disk until a
// reviewer approves it.
type Submission struct {
	ID          int64
	SymbolID    string
	Contributor string
	SnapPoints  string
	Notes       string
	SubmittedAt string
}

// AddSubmission stores a contributed port set and returns its row id.
func (s *ReviewStore) AddSubmission(ctx context.Context, symbolID, contributor, snapPoints, notes string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO port_submissions (symbol_id, contributor, snap_points, notes)
		 VALUES (?, ?, ?, ?)`,
		symbolID, contributor, snapPoints, notes)
	if err != nil {
		return 0, fmt.Errorf("add submission: %w", err)
	}
	return res.LastInsertId()
}

// Submissions lists a symbol's submissions, newest first.
func (s *ReviewStore) Submissions(ctx context.Context, symbolID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol_id, contributor, snap_points, notes, submitted_at
		   FROM port_submissions WHERE symbol_id = ?
		  ORDER BY submitted_at DESC, id DESC`, symbolID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.SymbolID, &sub.Contributor,
			&sub.SnapPoints, &sub.Notes, &sub.SubmittedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
