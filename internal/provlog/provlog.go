package provlog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS evaluation_log (
	eval_id        TEXT PRIMARY KEY,
	session_id     TEXT NOT NULL,
	pack_name      TEXT NOT NULL,
	pack_version   TEXT,
	case_hash      TEXT NOT NULL,
	case_json      TEXT NOT NULL,
	urgent         INTEGER NOT NULL,
	flags          TEXT,
	top_condition  TEXT,
	top_probability REAL,
	category       TEXT,
	recommendation TEXT,
	elapsed_ms     INTEGER,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_eval_session ON evaluation_log(session_id);
CREATE INDEX IF NOT EXISTS idx_eval_created ON evaluation_log(created_at);
`

// #endregion schema

// #region types

// Record is one evaluation's audit row: which case, against which pack,
// with what verdict.
type Record struct {
	EvalID         string
	SessionID      string
	PackName       string
	PackVersion    string
	CaseHash       string
	CaseJSON       string
	Urgent         bool
	Flags          []string
	TopCondition   string
	TopProbability float64
	Category       string
	Recommendation string
	ElapsedMS      int64
	CreatedAt      time.Time
}

// Store manages the evaluation log in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion types

// #region constructor

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion constructor

// #region log

// Log inserts one evaluation record. A missing EvalID or CreatedAt is filled
// in; the completed record is returned.
func (s *Store) Log(rec Record) (Record, error) {
	if rec.EvalID == "" {
		rec.EvalID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	urgent := 0
	if rec.Urgent {
		urgent = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO evaluation_log (eval_id, session_id, pack_name, pack_version, case_hash, case_json,
		 urgent, flags, top_condition, top_probability, category, recommendation, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.EvalID, rec.SessionID, rec.PackName, rec.PackVersion, rec.CaseHash, rec.CaseJSON,
		urgent, strings.Join(rec.Flags, ","), rec.TopCondition, rec.TopProbability,
		rec.Category, rec.Recommendation, rec.ElapsedMS, rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Record{}, fmt.Errorf("insert evaluation: %w", err)
	}
	return rec, nil
}

// #endregion log

// #region queries

const selectColumns = `eval_id, session_id, pack_name, pack_version, case_hash, case_json,
 urgent, flags, top_condition, top_probability, category, recommendation, elapsed_ms, created_at`

// Recent returns the most recent evaluations, newest first.
func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT `+selectColumns+` FROM evaluation_log ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// BySession returns a session's evaluations in chronological order.
func (s *Store) BySession(sessionID string) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT `+selectColumns+` FROM evaluation_log WHERE session_id = ? ORDER BY created_at ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list session %s: %w", sessionID, err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ByID fetches one evaluation. The second return is false when no row
// matches; that is a routine lookup miss, not an error.
func (s *Store) ByID(evalID string) (Record, bool, error) {
	rows, err := s.db.Query(
		`SELECT `+selectColumns+` FROM evaluation_log WHERE eval_id = ?`, evalID,
	)
	if err != nil {
		return Record{}, false, fmt.Errorf("get evaluation %s: %w", evalID, err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return Record{}, false, err
	}
	if len(recs) == 0 {
		return Record{}, false, nil
	}
	return recs[0], true, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var rec Record
		var urgent int
		var flags sql.NullString
		var createdStr string

		if err := rows.Scan(
			&rec.EvalID, &rec.SessionID, &rec.PackName, &rec.PackVersion, &rec.CaseHash, &rec.CaseJSON,
			&urgent, &flags, &rec.TopCondition, &rec.TopProbability,
			&rec.Category, &rec.Recommendation, &rec.ElapsedMS, &createdStr,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		rec.Urgent = urgent != 0
		if flags.Valid && flags.String != "" {
			rec.Flags = strings.Split(flags.String, ",")
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion queries
