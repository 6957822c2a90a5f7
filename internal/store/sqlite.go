package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		server_id  TEXT NOT NULL,
		team_key   TEXT NOT NULL,
		team_name  TEXT NOT NULL,
		user_id    TEXT,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (server_id, team_key)
	);
	CREATE INDEX IF NOT EXISTS idx_teams_user ON teams(server_id, user_id);

	CREATE TABLE IF NOT EXISTS balances (
		server_id TEXT NOT NULL,
		user_id   TEXT NOT NULL,
		points    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (server_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS records (
		server_id TEXT NOT NULL,
		team_key  TEXT NOT NULL,
		team_name TEXT NOT NULL,
		wins      INTEGER NOT NULL DEFAULT 0,
		losses    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (server_id, team_key)
	);

	CREATE TABLE IF NOT EXISTS upgrade_requests (
		id         TEXT PRIMARY KEY,
		server_id  TEXT NOT NULL,
		user_id    TEXT NOT NULL,
		attribute  TEXT NOT NULL,
		points     INTEGER NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_requests_user ON upgrade_requests(server_id, user_id, status);

	CREATE TABLE IF NOT EXISTS server_settings (
		server_id TEXT NOT NULL,
		setting   TEXT NOT NULL,
		value     TEXT NOT NULL,
		PRIMARY KEY (server_id, setting)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) LookupTeam(ctx context.Context, serverID, teamKey string) (TeamLookup, error) {
	var name string
	var userID sql.NullString

	// Exact match first, then fall back to a partial match.
	err := s.db.QueryRowContext(ctx,
		`SELECT team_name, user_id FROM teams WHERE server_id = ? AND team_key = ?`,
		serverID, teamKey).Scan(&name, &userID)
	if err == sql.ErrNoRows {
		err = s.db.QueryRowContext(ctx,
			`SELECT team_name, user_id FROM teams WHERE server_id = ? AND team_key LIKE ? ORDER BY team_key LIMIT 1`,
			serverID, "%"+teamKey+"%").Scan(&name, &userID)
	}
	if err == sql.ErrNoRows {
		return TeamLookup{}, nil
	}
	if err != nil {
		return TeamLookup{}, fmt.Errorf("lookup team: %w", err)
	}

	return TeamLookup{
		Found:    true,
		TeamName: name,
		UserID:   userID.String,
		Assigned: userID.Valid && userID.String != "",
	}, nil
}

func (s *SQLiteStore) AssignTeam(ctx context.Context, serverID, teamName, userID string) error {
	key := normalizeKey(teamName)
	var owner any
	if userID != "" {
		owner = userID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (server_id, team_key, team_name, user_id, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(server_id, team_key) DO UPDATE SET user_id = excluded.user_id, updated_at = excluded.updated_at`,
		serverID, key, teamName, owner, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("assign team: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAssignments(ctx context.Context, serverID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT team_name, COALESCE(user_id, '') FROM teams WHERE server_id = ? ORDER BY team_name`,
		serverID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.TeamName, &a.UserID); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UserTeam(ctx context.Context, serverID, userID string) (string, bool, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT team_name FROM teams WHERE server_id = ? AND user_id = ? LIMIT 1`,
		serverID, userID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("user team: %w", err)
	}
	return name, true, nil
}

func (s *SQLiteStore) Balance(ctx context.Context, serverID, userID string) (int, error) {
	var points int
	err := s.db.QueryRowContext(ctx,
		`SELECT points FROM balances WHERE server_id = ? AND user_id = ?`,
		serverID, userID).Scan(&points)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return points, nil
}

func (s *SQLiteStore) AddPoints(ctx context.Context, serverID, userID string, delta int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO balances (server_id, user_id, points) VALUES (?, ?, ?)
		 ON CONFLICT(server_id, user_id) DO UPDATE SET points = points + excluded.points`,
		serverID, userID, delta)
	if err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	return nil
}

func (s *SQLiteStore) TeamRecord(ctx context.Context, serverID, teamKey string) (Record, bool, error) {
	var rec Record
	err := s.db.QueryRowContext(ctx,
		`SELECT team_name, wins, losses FROM records WHERE server_id = ? AND team_key = ?`,
		serverID, teamKey).Scan(&rec.TeamName, &rec.Wins, &rec.Losses)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("team record: %w", err)
	}
	return rec, true, nil
}

func (s *SQLiteStore) SetRecord(ctx context.Context, serverID string, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (server_id, team_key, team_name, wins, losses) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(server_id, team_key) DO UPDATE SET wins = excluded.wins, losses = excluded.losses`,
		serverID, normalizeKey(rec.TeamName), rec.TeamName, rec.Wins, rec.Losses)
	if err != nil {
		return fmt.Errorf("set record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Standings(ctx context.Context, serverID string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT team_name, wins, losses FROM records WHERE server_id = ? ORDER BY wins DESC, losses ASC, team_name`,
		serverID)
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.TeamName, &rec.Wins, &rec.Losses); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) PendingRequests(ctx context.Context, serverID, userID string) ([]UpgradeRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, attribute, points, status FROM upgrade_requests
		 WHERE server_id = ? AND user_id = ? AND status = 'pending' ORDER BY created_at`,
		serverID, userID)
	if err != nil {
		return nil, fmt.Errorf("pending requests: %w", err)
	}
	defer rows.Close()

	var out []UpgradeRequest
	for rows.Next() {
		var req UpgradeRequest
		if err := rows.Scan(&req.ID, &req.UserID, &req.Attribute, &req.Points, &req.Status); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddRequest(ctx context.Context, serverID string, req UpgradeRequest) error {
	if req.ID == "" {
		req.ID = s.newID()
	}
	if req.Status == "" {
		req.Status = "pending"
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO upgrade_requests (id, server_id, user_id, attribute, points, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID, serverID, req.UserID, req.Attribute, req.Points, req.Status,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("add request: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Setting(ctx context.Context, serverID, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM server_settings WHERE server_id = ? AND setting = ?`,
		serverID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("setting: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, serverID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO server_settings (server_id, setting, value) VALUES (?, ?, ?)
		 ON CONFLICT(server_id, setting) DO UPDATE SET value = excluded.value`,
		serverID, key, value)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
