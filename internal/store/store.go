// Package store provides the league storage interface and its SQLite
// implementation. All lookups are keyed by server so multiple leagues can
// share one database.
package store

import "context"

// TeamLookup is the result of resolving a team name. Found and Assigned are
// business outcomes, not errors: a missing team or a CPU-controlled team are
// both valid answers.
type TeamLookup struct {
	Found    bool
	TeamName string
	UserID   string
	Assigned bool
}

// Assignment pairs a team with its owner. UserID is empty for CPU teams.
type Assignment struct {
	TeamName string
	UserID   string
}

// Record is a team's win/loss tally.
type Record struct {
	TeamName string
	Wins     int
	Losses   int
}

// UpgradeRequest is a pending attribute-point spend awaiting approval.
type UpgradeRequest struct {
	ID        string
	UserID    string
	Attribute string
	Points    int
	Status    string
}

// Store defines the keyed read/write operations the pipeline needs. The
// query pipeline never sees SQL; it branches on the returned data.
type Store interface {
	// LookupTeam resolves a team by key, trying an exact match before a
	// partial match.
	LookupTeam(ctx context.Context, serverID, teamKey string) (TeamLookup, error)

	// AssignTeam sets or replaces a team's owner. An empty userID makes the
	// team CPU-controlled.
	AssignTeam(ctx context.Context, serverID, teamName, userID string) error

	// ListAssignments returns every team assignment for a server.
	ListAssignments(ctx context.Context, serverID string) ([]Assignment, error)

	// UserTeam returns the team assigned to a user, if any.
	UserTeam(ctx context.Context, serverID, userID string) (string, bool, error)

	// Balance returns a user's attribute-point balance. Unknown users have a
	// zero balance.
	Balance(ctx context.Context, serverID, userID string) (int, error)

	// AddPoints adjusts a user's balance by delta (may be negative).
	AddPoints(ctx context.Context, serverID, userID string, delta int) error

	// TeamRecord returns a team's win/loss record.
	TeamRecord(ctx context.Context, serverID, teamKey string) (Record, bool, error)

	// SetRecord upserts a team's record.
	SetRecord(ctx context.Context, serverID string, rec Record) error

	// Standings returns all records for a server, best record first.
	Standings(ctx context.Context, serverID string) ([]Record, error)

	// PendingRequests returns a user's unresolved upgrade requests.
	PendingRequests(ctx context.Context, serverID, userID string) ([]UpgradeRequest, error)

	// AddRequest records a new upgrade request.
	AddRequest(ctx context.Context, serverID string, req UpgradeRequest) error

	// Setting reads a per-server setting, returning "" when unset.
	Setting(ctx context.Context, serverID, key string) (string, error)

	// SetSetting writes a per-server setting.
	SetSetting(ctx context.Context, serverID, key, value string) error

	// Close releases the underlying database.
	Close() error
}
