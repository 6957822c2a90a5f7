package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "league.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAssignAndLookupTeam(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AssignTeam(ctx, "s1", "Alabama", "roll_tide"); err != nil {
		t.Fatal(err)
	}

	lookup, err := s.LookupTeam(ctx, "s1", "alabama")
	if err != nil {
		t.Fatal(err)
	}
	if !lookup.Found || !lookup.Assigned {
		t.Fatalf("lookup = %+v", lookup)
	}
	if lookup.TeamName != "Alabama" || lookup.UserID != "roll_tide" {
		t.Errorf("lookup = %+v", lookup)
	}
}

func TestLookupTeamPartialMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AssignTeam(ctx, "s1", "Ohio State", "buckeye_fan"); err != nil {
		t.Fatal(err)
	}

	lookup, err := s.LookupTeam(ctx, "s1", "ohio")
	if err != nil {
		t.Fatal(err)
	}
	if !lookup.Found || lookup.TeamName != "Ohio State" {
		t.Errorf("partial lookup = %+v", lookup)
	}
}

func TestLookupTeamMissing(t *testing.T) {
	s := newTestStore(t)

	lookup, err := s.LookupTeam(context.Background(), "s1", "narnia")
	if err != nil {
		t.Fatal(err)
	}
	if lookup.Found {
		t.Errorf("lookup = %+v", lookup)
	}
}

func TestAssignTeamCPU(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AssignTeam(ctx, "s1", "Oregon", ""); err != nil {
		t.Fatal(err)
	}

	lookup, err := s.LookupTeam(ctx, "s1", "oregon")
	if err != nil {
		t.Fatal(err)
	}
	if !lookup.Found || lookup.Assigned {
		t.Errorf("CPU team lookup = %+v", lookup)
	}
}

func TestAssignTeamReplacesOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AssignTeam(ctx, "s1", "Georgia", "first"); err != nil {
		t.Fatal(err)
	}
	if err := s.AssignTeam(ctx, "s1", "Georgia", "second"); err != nil {
		t.Fatal(err)
	}

	lookup, err := s.LookupTeam(ctx, "s1", "georgia")
	if err != nil {
		t.Fatal(err)
	}
	if lookup.UserID != "second" {
		t.Errorf("owner = %s", lookup.UserID)
	}

	assignments, err := s.ListAssignments(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(assignments) != 1 {
		t.Errorf("reassignment duplicated the team: %+v", assignments)
	}
}

func TestServerIsolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AssignTeam(ctx, "s1", "Alabama", "a"); err != nil {
		t.Fatal(err)
	}

	lookup, err := s.LookupTeam(ctx, "s2", "alabama")
	if err != nil {
		t.Fatal(err)
	}
	if lookup.Found {
		t.Error("assignment leaked across servers")
	}
}

func TestUserTeam(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.UserTeam(ctx, "s1", "nobody"); err != nil || ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}

	if err := s.AssignTeam(ctx, "s1", "Texas", "hook_em"); err != nil {
		t.Fatal(err)
	}
	team, ok, err := s.UserTeam(ctx, "s1", "hook_em")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || team != "Texas" {
		t.Errorf("team=%q ok=%v", team, ok)
	}
}

func TestBalanceAndAddPoints(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	points, err := s.Balance(ctx, "s1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if points != 0 {
		t.Errorf("fresh balance = %d", points)
	}

	if err := s.AddPoints(ctx, "s1", "u1", 5); err != nil {
		t.Fatal(err)
	}
	if err := s.AddPoints(ctx, "s1", "u1", -2); err != nil {
		t.Fatal(err)
	}

	points, err = s.Balance(ctx, "s1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if points != 3 {
		t.Errorf("balance = %d", points)
	}
}

func TestRecordsAndStandings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, rec := range []Record{
		{TeamName: "Alabama", Wins: 7, Losses: 2},
		{TeamName: "Georgia", Wins: 9, Losses: 0},
		{TeamName: "Auburn", Wins: 7, Losses: 3},
	} {
		if err := s.SetRecord(ctx, "s1", rec); err != nil {
			t.Fatal(err)
		}
	}

	rec, ok, err := s.TeamRecord(ctx, "s1", "georgia")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || rec.Wins != 9 {
		t.Errorf("record = %+v ok=%v", rec, ok)
	}

	standings, err := s.Standings(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Georgia", "Alabama", "Auburn"}
	if len(standings) != len(want) {
		t.Fatalf("standings = %+v", standings)
	}
	for i, name := range want {
		if standings[i].TeamName != name {
			t.Errorf("standings[%d] = %s, want %s", i, standings[i].TeamName, name)
		}
	}
}

func TestUpgradeRequests(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddRequest(ctx, "s1", UpgradeRequest{UserID: "u1", Attribute: "speed", Points: 2}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddRequest(ctx, "s1", UpgradeRequest{UserID: "u1", Attribute: "catching", Points: 1, Status: "approved"}); err != nil {
		t.Fatal(err)
	}

	pending, err := s.PendingRequests(ctx, "s1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending = %+v", pending)
	}
	if pending[0].Attribute != "speed" || pending[0].Status != "pending" || pending[0].ID == "" {
		t.Errorf("pending = %+v", pending[0])
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	value, err := s.Setting(ctx, "s1", "advance_message")
	if err != nil {
		t.Fatal(err)
	}
	if value != "" {
		t.Errorf("unset setting = %q", value)
	}

	if err := s.SetSetting(ctx, "s1", "advance_message", "We advanced!"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(ctx, "s1", "advance_message", "Updated."); err != nil {
		t.Fatal(err)
	}

	value, err = s.Setting(ctx, "s1", "advance_message")
	if err != nil {
		t.Fatal(err)
	}
	if value != "Updated." {
		t.Errorf("setting = %q", value)
	}
}
