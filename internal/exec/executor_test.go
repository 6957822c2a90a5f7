package exec

import (
	"context"
	"strings"
	"testing"

	"github.com/commishdev/commish/internal/platform"
	"github.com/commishdev/commish/internal/store"
)

type fakeStore struct {
	store.Store

	lookups   map[string]store.TeamLookup
	balances  map[string]int
	teams     map[string]string
	records   map[string]store.Record
	standings []store.Record
	requests  []store.UpgradeRequest
	settings  map[string]string
}

func (f *fakeStore) LookupTeam(_ context.Context, _, teamKey string) (store.TeamLookup, error) {
	return f.lookups[teamKey], nil
}

func (f *fakeStore) Balance(_ context.Context, _, userID string) (int, error) {
	return f.balances[userID], nil
}

func (f *fakeStore) UserTeam(_ context.Context, _, userID string) (string, bool, error) {
	team, ok := f.teams[userID]
	return team, ok, nil
}

func (f *fakeStore) TeamRecord(_ context.Context, _, teamKey string) (store.Record, bool, error) {
	rec, ok := f.records[teamKey]
	return rec, ok, nil
}

func (f *fakeStore) Standings(_ context.Context, _ string) ([]store.Record, error) {
	return f.standings, nil
}

func (f *fakeStore) ListAssignments(_ context.Context, _ string) ([]store.Assignment, error) {
	var out []store.Assignment
	for key, l := range f.lookups {
		_ = key
		out = append(out, store.Assignment{TeamName: l.TeamName, UserID: l.UserID})
	}
	return out, nil
}

func (f *fakeStore) PendingRequests(_ context.Context, _, _ string) ([]store.UpgradeRequest, error) {
	return f.requests, nil
}

func (f *fakeStore) Setting(_ context.Context, _, key string) (string, error) {
	return f.settings[key], nil
}

type fakeMessenger struct {
	sent []string
}

func (f *fakeMessenger) Send(_ context.Context, _, text string) error {
	f.sent = append(f.sent, text)
	return nil
}

type fakeChannels struct {
	channels []platform.Channel
}

func (f *fakeChannels) Channels(_ context.Context, _ string) ([]platform.Channel, error) {
	return f.channels, nil
}

type fakeImages struct {
	text string
}

func (f *fakeImages) ExtractText(_ context.Context, _ string) (string, error) {
	return f.text, nil
}

type fakeRoles struct {
	commissioners map[string]bool
}

func (f *fakeRoles) IsCommissioner(_ context.Context, userID, _ string) (bool, error) {
	return f.commissioners[userID], nil
}

func req(q string) Request {
	return Request{Query: q, Scope: platform.Scope{ServerID: "s1", ChannelID: "c1", UserID: "u1"}}
}

func TestExecuteMyPoints(t *testing.T) {
	st := &fakeStore{balances: map[string]int{"u1": 3}}
	e := New(st, nil, nil, nil, nil, false)

	res, err := e.Execute(context.Background(), req("how many points do I have?"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Handled {
		t.Fatal("expected handled")
	}
	if res.Response != "You currently have 3 attribute points available." {
		t.Errorf("got %q", res.Response)
	}
}

func TestExecuteMyPointsSingular(t *testing.T) {
	st := &fakeStore{balances: map[string]int{"u1": 1}}
	e := New(st, nil, nil, nil, nil, false)

	res, err := e.Execute(context.Background(), req("what's my points balance"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Response != "You currently have 1 attribute point available." {
		t.Errorf("got %q", res.Response)
	}
}

func TestExecuteWhoHasTeam(t *testing.T) {
	st := &fakeStore{lookups: map[string]store.TeamLookup{
		"alabama": {Found: true, TeamName: "Alabama", UserID: "roll_tide", Assigned: true},
		"oregon":  {Found: true, TeamName: "Oregon"},
	}}
	e := New(st, nil, nil, nil, nil, false)

	tests := []struct {
		query string
		want  string
	}{
		{"who has Alabama?", "Alabama is assigned to roll_tide."},
		{"who owns oregon", "Oregon is not assigned to anyone (CPU)."},
		{"who has Narnia", "Narnia is not in the database. Make sure the team name is correct."},
	}
	for _, tt := range tests {
		res, err := e.Execute(context.Background(), req(tt.query))
		if err != nil {
			t.Fatalf("%q: %v", tt.query, err)
		}
		if !res.Handled {
			t.Fatalf("%q: not handled", tt.query)
		}
		if res.Response != tt.want {
			t.Errorf("%q: got %q, want %q", tt.query, res.Response, tt.want)
		}
	}
}

func TestExecuteCheckRecordBeforeTeamLookup(t *testing.T) {
	st := &fakeStore{records: map[string]store.Record{
		"georgia": {TeamName: "Georgia", Wins: 7, Losses: 2},
	}}
	e := New(st, nil, nil, nil, nil, false)

	res, err := e.Execute(context.Background(), req("check record for Georgia"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Response != "Georgia is 7-2." {
		t.Errorf("got %q", res.Response)
	}
}

func TestExecuteStandings(t *testing.T) {
	st := &fakeStore{standings: []store.Record{
		{TeamName: "Georgia", Wins: 9, Losses: 0},
		{TeamName: "Alabama", Wins: 7, Losses: 2},
	}}
	e := New(st, nil, nil, nil, nil, false)

	res, err := e.Execute(context.Background(), req("show standings"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Response, "1. Georgia (9-0)") || !strings.Contains(res.Response, "2. Alabama (7-2)") {
		t.Errorf("got %q", res.Response)
	}
}

func TestExecuteUnmatchedQuery(t *testing.T) {
	e := New(&fakeStore{}, nil, nil, nil, nil, false)

	res, err := e.Execute(context.Background(), req("what's the weather like"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Handled {
		t.Error("unmatched query must not be handled")
	}
}

func TestExecuteCommissionerGating(t *testing.T) {
	roles := &fakeRoles{commissioners: map[string]bool{"boss": true}}
	msg := &fakeMessenger{}
	e := New(&fakeStore{settings: map[string]string{}}, nil, msg, nil, roles, false)

	// Regular user is refused.
	res, err := e.Execute(context.Background(), req("delete matchup categories"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Response, "commissioner") {
		t.Errorf("got %q", res.Response)
	}
	if len(msg.sent) != 0 {
		t.Error("refusal must not send a confirmation prompt")
	}

	// Commissioner gets the confirmation flow with no extra caller text.
	r := req("delete matchup categories")
	r.Scope.UserID = "boss"
	res, err = e.Execute(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Handled || res.Response != "" {
		t.Errorf("expected handled multi-turn result, got %+v", res)
	}
	if len(msg.sent) != 1 || !strings.Contains(msg.sent[0], "confirm delete") {
		t.Errorf("sent = %v", msg.sent)
	}
}

func TestExecuteNilRolesRefusesWrites(t *testing.T) {
	msg := &fakeMessenger{}
	e := New(&fakeStore{}, nil, msg, nil, nil, false)

	res, err := e.Execute(context.Background(), req("announce advance"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Response, "commissioner") {
		t.Errorf("got %q", res.Response)
	}
}

func TestExecuteCreateFromImagePreview(t *testing.T) {
	roles := &fakeRoles{commissioners: map[string]bool{"u1": true}}
	msg := &fakeMessenger{}
	img := &fakeImages{text: "alabama vs georgia"}
	e := New(&fakeStore{}, nil, msg, img, roles, false)

	r := req("create matchups from image")
	r.Attachments = []platform.Attachment{{URL: "https://cdn.example/img.png", Filename: "img.png"}}

	res, err := e.Execute(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Handled || res.Response != "" {
		t.Errorf("expected handled preview result, got %+v", res)
	}
	if len(msg.sent) != 1 || !strings.Contains(msg.sent[0], "alabama vs georgia") {
		t.Errorf("sent = %v", msg.sent)
	}
}

func TestExecuteCreateFromImageTooMany(t *testing.T) {
	roles := &fakeRoles{commissioners: map[string]bool{"u1": true}}
	e := New(&fakeStore{}, nil, &fakeMessenger{}, &fakeImages{}, roles, false)

	r := req("create matchups from image")
	for i := 0; i < 6; i++ {
		r.Attachments = append(r.Attachments, platform.Attachment{URL: "u", Filename: "f"})
	}

	res, err := e.Execute(context.Background(), r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Response, "up to 5") {
		t.Errorf("got %q", res.Response)
	}
}

func TestExecuteListMatchupsPendingOnly(t *testing.T) {
	channels := &fakeChannels{channels: []platform.Channel{
		{ID: "1", Name: "alabama-vs-georgia"},
		{ID: "2", Name: "oregon-vs-texas-final"},
		{ID: "3", Name: "general"},
	}}
	e := New(&fakeStore{}, channels, nil, nil, nil, false)

	res, err := e.Execute(context.Background(), req("show matchups that are pending"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Response, "Alabama vs Georgia") {
		t.Errorf("got %q", res.Response)
	}
	if strings.Contains(res.Response, "Oregon") {
		t.Errorf("finished matchup leaked into pending list: %q", res.Response)
	}
}

func TestExecuteListMatchupsThisWeek(t *testing.T) {
	channels := &fakeChannels{channels: []platform.Channel{
		{ID: "1", Name: "alabama-vs-georgia", Category: "Week 4"},
		{ID: "2", Name: "oregon-vs-texas", Category: "Week 5"},
		{ID: "3", Name: "lsu-vs-auburn", Category: "Week 5"},
	}}
	e := New(&fakeStore{}, channels, nil, nil, nil, false)

	res, err := e.Execute(context.Background(), req("show matchups for this week"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(res.Response, "Alabama") {
		t.Errorf("earlier week leaked into current week: %q", res.Response)
	}
	if !strings.Contains(res.Response, "Oregon vs Texas") || !strings.Contains(res.Response, "LSU vs Auburn") {
		t.Errorf("got %q", res.Response)
	}
}

func TestExecuteListMatchupsWeekFilter(t *testing.T) {
	channels := &fakeChannels{channels: []platform.Channel{
		{ID: "1", Name: "alabama-vs-georgia", Category: "Week 4"},
		{ID: "2", Name: "oregon-vs-texas", Category: "Week 5"},
	}}
	e := New(&fakeStore{}, channels, nil, nil, nil, false)

	res, err := e.Execute(context.Background(), req("list matchups in week 4"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(res.Response, "Alabama vs Georgia") {
		t.Errorf("got %q", res.Response)
	}
	if strings.Contains(res.Response, "Oregon") {
		t.Errorf("other week leaked: %q", res.Response)
	}
}

func TestExecuteAnnounceAdvanceDefaultMessage(t *testing.T) {
	roles := &fakeRoles{commissioners: map[string]bool{"u1": true}}
	msg := &fakeMessenger{}
	e := New(&fakeStore{settings: map[string]string{}}, nil, msg, nil, roles, false)

	res, err := e.Execute(context.Background(), req("announce advance to the league"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Response != "Advance announcement posted." {
		t.Errorf("got %q", res.Response)
	}
	if len(msg.sent) != 1 || !strings.Contains(msg.sent[0], "advanced") {
		t.Errorf("sent = %v", msg.sent)
	}
}
