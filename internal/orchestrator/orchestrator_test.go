package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/commishdev/commish/internal/ai"
	"github.com/commishdev/commish/internal/cache"
	"github.com/commishdev/commish/internal/exec"
	"github.com/commishdev/commish/internal/knowledge"
	"github.com/commishdev/commish/internal/platform"
	"github.com/commishdev/commish/internal/query"
	"github.com/commishdev/commish/internal/store"
	"github.com/commishdev/commish/internal/synth"
)

type fakeResolver struct {
	lookups map[string]store.TeamLookup
	calls   int
	err     error
}

func (f *fakeResolver) LookupTeam(_ context.Context, _, teamKey string) (store.TeamLookup, error) {
	f.calls++
	if f.err != nil {
		return store.TeamLookup{}, f.err
	}
	return f.lookups[teamKey], nil
}

type fakeGenerator struct {
	calls []string
	reply string
}

func (f *fakeGenerator) Generate(_ context.Context, op, _ string, _ ai.Tier, _ int) (string, error) {
	f.calls = append(f.calls, op)
	if f.reply != "" {
		return f.reply, nil
	}
	return "model reply", nil
}

type fakeHistory struct {
	messages []platform.Message
}

func (f *fakeHistory) Recent(_ context.Context, _ string, _ int) ([]platform.Message, error) {
	return f.messages, nil
}

type execStore struct {
	store.Store
	resolver  *fakeResolver
	standings []store.Record
}

func (s *execStore) LookupTeam(ctx context.Context, serverID, teamKey string) (store.TeamLookup, error) {
	return s.resolver.LookupTeam(ctx, serverID, teamKey)
}

func (s *execStore) Standings(_ context.Context, _ string) ([]store.Record, error) {
	return s.standings, nil
}

func (s *execStore) Balance(_ context.Context, _, _ string) (int, error) {
	return 2, nil
}

func msg(content string) platform.Message {
	return platform.Message{
		ID:      "m1",
		Scope:   platform.Scope{ServerID: "s1", ChannelID: "c1", UserID: "u1"},
		Author:  "u1",
		Content: content,
	}
}

func newTestOrchestrator(resolver *fakeResolver, gen *fakeGenerator, opts ...func(*Config)) *Orchestrator {
	st := &execStore{resolver: resolver, standings: []store.Record{{TeamName: "Georgia", Wins: 9, Losses: 0}}}
	cfg := Config{
		Cache:       cache.New(100, time.Minute, false),
		Matcher:     query.NewMatcher(resolver, false),
		Executor:    exec.New(st, nil, nil, nil, nil, false),
		Synthesizer: synth.New(gen, false),
		Timeout:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return New(cfg)
}

func TestHandleEmptyMessage(t *testing.T) {
	o := newTestOrchestrator(&fakeResolver{}, &fakeGenerator{})
	got, err := o.Handle(context.Background(), msg("   "))
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("got %q", got)
	}
}

func TestHandlePatternBypassSkipsModel(t *testing.T) {
	resolver := &fakeResolver{lookups: map[string]store.TeamLookup{
		"alabama": {Found: true, TeamName: "Alabama", UserID: "roll_tide", Assigned: true},
	}}
	gen := &fakeGenerator{}
	o := newTestOrchestrator(resolver, gen)

	got, err := o.Handle(context.Background(), msg("who has Alabama?"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Alabama is assigned to roll_tide." {
		t.Errorf("got %q", got)
	}
	if len(gen.calls) != 0 {
		t.Errorf("deterministic match must not call the model, got %v", gen.calls)
	}
}

func TestHandleCacheHitOnRepeat(t *testing.T) {
	resolver := &fakeResolver{lookups: map[string]store.TeamLookup{
		"alabama": {Found: true, TeamName: "Alabama", UserID: "roll_tide", Assigned: true},
	}}
	o := newTestOrchestrator(resolver, &fakeGenerator{})

	first, err := o.Handle(context.Background(), msg("who has Alabama?"))
	if err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := resolver.calls

	// A different phrasing of the same question must hit the cache and skip
	// the store entirely.
	second, err := o.Handle(context.Background(), msg("who owns alabama"))
	if err != nil {
		t.Fatal(err)
	}
	if second != first {
		t.Errorf("cached answer %q differs from original %q", second, first)
	}
	if resolver.calls != callsAfterFirst {
		t.Errorf("cache hit still reached the store (%d -> %d calls)", callsAfterFirst, resolver.calls)
	}
}

func TestHandleExecuteRoute(t *testing.T) {
	gen := &fakeGenerator{}
	o := newTestOrchestrator(&fakeResolver{}, gen)

	got, err := o.Handle(context.Background(), msg("show standings"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Georgia (9-0)") {
		t.Errorf("got %q", got)
	}
	if len(gen.calls) != 0 {
		t.Errorf("direct execution must not call the model, got %v", gen.calls)
	}
}

func TestHandleUnmatchedExecuteFallsBackToConversation(t *testing.T) {
	gen := &fakeGenerator{reply: "Sure, happy to chat."}
	o := newTestOrchestrator(&fakeResolver{}, gen)

	got, err := o.Handle(context.Background(), msg("give me a pep talk for my game"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Sure, happy to chat." {
		t.Errorf("got %q", got)
	}
	if len(gen.calls) != 1 || gen.calls[0] != "synthesize_conversation" {
		t.Errorf("calls = %v", gen.calls)
	}
}

func TestHandleDegradesOnStoreFailure(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("db locked")}
	o := newTestOrchestrator(resolver, &fakeGenerator{})

	got, err := o.Handle(context.Background(), msg("who has Alabama?"))
	if err != nil {
		t.Fatalf("failures must not propagate as errors, got %v", err)
	}
	if got != "I couldn't complete that. Please try again." {
		t.Errorf("got %q", got)
	}
}

func TestHandleFailureResponseNotCached(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("db locked")}
	o := newTestOrchestrator(resolver, &fakeGenerator{})

	if _, err := o.Handle(context.Background(), msg("who has Alabama?")); err != nil {
		t.Fatal(err)
	}

	// Store recovers; the earlier failure must not be served from cache.
	resolver.err = nil
	resolver.lookups = map[string]store.TeamLookup{
		"alabama": {Found: true, TeamName: "Alabama", UserID: "roll_tide", Assigned: true},
	}
	got, err := o.Handle(context.Background(), msg("who has Alabama?"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Alabama is assigned to roll_tide." {
		t.Errorf("got %q", got)
	}
}

func TestHandleCommandHelpGrounded(t *testing.T) {
	corpus := knowledge.Parse(`## Team Management

Use the assign command to set an owner.

` + "```" + `
/teams assign [team] [user]
` + "```" + `
`)
	gen := &fakeGenerator{reply: "Run /teams assign [team] [user]."}
	o := newTestOrchestrator(&fakeResolver{}, gen, func(cfg *Config) {
		cfg.Commands = corpus
	})

	got, err := o.Handle(context.Background(), msg("how do I assign a team to someone"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Run /teams assign [team] [user]." {
		t.Errorf("got %q", got)
	}
	if len(gen.calls) != 1 || gen.calls[0] != "synthesize_grounded" {
		t.Errorf("calls = %v", gen.calls)
	}
}

func TestHandleCommandHelpNoCorpus(t *testing.T) {
	gen := &fakeGenerator{}
	o := newTestOrchestrator(&fakeResolver{}, gen)

	got, err := o.Handle(context.Background(), msg("how do I assign a team to someone"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "I don't have specific documentation") {
		t.Errorf("got %q", got)
	}
	if len(gen.calls) != 0 {
		t.Errorf("no corpus means no model call, got %v", gen.calls)
	}
}

func TestHandleSummaryRoute(t *testing.T) {
	history := &fakeHistory{messages: []platform.Message{
		msg("second message"),
		msg("first message"),
	}}
	gen := &fakeGenerator{reply: "Recap: the league advanced."}
	o := newTestOrchestrator(&fakeResolver{}, gen, func(cfg *Config) {
		cfg.History = history
	})

	got, err := o.Handle(context.Background(), msg("summarize this channel"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "Recap: the league advanced." {
		t.Errorf("got %q", got)
	}
	if len(gen.calls) != 1 || gen.calls[0] != "synthesize_summary" {
		t.Errorf("calls = %v", gen.calls)
	}
}
