package query

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/commishdev/commish/internal/store"
)

// BypassConfidence is the threshold above which a pattern rule resolves the
// query directly, skipping both the classifier and the model.
const BypassConfidence = 0.9

// TeamResolver is the slice of the store the pattern matcher needs.
type TeamResolver interface {
	LookupTeam(ctx context.Context, serverID, teamKey string) (store.TeamLookup, error)
}

// MatchResult reports whether a deterministic rule resolved the query.
type MatchResult struct {
	Handled    bool
	Response   string
	Confidence float64
}

// Rule pairs a predicate over the normalized query with a fixed confidence
// and a handler. Rules are evaluated in order; the first match wins.
type Rule struct {
	Name       string
	Confidence float64
	Matches    func(raw, normalized string) bool
	Handle     func(ctx context.Context, serverID, raw string) (string, error)
}

// Matcher routes recurring high-value query shapes straight to the store,
// bypassing classification and model calls for consistency.
type Matcher struct {
	teams TeamResolver
	rules []Rule
	debug bool
}

// NewMatcher builds the matcher with its built-in rule set.
func NewMatcher(teams TeamResolver, debug bool) *Matcher {
	m := &Matcher{teams: teams, debug: debug}

	m.rules = []Rule{
		{
			Name:       "team_ownership",
			Confidence: 0.95,
			Matches: func(raw, _ string) bool {
				if !IsOwnershipQuery(raw) {
					return false
				}
				_, team := ExtractTeamName(raw)
				return len(team) > 2
			},
			Handle: m.handleOwnership,
		},
		{
			// Bare "help" style queries are recognized but sit below the
			// bypass threshold, so the classifier still sees them.
			Name:       "bare_help",
			Confidence: 0.80,
			Matches: func(_, normalized string) bool {
				return bareHelpRe.MatchString(strings.ToLower(normalized))
			},
		},
	}

	return m
}

var bareHelpRe = regexp.MustCompile(`^(help|commands?|what can you do)$`)

// Match tries each rule in order. Only rules at or above BypassConfidence
// are handled directly; the rest report confidence and leave the query to
// the classifier.
func (m *Matcher) Match(ctx context.Context, serverID, raw string) (MatchResult, error) {
	normalized := Normalize(raw)

	for _, rule := range m.rules {
		if !rule.Matches(raw, normalized) {
			continue
		}

		if rule.Confidence < BypassConfidence || rule.Handle == nil {
			return MatchResult{Confidence: rule.Confidence}, nil
		}

		if m.debug {
			log.Printf("[patterns] rule %s matched %q", rule.Name, raw)
		}

		response, err := rule.Handle(ctx, serverID, raw)
		if err != nil {
			return MatchResult{}, fmt.Errorf("pattern rule %s: %w", rule.Name, err)
		}
		return MatchResult{Handled: true, Response: response, Confidence: rule.Confidence}, nil
	}

	return MatchResult{}, nil
}

// Confidence reports how sure the matcher is that it can resolve the query
// deterministically, without executing any handler.
func (m *Matcher) Confidence(raw string) float64 {
	normalized := Normalize(raw)
	for _, rule := range m.rules {
		if rule.Matches(raw, normalized) {
			return rule.Confidence
		}
	}
	return 0.0
}

// handleOwnership answers "who has X" from the store. A missing team and an
// unassigned team are business outcomes stated in the response, never errors.
func (m *Matcher) handleOwnership(ctx context.Context, serverID, raw string) (string, error) {
	_, team := ExtractTeamName(raw)
	lookup, err := m.teams.LookupTeam(ctx, serverID, TeamKey(team))
	if err != nil {
		return "", fmt.Errorf("team lookup: %w", err)
	}

	if !lookup.Found {
		return fmt.Sprintf("%s is not in the database. Make sure the team name is correct.", StandardizeTeam(team)), nil
	}
	if !lookup.Assigned {
		return fmt.Sprintf("%s is not assigned to anyone (CPU).", lookup.TeamName), nil
	}
	return fmt.Sprintf("%s is assigned to %s.", lookup.TeamName, lookup.UserID), nil
}
