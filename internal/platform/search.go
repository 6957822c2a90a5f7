package platform

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// SearchResult pairs a historical message with its relevance score.
type SearchResult struct {
	Message Message
	Channel Channel
	Score   float64
}

const (
	defaultSearchLimit   = 10
	defaultMaxHistory    = 500
	relevanceThreshold   = 0.3
	recencyRelevanceFloor = 0.2
)

var recencyKeywords = []string{
	"advance", "current", "now", "today", "this week", "latest",
	"most recent", "active", "happening", "when is", "what's",
}

// Searcher runs permission-checked keyword search over channel history.
type Searcher struct {
	channels ChannelLister
	history  HistoryReader
	perms    PermissionChecker
	debug    bool
}

func NewSearcher(channels ChannelLister, history HistoryReader, perms PermissionChecker, debug bool) *Searcher {
	return &Searcher{channels: channels, history: history, perms: perms, debug: debug}
}

// Search finds the most relevant historical messages for the query across
// all channels the asker can see.
func (s *Searcher) Search(ctx context.Context, scope Scope, query string, keywords []string) ([]SearchResult, error) {
	channels, err := s.channels.Channels(ctx, scope.ServerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	candidates := FilterRelevantChannels(channels, query)

	threshold := relevanceThreshold
	if prioritizeRecency(query) {
		threshold = recencyRelevanceFloor
	}

	var results []SearchResult
	for _, ch := range candidates {
		visible, err := s.perms.CanSee(ctx, scope.UserID, ch.ID)
		if err != nil || !visible {
			continue
		}

		messages, err := s.history.Recent(ctx, ch.ID, defaultMaxHistory)
		if err != nil {
			if s.debug {
				fmt.Printf("[search] failed to read history for %s: %v\n", ch.Name, err)
			}
			continue
		}

		for _, msg := range messages {
			score := Relevance(msg.Content, keywords, query)
			if score >= threshold {
				results = append(results, SearchResult{Message: msg, Channel: ch, Score: score})
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > defaultSearchLimit {
		results = results[:defaultSearchLimit]
	}
	return results, nil
}

// FilterRelevantChannels narrows the channel list using query hints. Falls
// back to everything when no hint applies so a broad question still searches.
func FilterRelevantChannels(channels []Channel, query string) []Channel {
	queryLower := strings.ToLower(query)
	var relevant []Channel

	switch {
	case containsAny(queryLower, "advance", "next advance", "advance time"):
		for _, ch := range channels {
			if containsAny(strings.ToLower(ch.Name), "general", "announcements", "league", "info", "updates", "news") {
				relevant = append(relevant, ch)
			}
		}
		// Advance info could be anywhere.
		if len(relevant) == 0 {
			relevant = channels
		}
	case containsAny(queryLower, "natty", "championship", "champ", "final"):
		for _, ch := range channels {
			if containsAny(strings.ToLower(ch.Name), "champ", "natty", "final", "playoff", "bowl", "championship") {
				relevant = append(relevant, ch)
			}
		}
	case containsAny(queryLower, "week", "matchup", "game"):
		for _, ch := range channels {
			if strings.Contains(ch.Name, "-vs-") || strings.Contains(strings.ToLower(ch.Name), "week") {
				relevant = append(relevant, ch)
			}
		}
	case containsAny(queryLower, "upgrade", "points", "attribute"):
		for _, ch := range channels {
			if containsAny(strings.ToLower(ch.Name), "attribute", "points", "upgrade", "ability") {
				relevant = append(relevant, ch)
			}
		}
	}

	if len(relevant) == 0 {
		return channels
	}
	return relevant
}

// Relevance scores a message against the query keywords, 0 to 1.
func Relevance(content string, keywords []string, query string) float64 {
	if content == "" {
		return 0.0
	}

	contentLower := strings.ToLower(content)
	queryLower := strings.ToLower(query)

	// Advance queries get boosted scoring since time-sensitive answers tend
	// to use consistent phrasing.
	if strings.Contains(queryLower, "advance") {
		if containsAny(contentLower, "advance", "next advance", "advance time", "league advanced") {
			score := 0.7
			if containsAny(contentLower, "sunday", "monday", "tuesday", "wednesday",
				"thursday", "friday", "saturday", "pm", "am", ":") {
				score = minScore(score+0.2, 1.0)
			}
			return score
		}
	}

	if len(keywords) == 0 {
		return 0.0
	}

	matches := 0
	for _, kw := range keywords {
		if strings.Contains(contentLower, kw) {
			matches++
		}
	}

	score := minScore(float64(matches)/float64(len(keywords)), 1.0)
	if strings.Contains(contentLower, queryLower) {
		score = minScore(score+0.3, 1.0)
	}
	if matches >= 2 {
		score = minScore(score+0.2, 1.0)
	}
	return score
}

func prioritizeRecency(query string) bool {
	queryLower := strings.ToLower(query)
	for _, kw := range recencyKeywords {
		if strings.Contains(queryLower, kw) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func minScore(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
