// Package query provides lexical normalization, cache signatures and
// deterministic pattern matching for user queries.
package query

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	trailingPunctRe = regexp.MustCompile(`[?.!]+$`)

	// Phrase rewrites applied during normalization so that semantically
	// identical question forms converge on one textual form.
	phraseRewrites = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`(?i)\bwho'?s got\b`), "who has"},
		{regexp.MustCompile(`(?i)\bwho'?s gotten\b`), "who has"},
		{regexp.MustCompile(`(?i)\bwho owns\b`), "who has"},
		{regexp.MustCompile(`(?i)\bwho has the\b`), "who has"},
		{regexp.MustCompile(`(?i)\bwho owns the\b`), "who has"},
		{regexp.MustCompile(`(?i)\bwhich user has\b`), "who has"},
		{regexp.MustCompile(`(?i)\bwhat user has\b`), "who has"},
	}

	ownershipVerbRe  = regexp.MustCompile(`\bwho\s+(?:owns|is|got|'s\s+got|s\s+got)\b`)
	signatureSpaceRe = regexp.MustCompile(`\s+`)
	signatureCharRe  = regexp.MustCompile(`[^a-z0-9_]`)
)

// Normalize standardizes a raw query for consistent downstream processing.
// It never fails: malformed input degrades to an empty string.
func Normalize(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	normalized = trailingPunctRe.ReplaceAllString(normalized, "")

	for _, rw := range phraseRewrites {
		normalized = rw.pattern.ReplaceAllString(normalized, rw.replacement)
	}

	return strings.TrimSpace(normalized)
}

// Signature derives the cache key for a query. Queries with the same
// signature should produce the same result: case, trailing punctuation and
// known phrase synonyms all collapse to one key. The empty query yields an
// empty signature, which the cache treats as uncacheable.
func Signature(raw string) string {
	normalized := strings.ToLower(Normalize(raw))

	// All ownership question forms map to the same signature prefix.
	normalized = ownershipVerbRe.ReplaceAllString(normalized, "who has")

	sig := signatureSpaceRe.ReplaceAllString(normalized, "_")
	return signatureCharRe.ReplaceAllString(sig, "")
}

var teamExtractRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)who has (.+)`),
	regexp.MustCompile(`(?i)who owns (.+)`),
	regexp.MustCompile(`(?i)who is (.+)`),
	regexp.MustCompile(`(?i)who got (.+)`),
	regexp.MustCompile(`(?i)whos got (.+)`),
	regexp.MustCompile(`(?i)who's got (.+)`),
}

var teamTrailingPunctRe = regexp.MustCompile(`[?.!,]+$`)

// ExtractTeamName pulls the team name out of an ownership query like
// "who has Clemson". Returns the normalized query and "" when no ownership
// form is present.
func ExtractTeamName(raw string) (normalized, team string) {
	normalized = Normalize(raw)

	for _, re := range teamExtractRes {
		if m := re.FindStringSubmatch(normalized); m != nil {
			team = strings.TrimSpace(m[1])
			team = teamTrailingPunctRe.ReplaceAllString(team, "")
			return normalized, team
		}
	}

	return normalized, ""
}

var ownershipFormRes = []*regexp.Regexp{
	regexp.MustCompile(`^who has [a-z0-9\s&\-']+$`),
	regexp.MustCompile(`^who owns [a-z0-9\s&\-']+$`),
	regexp.MustCompile(`^who got [a-z0-9\s&\-']+$`),
	regexp.MustCompile(`^whos got [a-z0-9\s&\-']+$`),
	regexp.MustCompile(`^who's got [a-z0-9\s&\-']+$`),
	regexp.MustCompile(`^who is [a-z0-9\s&\-']+$`),
}

// Exclusions are checked before the ownership forms: "who has the most
// points" contains "who has" but is not an ownership question. These match
// against the normalized string, so articles are already stripped.
var ownershipExclusionRes = []*regexp.Regexp{
	regexp.MustCompile(`who has (?:the )?most`),
	regexp.MustCompile(`who has more`),
	regexp.MustCompile(`who is winning`),
	regexp.MustCompile(`who is ahead`),
	regexp.MustCompile(`who is leading`),
	regexp.MustCompile(`who has (?:a )?matchup`),
	regexp.MustCompile(`who has games`),
}

// IsOwnershipQuery reports whether the query asks which user owns a team.
func IsOwnershipQuery(raw string) bool {
	normalized := strings.ToLower(Normalize(raw))

	for _, re := range ownershipExclusionRes {
		if re.MatchString(normalized) {
			return false
		}
	}

	for _, re := range ownershipFormRes {
		if re.MatchString(normalized) {
			return true
		}
	}

	return false
}
