package knowledge

import (
	"sort"
	"strings"
)

// DefaultExcerptBudget bounds retrieved excerpts. Smaller excerpts cut model
// input cost roughly in half while keeping the command syntax intact.
const DefaultExcerptBudget = 1500

const sectionSeparator = "\n\n---\n\n"

// Retrieve finds every line containing any keyword, expands each hit to its
// enclosing section, deduplicates, and truncates the combined text to
// maxChars keeping the most relevant paragraphs. Returns "" when nothing
// matches; the caller must treat that as "no grounding available".
func (c *Corpus) Retrieve(keywords []string, maxChars int) string {
	if c.Empty() || len(keywords) == 0 {
		return ""
	}
	if maxChars <= 0 {
		maxChars = DefaultExcerptBudget
	}

	var matched []int
	for i, line := range c.lines {
		lineLower := strings.ToLower(line)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lineLower, strings.ToLower(kw)) {
				matched = append(matched, i)
				break
			}
		}
	}
	if len(matched) == 0 {
		return ""
	}

	var excerpts []string
	seen := make(map[string]bool)
	for _, idx := range matched {
		section := c.enclosingSection(idx)
		if section != "" && !seen[section] {
			excerpts = append(excerpts, section)
			seen[section] = true
		}
	}

	combined := strings.Join(excerpts, sectionSeparator)
	return truncateByRelevance(combined, keywords, maxChars)
}

// enclosingSection expands a matched line to its section: backward to the
// nearest header, forward to the next header at the same or higher level.
func (c *Corpus) enclosingSection(matchIdx int) string {
	start := matchIdx
	startLevel := 0
	for i := matchIdx; i >= 0; i-- {
		if lvl := headerLevel(c.lines[i]); lvl >= 2 {
			start = i
			startLevel = lvl
			break
		}
	}

	// A smaller level means a bigger header, so a section started by a
	// leaf #### still ends at the next ## or ###.
	end := len(c.lines)
	for i := matchIdx + 1; i < len(c.lines); i++ {
		lvl := headerLevel(c.lines[i])
		if lvl < 2 {
			continue
		}
		if startLevel == 0 || lvl <= startLevel {
			end = i
			break
		}
	}

	return strings.TrimSpace(strings.Join(c.lines[start:end], "\n"))
}

// scoreParagraph rates a paragraph by keyword density, with a boost for
// command blocks. Scores are normalized to [0,1].
func scoreParagraph(paragraph string, keywords []string) float64 {
	if strings.TrimSpace(paragraph) == "" {
		return 0.0
	}

	paraLower := strings.ToLower(paragraph)
	score := 0.0
	for _, kw := range keywords {
		if kw != "" && strings.Contains(paraLower, strings.ToLower(kw)) {
			score += 1.0
		}
	}

	if strings.Contains(paragraph, "```") || strings.HasPrefix(strings.TrimSpace(paragraph), "/") {
		score += 0.5
	}

	n := len(keywords)
	if n == 0 {
		n = 1
	}
	score /= float64(n)
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// truncateByRelevance keeps the highest scored paragraphs until the
// character budget is exhausted. Headers always sort first: they anchor
// context even when their own score is low.
func truncateByRelevance(content string, keywords []string, maxChars int) string {
	if len(content) <= maxChars {
		return content
	}

	paragraphs := strings.Split(content, "\n\n")

	type scored struct {
		text     string
		score    float64
		isHeader bool
	}
	items := make([]scored, 0, len(paragraphs))
	for _, p := range paragraphs {
		items = append(items, scored{
			text:     p,
			score:    scoreParagraph(p, keywords),
			isHeader: strings.HasPrefix(strings.TrimSpace(p), "#"),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].isHeader != items[j].isHeader {
			return items[i].isHeader
		}
		return items[i].score > items[j].score
	})

	// An oversized paragraph is skipped rather than ending the scan, so
	// later lower-scored paragraphs still fill the remaining budget.
	var kept []string
	used := 0
	for _, item := range items {
		paraLen := len(item.text)
		if used+paraLen <= maxChars {
			kept = append(kept, item.text)
			used += paraLen + 2
			continue
		}
		if item.score > 0.5 {
			if remaining := maxChars - used; remaining > 100 {
				kept = append(kept, item.text[:remaining]+"...")
				used = maxChars
			}
		}
	}

	return strings.Join(kept, "\n\n")
}

// keywordSections maps query keywords to the command knowledge base sections
// that document them.
var keywordSections = map[string][]string{
	"points":   {"Attribute Point System"},
	"spend":    {"Attribute Point System"},
	"request":  {"Attribute Point System"},
	"upgrade":  {"Attribute Point System"},
	"give":     {"Attribute Point System"},
	"approve":  {"Attribute Point System"},
	"deny":     {"Attribute Point System"},
	"team":     {"Team Management"},
	"assign":   {"Team Management"},
	"matchup":  {"Matchup Commands"},
	"delete":   {"Matchup Commands"},
	"category": {"Matchup Commands"},
	"record":   {"Record Commands"},
	"message":  {"Messaging Commands"},
	"announce": {"Messaging Commands"},
	"settings": {"Settings Commands"},
	"help":     {"General Usage Tips"},
}

// SearchCommands retrieves command documentation for a help query. It tries
// the direct keyword-to-section mapping first and falls back to line-level
// retrieval; at most two sections are combined.
func (c *Corpus) SearchCommands(rawQuery string, keywords []string) string {
	if c.Empty() {
		return ""
	}

	queryLower := strings.ToLower(rawQuery)
	var relevant []Section
	seen := make(map[string]bool)
	for kw, sectionNames := range keywordSections {
		if !strings.Contains(queryLower, kw) {
			continue
		}
		for _, name := range sectionNames {
			if s, ok := c.FindSection(name); ok && !seen[s.Title] {
				relevant = append(relevant, s)
				seen[s.Title] = true
			}
		}
	}

	if len(relevant) > 0 {
		sort.Slice(relevant, func(i, j int) bool { return relevant[i].Title < relevant[j].Title })
		if len(relevant) > 2 {
			relevant = relevant[:2]
		}
		parts := make([]string, 0, len(relevant))
		for _, s := range relevant {
			parts = append(parts, s.Body)
		}
		return truncateByRelevance(strings.Join(parts, sectionSeparator), keywords, DefaultExcerptBudget)
	}

	return c.Retrieve(keywords, DefaultExcerptBudget)
}
