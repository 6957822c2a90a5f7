package intent

import "strings"

// topicMapping maps query phrasing to command topics in the knowledge base.
// Longer, more specific phrases come first within each topic.
var topicMapping = []struct {
	topic    string
	keywords []string
}{
	{"attributes request", []string{"spend points", "use points", "request upgrade", "upgrade player", "request attribute"}},
	{"attributes my-points", []string{"my points", "check points", "view points", "see points", "how many points"}},
	{"attributes give", []string{"give points", "award points", "give attribute"}},
	{"attributes approve", []string{"approve request", "approve upgrade", "approve"}},
	{"attributes deny", []string{"deny request", "deny upgrade", "deny"}},
	{"teams assign", []string{"assign team", "assign user", "assign team to user"}},
	{"teams who-has", []string{"who has", "who owns", "which user has"}},
	{"matchups create", []string{"create matchup", "create matchups", "make matchup"}},
	{"matchups list", []string{"list matchups", "view matchups", "show matchups", "all matchups"}},
	{"records check", []string{"check record", "view record", "see record", "team record"}},
	{"records set", []string{"set record", "update record", "change record"}},
	{"message custom", []string{"send message", "custom message", "announce"}},
	{"message announce-advance", []string{"announce advance", "advance announcement"}},
	{"settings", []string{"settings", "configure", "set setting"}},
	{"points", []string{"points", "attribute points", "attribute point"}},
	{"help", []string{"help", "how to use", "commands"}},
}

// ExtractTopic finds the command topic a help query is about, or "" when no
// topic keyword appears.
func ExtractTopic(rawQuery string) string {
	q := strings.ToLower(rawQuery)
	for _, tm := range topicMapping {
		for _, kw := range tm.keywords {
			if strings.Contains(q, kw) {
				return tm.topic
			}
		}
	}
	return ""
}

// TopicCategory returns the command group a topic belongs to ("attributes
// request" -> "attributes").
func TopicCategory(topic string) string {
	if topic == "" {
		return ""
	}
	fields := strings.Fields(topic)
	return fields[0]
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true,
	"was": true, "are": true, "were": true, "what": true, "who": true,
	"when": true, "where": true, "how": true, "why": true, "did": true,
	"does": true, "do": true,
}

// Keywords extracts search terms from a query by dropping stop words and
// short tokens.
func Keywords(rawQuery string) []string {
	var out []string
	for _, word := range strings.Fields(strings.ToLower(rawQuery)) {
		if len(word) > 2 && !stopWords[word] {
			out = append(out, word)
		}
	}
	return out
}
