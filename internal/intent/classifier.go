// Package intent classifies normalized queries into a closed set of intents
// using ordered keyword rules. Precedence is deliberate and load-bearing:
// execution phrasing is checked before help phrasing, because "how do I see
// my points" should execute, not explain.
package intent

import "strings"

// Intent is the routing decision for a query. Exactly one intent is
// assigned per query.
type Intent string

const (
	CommandExecute Intent = "command_execute"
	CommandHelp    Intent = "command_help"
	SetupHelp      Intent = "setup_help"
	Search         Intent = "search"
	Summary        Intent = "summary"
	UserSpecific   Intent = "user_specific"
	LeagueSpecific Intent = "league_specific"
	Conversation   Intent = "conversation"
)

// rule is one ordered classification step. Rules run in declaration order
// and the first match wins; classify is optional custom logic for rules that
// need more than keyword containment.
type rule struct {
	intent   Intent
	keywords []string
	classify func(queryLower string) (Intent, bool)
}

var setupHelpFull = []string{
	"set up my league", "setup my league", "set up league",
	"how to use", "getting started", "how does this work",
	"how do i use", "what can you do", "set up the bot",
	"how to set up", "how to setup", "first time",
}

// Specific feature words knock a broad setup question down to command_help
// territory: "how do I setup stream notis" is targeted, not a full tour.
var specificFeatures = []string{
	"stream", "team", "matchup", "attribute", "point",
	"record", "message", "announce", "notification",
}

var commandExecuteKeywords = []string{
	"show me", "show my", "see my", "display", "get my", "check my",
	"what's my", "what is my", "tell me my",
	"who has", "who owns", "list", "show all", "view all",
	"give me", "i want to see", "i need to see",
	"request", "spend", "use points", "upgrade", "i want to",
	"spend them", "use them", "allocate", "spend my",
	"create matchups", "create from image", "extract matchups", "process image",
	"delete matchups", "delete categories", "remove matchups", "remove categories",
	"delete category", "remove category", "clear matchups", "delete week", "remove week",
	"tag users", "tag players", "notify users", "mention users",
	"announce advance", "announce week", "advance announcement", "notify advance",
}

var commandHelpKeywords = []string{
	"how do i", "how to", "how can i", "how does", "how do you",
	"what command", "what's the command", "what is the command",
	"command for", "use command", "run command",
	"help with", "help me", "tell me how",
}

var userSpecificKeywords = []string{
	"my points", "my team", "my record", "my matchups",
	"i have", "i own", "my balance", "my requests",
	"how many points do i", "what's my", "what is my",
	"do i have", "am i", "my upgrade",
}

var displayVerbs = []string{"show", "get", "check", "what's", "what is", "tell me"}

var leagueSpecificKeywords = []string{
	"standings", "all teams", "all records", "league standings",
	"which team", "all matchups", "league matchups",
	"everyone", "all users", "all players", "league records",
}

var searchIndicators = []string{
	"who won", "what happened", "when did", "who was",
	"season", "championship", "natty", "champ",
	"last year", "previous", "earlier", "before",
	"history", "past",
}

var searchQuestions = []string{
	"when is advance", "when's advance", "when advance",
	"next advance", "advance time", "advance schedule",
	"when is the advance", "when's the advance",
}

var summaryKeywords = []string{
	"summarize", "summary", "recap", "catch up",
	"what did i miss", "what was said",
}

var rules = []rule{
	{
		intent: SetupHelp,
		classify: func(q string) (Intent, bool) {
			broad := containsAny(q, setupHelpFull)
			if broad && !containsAny(q, specificFeatures) {
				return SetupHelp, true
			}
			return "", false
		},
	},
	{intent: CommandExecute, keywords: commandExecuteKeywords},
	{intent: CommandHelp, keywords: commandHelpKeywords},
	{
		intent: UserSpecific,
		classify: func(q string) (Intent, bool) {
			if !containsAny(q, userSpecificKeywords) {
				return "", false
			}
			// Asking to see their own data is an execution request.
			if containsAny(q, displayVerbs) {
				return CommandExecute, true
			}
			return UserSpecific, true
		},
	},
	{intent: LeagueSpecific, keywords: leagueSpecificKeywords},
	{
		intent: Search,
		classify: func(q string) (Intent, bool) {
			if IsSearchQuery(q) {
				return Search, true
			}
			return "", false
		},
	},
	{intent: Summary, keywords: summaryKeywords},
}

// Classify assigns exactly one intent to a query. Unmatched queries default
// to open conversation rather than failing.
func Classify(rawQuery string) Intent {
	q := strings.ToLower(rawQuery)

	for _, r := range rules {
		if r.classify != nil {
			if intent, ok := r.classify(q); ok {
				return intent
			}
			continue
		}
		if containsAny(q, r.keywords) {
			return r.intent
		}
	}

	return Conversation
}

// IsSearchQuery reports whether the query needs a cross-channel search over
// past messages: advance-schedule questions always do, otherwise a question
// word paired with past-tense phrasing.
func IsSearchQuery(rawQuery string) bool {
	q := strings.ToLower(rawQuery)

	if containsAny(q, searchQuestions) {
		return true
	}

	hasQuestion := containsAny(q, []string{"who", "what", "when", "where", "how"})
	hasPastTense := containsAny(q, searchIndicators)
	return hasQuestion && hasPastTense
}

// IsFullSetupQuery distinguishes broad "how do I set everything up"
// questions from targeted feature questions.
func IsFullSetupQuery(rawQuery string) bool {
	q := strings.ToLower(rawQuery)
	return containsAny(q, setupHelpFull) && !containsAny(q, specificFeatures)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
