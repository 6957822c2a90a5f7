package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Common abbreviations and nicknames mapped to canonical team names.
var teamAliases = map[string]string{
	// College
	"bama":      "Alabama",
	"uga":       "Georgia",
	"osu":       "Ohio State",
	"ou":        "Oklahoma",
	"usc":       "USC",
	"tamu":      "Texas A&M",
	"a&m":       "Texas A&M",
	"texas a&m": "Texas A&M",
	"lsu":       "LSU",
	"fsu":       "Florida State",
	"uf":        "Florida",
	"um":        "Miami",
	"the u":     "Miami",
	"nd":        "Notre Dame",
	"psu":       "Penn State",
	"msu":       "Michigan State",
	"vt":        "Virginia Tech",
	"gt":        "Georgia Tech",

	// NFL
	"niners":        "49ers",
	"bucs":          "Buccaneers",
	"pats":          "Patriots",
	"hawks":         "Seahawks",
	"pack":          "Packers",
	"fins":          "Dolphins",
	"cards":         "Cardinals",
	"skins":         "Commanders",
	"football team": "Commanders",
}

// Mascot suffixes dropped when they follow the school name ("oregon ducks"
// means Oregon). A lone suffix word is kept as-is.
var teamSuffixes = []string{
	"crimson tide",
	"ducks", "tigers", "buckeyes", "bulldogs",
	"longhorns", "bears", "wildcats", "trojans", "spartans",
	"packers", "cowboys", "patriots", "eagles", "giants",
}

var titleCaser = cases.Title(language.AmericanEnglish)

// StandardizeTeam resolves nicknames and strips mascot suffixes so that
// "bama" and "oregon ducks" resolve to the names stored in the database.
func StandardizeTeam(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if canonical, ok := teamAliases[strings.ToLower(name)]; ok {
		return canonical
	}

	words := strings.Fields(name)
	if len(words) > 1 {
		lower := strings.ToLower(name)
		for _, suffix := range teamSuffixes {
			if strings.HasSuffix(lower, " "+suffix) {
				name = strings.TrimSpace(name[:len(name)-len(suffix)])
				break
			}
		}
	}

	return titleCaser.String(name)
}

// TeamKey produces the lowercase lookup key for a team name.
func TeamKey(name string) string {
	return strings.ToLower(strings.TrimSpace(StandardizeTeam(name)))
}
