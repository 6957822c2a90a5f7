package platform

import "strings"

// Matchup channels are named "team1-vs-team2", optionally with a status
// suffix once the game is played, e.g. "alabama-vs-georgia-final".
var matchupStatusSuffixes = []string{"-final", "-finished", "-done", "-complete"}

// Matchup is one parsed matchup channel.
type Matchup struct {
	Home     string
	Away     string
	Finished bool
	Channel  Channel
}

// ParseMatchupChannel extracts the two team names from a matchup channel
// name. Returns ok=false for channels that are not matchups.
func ParseMatchupChannel(ch Channel) (Matchup, bool) {
	name := strings.ToLower(ch.Name)

	finished := false
	for _, suffix := range matchupStatusSuffixes {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			finished = true
			break
		}
	}

	parts := strings.SplitN(name, "-vs-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Matchup{}, false
	}

	return Matchup{
		Home:     strings.ReplaceAll(parts[0], "-", " "),
		Away:     strings.ReplaceAll(parts[1], "-", " "),
		Finished: finished,
		Channel:  ch,
	}, true
}

// IsMatchupChannel reports whether the channel looks like a matchup channel.
func IsMatchupChannel(ch Channel) bool {
	_, ok := ParseMatchupChannel(ch)
	return ok
}

// FilterMatchups parses all matchup channels, optionally restricted to
// unfinished ones.
func FilterMatchups(channels []Channel, pendingOnly bool) []Matchup {
	var matchups []Matchup
	for _, ch := range channels {
		m, ok := ParseMatchupChannel(ch)
		if !ok {
			continue
		}
		if pendingOnly && m.Finished {
			continue
		}
		matchups = append(matchups, m)
	}
	return matchups
}
