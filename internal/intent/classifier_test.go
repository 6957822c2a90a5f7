package intent

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Intent
	}{
		{
			name:  "broad setup question",
			query: "how do I use this bot",
			want:  SetupHelp,
		},
		{
			name:  "getting started",
			query: "getting started",
			want:  SetupHelp,
		},
		{
			name:  "feature-specific setup is not full setup",
			query: "how to setup stream notifications",
			want:  CommandHelp,
		},
		{
			name:  "show me executes",
			query: "show me all teams",
			want:  CommandExecute,
		},
		{
			name:  "who has executes",
			query: "who has Clemson",
			want:  CommandExecute,
		},
		{
			name:  "execution beats help phrasing",
			query: "how do I see my points",
			want:  CommandExecute,
		},
		{
			name:  "how-to is help",
			query: "how do I assign a team to someone",
			want:  CommandHelp,
		},
		{
			name:  "possessive with display verb re-routes to execute",
			query: "check my record please",
			want:  CommandExecute,
		},
		{
			name:  "possessive without display verb stays user specific",
			query: "how many points do i have",
			want:  UserSpecific,
		},
		{
			name:  "standings is league specific",
			query: "standings please",
			want:  LeagueSpecific,
		},
		{
			name:  "past tense question searches",
			query: "who won the championship last season",
			want:  Search,
		},
		{
			name:  "advance schedule searches",
			query: "when is advance",
			want:  Search,
		},
		{
			name:  "recap summarizes",
			query: "recap this channel",
			want:  Summary,
		},
		{
			name:  "unmatched defaults to conversation",
			query: "nice weather today",
			want:  Conversation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.query); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func TestIsSearchQuery(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"when is advance", true},
		{"who won the natty", true},
		{"what happened last year", true},
		{"who has Clemson", false},
		{"championship", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := IsSearchQuery(tt.query); got != tt.want {
				t.Errorf("IsSearchQuery(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestIsFullSetupQuery(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"how do I use this", true},
		{"how to set up my league", true},
		{"how to setup stream notis", false},
		{"how to assign teams", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := IsFullSetupQuery(tt.query); got != tt.want {
				t.Errorf("IsFullSetupQuery(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
