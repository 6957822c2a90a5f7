// Package exec maps natural-language requests to concrete storage and
// platform operations. Bindings are ordered and phrase-driven; the first
// binding whose phrases appear in the query wins.
package exec

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/commishdev/commish/internal/platform"
	"github.com/commishdev/commish/internal/query"
	"github.com/commishdev/commish/internal/store"
)

// Result is the outcome of an execution attempt. Handled with an empty
// Response means the operation dispatched a multi-turn flow (preview plus
// confirmation) and the caller must not emit additional text.
type Result struct {
	Handled  bool
	Response string
}

type binding struct {
	name    string
	matches func(q lowered, hasAttachments bool) bool
	handle  func(e *Executor, ctx context.Context, req Request) (Result, error)
}

// Request carries one execution attempt.
type Request struct {
	Query       string
	Scope       platform.Scope
	Attachments []platform.Attachment
}

type lowered string

func (l lowered) hasAny(phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(string(l), p) {
			return true
		}
	}
	return false
}

// Executor resolves phrase bindings against the storage and platform
// collaborators.
type Executor struct {
	store     store.Store
	channels  platform.ChannelLister
	messenger platform.Messenger
	images    platform.ImageExtractor
	roles     platform.RoleChecker
	debug     bool
}

func New(st store.Store, channels platform.ChannelLister, messenger platform.Messenger, images platform.ImageExtractor, roles platform.RoleChecker, debug bool) *Executor {
	return &Executor{
		store:     st,
		channels:  channels,
		messenger: messenger,
		images:    images,
		roles:     roles,
		debug:     debug,
	}
}

// Order matters: "check record" must be tested before the generic team
// lookup, and commissioner write operations come after all reads.
var bindings = []binding{
	{
		name: "my_points",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("my points", "how many points", "points do i have", "what's my points", "what is my points")
		},
		handle: (*Executor).myPoints,
	},
	{
		name: "who_has_team",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("who has", "who owns", "who's got", "whos got")
		},
		handle: (*Executor).whoHasTeam,
	},
	{
		name: "list_all_teams",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("list all teams", "all teams", "all assignments", "show all teams", "view all teams")
		},
		handle: (*Executor).listAllTeams,
	},
	{
		name: "my_team",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("my team", "what team", "which team", "what's my team", "what is my team")
		},
		handle: (*Executor).myTeam,
	},
	{
		name: "check_record",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("check record", "team record", "record for", "record of", "what's the record", "what is the record")
		},
		handle: (*Executor).checkRecord,
	},
	{
		name: "standings",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("all records", "view all records", "standings", "league standings", "show standings")
		},
		handle: (*Executor).standings,
	},
	{
		name: "pending_requests",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("pending requests", "my requests", "request status", "my pending")
		},
		handle: (*Executor).pendingRequests,
	},
	{
		name: "list_matchups",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("list matchups", "show matchups", "matchups in", "matchups for", "current matchups")
		},
		handle: (*Executor).listMatchups,
	},
	{
		name: "create_from_image",
		matches: func(q lowered, hasAttachments bool) bool {
			return hasAttachments && q.hasAny("create matchups", "create from image", "matchups from image",
				"create from this", "extract matchups", "process image")
		},
		handle: (*Executor).createFromImage,
	},
	{
		name: "delete_categories",
		matches: func(q lowered, _ bool) bool {
			if q.hasAny("delete matchups", "delete categories", "remove matchups", "remove categories",
				"delete category", "remove category", "clear matchups", "delete week", "remove week") {
				return true
			}
			return q.hasAny("delete", "remove", "clear") && q.hasAny("matchup", "category", "categories", "week")
		},
		handle: (*Executor).deleteCategories,
	},
	{
		name: "tag_users",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("tag users", "tag players", "notify users", "mention users", "notify players")
		},
		handle: (*Executor).tagUsers,
	},
	{
		name: "announce_advance",
		matches: func(q lowered, _ bool) bool {
			return q.hasAny("announce advance", "announce week", "advance announcement",
				"notify advance", "post advance", "send advance")
		},
		handle: (*Executor).announceAdvance,
	},
}

// Execute tries each binding in order. A nil-match returns Handled=false so
// the caller can fall back to conversation.
func (e *Executor) Execute(ctx context.Context, req Request) (Result, error) {
	q := lowered(strings.ToLower(req.Query))
	for _, b := range bindings {
		if !b.matches(q, len(req.Attachments) > 0) {
			continue
		}
		if e.debug {
			fmt.Printf("[exec] matched binding %s\n", b.name)
		}
		return b.handle(e, ctx, req)
	}
	return Result{}, nil
}

func (e *Executor) myPoints(ctx context.Context, req Request) (Result, error) {
	points, err := e.store.Balance(ctx, req.Scope.ServerID, req.Scope.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("balance lookup failed: %w", err)
	}
	plural := "s"
	if points == 1 {
		plural = ""
	}
	return Result{Handled: true, Response: fmt.Sprintf("You currently have %d attribute point%s available.", points, plural)}, nil
}

func (e *Executor) whoHasTeam(ctx context.Context, req Request) (Result, error) {
	_, teamName := query.ExtractTeamName(req.Query)
	if teamName == "" {
		return Result{}, nil
	}

	lookup, err := e.store.LookupTeam(ctx, req.Scope.ServerID, query.TeamKey(teamName))
	if err != nil {
		return Result{}, fmt.Errorf("team lookup failed: %w", err)
	}
	if !lookup.Found {
		return Result{Handled: true, Response: fmt.Sprintf("%s is not in the database. Make sure the team name is correct.", query.StandardizeTeam(teamName))}, nil
	}
	if !lookup.Assigned {
		return Result{Handled: true, Response: fmt.Sprintf("%s is not assigned to anyone (CPU).", lookup.TeamName)}, nil
	}
	return Result{Handled: true, Response: fmt.Sprintf("%s is assigned to %s.", lookup.TeamName, lookup.UserID)}, nil
}

func (e *Executor) listAllTeams(ctx context.Context, req Request) (Result, error) {
	assignments, err := e.store.ListAssignments(ctx, req.Scope.ServerID)
	if err != nil {
		return Result{}, fmt.Errorf("assignment listing failed: %w", err)
	}
	if len(assignments) == 0 {
		return Result{Handled: true, Response: "No teams are assigned yet."}, nil
	}

	var sb strings.Builder
	sb.WriteString("Team assignments:\n")
	for _, a := range assignments {
		owner := a.UserID
		if owner == "" {
			owner = "CPU"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", a.TeamName, owner))
	}
	return Result{Handled: true, Response: strings.TrimRight(sb.String(), "\n")}, nil
}

func (e *Executor) myTeam(ctx context.Context, req Request) (Result, error) {
	team, ok, err := e.store.UserTeam(ctx, req.Scope.ServerID, req.Scope.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("user team lookup failed: %w", err)
	}
	if !ok {
		return Result{Handled: true, Response: "You don't have a team assigned yet. Ask a commissioner to assign you one."}, nil
	}
	return Result{Handled: true, Response: fmt.Sprintf("Your team is %s.", team)}, nil
}

var recordTeamRe = regexp.MustCompile(`(?i)record (?:for|of)\s+(?:the\s+)?(.+?)[?.!]*$`)

func (e *Executor) checkRecord(ctx context.Context, req Request) (Result, error) {
	var teamName string
	if m := recordTeamRe.FindStringSubmatch(req.Query); m != nil {
		teamName = strings.TrimSpace(m[1])
	} else {
		_, teamName = query.ExtractTeamName(req.Query)
	}
	if teamName == "" {
		return Result{}, nil
	}

	rec, ok, err := e.store.TeamRecord(ctx, req.Scope.ServerID, query.TeamKey(teamName))
	if err != nil {
		return Result{}, fmt.Errorf("record lookup failed: %w", err)
	}
	if !ok {
		return Result{Handled: true, Response: fmt.Sprintf("No record found for %s.", query.StandardizeTeam(teamName))}, nil
	}
	return Result{Handled: true, Response: fmt.Sprintf("%s is %d-%d.", rec.TeamName, rec.Wins, rec.Losses)}, nil
}

func (e *Executor) standings(ctx context.Context, req Request) (Result, error) {
	records, err := e.store.Standings(ctx, req.Scope.ServerID)
	if err != nil {
		return Result{}, fmt.Errorf("standings lookup failed: %w", err)
	}
	if len(records) == 0 {
		return Result{Handled: true, Response: "No records are tracked yet."}, nil
	}

	var sb strings.Builder
	sb.WriteString("League standings:\n")
	for i, rec := range records {
		sb.WriteString(fmt.Sprintf("%d. %s (%d-%d)\n", i+1, rec.TeamName, rec.Wins, rec.Losses))
	}
	return Result{Handled: true, Response: strings.TrimRight(sb.String(), "\n")}, nil
}

func (e *Executor) pendingRequests(ctx context.Context, req Request) (Result, error) {
	requests, err := e.store.PendingRequests(ctx, req.Scope.ServerID, req.Scope.UserID)
	if err != nil {
		return Result{}, fmt.Errorf("pending request lookup failed: %w", err)
	}
	if len(requests) == 0 {
		return Result{Handled: true, Response: "You have no pending upgrade requests."}, nil
	}

	var sb strings.Builder
	sb.WriteString("Your pending requests:\n")
	for _, r := range requests {
		sb.WriteString(fmt.Sprintf("%s: %d point(s), %s\n", r.Attribute, r.Points, r.Status))
	}
	return Result{Handled: true, Response: strings.TrimRight(sb.String(), "\n")}, nil
}

var (
	weekFilterRe = regexp.MustCompile(`(?:matchups (?:in|for)\s+)(week\s*\d+|[\w\s-]+)`)
	weekNumberRe = regexp.MustCompile(`week\s*-?\s*(\d+)`)
)

// weekSource is the text the week number is read from: the category when
// the platform groups channels, otherwise the channel name.
func weekSource(ch platform.Channel) string {
	if ch.Category != "" {
		return strings.ToLower(ch.Category)
	}
	return strings.ToLower(ch.Name)
}

func squashSeparators(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

func filterCurrentWeek(matchups []platform.Matchup) []platform.Matchup {
	maxWeek := -1
	weeks := make([]int, len(matchups))
	for i, mu := range matchups {
		weeks[i] = -1
		if m := weekNumberRe.FindStringSubmatch(weekSource(mu.Channel)); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			weeks[i] = n
			if n > maxWeek {
				maxWeek = n
			}
		}
	}
	if maxWeek < 0 {
		return matchups
	}

	var current []platform.Matchup
	for i, mu := range matchups {
		if weeks[i] == maxWeek {
			current = append(current, mu)
		}
	}
	return current
}

func (e *Executor) listMatchups(ctx context.Context, req Request) (Result, error) {
	if e.channels == nil {
		return Result{Handled: true, Response: "Matchup channels are not available here."}, nil
	}

	channels, err := e.channels.Channels(ctx, req.Scope.ServerID)
	if err != nil {
		return Result{}, fmt.Errorf("channel listing failed: %w", err)
	}

	queryLower := strings.ToLower(req.Query)
	pendingOnly := strings.Contains(queryLower, "pending") || strings.Contains(queryLower, "unplayed")
	matchups := platform.FilterMatchups(channels, pendingOnly)

	// "this week" means the highest week number across the matchup
	// categories; "matchups in week 5" narrows to a named week.
	if strings.Contains(queryLower, "this week") {
		matchups = filterCurrentWeek(matchups)
	} else if m := weekFilterRe.FindStringSubmatch(queryLower); m != nil {
		filter := squashSeparators(m[1])
		var filtered []platform.Matchup
		for _, mu := range matchups {
			if strings.Contains(squashSeparators(mu.Channel.Name), filter) ||
				strings.Contains(squashSeparators(mu.Channel.Category), filter) {
				filtered = append(filtered, mu)
			}
		}
		matchups = filtered
	}

	if len(matchups) == 0 {
		return Result{Handled: true, Response: "No matchups found."}, nil
	}

	var sb strings.Builder
	sb.WriteString("Matchups:\n")
	for _, mu := range matchups {
		status := ""
		if mu.Finished {
			status = " (final)"
		}
		sb.WriteString(fmt.Sprintf("%s vs %s%s\n", query.StandardizeTeam(mu.Home), query.StandardizeTeam(mu.Away), status))
	}
	return Result{Handled: true, Response: strings.TrimRight(sb.String(), "\n")}, nil
}

func (e *Executor) createFromImage(ctx context.Context, req Request) (Result, error) {
	ok, err := e.requireCommissioner(ctx, req.Scope)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Handled: true, Response: "You must be a commissioner to create matchups."}, nil
	}
	if e.images == nil {
		return Result{Handled: true, Response: "Image processing is not available here."}, nil
	}
	if len(req.Attachments) > 5 {
		return Result{Handled: true, Response: "Too many images. Please attach up to 5 images."}, nil
	}

	var extracted []string
	for _, att := range req.Attachments {
		text, err := e.images.ExtractText(ctx, att.URL)
		if err != nil {
			return Result{}, fmt.Errorf("image extraction failed: %w", err)
		}
		if strings.TrimSpace(text) != "" {
			extracted = append(extracted, text)
		}
	}
	if len(extracted) == 0 {
		return Result{Handled: true, Response: "I couldn't read any matchups from those images."}, nil
	}

	// Multi-turn flow: post the preview and let the confirmation round-trip
	// finish the mutation. No further text from the caller.
	preview := "Found these matchups:\n" + strings.Join(extracted, "\n") + "\nReply 'confirm' to create the channels."
	if err := e.messenger.Send(ctx, req.Scope.ChannelID, preview); err != nil {
		return Result{}, fmt.Errorf("failed to send matchup preview: %w", err)
	}
	return Result{Handled: true}, nil
}

func (e *Executor) deleteCategories(ctx context.Context, req Request) (Result, error) {
	ok, err := e.requireCommissioner(ctx, req.Scope)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Handled: true, Response: "You must be a commissioner to delete matchup categories."}, nil
	}

	// Destructive operation: always preview and require confirmation.
	prompt := "This will delete matchup categories and their channels. Reply 'confirm delete' to continue."
	if err := e.messenger.Send(ctx, req.Scope.ChannelID, prompt); err != nil {
		return Result{}, fmt.Errorf("failed to send delete confirmation: %w", err)
	}
	return Result{Handled: true}, nil
}

func (e *Executor) tagUsers(ctx context.Context, req Request) (Result, error) {
	ok, err := e.requireCommissioner(ctx, req.Scope)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Handled: true, Response: "You must be a commissioner to tag users in matchups."}, nil
	}
	if e.channels == nil {
		return Result{Handled: true, Response: "Matchup channels are not available here."}, nil
	}

	channels, err := e.channels.Channels(ctx, req.Scope.ServerID)
	if err != nil {
		return Result{}, fmt.Errorf("channel listing failed: %w", err)
	}

	tagged := 0
	for _, mu := range platform.FilterMatchups(channels, true) {
		for _, team := range []string{mu.Home, mu.Away} {
			lookup, err := e.store.LookupTeam(ctx, req.Scope.ServerID, query.TeamKey(team))
			if err != nil || !lookup.Assigned {
				continue
			}
			text := fmt.Sprintf("@%s your matchup is ready in this channel.", lookup.UserID)
			if err := e.messenger.Send(ctx, mu.Channel.ID, text); err == nil {
				tagged++
			}
		}
	}
	return Result{Handled: true, Response: fmt.Sprintf("Tagged %d user(s) in their matchup channels.", tagged)}, nil
}

func (e *Executor) announceAdvance(ctx context.Context, req Request) (Result, error) {
	ok, err := e.requireCommissioner(ctx, req.Scope)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Handled: true, Response: "You must be a commissioner to announce an advance."}, nil
	}

	announcement, err := e.store.Setting(ctx, req.Scope.ServerID, "advance_message")
	if err != nil {
		return Result{}, fmt.Errorf("settings lookup failed: %w", err)
	}
	if announcement == "" {
		announcement = "The league has advanced! Check your matchup channels and play your games."
	}

	if err := e.messenger.Send(ctx, req.Scope.ChannelID, announcement); err != nil {
		return Result{}, fmt.Errorf("failed to send advance announcement: %w", err)
	}
	return Result{Handled: true, Response: "Advance announcement posted."}, nil
}

func (e *Executor) requireCommissioner(ctx context.Context, scope platform.Scope) (bool, error) {
	if e.roles == nil {
		return false, nil
	}
	ok, err := e.roles.IsCommissioner(ctx, scope.UserID, scope.ServerID)
	if err != nil {
		return false, fmt.Errorf("commissioner check failed: %w", err)
	}
	return ok, nil
}
