// Package orchestrator wires the query pipeline: cache check, deterministic
// pattern match, intent classification, then one of execution, grounded help
// synthesis, search, summary, or open conversation. Every query reaches
// exactly one response; collaborator failures degrade to a retry message
// instead of propagating.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/commishdev/commish/internal/cache"
	"github.com/commishdev/commish/internal/exec"
	"github.com/commishdev/commish/internal/intent"
	"github.com/commishdev/commish/internal/knowledge"
	"github.com/commishdev/commish/internal/platform"
	"github.com/commishdev/commish/internal/query"
	"github.com/commishdev/commish/internal/synth"
)

const (
	// Per-query deadline covering every downstream call.
	DefaultQueryTimeout = 45 * time.Second

	failureMessage = "I couldn't complete that. Please try again."
)

var mutationKeywords = []string{"assign", "give", "delete", "remove", "clear", "create", "set ", "approve", "deny"}

// Orchestrator owns the request-handling state machine. Safe for concurrent
// use: each call to Handle is an independent unit of work, and the cache is
// the only shared mutable state.
type Orchestrator struct {
	cache       *cache.QueryCache
	matcher     *query.Matcher
	executor    *exec.Executor
	synthesizer *synth.Synthesizer
	commands    *knowledge.Corpus
	setupGuide  *knowledge.Corpus
	searcher    *platform.Searcher
	history     platform.HistoryReader
	timeout     time.Duration
	debug       bool
}

type Config struct {
	Cache       *cache.QueryCache
	Matcher     *query.Matcher
	Executor    *exec.Executor
	Synthesizer *synth.Synthesizer
	Commands    *knowledge.Corpus
	SetupGuide  *knowledge.Corpus
	Searcher    *platform.Searcher
	History     platform.HistoryReader
	Timeout     time.Duration
	Debug       bool
}

func New(cfg Config) *Orchestrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	return &Orchestrator{
		cache:       cfg.Cache,
		matcher:     cfg.Matcher,
		executor:    cfg.Executor,
		synthesizer: cfg.Synthesizer,
		commands:    cfg.Commands,
		setupGuide:  cfg.SetupGuide,
		searcher:    cfg.Searcher,
		history:     cfg.History,
		timeout:     timeout,
		debug:       cfg.Debug,
	}
}

// Handle runs one message through the pipeline and returns the response
// text. An empty response with a nil error means a multi-turn flow was
// dispatched and no additional text should be sent.
func (o *Orchestrator) Handle(ctx context.Context, msg platform.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	raw := strings.TrimSpace(msg.Content)
	if raw == "" {
		return "", nil
	}

	// Cache check. Messages with attachments never hit: their answers
	// depend on ephemeral content.
	if o.cache != nil && !msg.HasAttachments() {
		if cached, ok := o.cache.Get(msg.Scope.ServerID, raw); ok {
			return cached, nil
		}
	}

	// High-confidence pattern match bypasses classification entirely.
	if o.matcher != nil {
		match, err := o.matcher.Match(ctx, msg.Scope.ServerID, raw)
		if err != nil {
			return o.degrade("pattern", err), nil
		}
		if match.Handled {
			o.storeCache(msg, raw, match.Response)
			return match.Response, nil
		}
	}

	queryIntent := intent.Classify(raw)
	if o.debug {
		log.Printf("[orchestrator] intent=%s query=%q", queryIntent, raw)
	}

	response, err := o.route(ctx, queryIntent, msg, raw)
	if err != nil {
		return o.degrade(string(queryIntent), err), nil
	}

	o.storeCache(msg, raw, response)
	return response, nil
}

func (o *Orchestrator) route(ctx context.Context, queryIntent intent.Intent, msg platform.Message, raw string) (string, error) {
	switch queryIntent {
	case intent.CommandExecute, intent.UserSpecific, intent.LeagueSpecific:
		return o.execute(ctx, msg, raw)
	case intent.SetupHelp:
		return o.setupHelp(ctx, raw)
	case intent.CommandHelp:
		return o.commandHelp(ctx, raw)
	case intent.Search:
		return o.search(ctx, msg, raw)
	case intent.Summary:
		return o.summarize(ctx, msg)
	default:
		return o.synthesizer.Converse(ctx, raw)
	}
}

func (o *Orchestrator) execute(ctx context.Context, msg platform.Message, raw string) (string, error) {
	result, err := o.executor.Execute(ctx, exec.Request{
		Query:       raw,
		Scope:       msg.Scope,
		Attachments: msg.Attachments,
	})
	if err != nil {
		return "", err
	}
	if !result.Handled {
		// No binding matched; treat as conversation rather than failing.
		return o.synthesizer.Converse(ctx, raw)
	}

	// Mutations make cached ownership and standings answers stale.
	if o.cache != nil && containsAny(strings.ToLower(raw), mutationKeywords) {
		o.cache.InvalidatePattern(msg.Scope.ServerID, "")
	}

	return result.Response, nil
}

func (o *Orchestrator) setupHelp(ctx context.Context, raw string) (string, error) {
	if o.setupGuide == nil || o.setupGuide.Empty() {
		return synth.NotDocumented(intent.ExtractTopic(raw)), nil
	}

	// Broad "how do I get started" questions get the structured full guide.
	if intent.IsFullSetupQuery(raw) {
		section, ok := o.setupGuide.FindSection("Commissioner Setup")
		if !ok {
			return "I couldn't find the setup guide. Try using /settings help.", nil
		}
		return o.synthesizer.FullSetup(ctx, section.Body)
	}

	topic := intent.ExtractTopic(raw)
	keywords := intent.Keywords(raw)
	excerpt := o.setupGuide.Retrieve(keywords, knowledge.DefaultExcerptBudget)
	commands := knowledge.ExtractCommands(excerpt)
	return o.synthesizer.Grounded(ctx, raw, topic, excerpt, commands)
}

func (o *Orchestrator) commandHelp(ctx context.Context, raw string) (string, error) {
	if o.commands == nil || o.commands.Empty() {
		return synth.NotDocumented(intent.ExtractTopic(raw)), nil
	}

	topic := intent.ExtractTopic(raw)
	keywords := intent.Keywords(raw)
	excerpt := o.commands.SearchCommands(raw, keywords)
	commands := knowledge.ExtractCommands(excerpt)
	return o.synthesizer.Grounded(ctx, raw, topic, excerpt, commands)
}

func (o *Orchestrator) search(ctx context.Context, msg platform.Message, raw string) (string, error) {
	if o.searcher == nil {
		return "Search isn't available here.", nil
	}

	results, err := o.searcher.Search(ctx, msg.Scope, raw, intent.Keywords(raw))
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "I couldn't find anything about that in the channel history.", nil
	}

	var sb strings.Builder
	sb.WriteString("Here's what I found:\n")
	shown := results
	if len(shown) > 3 {
		shown = shown[:3]
	}
	for _, r := range shown {
		content := r.Message.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		sb.WriteString(fmt.Sprintf("#%s, %s: %s\n", r.Channel.Name, r.Message.Author, content))
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}

func (o *Orchestrator) summarize(ctx context.Context, msg platform.Message) (string, error) {
	if o.history == nil {
		return "I can't read channel history here.", nil
	}

	messages, err := o.history.Recent(ctx, msg.Scope.ChannelID, 50)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	// Recent returns newest first; play back oldest first for the model.
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", m.Author, m.Content))
	}
	return o.synthesizer.Summarize(ctx, sb.String())
}

func (o *Orchestrator) storeCache(msg platform.Message, raw, response string) {
	if o.cache == nil || response == "" || msg.HasAttachments() {
		return
	}
	o.cache.Set(msg.Scope.ServerID, raw, response)
}

// degrade converts a stage failure into the user-visible fallback. The
// failing stage is logged; the error never crosses the orchestrator.
func (o *Orchestrator) degrade(stage string, err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		log.Printf("[orchestrator] stage %s timed out: %v", stage, err)
	} else {
		log.Printf("[orchestrator] stage %s failed: %v", stage, err)
	}
	return failureMessage
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
