// Package synth produces final answer text from retrieved documentation and
// extracted commands. The model is used as an explainer over retrieved
// material, never as a knowledge source: prompts forbid referencing commands
// absent from the extracted set, and when no grounding exists no model call
// is made at all.
package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/commishdev/commish/internal/ai"
)

const (
	// Queries scoring below this run on the fast tier with a short output
	// budget.
	complexityThreshold = 0.5

	fastMaxTokens    = 400
	capableMaxTokens = 500
	setupMaxTokens   = 600
)

var multiStepKeywords = []string{"multiple", "several", "all", "everything", "complete"}

type Synthesizer struct {
	gen   ai.Generator
	debug bool
}

func New(gen ai.Generator, debug bool) *Synthesizer {
	return &Synthesizer{gen: gen, debug: debug}
}

// Complexity scores a query from 0 (simple) to 1 (complex) based on query
// length, grounding size, command count, and multi-step language. The score
// drives model-tier selection.
func Complexity(query, excerpt string, commands []string) float64 {
	score := 0.0

	if len(query) > 100 {
		score += 0.2
	} else if len(query) > 50 {
		score += 0.1
	}

	if len(excerpt) > 1000 {
		score += 0.3
	} else if len(excerpt) > 500 {
		score += 0.15
	}

	if len(commands) > 3 {
		score += 0.3
	} else if len(commands) > 1 {
		score += 0.15
	}

	lower := strings.ToLower(query)
	for _, kw := range multiStepKeywords {
		if strings.Contains(lower, kw) {
			score += 0.2
			break
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// NotDocumented is the canned reply for questions the corpus cannot answer.
func NotDocumented(topic string) string {
	if topic == "" {
		topic = "that"
	}
	return fmt.Sprintf("I don't have specific documentation about %s. Try /settings help or /help to see all available commands.", topic)
}

// Grounded answers a how-to question constrained to the given excerpt and
// command set. With no grounding at all it returns the canned fallback
// without calling the model.
func (s *Synthesizer) Grounded(ctx context.Context, query, topic string, excerpt string, commands []string) (string, error) {
	if strings.TrimSpace(excerpt) == "" && len(commands) == 0 {
		if s.debug {
			fmt.Printf("[synth] no grounding for %q, skipping model call\n", topic)
		}
		return NotDocumented(topic), nil
	}

	complexity := Complexity(query, excerpt, commands)
	tier := ai.TierFast
	maxTokens := fastMaxTokens
	if complexity >= complexityThreshold {
		tier = ai.TierCapable
		maxTokens = capableMaxTokens
	}
	if s.debug {
		fmt.Printf("[synth] complexity=%.2f tier=%s\n", complexity, tier)
	}

	commandList := "None found"
	if len(commands) > 0 {
		commandList = strings.Join(commands, "\n")
	}

	prompt := fmt.Sprintf(`You are helping a league member with a setup question.

User asked: %q

Topic identified: %s

Documentation found:
%s

Commands found in documentation:
%s

CRITICAL RULES:
1. ONLY explain information from the "Documentation found" section above
2. ONLY mention commands from the "Commands found" list above
3. If you don't see a command in the list, DO NOT mention it or invent it
4. Be direct and concise (under 800 characters)
5. If the documentation doesn't fully answer their question, say so

Provide a helpful response based ONLY on the information above.`, query, topic, excerpt, commandList)

	answer, err := s.gen.Generate(ctx, "synthesize_grounded", prompt, tier, maxTokens)
	if err != nil {
		return "", fmt.Errorf("grounded synthesis failed: %w", err)
	}
	return answer, nil
}

// FullSetup builds a structured getting-started guide from the setup section
// of the corpus. Broad questions always get the capable tier since the answer
// spans several features.
func (s *Synthesizer) FullSetup(ctx context.Context, setupSection string) (string, error) {
	if strings.TrimSpace(setupSection) == "" {
		return "I couldn't find the setup guide. Try using /settings help.", nil
	}

	if len(setupSection) > 3000 {
		setupSection = setupSection[:3000]
	}

	prompt := fmt.Sprintf(`Help a commissioner set up their league assistant.

Documentation:
%s

Create concise guide:
1. Step 1: Initial Configuration (/settings commands)
2. Step 2: Team Assignment (/teams commands)
3. Step 3: Create Matchups (/matchups commands)
4. Best Practices (2-3 tips)

Requirements:
- Use ONLY commands from documentation
- Direct and concise (under 1200 chars)
- Code format for commands
- Skip intro fluff

CRITICAL: Do NOT invent commands.`, setupSection)

	answer, err := s.gen.Generate(ctx, "synthesize_full_setup", prompt, ai.TierCapable, setupMaxTokens)
	if err != nil {
		return "", fmt.Errorf("setup guide synthesis failed: %w", err)
	}
	return answer, nil
}

// Summarize condenses recent channel history into a short recap. Uses the
// capable tier when the transcript is long.
func (s *Synthesizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "There's nothing recent to summarize in this channel.", nil
	}

	if len(transcript) > 4000 {
		transcript = transcript[:4000]
	}

	tier := ai.TierFast
	maxTokens := fastMaxTokens
	if len(transcript) > 1500 {
		tier = ai.TierCapable
		maxTokens = capableMaxTokens
	}

	prompt := fmt.Sprintf(`Summarize the recent league chat below for someone who just caught up. Keep it under 600 characters, focus on decisions, results, and anything members need to act on.

Chat:
%s`, transcript)

	answer, err := s.gen.Generate(ctx, "synthesize_summary", prompt, tier, maxTokens)
	if err != nil {
		return "", fmt.Errorf("summary synthesis failed: %w", err)
	}
	return answer, nil
}

// Converse handles open conversation with no grounding requirement. Always
// the fast tier; chat does not need expensive reasoning.
func (s *Synthesizer) Converse(ctx context.Context, query string) (string, error) {
	prompt := fmt.Sprintf(`You are a friendly assistant for a sports league community. Keep replies short, casual, and helpful. If the user seems to want league data or setup help, suggest they ask directly (e.g. "who has Alabama" or "how do I assign teams").

User: %s`, query)

	answer, err := s.gen.Generate(ctx, "synthesize_conversation", prompt, ai.TierFast, fastMaxTokens)
	if err != nil {
		return "", fmt.Errorf("conversation synthesis failed: %w", err)
	}
	return answer, nil
}
