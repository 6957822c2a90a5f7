package knowledge

import (
	"regexp"
	"sort"
)

var (
	fencedBlockRe   = regexp.MustCompile("(?s)```[^\n]*\n(.+?)\n```")
	commandLineRe   = regexp.MustCompile(`(?m)^(/[\w\-]+.*)$`)
	inlineCommandRe = regexp.MustCompile("`(/[\\w\\-]+[^`]*)`")
)

// ExtractCommands returns the slash commands that appear verbatim in an
// excerpt, from fenced code blocks and inline code only. This step performs
// no generation: if the excerpt names no command, the result is empty and
// the synthesizer must say so rather than invent one.
func ExtractCommands(excerpt string) []string {
	if excerpt == "" {
		return nil
	}

	set := make(map[string]bool)

	for _, block := range fencedBlockRe.FindAllStringSubmatch(excerpt, -1) {
		for _, line := range commandLineRe.FindAllString(block[1], -1) {
			set[line] = true
		}
	}

	for _, m := range inlineCommandRe.FindAllStringSubmatch(excerpt, -1) {
		set[m[1]] = true
	}

	if len(set) == 0 {
		return nil
	}

	commands := make([]string, 0, len(set))
	for cmd := range set {
		commands = append(commands, cmd)
	}
	sort.Strings(commands)
	return commands
}
