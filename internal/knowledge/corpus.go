// Package knowledge indexes the static documentation corpus and retrieves
// grounded excerpts for help queries. The corpus is loaded once at startup
// and is read-only for the process lifetime, so reads need no locking.
package knowledge

import (
	"fmt"
	"os"
	"strings"
)

// Section is a titled block of documentation. Sections are the unit of
// retrieval.
type Section struct {
	Title string
	Level int // number of leading '#' characters
	Body  string
}

// Corpus holds the parsed documentation.
type Corpus struct {
	raw      string
	lines    []string
	sections []Section
}

// Parse splits sectioned markdown text into a corpus. Headers at level two
// and deeper delimit sections.
func Parse(text string) *Corpus {
	c := &Corpus{
		raw:   text,
		lines: strings.Split(text, "\n"),
	}

	var current *Section
	var body []string

	flush := func() {
		if current != nil {
			current.Body = strings.TrimRight(strings.Join(body, "\n"), "\n")
			c.sections = append(c.sections, *current)
		}
		body = nil
	}

	for _, line := range c.lines {
		if level := headerLevel(line); level >= 2 {
			flush()
			current = &Section{
				Title: strings.TrimSpace(strings.TrimLeft(line, "# ")),
				Level: level,
			}
			body = append(body, line)
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return c
}

// LoadFile reads and parses a corpus file.
func LoadFile(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Sections returns the parsed sections in corpus order.
func (c *Corpus) Sections() []Section {
	return c.sections
}

// Empty reports whether the corpus has no content.
func (c *Corpus) Empty() bool {
	return c == nil || strings.TrimSpace(c.raw) == ""
}

// FindSection returns the first section whose title contains the given
// fragment, case-insensitively.
func (c *Corpus) FindSection(titleContains string) (Section, bool) {
	needle := strings.ToLower(titleContains)
	for _, s := range c.sections {
		if strings.Contains(strings.ToLower(s.Title), needle) {
			return s, true
		}
	}
	return Section{}, false
}

func headerLevel(line string) int {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n == 0 || n >= len(line) || line[n] != ' ' {
		return 0
	}
	return n
}
