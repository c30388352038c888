package mjbuild

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

const (
	placeholderLength = 5

	// maxPassAttempts bounds how often a quote pass is regenerated after a
	// placeholder shows up at a segment boundary.
	maxPassAttempts = 8
)

var quoteUnescaper = strings.NewReplacer(`\"`, `"`, `\'`, `'`)

// PlaceholderGenerator produces random lowercase tokens that do not occur in
// a caller-supplied exclusion set.
//
// Each generator owns its random source; nothing is shared between
// generators, so two parses never influence each other.
type PlaceholderGenerator struct {
	rng    *rand.Rand
	length int
}

// NewPlaceholderGenerator returns a generator seeded with seed. The same seed
// always yields the same sequence of candidates.
func NewPlaceholderGenerator(seed uint64) *PlaceholderGenerator {
	return &PlaceholderGenerator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		length: placeholderLength,
	}
}

// Next returns a token that is not a substring of any string in exclude.
func (g *PlaceholderGenerator) Next(exclude ...string) string {
	buf := make([]byte, g.length)
	for {
		for i := range buf {
			buf[i] = 'a' + byte(g.rng.IntN(26))
		}
		candidate := string(buf)
		if !containsAny(exclude, candidate) {
			return candidate
		}
	}
}

// Placeholders records which placeholder stands for which quoted span.
// Entries keep their insertion order.
type Placeholders struct {
	gen    *PlaceholderGenerator
	keys   []string
	values map[string]string
}

// NewPlaceholders returns an empty table drawing names from gen.
func NewPlaceholders(gen *PlaceholderGenerator) *Placeholders {
	return &Placeholders{
		gen:    gen,
		values: make(map[string]string),
	}
}

// Len returns the number of recorded placeholders.
func (p *Placeholders) Len() int {
	return len(p.keys)
}

// Lookup returns the original content recorded for key.
func (p *Placeholders) Lookup(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Restore replaces every placeholder in s with its recorded content.
// Later entries are restored first so that a span containing an earlier
// placeholder is expanded before that placeholder is.
func (p *Placeholders) Restore(s string) string {
	for i := len(p.keys) - 1; i >= 0; i-- {
		k := p.keys[i]
		if strings.Contains(s, k) {
			s = strings.ReplaceAll(s, k, p.values[k])
		}
	}
	return s
}

func (p *Placeholders) add(key, value string) {
	p.keys = append(p.keys, key)
	p.values[key] = value
}

// TokenizeQuoted replaces each span enclosed by quote with a placeholder
// containing no whitespace, recording the span's content (without the quote
// characters) in p.
//
// A quote character immediately preceded by a backslash is literal. The
// remaining quote characters must pair up; otherwise ErrUnbalancedQuotes is
// returned and p is left untouched.
func TokenizeQuoted(input string, quote byte, p *Placeholders) (string, error) {
	positions := quotePositions(input, quote)
	if len(positions)%2 != 0 {
		return "", fmt.Errorf("%w %c...%c", ErrUnbalancedQuotes, quote, quote)
	}
	if len(positions) == 0 {
		return input, nil
	}

	for attempt := 0; attempt < maxPassAttempts; attempt++ {
		output, keys, values := p.substitute(input, positions)
		if p.unambiguous(input, output, keys) {
			for i := range keys {
				p.add(keys[i], values[i])
			}
			return output, nil
		}
	}

	return "", fmt.Errorf("could not generate unambiguous placeholders for %c-quoted spans", quote)
}

func (p *Placeholders) substitute(input string, positions []int) (string, []string, []string) {
	var (
		out    strings.Builder
		keys   []string
		values []string
	)

	prevEnd := -1
	for i := 0; i < len(positions); i += 2 {
		start, end := positions[i], positions[i+1]
		out.WriteString(input[prevEnd+1 : start])

		exclude := append([]string{input, out.String()}, p.keys...)
		key := p.gen.Next(append(exclude, keys...)...)

		out.WriteString(key)
		keys = append(keys, key)
		values = append(values, input[start+1:end])
		prevEnd = end
	}
	out.WriteString(input[prevEnd+1:])

	return out.String(), keys, values
}

// unambiguous reports whether every new placeholder occurs exactly once in
// output and no earlier placeholder gained an occurrence across a boundary.
func (p *Placeholders) unambiguous(input, output string, keys []string) bool {
	for _, k := range keys {
		if strings.Count(output, k) != 1 {
			return false
		}
	}
	for _, k := range p.keys {
		if strings.Count(output, k) > strings.Count(input, k) {
			return false
		}
	}
	return true
}

// ParseArgs splits a shell-like argument string into arguments.
//
// Double-quoted and single-quoted spans keep their inner whitespace, and
// \" and \' produce literal quote characters. Empty or whitespace-only input
// yields no arguments.
//
//	ParseArgs(`--flag1 --flag2="a b" -Dfoo='bar baz'`)
//	// []string{"--flag1", "--flag2=a b", "-Dfoo=bar baz"}
func ParseArgs(raw string) ([]string, error) {
	return ParseArgsWith(raw, NewPlaceholderGenerator(rand.Uint64()))
}

// ParseArgsWith is ParseArgs with an explicit placeholder generator.
func ParseArgsWith(raw string, gen *PlaceholderGenerator) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	placeholders := NewPlaceholders(gen)
	unquoted, err := TokenizeQuoted(raw, '"', placeholders)
	if err != nil {
		return nil, err
	}
	unquoted, err = TokenizeQuoted(unquoted, '\'', placeholders)
	if err != nil {
		return nil, err
	}

	var args []string
	for _, part := range strings.Fields(unquoted) {
		part = quoteUnescaper.Replace(placeholders.Restore(part))
		if part != "" {
			args = append(args, part)
		}
	}

	return args, nil
}

func quotePositions(input string, quote byte) []int {
	var positions []int
	for i := 0; i < len(input); i++ {
		if input[i] == quote && (i == 0 || input[i-1] != '\\') {
			positions = append(positions, i)
		}
	}
	return positions
}

func containsAny(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}
