// Package search edits GitHub search queries made of whitespace-separated
// tokens, some of them "key:value" qualifiers.
package search

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// tokens splits q on whitespace, keeping double-quoted runs such as
// label:"good first issue" in one token.
func tokens(q string) []string {
	var (
		out    []string
		cur    strings.Builder
		quoted bool
	)
	for _, r := range q {
		switch {
		case r == '"':
			quoted = !quoted
			cur.WriteRune(r)
		case unicode.IsSpace(r) && !quoted:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func qualifier(key string) string {
	return key + ":"
}

func without(toks []string, key string) []string {
	prefix := qualifier(key)
	return slices.DeleteFunc(toks, func(t string) bool { return strings.HasPrefix(t, prefix) })
}

// Add replaces every key qualifier in q with key:value. The new token is
// inserted at token position pos, or appended when pos is negative or past
// the end.
func Add(q, key, value string, pos int) string {
	toks := without(tokens(q), key)
	tok := qualifier(key) + value
	if pos < 0 || pos > len(toks) {
		pos = len(toks)
	}
	return strings.Join(slices.Insert(toks, pos, tok), " ")
}

// Append is Add at the end of the query.
func Append(q, key, value string) string {
	return Add(q, key, value, -1)
}

// Remove drops every key qualifier from q.
func Remove(q, key string) string {
	return strings.Join(without(tokens(q), key), " ")
}

// Has reports whether q holds the exact token key:value.
func Has(q, key, value string) bool {
	return slices.Contains(tokens(q), qualifier(key)+value)
}

// Get returns the value of the first key qualifier, or "".
func Get(q, key string) string {
	if v := Values(q, key); len(v) > 0 {
		return v[0]
	}
	return ""
}

// Keys lists the key of every qualifier in order, duplicates included.
func Keys(q string) []string {
	out := []string{}
	for _, t := range tokens(q) {
		if k, _, ok := strings.Cut(t, ":"); ok {
			out = append(out, k)
		}
	}
	return out
}

// Values lists the values of every key qualifier in order.
func Values(q, key string) []string {
	prefix := qualifier(key)
	out := []string{}
	for _, t := range tokens(q) {
		if v, ok := strings.CutPrefix(t, prefix); ok {
			out = append(out, v)
		}
	}
	return out
}

// Default is the query used when none is given: open pull requests of one
// repository.
func Default(owner, repo string) string {
	return fmt.Sprintf("repo:%s/%s is:pr is:open", owner, repo)
}

// Normalize makes sure q targets pull requests of owner/repo.
func Normalize(q, owner, repo string) string {
	toks := tokens(q)
	if len(toks) == 0 {
		return Default(owner, repo)
	}
	if Get(q, "repo") == "" && owner != "" && repo != "" {
		toks = slices.Insert(toks, 0, qualifier("repo")+owner+"/"+repo)
	}
	if !slices.Contains(toks, "is:pr") {
		toks = append(toks, "is:pr")
	}
	return strings.Join(toks, " ")
}
