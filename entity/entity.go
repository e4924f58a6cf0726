// Package entity extracts a candidate entity name from free-text queries.
//
// The resolver is a heuristic, not a parser: it lowercases the query,
// tokenizes on word boundaries, drops a fixed stop-word set, and takes
// the first surviving token. Multi-word entities, synonyms, and scoring
// are out of scope.
package entity

import (
	"errors"
	"regexp"
	"strings"
)

// ErrUnresolved is returned when no usable token survives stop-word
// filtering. A literal stop word used as the only meaningful term is
// unresolvable by design.
var ErrUnresolved = errors.New("no entity name could be resolved from query")

var wordPattern = regexp.MustCompile(`\w+`)

var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "all": {}, "an": {}, "and": {},
	"are": {}, "can": {}, "collection": {}, "collections": {},
	"data": {}, "describe": {}, "details": {}, "document": {},
	"documents": {}, "entity": {}, "explain": {}, "field": {},
	"fields": {}, "find": {}, "for": {}, "get": {}, "give": {},
	"how": {}, "in": {}, "info": {}, "information": {}, "is": {},
	"list": {}, "me": {}, "model": {}, "of": {}, "on": {},
	"properties": {}, "schema": {}, "show": {}, "structure": {},
	"table": {}, "tables": {}, "tell": {}, "the": {}, "to": {},
	"what": {}, "which": {}, "you": {},
}

// Resolve returns the first token of query that is not a stop word.
func Resolve(query string) (string, error) {
	tokens := wordPattern.FindAllString(strings.ToLower(query), -1)
	for _, token := range tokens {
		if _, skip := stopWords[token]; !skip {
			return token, nil
		}
	}
	return "", ErrUnresolved
}
