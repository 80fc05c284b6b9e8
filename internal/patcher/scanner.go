package patcher

import (
	"errors"
	"strings"
)

var (
	ErrNoCallSite        = errors.New("no call-site found")
	ErrUnbalancedParens  = errors.New("unbalanced parens")
	ErrNoInsertionAnchor = errors.New("could not locate insertion anchor")
)

type scanState int

const (
	stateSearching scanState = iota
	stateCounting
	stateFound
)

// callSite is the span of a call expression, text[start:end] runs from the
// first character of the token through the matching close paren.
type callSite struct {
	start int
	end   int
}

// scanner locates the last call of `token` (which must end with the opening
// paren) and its matching close paren by counting depth.
//
// parens inside string literals or comments are counted like any other, a
// literal ")" inside the call's arguments ends the scan early.
type scanner struct {
	token string
	state scanState
	depth int
	site  callSite
}

func newScanner(token string) *scanner {
	return &scanner{token: token}
}

func (s *scanner) scan(text string) (callSite, error) {
	s.state = stateSearching
	pos := 0
	for {
		switch s.state {
		case stateSearching:
			idx := strings.LastIndex(text, s.token)
			if idx < 0 {
				return callSite{}, ErrNoCallSite
			}
			s.site.start = idx
			s.depth = 1
			pos = idx + len(s.token)
			s.state = stateCounting

		case stateCounting:
			if pos >= len(text) {
				return callSite{}, ErrUnbalancedParens
			}
			switch text[pos] {
			case '(':
				s.depth++
			case ')':
				s.depth--
			}
			pos++
			if s.depth == 0 {
				s.site.end = pos
				s.state = stateFound
			}

		case stateFound:
			return s.site, nil
		}
	}
}
