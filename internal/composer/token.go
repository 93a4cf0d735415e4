package composer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/moodsic-api/internal/theory"
)

const (
	groupDelimiter = "/"
	chordDelimiter = "."
)

// SubTokenKind distinguishes single notes from chords
type SubTokenKind int

const (
	NoteToken SubTokenKind = iota
	ChordToken
)

// SubToken is one parsed position of a note group
type SubToken struct {
	Kind    SubTokenKind
	Pitches []int
}

// IsDegenerate reports whether a group token has at most one distinct sub-token
func IsDegenerate(token string) bool {
	parts := strings.Split(token, groupDelimiter)
	first := parts[0]
	for _, p := range parts[1:] {
		if p != first {
			return false
		}
	}
	return true
}

// ParseGroup splits a group token into typed sub-tokens. A sub-token that is all digits
// or contains '.' is a chord of integers; anything else is a pitch name.
func ParseGroup(token string) ([]SubToken, error) {
	parts := strings.Split(token, groupDelimiter)
	out := make([]SubToken, 0, len(parts))
	for _, part := range parts {
		st, err := parseSubToken(part)
		if err != nil {
			return nil, &InvalidTokenError{Token: token, SubToken: part, Err: err}
		}
		out = append(out, st)
	}
	return out, nil
}

func parseSubToken(s string) (SubToken, error) {
	if s == "" {
		return SubToken{}, fmt.Errorf("empty sub-token")
	}

	if strings.Contains(s, chordDelimiter) || isDigits(s) {
		members := strings.Split(s, chordDelimiter)
		pitches := make([]int, 0, len(members))
		for _, m := range members {
			v, err := strconv.Atoi(m)
			if err != nil {
				return SubToken{}, fmt.Errorf("chord member %q: %w", m, err)
			}
			p, err := theory.ChordMemberToMIDI(v)
			if err != nil {
				return SubToken{}, err
			}
			pitches = append(pitches, p)
		}
		return SubToken{Kind: ChordToken, Pitches: pitches}, nil
	}

	p, err := theory.ParsePitch(s)
	if err != nil {
		return SubToken{}, err
	}
	return SubToken{Kind: NoteToken, Pitches: []int{p}}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
