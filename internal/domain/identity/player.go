package identity

import (
	"strings"
	"unicode/utf8"
)

// NormalizePlayer keeps letters only, lowercased and folded, one space between words.
func NormalizePlayer(raw string) string {
	return strings.Join(tokens(raw, false), " ")
}

// PlayerNameMatches is the loose player-name rule: exact, then last name (longer than three
// letters), then containment either way.
func PlayerNameMatches(feedName, rosterName string) bool {
	_, ok := matchKind(NormalizePlayer(feedName), NormalizePlayer(rosterName))
	return ok
}

type nameMatch int

const (
	matchExact nameMatch = iota
	matchLastName
	matchContains
)

func matchKind(feed, roster string) (nameMatch, bool) {
	if feed == "" || roster == "" {
		return 0, false
	}
	if feed == roster {
		return matchExact, true
	}
	feedLast := lastWord(feed)
	rosterLast := lastWord(roster)
	if feedLast == rosterLast && utf8.RuneCountInString(rosterLast) > 3 {
		return matchLastName, true
	}
	shorter, longer := feed, roster
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if strings.Contains(longer, shorter) {
		return matchContains, true
	}
	return 0, false
}

func lastWord(name string) string {
	if i := strings.LastIndexByte(name, ' '); i >= 0 {
		return name[i+1:]
	}
	return name
}

func firstInitial(name string) (rune, bool) {
	if !strings.Contains(name, " ") {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return r, true
}

// PlayerIndex applies PlayerNameMatches with the shared-surname rule: when two roster players
// share a last name, a non-exact match must also agree on the first initial.
type PlayerIndex struct {
	lastNames map[string]int
}

func NewPlayerIndex(rosterNames []string) *PlayerIndex {
	idx := &PlayerIndex{lastNames: make(map[string]int, len(rosterNames))}
	seen := make(map[string]struct{}, len(rosterNames))
	for _, raw := range rosterNames {
		name := NormalizePlayer(raw)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		idx.lastNames[lastWord(name)]++
	}
	return idx
}

// Matches reports whether feedName refers to rosterName.
func (i *PlayerIndex) Matches(feedName, rosterName string) bool {
	feed := NormalizePlayer(feedName)
	roster := NormalizePlayer(rosterName)
	kind, ok := matchKind(feed, roster)
	if !ok {
		return false
	}
	if kind == matchExact || i == nil || i.lastNames[lastWord(roster)] < 2 {
		return true
	}

	feedInitial, ok := firstInitial(feed)
	if !ok {
		return false
	}
	rosterInitial, ok := firstInitial(roster)
	return ok && feedInitial == rosterInitial
}

// MatcherFunc adapts a plain function to the Matches method set.
type MatcherFunc func(feedName, rosterName string) bool

func (f MatcherFunc) Matches(feedName, rosterName string) bool {
	return f(feedName, rosterName)
}
