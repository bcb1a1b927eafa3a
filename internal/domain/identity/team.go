package identity

import (
	"strings"
	"unicode/utf8"
)

var clubSuffixes = map[string]struct{}{
	"fc": {}, "cf": {}, "ac": {}, "afc": {}, "sc": {}, "ssc": {}, "sv": {}, "fk": {},
	"cd": {}, "ud": {}, "rc": {}, "bk": {}, "as": {}, "ss": {}, "sk": {}, "if": {},
	"vfb": {}, "vfl": {}, "tsg": {}, "nk": {}, "ca": {}, "cp": {}, "ik": {}, "rcd": {},
}

// stopWords are too common across club names to identify a team on their own.
var stopWords = map[string]struct{}{
	"united": {}, "city": {}, "athletic": {}, "rovers": {}, "town": {}, "county": {},
	"albion": {}, "wanderers": {}, "west": {}, "east": {}, "north": {}, "south": {},
	"sporting": {}, "club": {}, "football": {}, "calcio": {}, "hotspur": {}, "rangers": {},
	"wednesday": {}, "borough": {}, "villa": {},
}

// qualifiers tell apart clubs that share a city name ("Manchester United" / "Manchester City").
var qualifiers = map[string]struct{}{
	"united": {}, "city": {}, "wednesday": {}, "rovers": {}, "town": {}, "county": {},
	"athletic": {}, "wanderers": {}, "albion": {},
}

type teamName struct {
	normalized  string
	significant []string
	qualifiers  map[string]struct{}
}

func parseTeam(raw string) teamName {
	var kept []string
	for _, word := range tokens(raw, true) {
		if _, ok := clubSuffixes[word]; ok {
			continue
		}
		if isNumeric(word) {
			continue
		}
		kept = append(kept, word)
	}

	name := teamName{normalized: strings.Join(kept, " ")}
	for _, word := range kept {
		if _, ok := qualifiers[word]; ok {
			if name.qualifiers == nil {
				name.qualifiers = make(map[string]struct{})
			}
			name.qualifiers[word] = struct{}{}
		}
		if utf8.RuneCountInString(word) <= 3 {
			continue
		}
		if _, ok := stopWords[word]; ok {
			continue
		}
		name.significant = append(name.significant, word)
	}
	return name
}

// NormalizeTeam returns the comparison form of a club name: folded, suffix-free, single spaced.
func NormalizeTeam(raw string) string {
	return parseTeam(raw).normalized
}

// TeamMatches reports whether a feed's team name refers to the roster team.
func TeamMatches(feedName, rosterName string) bool {
	feed := parseTeam(feedName)
	roster := parseTeam(rosterName)
	if feed.normalized == "" || roster.normalized == "" {
		return false
	}
	if feed.normalized == roster.normalized {
		return true
	}
	if len(feed.significant) == 0 || len(roster.significant) == 0 {
		return false
	}
	if conflictingQualifiers(feed.qualifiers, roster.qualifiers) {
		return false
	}

	if len(roster.significant) == 1 {
		word := roster.significant[0]
		for _, candidate := range feed.significant {
			if singleWordMatch(candidate, word) {
				return true
			}
		}
		return false
	}

	for _, word := range roster.significant {
		if !containsWord(feed.significant, word) {
			return false
		}
	}
	return true
}

// ResolveSide places rosterTeam in a home/away pairing. When both sides match (a derby of two
// clubs named after one city) the side whose normalized name equals the roster's wins; if that
// does not settle it the pairing is ambiguous.
func ResolveSide(home, away, rosterTeam string) (isHome bool, ok bool) {
	homeHit := TeamMatches(home, rosterTeam)
	awayHit := TeamMatches(away, rosterTeam)
	switch {
	case homeHit && !awayHit:
		return true, true
	case awayHit && !homeHit:
		return false, true
	case !homeHit && !awayHit:
		return false, false
	}

	want := NormalizeTeam(rosterTeam)
	homeExact := NormalizeTeam(home) == want
	awayExact := NormalizeTeam(away) == want
	if homeExact == awayExact {
		return false, false
	}
	return homeExact, true
}

// singleWordMatch is exact equality, or a prefix either way when the shorter word is at
// least five letters ("inter" / "internazionale").
func singleWordMatch(a, b string) bool {
	if a == b {
		return true
	}
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	return utf8.RuneCountInString(shorter) >= 5 && strings.HasPrefix(longer, shorter)
}

func containsWord(words []string, want string) bool {
	for _, word := range words {
		if word == want || strings.HasPrefix(word, want) || strings.HasPrefix(want, word) {
			return true
		}
	}
	return false
}

func conflictingQualifiers(a, b map[string]struct{}) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for word := range a {
		if _, ok := b[word]; ok {
			return false
		}
	}
	return true
}
