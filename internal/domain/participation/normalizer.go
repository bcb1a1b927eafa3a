package participation

import (
	"sort"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

// NameMatcher decides whether a feed's player name refers to a roster player.
type NameMatcher interface {
	Matches(feedName, rosterName string) bool
}

type lineupHit struct {
	starting bool
	bench    bool
	rating   *float64
}

// Normalize derives the participation facts of playerName on side of detail. Source is left for
// the caller to stamp. Without lineup or event data every field stays unknown.
func Normalize(detail feed.MatchDetail, side feed.Side, playerName string, matcher NameMatcher) match.Participation {
	events := collectEvents(detail, side, playerName, matcher)
	lineup := detail.Lineup(side)
	hasLineup := !lineup.Empty()
	hit := findInLineup(lineup, playerName, matcher)

	if !hasLineup && len(events) == 0 {
		return match.UnknownParticipation("")
	}

	var (
		subIn, subOut *match.Event
		nonSubIn      bool
		onPitch       bool
	)
	for i := range events {
		switch events[i].Type {
		case match.EventSubIn:
			if subIn == nil {
				subIn = &events[i]
			}
			onPitch = true
		case match.EventSubOut:
			subOut = &events[i]
			nonSubIn = true
			onPitch = true
		case match.EventGoal, match.EventAssist:
			nonSubIn = true
			onPitch = true
		default:
			nonSubIn = true
		}
	}

	out := match.Participation{
		Participated: match.Unknown,
		Started:      match.Unknown,
		Events:       events,
		SquadRole:    squadRole(hasLineup, hit, len(events) > 0),
		Rating:       hit.rating,
	}

	switch {
	case hit.starting:
		out.Started = match.True
	case subIn != nil, hit.bench:
		out.Started = match.False
	case nonSubIn:
		out.Started = match.True
	case hasLineup:
		out.Started = match.False
	}

	switch {
	case out.Started == match.True || onPitch:
		out.Participated = match.True
		out.MinutesPlayed = minutesPlayed(subIn, subOut, detail.EndMinute)
	case hit.bench && hit.rating != nil:
		// rated substitute whose substitution the feed did not report
		out.Participated = match.True
	case hasLineup && len(events) == 0:
		// unused substitute or not in the matchday squad
		out.Participated = match.False
		out.MinutesPlayed = match.IntPtr(0)
	case hit.bench:
		// booked from the bench
		out.Participated = match.False
		out.MinutesPlayed = match.IntPtr(0)
	}

	return out
}

func minutesPlayed(subIn, subOut *match.Event, endMinute int) *int {
	switch {
	case subIn != nil && subOut != nil:
		if subIn.Minute == nil || subOut.Minute == nil {
			return nil
		}
		return match.IntPtr(nonNegative(*subOut.Minute - *subIn.Minute))
	case subIn != nil:
		if subIn.Minute == nil || endMinute <= 0 {
			return nil
		}
		return match.IntPtr(nonNegative(endMinute - *subIn.Minute))
	case subOut != nil:
		if subOut.Minute == nil {
			return nil
		}
		return match.IntPtr(*subOut.Minute)
	default:
		if endMinute <= 0 {
			return nil
		}
		return match.IntPtr(endMinute)
	}
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func squadRole(hasLineup bool, hit lineupHit, hasEvents bool) match.SquadRole {
	switch {
	case hit.starting:
		return match.SquadStarting
	case hit.bench:
		return match.SquadBench
	case hasLineup && !hasEvents:
		return match.SquadAbsent
	default:
		return match.SquadUnknown
	}
}

func findInLineup(lineup *feed.TeamLineup, playerName string, matcher NameMatcher) lineupHit {
	if lineup == nil {
		return lineupHit{}
	}
	for _, p := range lineup.Starters {
		if matcher.Matches(p.Name, playerName) {
			return lineupHit{starting: true, rating: p.Rating}
		}
	}
	for _, p := range lineup.Bench {
		if matcher.Matches(p.Name, playerName) {
			return lineupHit{bench: true, rating: p.Rating}
		}
	}
	return lineupHit{}
}

func onSide(eventSide, side feed.Side) bool {
	return eventSide == "" || eventSide == side
}

func collectEvents(detail feed.MatchDetail, side feed.Side, playerName string, matcher NameMatcher) []match.Event {
	events := make([]match.Event, 0, 4)
	for _, g := range detail.Goals {
		if !onSide(g.Side, side) || g.OwnGoal {
			continue
		}
		if g.Scorer != "" && matcher.Matches(g.Scorer, playerName) {
			events = append(events, match.Event{Type: match.EventGoal, Minute: copyMinute(g.Minute)})
		}
		if g.Assist != "" && matcher.Matches(g.Assist, playerName) {
			events = append(events, match.Event{Type: match.EventAssist, Minute: copyMinute(g.Minute)})
		}
	}
	for _, s := range detail.Substitutions {
		if !onSide(s.Side, side) {
			continue
		}
		if s.PlayerIn != "" && matcher.Matches(s.PlayerIn, playerName) {
			events = append(events, match.Event{Type: match.EventSubIn, Minute: copyMinute(s.Minute)})
		}
		if s.PlayerOut != "" && matcher.Matches(s.PlayerOut, playerName) {
			events = append(events, match.Event{Type: match.EventSubOut, Minute: copyMinute(s.Minute)})
		}
	}
	for _, b := range detail.Bookings {
		if !onSide(b.Side, side) || b.Player == "" || !matcher.Matches(b.Player, playerName) {
			continue
		}
		eventType := match.EventYellow
		if b.Card == feed.CardRed || b.Card == feed.CardSecondYellow {
			eventType = match.EventRed
		}
		events = append(events, match.Event{Type: eventType, Minute: copyMinute(b.Minute)})
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].Minute, events[j].Minute
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return events
}

func copyMinute(v *int) *int {
	if v == nil {
		return nil
	}
	return match.IntPtr(*v)
}
