package fotmob

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/identity"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

var liveMinuteRegex = regexp.MustCompile(`^(\d+)(?:\+(\d+))?`)

func fixtureID(id int64) string {
	return idPrefix + strconv.FormatInt(id, 10)
}

func mapStatus(status matchStatus) match.Status {
	reason := strings.ToLower(strings.TrimSpace(status.Reason.Short))
	switch {
	case reason == "pp" || strings.Contains(reason, "postpon"):
		return match.StatusPostponed
	case reason == "ab" || strings.Contains(reason, "abandon") || status.Cancelled:
		return match.StatusCancelled
	case reason == "int" || strings.Contains(reason, "susp") || strings.Contains(reason, "interrupt"):
		return match.StatusSuspended
	case status.Finished:
		return match.StatusFinished
	case status.Started:
		return match.StatusLive
	default:
		return match.StatusUpcoming
	}
}

// parseLiveMinute reads "67'" or "45+2'" as a minute count.
func parseLiveMinute(raw string) *int {
	m := liveMinuteRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil
	}
	minute, _ := strconv.Atoi(m[1])
	if m[2] != "" {
		extra, _ := strconv.Atoi(m[2])
		minute += extra
	}
	return match.IntPtr(minute)
}

func parseUTCTime(raw string) time.Time {
	value := strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "Mon, Jan 2, 2006, 15:04 MST"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func parseRating(value any) *float64 {
	var rating float64
	switch typed := value.(type) {
	case float64:
		rating = typed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return nil
		}
		rating = parsed
	case map[string]any:
		return parseRating(typed["num"])
	default:
		return nil
	}
	if rating <= 0 {
		return nil
	}
	return match.FloatPtr(rating)
}

func mapOverviewMatch(m *overviewMatch) *feed.Fixture {
	if m == nil || m.ID <= 0 {
		return nil
	}
	fixture := feed.Fixture{
		ID:          fixtureID(m.ID),
		ExternalID:  m.ID,
		Competition: strings.TrimSpace(m.Tournament.Name),
		Kickoff:     parseUTCTime(m.Status.UTCTime),
		HomeTeam:    strings.TrimSpace(m.Home.Name),
		AwayTeam:    strings.TrimSpace(m.Away.Name),
		HomeTeamID:  m.Home.ID,
		AwayTeamID:  m.Away.ID,
		HomeScore:   m.Home.Score,
		AwayScore:   m.Away.Score,
		Status:      mapStatus(m.Status),
	}
	if fixture.Status.IsLive() {
		fixture.Minute = parseLiveMinute(m.Status.LiveTime.Short)
	}
	return &fixture
}

func mapTeamOverview(teamID int64, payload teamPayload) feed.TeamOverview {
	out := feed.TeamOverview{
		TeamID:    teamID,
		TeamName:  strings.TrimSpace(payload.Details.Name),
		NextMatch: mapOverviewMatch(payload.Overview.NextMatch),
		LastMatch: mapOverviewMatch(payload.Overview.LastMatch),
	}
	if stats := payload.Overview.LastLineupStats; stats != nil && (len(stats.Starters) > 0 || len(stats.Subs) > 0) {
		snapshot := mapLineupSnapshot(*stats)
		if snapshot.Team == "" {
			snapshot.Team = out.TeamName
		}
		if last := out.LastMatch; last != nil && (snapshot.FixtureID == "" || snapshot.FixtureID == last.ID) {
			snapshot.Kickoff = last.Kickoff
			snapshot.Opponent = opponentOf(*last, out.TeamName)
		}
		out.LastLineup = &snapshot
	}
	return out
}

func opponentOf(f feed.Fixture, team string) string {
	isHome, ok := identity.ResolveSide(f.HomeTeam, f.AwayTeam, team)
	switch {
	case !ok:
		return ""
	case isHome:
		return f.AwayTeam
	default:
		return f.HomeTeam
	}
}

// mapLineupSnapshot flattens per-player performance events into team-level event lists.
// GoalCount counts the team's own scorers so it can be checked against the overview score.
func mapLineupSnapshot(stats lineupStatsItem) feed.LineupSnapshot {
	snapshot := feed.LineupSnapshot{
		Team: strings.TrimSpace(stats.TeamName),
		Lineup: feed.TeamLineup{
			Team: strings.TrimSpace(stats.TeamName),
		},
	}
	if stats.MatchID > 0 {
		snapshot.FixtureID = fixtureID(stats.MatchID)
	}

	collect := func(row lineupPlayerRow) feed.LineupPlayer {
		name := strings.TrimSpace(row.Name)
		for _, ev := range row.Performance.Events {
			switch strings.ToLower(ev.Type) {
			case "goal":
				snapshot.Goals = append(snapshot.Goals, feed.Goal{Scorer: name, Minute: ev.Time})
				snapshot.GoalCount++
			case "assist":
				snapshot.Goals = append(snapshot.Goals, feed.Goal{Assist: name, Minute: ev.Time})
			case "yellowcard":
				snapshot.Bookings = append(snapshot.Bookings, feed.Booking{Player: name, Card: feed.CardYellow, Minute: ev.Time})
			case "redcard":
				snapshot.Bookings = append(snapshot.Bookings, feed.Booking{Player: name, Card: feed.CardRed, Minute: ev.Time})
			}
		}
		for _, ev := range row.Performance.SubstitutionEvents {
			switch strings.ToLower(ev.Type) {
			case "subin":
				snapshot.Substitutions = append(snapshot.Substitutions, feed.Substitution{PlayerIn: name, Minute: ev.Time})
			case "subout":
				snapshot.Substitutions = append(snapshot.Substitutions, feed.Substitution{PlayerOut: name, Minute: ev.Time})
			}
		}
		return feed.LineupPlayer{Name: name, Rating: parseRating(row.Performance.Rating)}
	}

	for _, row := range stats.Starters {
		snapshot.Lineup.Starters = append(snapshot.Lineup.Starters, collect(row))
	}
	for _, row := range stats.Subs {
		snapshot.Lineup.Bench = append(snapshot.Lineup.Bench, collect(row))
	}
	return snapshot
}

func mapMatchDetail(payload matchDetailsPayload) feed.MatchDetail {
	fixture := feed.Fixture{
		Competition: strings.TrimSpace(payload.General.LeagueName),
		Kickoff:     parseUTCTime(payload.General.MatchTimeUTCDate),
		Status:      mapStatus(payload.Header.Status),
	}
	if id := anyToInt64(payload.General.MatchID); id > 0 {
		fixture.ID = fixtureID(id)
		fixture.ExternalID = id
	}
	if fixture.Kickoff.IsZero() {
		fixture.Kickoff = parseUTCTime(payload.Header.Status.UTCTime)
	}
	if len(payload.Header.Teams) == 2 {
		home, away := payload.Header.Teams[0], payload.Header.Teams[1]
		fixture.HomeTeam, fixture.AwayTeam = strings.TrimSpace(home.Name), strings.TrimSpace(away.Name)
		fixture.HomeTeamID, fixture.AwayTeamID = home.ID, away.ID
		fixture.HomeScore, fixture.AwayScore = home.Score, away.Score
	}
	if fixture.Status.IsLive() {
		fixture.Minute = parseLiveMinute(payload.Header.Status.LiveTime.Short)
	}

	detail := feed.MatchDetail{Fixture: fixture, EndMinute: detailEndMinute(fixture, payload.Header.Status)}
	for _, ev := range payload.Content.MatchFacts.Events.Events {
		side := feed.SideAway
		if ev.IsHome {
			side = feed.SideHome
		}
		minute := ev.Time
		if minute != nil && ev.OverloadTime != nil {
			minute = match.IntPtr(*minute + *ev.OverloadTime)
		}
		switch strings.ToLower(ev.Type) {
		case "goal":
			detail.Goals = append(detail.Goals, feed.Goal{
				Scorer:  strings.TrimSpace(ev.Player.Name),
				Assist:  assistName(ev.AssistInput),
				Minute:  minute,
				OwnGoal: ev.OwnGoal,
				Side:    side,
			})
		case "substitution":
			if len(ev.Swap) < 2 {
				continue
			}
			detail.Substitutions = append(detail.Substitutions, feed.Substitution{
				PlayerIn:  strings.TrimSpace(ev.Swap[0].Name),
				PlayerOut: strings.TrimSpace(ev.Swap[1].Name),
				Minute:    minute,
				Side:      side,
			})
		case "card":
			card := feed.CardYellow
			switch strings.ToLower(ev.Card) {
			case "red":
				card = feed.CardRed
			case "yellowred":
				card = feed.CardSecondYellow
			}
			detail.Bookings = append(detail.Bookings, feed.Booking{Player: strings.TrimSpace(ev.Player.Name), Card: card, Minute: minute, Side: side})
		}
	}
	detail.Home = mapLineupTeam(payload.Content.Lineup.HomeTeam)
	detail.Away = mapLineupTeam(payload.Content.Lineup.AwayTeam)
	return detail
}

// assistName strips the "assist by " prefix the feed prepends.
func assistName(raw string) string {
	value := strings.TrimSpace(raw)
	if i := strings.Index(strings.ToLower(value), "assist by "); i >= 0 {
		value = value[i+len("assist by "):]
	}
	return strings.TrimSpace(value)
}

func mapLineupTeam(team *lineupTeam) *feed.TeamLineup {
	if team == nil {
		return nil
	}
	out := &feed.TeamLineup{Team: strings.TrimSpace(team.Name)}
	for _, row := range team.Starters {
		out.Starters = append(out.Starters, feed.LineupPlayer{Name: strings.TrimSpace(row.Name), Rating: parseRating(row.Performance.Rating)})
	}
	for _, row := range team.Subs {
		out.Bench = append(out.Bench, feed.LineupPlayer{Name: strings.TrimSpace(row.Name), Rating: parseRating(row.Performance.Rating)})
	}
	return out
}

func detailEndMinute(fixture feed.Fixture, status matchStatus) int {
	if fixture.Status.IsLive() {
		if fixture.Minute != nil {
			return *fixture.Minute
		}
		return 0
	}
	switch strings.ToLower(strings.TrimSpace(status.Reason.Short)) {
	case "aet", "pen":
		return 120
	}
	return 90
}

func mapRecentMatches(entries []recentMatchEntry) []feed.PlayerMatch {
	out := make([]feed.PlayerMatch, 0, len(entries))
	for _, entry := range entries {
		if entry.ID <= 0 {
			continue
		}
		fixture := feed.Fixture{
			ID:          fixtureID(entry.ID),
			ExternalID:  entry.ID,
			Competition: strings.TrimSpace(entry.LeagueName),
			Kickoff:     parseUTCTime(entry.MatchDate.UTCTime),
			HomeScore:   entry.HomeScore,
			AwayScore:   entry.AwayScore,
			Status:      match.StatusFinished,
		}
		if entry.IsHomeTeam {
			fixture.HomeTeam, fixture.AwayTeam = entry.TeamName, entry.OpponentTeamName
		} else {
			fixture.HomeTeam, fixture.AwayTeam = entry.OpponentTeamName, entry.TeamName
		}

		pm := feed.PlayerMatch{
			Fixture:       fixture,
			Team:          strings.TrimSpace(entry.TeamName),
			OnBench:       entry.OnBench,
			MinutesPlayed: entry.MinutesPlayed,
			Rating:        parseRating(entry.Rating.Num),
		}
		switch {
		case entry.MinutesPlayed != nil && *entry.MinutesPlayed > 0:
			pm.Participated = match.True
		case entry.MinutesPlayed != nil:
			pm.Participated = match.False
			pm.Started = match.False
		}
		pm.Events = appendCounted(pm.Events, match.EventGoal, entry.Goals)
		pm.Events = appendCounted(pm.Events, match.EventAssist, entry.Assists)
		pm.Events = appendCounted(pm.Events, match.EventYellow, entry.YellowCards)
		pm.Events = appendCounted(pm.Events, match.EventRed, entry.RedCards)
		out = append(out, pm)
	}
	return out
}

// appendCounted adds n events of type t; the history only carries totals, so minutes are unknown.
func appendCounted(events []match.Event, t match.EventType, n int) []match.Event {
	for i := 0; i < n; i++ {
		events = append(events, match.Event{Type: t})
	}
	return events
}

func anyToInt64(value any) int64 {
	switch typed := value.(type) {
	case float64:
		return int64(typed)
	case int64:
		return typed
	case string:
		parsed, _ := strconv.ParseInt(strings.TrimSpace(typed), 10, 64)
		return parsed
	default:
		return 0
	}
}
