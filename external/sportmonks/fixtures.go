package sportmonks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

const (
	includeFixtureLite   = "participants;scores;state;league"
	includeFixtureDetail = "participants;scores;state;league;periods;events;lineups.details"
	idPrefix             = feedName + ":"
)

// GetFixtures lists fixtures whose kickoff falls between from and to (inclusive dates, UTC).
func (c *Client) GetFixtures(ctx context.Context, from, to time.Time, leagueIDs []int64) ([]feed.Fixture, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("fixture range end %s is before start %s", to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	path := fmt.Sprintf("/fixtures/between/%s/%s", from.UTC().Format(time.DateOnly), to.UTC().Format(time.DateOnly))
	query := map[string]string{
		"include":  includeFixtureLite,
		"per_page": "50",
	}
	if len(leagueIDs) > 0 {
		ids := make([]string, 0, len(leagueIDs))
		for _, id := range leagueIDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		query["filters"] = "fixtureLeagues:" + strings.Join(ids, ",")
	}

	out := make([]feed.Fixture, 0, 32)
	for page := 1; page <= maxPages; page++ {
		query["page"] = strconv.Itoa(page)

		var envelope fixturesEnvelope
		if _, err := c.doJSON(ctx, path, query, &envelope); err != nil {
			if crerr.Is(err, feed.ErrNotFound) {
				// the between endpoint answers 404 for an empty range
				break
			}
			return nil, fmt.Errorf("fetch fixtures %s page=%d: %w", path, page, err)
		}
		for _, item := range envelope.Data {
			if item.ID <= 0 {
				continue
			}
			out = append(out, mapFixture(item))
		}
		if !envelope.Pagination.HasMore {
			break
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Kickoff.Equal(out[j].Kickoff) {
			return out[i].Kickoff.Before(out[j].Kickoff)
		}
		return out[i].ExternalID < out[j].ExternalID
	})
	return out, nil
}

// GetMatchDetail returns goals, substitutions, bookings and lineups of one fixture.
func (c *Client) GetMatchDetail(ctx context.Context, fixtureID string) (feed.MatchDetail, error) {
	externalID, ok := parseFixtureID(fixtureID)
	if !ok {
		return feed.MatchDetail{}, crerr.Wrapf(feed.ErrUnsupported, "fixture id %q", fixtureID)
	}

	path := fmt.Sprintf("/fixtures/%d", externalID)
	query := map[string]string{"include": includeFixtureDetail}

	var envelope fixtureEnvelope
	if _, err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return feed.MatchDetail{}, fmt.Errorf("fetch fixture detail fixture_id=%d: %w", externalID, err)
	}
	return mapMatchDetail(envelope.Data), nil
}

func parseFixtureID(fixtureID string) (int64, bool) {
	raw := strings.TrimSpace(fixtureID)
	if strings.Contains(raw, ":") {
		if !strings.HasPrefix(raw, idPrefix) {
			return 0, false
		}
		raw = strings.TrimPrefix(raw, idPrefix)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func mapFixture(item fixtureItem) feed.Fixture {
	homeName, awayName, homeID, awayID := resolveFixtureParticipants(item.Participants)
	homeScore, awayScore := resolveFixtureScores(item.Scores, item.Participants)
	status := mapFixtureStatus(item.StateID, item.ResultInfo)

	fixture := feed.Fixture{
		ID:          idPrefix + strconv.FormatInt(item.ID, 10),
		ExternalID:  item.ID,
		LeagueID:    item.LeagueID,
		HomeTeam:    homeName,
		AwayTeam:    awayName,
		HomeTeamID:  homeID,
		AwayTeamID:  awayID,
		HomeScore:   homeScore,
		AwayScore:   awayScore,
		Status:      status,
		Competition: strings.TrimSpace(item.League.Data.Name),
	}
	if parsed := parseProviderDateTime(item.StartingAt); parsed != nil {
		fixture.Kickoff = *parsed
	}
	if status.IsLive() {
		fixture.Minute = liveMinute(item)
	}
	return fixture
}

func mapMatchDetail(item fixtureItem) feed.MatchDetail {
	fixture := mapFixture(item)
	detail := feed.MatchDetail{
		Fixture:   fixture,
		EndMinute: endMinute(item, fixture),
	}

	sideOf := func(teamID int64) feed.Side {
		switch {
		case teamID > 0 && teamID == fixture.HomeTeamID:
			return feed.SideHome
		case teamID > 0 && teamID == fixture.AwayTeamID:
			return feed.SideAway
		default:
			return ""
		}
	}

	events := append([]fixtureEventItem(nil), item.Events...)
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].SortOrder != events[j].SortOrder {
			return events[i].SortOrder < events[j].SortOrder
		}
		return events[i].ID < events[j].ID
	})
	for _, ev := range events {
		side := sideOf(ev.ParticipantID)
		minute := eventMinute(ev)
		switch ev.TypeID {
		case eventTypeGoal, eventTypePenalty:
			detail.Goals = append(detail.Goals, feed.Goal{
				Scorer: strings.TrimSpace(ev.PlayerName),
				Assist: strings.TrimSpace(ev.RelatedPlayerName),
				Minute: minute,
				Side:   side,
			})
		case eventTypeOwnGoal:
			detail.Goals = append(detail.Goals, feed.Goal{
				Scorer:  strings.TrimSpace(ev.PlayerName),
				Minute:  minute,
				OwnGoal: true,
				Side:    side,
			})
		case eventTypeSubstitution:
			detail.Substitutions = append(detail.Substitutions, feed.Substitution{
				PlayerIn:  strings.TrimSpace(ev.PlayerName),
				PlayerOut: strings.TrimSpace(ev.RelatedPlayerName),
				Minute:    minute,
				Side:      side,
			})
		case eventTypeYellow:
			detail.Bookings = append(detail.Bookings, feed.Booking{Player: strings.TrimSpace(ev.PlayerName), Card: feed.CardYellow, Minute: minute, Side: side})
		case eventTypeRed:
			detail.Bookings = append(detail.Bookings, feed.Booking{Player: strings.TrimSpace(ev.PlayerName), Card: feed.CardRed, Minute: minute, Side: side})
		case eventTypeYellowRed:
			detail.Bookings = append(detail.Bookings, feed.Booking{Player: strings.TrimSpace(ev.PlayerName), Card: feed.CardSecondYellow, Minute: minute, Side: side})
		}
	}

	for _, row := range item.Lineups {
		name := strings.TrimSpace(row.PlayerName)
		if name == "" {
			continue
		}
		var lineup **feed.TeamLineup
		switch sideOf(row.TeamID) {
		case feed.SideHome:
			lineup = &detail.Home
		case feed.SideAway:
			lineup = &detail.Away
		default:
			continue
		}
		if *lineup == nil {
			*lineup = &feed.TeamLineup{Team: fixture.TeamName(sideOf(row.TeamID))}
		}
		player := feed.LineupPlayer{Name: name, Rating: lineupRating(row.Details)}
		switch row.TypeID {
		case lineupTypeStarting:
			(*lineup).Starters = append((*lineup).Starters, player)
		case lineupTypeBench:
			(*lineup).Bench = append((*lineup).Bench, player)
		}
	}

	return detail
}

func eventMinute(ev fixtureEventItem) *int {
	if ev.Minute == nil {
		return nil
	}
	minute := *ev.Minute
	if ev.ExtraMinute != nil {
		minute += *ev.ExtraMinute
	}
	return match.IntPtr(minute)
}

func lineupRating(details []lineupDetailItem) *float64 {
	for _, d := range details {
		if d.TypeID != detailTypeRating {
			continue
		}
		if value := d.numericValue(); value > 0 {
			return match.FloatPtr(value)
		}
	}
	return nil
}

func liveMinute(item fixtureItem) *int {
	for _, p := range item.Periods {
		if p.Ticking && p.Minutes > 0 {
			return match.IntPtr(p.Minutes)
		}
	}
	return nil
}

// endMinute is the regulation length for a finished fixture and the running minute while live.
func endMinute(item fixtureItem, fixture feed.Fixture) int {
	if fixture.Status.IsLive() {
		if fixture.Minute != nil {
			return *fixture.Minute
		}
		latest := 0
		for _, ev := range item.Events {
			if m := eventMinute(ev); m != nil && *m > latest {
				latest = *m
			}
		}
		return latest
	}
	length := item.Length
	if length <= 0 {
		length = 90
	}
	if (item.StateID == 7 || item.StateID == 8) && length < 120 {
		length = 120
	}
	return length
}

func parseProviderDateTime(raw string) *time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}

	layouts := []string{
		time.DateTime,
		time.RFC3339,
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			v := parsed.UTC()
			return &v
		}
	}
	return nil
}

func resolveFixtureParticipants(participants []fixtureParticipant) (string, string, int64, int64) {
	var homeName, awayName string
	var homeID, awayID int64
	for _, item := range participants {
		switch item.location() {
		case "home":
			homeName = strings.TrimSpace(item.Name)
			homeID = item.ID
		case "away":
			awayName = strings.TrimSpace(item.Name)
			awayID = item.ID
		}
	}
	return homeName, awayName, homeID, awayID
}

func resolveFixtureScores(scores []fixtureScoreItem, participants []fixtureParticipant) (*int, *int) {
	if len(scores) == 0 {
		return nil, nil
	}

	var homeParticipantID, awayParticipantID int64
	for _, item := range participants {
		switch item.location() {
		case "home":
			homeParticipantID = item.ID
		case "away":
			awayParticipantID = item.ID
		}
	}

	bestWeight := 0
	homeValues := map[int]int{}
	awayValues := map[int]int{}
	for _, score := range scores {
		value, ok := score.numericScore()
		if !ok {
			continue
		}

		weight := scoreDescriptionWeight(score.Description)
		if weight > bestWeight {
			bestWeight = weight
			homeValues = map[int]int{}
			awayValues = map[int]int{}
		}
		if weight < bestWeight {
			continue
		}

		if score.ParticipantID == homeParticipantID && homeParticipantID > 0 {
			homeValues[weight] = value
		}
		if score.ParticipantID == awayParticipantID && awayParticipantID > 0 {
			awayValues[weight] = value
		}
	}

	var home, away *int
	if value, ok := homeValues[bestWeight]; ok {
		home = match.IntPtr(value)
	}
	if value, ok := awayValues[bestWeight]; ok {
		away = match.IntPtr(value)
	}
	return home, away
}

func scoreDescriptionWeight(raw string) int {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case value == "current":
		return 6
	case strings.Contains(value, "normal_time"), strings.Contains(value, "90"):
		return 5
	case strings.Contains(value, "extra_time"):
		return 4
	case strings.Contains(value, "penalt"):
		return 3
	case value == "1st_half", value == "2nd_half":
		return 2
	default:
		return 1
	}
}

func mapFixtureStatus(stateID int64, resultInfo string) match.Status {
	switch stateID {
	case 2, 3, 4, 6, 9, 21, 22, 25:
		return match.StatusLive
	case 5, 7, 8, 14, 17:
		return match.StatusFinished
	case 10:
		return match.StatusPostponed
	case 11, 18:
		return match.StatusSuspended
	case 12, 15, 20:
		return match.StatusCancelled
	case 1, 13, 16, 26:
		return match.StatusUpcoming
	}
	return match.NormalizeStatus(resultInfo)
}
