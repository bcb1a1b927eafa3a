package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
	"github.com/riskibarqy/matchwatch/internal/domain/roster"
)

const demoKickoffHour = 18

// DemoFeed is an offline fixture feed built from the roster. Teams of a league are paired off
// and play a week ago, today and in a week; status follows the injected clock.
type DemoFeed struct {
	feed.Unsupported

	now      func() time.Time
	fixtures []demoFixture
	byID     map[string]demoFixture
}

type demoFixture struct {
	id         string
	leagueID   int64
	league     string
	offsetDays int
	home, away roster.Team
	homeSquad  []string
	awaySquad  []string
}

func NewDemoFeed(r roster.Roster, now func() time.Time) *DemoFeed {
	if now == nil {
		now = time.Now
	}
	d := &DemoFeed{now: now, byID: make(map[string]demoFixture)}

	squads := make(map[string][]string)
	for _, p := range r.Players {
		squads[p.Team] = append(squads[p.Team], p.Name)
	}
	for _, l := range r.Leagues {
		var teams []roster.Team
		for _, t := range r.Teams {
			if t.League == l.ID {
				teams = append(teams, t)
			}
		}
		for i := 0; i+1 < len(teams); i += 2 {
			for _, offset := range []int{-7, 0, 7} {
				home, away := teams[i], teams[i+1]
				if offset < 0 {
					home, away = away, home
				}
				fx := demoFixture{
					id:         fmt.Sprintf("demo:%s-%d-%d", l.ID, i/2, offset),
					leagueID:   l.PrimaryLeagueID,
					league:     l.Name,
					offsetDays: offset,
					home:       home,
					away:       away,
					homeSquad:  squads[home.Name],
					awaySquad:  squads[away.Name],
				}
				d.fixtures = append(d.fixtures, fx)
				d.byID[fx.id] = fx
			}
		}
	}
	return d
}

func (d *DemoFeed) Name() string {
	return "demo"
}

func (d *DemoFeed) GetFixtures(_ context.Context, from, to time.Time, leagueIDs []int64) ([]feed.Fixture, error) {
	allowed := make(map[int64]struct{}, len(leagueIDs))
	for _, id := range leagueIDs {
		allowed[id] = struct{}{}
	}
	now := d.now()
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, to.Location())

	out := make([]feed.Fixture, 0, len(d.fixtures))
	for _, fx := range d.fixtures {
		if _, ok := allowed[fx.leagueID]; len(allowed) > 0 && !ok {
			continue
		}
		f := d.fixture(fx, now)
		if f.Kickoff.Before(start) || f.Kickoff.After(end) {
			continue
		}
		out = append(out, f)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Kickoff.Before(out[j].Kickoff) })
	return out, nil
}

func (d *DemoFeed) GetMatchDetail(_ context.Context, fixtureID string) (feed.MatchDetail, error) {
	fx, ok := d.byID[fixtureID]
	if !ok {
		return feed.MatchDetail{}, crerr.Wrapf(feed.ErrNotFound, "demo fixture %s", fixtureID)
	}
	fixture := d.fixture(fx, d.now())
	detail := feed.MatchDetail{Fixture: fixture, EndMinute: 90}
	if fixture.Status == match.StatusUpcoming {
		return detail, nil
	}
	if fixture.Minute != nil {
		detail.EndMinute = *fixture.Minute
	}

	detail.Home = demoLineup(fx.home.Name, fx.homeSquad)
	detail.Away = demoLineup(fx.away.Name, fx.awaySquad)
	elapsed := detail.EndMinute
	if len(fx.homeSquad) > 0 && elapsed >= 23 {
		detail.Goals = append(detail.Goals, feed.Goal{Scorer: fx.homeSquad[0], Minute: match.IntPtr(23), Side: feed.SideHome})
	}
	if len(fx.awaySquad) > 1 && elapsed >= 65 {
		detail.Substitutions = append(detail.Substitutions, feed.Substitution{
			PlayerIn:  fx.awaySquad[len(fx.awaySquad)-1],
			PlayerOut: fx.awaySquad[0],
			Minute:    match.IntPtr(65),
			Side:      feed.SideAway,
		})
	}
	return detail, nil
}

// demoLineup starts everyone but the last squad member, who sits on the bench.
func demoLineup(team string, squad []string) *feed.TeamLineup {
	lineup := &feed.TeamLineup{Team: team}
	for i, name := range squad {
		if i == len(squad)-1 && len(squad) > 1 {
			lineup.Bench = append(lineup.Bench, feed.LineupPlayer{Name: name})
			continue
		}
		lineup.Starters = append(lineup.Starters, feed.LineupPlayer{Name: name, Rating: match.FloatPtr(6.5 + float64(i)*0.4)})
	}
	return lineup
}

func (d *DemoFeed) fixture(fx demoFixture, now time.Time) feed.Fixture {
	day := now.UTC().AddDate(0, 0, fx.offsetDays)
	kickoff := time.Date(day.Year(), day.Month(), day.Day(), demoKickoffHour, 0, 0, 0, time.UTC)

	f := feed.Fixture{
		ID:          fx.id,
		LeagueID:    fx.leagueID,
		Competition: fx.league,
		Kickoff:     kickoff,
		HomeTeam:    fx.home.Name,
		AwayTeam:    fx.away.Name,
		HomeTeamID:  fx.home.PrimaryID,
		AwayTeamID:  fx.away.PrimaryID,
		Status:      match.StatusUpcoming,
	}

	elapsed := int(now.Sub(kickoff).Minutes())
	switch {
	case elapsed < 0:
		return f
	case elapsed < 105:
		minute := min(max(elapsed-15*(elapsed/60), 1), 90)
		f.Status = match.StatusLive
		f.Minute = match.IntPtr(minute)
	default:
		f.Status = match.StatusFinished
	}

	homeGoals, awayGoals := 0, 0
	played := 90
	if f.Minute != nil {
		played = *f.Minute
	}
	if played >= 23 && len(fx.homeSquad) > 0 {
		homeGoals = 1
	}
	f.HomeScore, f.AwayScore = match.IntPtr(homeGoals), match.IntPtr(awayGoals)
	return f
}
