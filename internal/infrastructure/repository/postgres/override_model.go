package postgres

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/matchwatch/internal/domain/feed"
	"github.com/riskibarqy/matchwatch/internal/domain/match"
)

type overrideTableModel struct {
	ID            int64           `db:"id"`
	PlayerID      string          `db:"player_id"`
	FixtureID     string          `db:"fixture_id"`
	KickoffAt     time.Time       `db:"kickoff_at"`
	Competition   string          `db:"competition"`
	HomeTeam      string          `db:"home_team"`
	AwayTeam      string          `db:"away_team"`
	HomeScore     sql.NullInt64   `db:"home_score"`
	AwayScore     sql.NullInt64   `db:"away_score"`
	Status        string          `db:"status"`
	Team          string          `db:"team"`
	Participated  sql.NullBool    `db:"participated"`
	Started       sql.NullBool    `db:"started"`
	OnBench       bool            `db:"on_bench"`
	MinutesPlayed sql.NullInt64   `db:"minutes_played"`
	Rating        sql.NullFloat64 `db:"rating"`
	Events        []byte          `db:"events"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

type overrideEventModel struct {
	Type   string `json:"type"`
	Minute *int   `json:"minute"`
}

func triToNull(t match.Tri) sql.NullBool {
	v, known := t.Bool()
	return sql.NullBool{Bool: v, Valid: known}
}

func nullToTri(v sql.NullBool) match.Tri {
	if !v.Valid {
		return match.Unknown
	}
	return match.TriOf(v.Bool)
}

func overrideRow(playerID string, m feed.PlayerMatch) (overrideTableModel, error) {
	events := make([]overrideEventModel, 0, len(m.Events))
	for _, ev := range m.Events {
		events = append(events, overrideEventModel{Type: string(ev.Type), Minute: ev.Minute})
	}
	payload, err := sonic.Marshal(events)
	if err != nil {
		return overrideTableModel{}, fmt.Errorf("encode override events: %w", err)
	}

	status := m.Fixture.Status
	if status == "" {
		status = match.StatusFinished
	}
	return overrideTableModel{
		PlayerID:      playerID,
		FixtureID:     m.Fixture.ID,
		KickoffAt:     m.Fixture.Kickoff.UTC(),
		Competition:   m.Fixture.Competition,
		HomeTeam:      m.Fixture.HomeTeam,
		AwayTeam:      m.Fixture.AwayTeam,
		HomeScore:     nullInt(m.Fixture.HomeScore),
		AwayScore:     nullInt(m.Fixture.AwayScore),
		Status:        string(status),
		Team:          m.Team,
		Participated:  triToNull(m.Participated),
		Started:       triToNull(m.Started),
		OnBench:       m.OnBench,
		MinutesPlayed: nullInt(m.MinutesPlayed),
		Rating:        nullFloat(m.Rating),
		Events:        payload,
	}, nil
}

func (row overrideTableModel) playerMatch() (feed.PlayerMatch, error) {
	var events []overrideEventModel
	if len(row.Events) > 0 {
		if err := sonic.Unmarshal(row.Events, &events); err != nil {
			return feed.PlayerMatch{}, fmt.Errorf("decode events of override %d: %w", row.ID, err)
		}
	}
	out := make([]match.Event, 0, len(events))
	for _, ev := range events {
		out = append(out, match.Event{Type: match.EventType(ev.Type), Minute: ev.Minute})
	}

	return feed.PlayerMatch{
		Fixture: feed.Fixture{
			ID:          row.FixtureID,
			Competition: row.Competition,
			Kickoff:     row.KickoffAt.UTC(),
			HomeTeam:    row.HomeTeam,
			AwayTeam:    row.AwayTeam,
			HomeScore:   nullIntToPtr(row.HomeScore),
			AwayScore:   nullIntToPtr(row.AwayScore),
			Status:      match.NormalizeStatus(row.Status),
		},
		Team:          row.Team,
		Participated:  nullToTri(row.Participated),
		Started:       nullToTri(row.Started),
		OnBench:       row.OnBench,
		MinutesPlayed: nullIntToPtr(row.MinutesPlayed),
		Rating:        nullFloatToPtr(row.Rating),
		Events:        out,
	}, nil
}
