package fotmob

type teamPayload struct {
	Details  teamDetails  `json:"details"`
	Overview teamOverview `json:"overview"`
}

type teamDetails struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type teamOverview struct {
	NextMatch       *overviewMatch   `json:"nextMatch"`
	LastMatch       *overviewMatch   `json:"lastMatch"`
	LastLineupStats *lineupStatsItem `json:"lastLineupStats"`
}

type overviewMatch struct {
	ID         int64       `json:"id"`
	Home       matchTeam   `json:"home"`
	Away       matchTeam   `json:"away"`
	Status     matchStatus `json:"status"`
	Tournament struct {
		Name string `json:"name"`
	} `json:"tournament"`
}

type matchTeam struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score *int   `json:"score"`
}

type matchStatus struct {
	UTCTime   string `json:"utcTime"`
	Started   bool   `json:"started"`
	Finished  bool   `json:"finished"`
	Cancelled bool   `json:"cancelled"`
	Reason    struct {
		Short string `json:"short"`
		Long  string `json:"long"`
	} `json:"reason"`
	LiveTime struct {
		Short string `json:"short"`
	} `json:"liveTime"`
}

type lineupStatsItem struct {
	MatchID  int64             `json:"matchId"`
	TeamID   int64             `json:"teamId"`
	TeamName string            `json:"teamName"`
	Starters []lineupPlayerRow `json:"starters"`
	Subs     []lineupPlayerRow `json:"subs"`
}

type lineupPlayerRow struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Performance playerPerformance `json:"performance"`
}

type playerPerformance struct {
	Rating             any                `json:"rating"`
	Events             []performanceEvent `json:"events"`
	SubstitutionEvents []performanceEvent `json:"substitutionEvents"`
}

type performanceEvent struct {
	Type string `json:"type"`
	Time *int   `json:"time"`
}

type matchDetailsPayload struct {
	General struct {
		MatchID          any    `json:"matchId"`
		LeagueName       string `json:"leagueName"`
		MatchTimeUTCDate string `json:"matchTimeUTCDate"`
	} `json:"general"`
	Header struct {
		Teams  []matchTeam `json:"teams"`
		Status matchStatus `json:"status"`
	} `json:"header"`
	Content struct {
		MatchFacts struct {
			Events struct {
				Events []matchFactEvent `json:"events"`
			} `json:"events"`
		} `json:"matchFacts"`
		Lineup struct {
			HomeTeam *lineupTeam `json:"homeTeam"`
			AwayTeam *lineupTeam `json:"awayTeam"`
		} `json:"lineup"`
	} `json:"content"`
}

type matchFactEvent struct {
	Type         string `json:"type"`
	Time         *int   `json:"time"`
	OverloadTime *int   `json:"overloadTime"`
	IsHome       bool   `json:"isHome"`
	OwnGoal      bool   `json:"ownGoal"`
	Card         string `json:"card"`
	Player       struct {
		Name string `json:"name"`
	} `json:"player"`
	AssistInput string `json:"assistInput"`
	Swap        []struct {
		Name string `json:"name"`
	} `json:"swap"`
}

type lineupTeam struct {
	Name     string            `json:"name"`
	Starters []lineupPlayerRow `json:"starters"`
	Subs     []lineupPlayerRow `json:"subs"`
}

type playerPayload struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	RecentMatches []recentMatchEntry `json:"recentMatches"`
}

type recentMatchEntry struct {
	ID               int64  `json:"id"`
	TeamName         string `json:"teamName"`
	OpponentTeamName string `json:"opponentTeamName"`
	IsHomeTeam       bool   `json:"isHomeTeam"`
	HomeScore        *int   `json:"homeScore"`
	AwayScore        *int   `json:"awayScore"`
	LeagueName       string `json:"leagueName"`
	MatchDate        struct {
		UTCTime string `json:"utcTime"`
	} `json:"matchDate"`
	MinutesPlayed *int `json:"minutesPlayed"`
	OnBench       bool `json:"onBench"`
	Rating        struct {
		Num any `json:"num"`
	} `json:"ratingProps"`
	Goals       int `json:"goals"`
	Assists     int `json:"assists"`
	YellowCards int `json:"yellowCards"`
	RedCards    int `json:"redCards"`
}

type nextDataDocument struct {
	Props struct {
		PageProps matchDetailsPayload `json:"pageProps"`
	} `json:"props"`
}
