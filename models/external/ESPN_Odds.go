package external

// ESPN_Odds is the single line embedded in a scoreboard competition.
type ESPN_Odds struct {
	Provider struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Priority int    `json:"priority"`
	} `json:"provider"`
	Details      string        `json:"details"`
	OverUnder    float64       `json:"overUnder"`
	Spread       float64       `json:"spread"`
	OverOdds     int           `json:"overOdds"`
	UnderOdds    int           `json:"underOdds"`
	AwayTeamOdds ESPN_TeamOdds `json:"awayTeamOdds"`
	HomeTeamOdds ESPN_TeamOdds `json:"homeTeamOdds"`
}

type ESPN_TeamOdds struct {
	Favorite   bool `json:"favorite"`
	Underdog   bool `json:"underdog"`
	MoneyLine  int  `json:"moneyLine"`
	SpreadOdds int  `json:"spreadOdds"`
}
