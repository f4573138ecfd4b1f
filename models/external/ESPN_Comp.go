package external

import "strconv"

type ESPN_Comp struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	NeutralSite bool              `json:"neutralSite"`
	Competitors []ESPN_Competitor `json:"competitors"`
	Status      ESPN_Status       `json:"status"`
	Broadcast   string            `json:"broadcast"`
	Odds        []ESPN_Odds       `json:"odds"`
}

type ESPN_Competitor struct {
	ID       string    `json:"id"`
	HomeAway string    `json:"homeAway"`
	Team     ESPN_Team `json:"team"`
	Score    string    `json:"score"`
	Winner   bool      `json:"winner"`
	Records  []struct {
		Name    string `json:"name"`
		Type    string `json:"type"`
		Summary string `json:"summary"`
	} `json:"records"`
}

// Points parses the competitor's score; an empty or malformed score is 0.
func (c ESPN_Competitor) Points() int {
	p, err := strconv.Atoi(c.Score)
	if err != nil {
		return 0
	}
	return p
}
