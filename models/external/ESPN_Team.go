package external

// ESPN_Team is the team block of a scoreboard competitor. The abbreviation
// and logo are passed through to API clients.
type ESPN_Team struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
	Logo         string `json:"logo"`
}
