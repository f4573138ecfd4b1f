package external

// ESPN_Scoreboard is the body of a site.api scoreboard request; only the
// events are read.
type ESPN_Scoreboard struct {
	Events []ESPN_Event `json:"events"`
}
