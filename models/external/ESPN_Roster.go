package external

type ESPN_Roster struct {
	Team     ESPN_Team      `json:"team"`
	Athletes []ESPN_Athlete `json:"athletes"`
}

// ESPN_Athlete is either an athlete or, for football rosters, a position
// group whose athletes are in Items.
type ESPN_Athlete struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Jersey   string `json:"jersey"`
	Position struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"position"`
	Items []ESPN_Athlete `json:"items"`
}

// Players flattens grouped and ungrouped roster shapes.
func (r ESPN_Roster) Players() []ESPN_Athlete {
	var out []ESPN_Athlete
	for _, a := range r.Athletes {
		if len(a.Items) > 0 {
			out = append(out, a.Items...)
			continue
		}
		out = append(out, a)
	}
	return out
}
