package messageService

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"picksBot/services/store"
)

var medals = []string{"🥇", "🥈", "🥉"}

// LeaderboardEmbed lists pick records, best first.
func LeaderboardEmbed(standings []store.Standing) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🏆 Leaderboard",
		Color: colorWon,
	}
	if len(standings) == 0 {
		embed.Description = "No settled picks yet."
		return embed
	}

	var b strings.Builder
	for idx, st := range standings {
		rank := fmt.Sprintf("**%d.**", idx+1)
		if idx < len(medals) {
			rank = medals[idx]
		}
		settled := st.Won + st.Lost
		pct := 0.0
		if settled > 0 {
			pct = float64(st.Won) / float64(settled) * 100
		}
		fmt.Fprintf(&b, "%s **%s** %d-%d (%.0f%%)\n", rank, st.User.DisplayName(), st.Won, st.Lost, pct)
	}
	embed.Description = b.String()
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Record of settled pick posts"}
	return embed
}
