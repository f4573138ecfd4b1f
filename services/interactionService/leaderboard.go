package interactionService

import (
	"github.com/bwmarrin/discordgo"

	"picksBot/services/common"
	msg "picksBot/services/messageService"
)

const leaderboardSize = 10

// ShowLeaderboard handles /leaderboard.
func ShowLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	ctx, cancel := deps.context()
	defer cancel()

	standings, err := deps.Store.Leaderboard(ctx, leaderboardSize)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{msg.LeaderboardEmbed(standings)},
		},
	})
	if err != nil {
		common.SendError(s, i, err, deps.Store)
	}
}
