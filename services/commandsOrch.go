package services

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"picksBot/config"
	"picksBot/services/interactionService"
)

func HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate, deps *interactionService.Deps) {
	switch i.ApplicationCommandData().Name {
	case "pick":
		interactionService.StartPick(s, i, deps)
	case "post":
		interactionService.CreatePost(s, i, deps)
	case "feed":
		interactionService.ShowFeed(s, i, deps)
	case "profile":
		interactionService.ShowProfile(s, i, deps)
	case "follow":
		interactionService.SetFollowing(s, i, deps, true)
	case "unfollow":
		interactionService.SetFollowing(s, i, deps, false)
	case "scores":
		interactionService.ShowScores(s, i, deps)
	case "parlay-odds":
		interactionService.ParlayOdds(s, i, deps)
	case "leaderboard":
		interactionService.ShowLeaderboard(s, i, deps)
	}
}

func sportChoices(sports *config.SportRegistry) []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, sport := range sports.All() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  sport.DisplayName,
			Value: sport.Tag,
		})
	}
	return choices
}

// Commands lists the bot's slash commands. Sport options offer every
// configured sport.
func Commands(sports *config.SportRegistry) []*discordgo.ApplicationCommand {
	minStake := 0.01
	sportOption := func() *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Name:        "sport",
			Description: "Sport",
			Type:        discordgo.ApplicationCommandOptionString,
			Required:    true,
			Choices:     sportChoices(sports),
		}
	}
	userOption := func(required bool) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Name:        "user",
			Description: "User",
			Type:        discordgo.ApplicationCommandOptionUser,
			Required:    required,
		}
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "pick",
			Description: "Build a pick or parlay and share it",
			Options:     []*discordgo.ApplicationCommandOption{sportOption()},
		},
		{
			Name:        "post",
			Description: "Share a text post",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "text",
					Description: "What's on your mind",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
					MaxLength:   2000,
				},
			},
		},
		{
			Name:        "feed",
			Description: "Browse recent posts and picks",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "following",
					Description: "Only show people you follow",
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Required:    false,
				},
			},
		},
		{
			Name:        "profile",
			Description: "Show a profile",
			Options:     []*discordgo.ApplicationCommandOption{userOption(false)},
		},
		{
			Name:        "follow",
			Description: "Follow a user",
			Options:     []*discordgo.ApplicationCommandOption{userOption(true)},
		},
		{
			Name:        "unfollow",
			Description: "Unfollow a user",
			Options:     []*discordgo.ApplicationCommandOption{userOption(true)},
		},
		{
			Name:        "scores",
			Description: "Show today's scoreboard",
			Options:     []*discordgo.ApplicationCommandOption{sportOption()},
		},
		{
			Name:        "leaderboard",
			Description: "Top pickers by settled record",
		},
		{
			Name:        "parlay-odds",
			Description: "Price a parlay from American odds",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "legs",
					Description: "Odds of each leg, e.g. -110, +150",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
				{
					Name:        "stake",
					Description: "Stake to price the payout",
					Type:        discordgo.ApplicationCommandOptionNumber,
					Required:    false,
					MinValue:    &minStake,
				},
			},
		},
	}
}

func RegisterCommands(s *discordgo.Session, sports *config.SportRegistry) error {
	for _, cmd := range Commands(sports) {
		if _, err := s.ApplicationCommandCreate(s.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("cannot create '%v' command: %v", cmd.Name, err)
		}
	}
	return nil
}
