package interactionService

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"picksBot/services/common"
	msg "picksBot/services/messageService"
	"picksBot/services/odds"
)

// ShowScores handles /scores.
func ShowScores(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	ctx, cancel := deps.context()
	defer cancel()

	var sportTag string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "sport" {
			sportTag = opt.StringValue()
		}
	}
	sport, err := deps.Games.Sport(sportTag)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}
	events, err := deps.Games.Scoreboard(ctx, sport.Tag, nil)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{msg.ScoresEmbed(sport.DisplayName, events)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		common.SendError(s, i, err, deps.Store)
	}
}

// ParseLegs reads a comma or space separated list of American odds.
func ParseLegs(raw string) ([]int, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' })
	legs := make([]int, 0, len(fields))
	for _, f := range fields {
		leg, err := odds.ParseAmerican(f)
		if err != nil {
			return nil, err
		}
		legs = append(legs, leg)
	}
	if len(legs) < 2 {
		return nil, fmt.Errorf("a parlay needs at least two legs")
	}
	return legs, nil
}

// ParlayOdds handles /parlay-odds.
func ParlayOdds(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	var (
		rawLegs string
		stake   decimal.NullDecimal
	)
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "legs":
			rawLegs = opt.StringValue()
		case "stake":
			stake = decimal.NewNullDecimal(decimal.NewFromFloat(opt.FloatValue()).Round(2))
		}
	}

	legs, err := ParseLegs(rawLegs)
	if err != nil {
		_ = common.RespondEphemeral(s, i, fmt.Sprintf("Invalid legs: %v", err))
		return
	}
	combined, err := odds.CombinedParlayOdds(legs)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}
	payout := decimal.Zero
	if stake.Valid {
		if payout, err = odds.ParlayPayout(stake.Decimal, legs); err != nil {
			common.SendError(s, i, err, deps.Store)
			return
		}
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{msg.ParlayPriceEmbed(legs, *combined, stake, payout)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		common.SendError(s, i, err, deps.Store)
	}
}
