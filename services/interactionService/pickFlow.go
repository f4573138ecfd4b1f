package interactionService

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"picksBot/models"
	"picksBot/services/common"
	msg "picksBot/services/messageService"
)

func builderView(ctx context.Context, deps *Deps, sessionID, ownerID string) (msg.BuilderView, error) {
	summary, err := deps.Picks.Summary(sessionID, ownerID)
	if err != nil {
		return msg.BuilderView{}, err
	}

	view := msg.BuilderView{
		SessionID:    summary.SessionID,
		Sport:        summary.Sport,
		Game:         summary.Game,
		PickType:     summary.PickType,
		Resolved:     summary.Resolved,
		Legs:         summary.Legs,
		CombinedOdds: summary.CombinedOdds,
		Players:      summary.Players,
	}
	if view.Sport.Tag == "" {
		if view.Sport, err = deps.Games.Sport(summary.SportTag); err != nil {
			return msg.BuilderView{}, err
		}
	}
	if view.Game == nil {
		if view.Games, err = deps.Picks.UpcomingGames(ctx, view.Sport.Tag); err != nil {
			return msg.BuilderView{}, err
		}
	}
	return view, nil
}

func builderContent(view msg.BuilderView) string {
	if view.Game == nil && len(view.Games) == 0 {
		return fmt.Sprintf("No open %s games right now.", view.Sport.DisplayName)
	}
	return ""
}

func renderBuilder(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, sessionID string) error {
	ctx, cancel := deps.context()
	defer cancel()

	view, err := builderView(ctx, deps, sessionID, common.InteractionUser(i).ID)
	if err != nil {
		return err
	}
	return updateMessage(s, i, builderContent(view),
		[]*discordgo.MessageEmbed{msg.BuilderEmbed(view)}, msg.BuilderComponents(view))
}

// StartPick handles /pick.
func StartPick(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	ctx, cancel := deps.context()
	defer cancel()

	var sportTag string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "sport" {
			sportTag = opt.StringValue()
		}
	}
	if _, err := deps.Games.Sport(sportTag); err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}

	user := common.InteractionUser(i)
	session := deps.Picks.Start(user.ID, sportTag)
	view, err := builderView(ctx, deps, session.ID, user.ID)
	if err != nil {
		deps.Picks.Sessions().End(session.ID)
		common.SendError(s, i, err, deps.Store)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    builderContent(view),
			Embeds:     []*discordgo.MessageEmbed{msg.BuilderEmbed(view)},
			Components: msg.BuilderComponents(view),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		common.SendError(s, i, err, deps.Store)
	}
}

// PickGame loads the chosen game with its odds. The lookup can outlast
// Discord's three second window, so the response is deferred.
func PickGame(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID := strings.TrimPrefix(customID, msg.PickGamePrefix)
	sportTag, eventID, ok := msg.ParseGameOptionValue(selectedValue(i))
	if !ok {
		return fmt.Errorf("invalid game selection")
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		return err
	}

	ctx, cancel := deps.context()
	defer cancel()

	ownerID := common.InteractionUser(i).ID
	if err := deps.Picks.ChooseGame(ctx, sessionID, ownerID, sportTag, eventID); err != nil {
		common.SendFollowupError(s, i, err, deps.Store)
		return nil
	}
	view, err := builderView(ctx, deps, sessionID, ownerID)
	if err != nil {
		common.SendFollowupError(s, i, err, deps.Store)
		return nil
	}

	embeds := []*discordgo.MessageEmbed{msg.BuilderEmbed(view)}
	components := msg.BuilderComponents(view)
	content := builderContent(view)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:    &content,
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		slog.Warn("error editing builder message", "error", err)
	}
	return nil
}

func PickType(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID, arg := splitID(customID, msg.PickTypePrefix)
	pickType, ok := models.ParsePickType(arg)
	if !ok {
		return fmt.Errorf("unknown pick type %q", arg)
	}

	ownerID := common.InteractionUser(i).ID
	if err := deps.Picks.ChooseType(sessionID, ownerID, pickType); err != nil {
		return err
	}

	if pickType == models.PickTypePlayerProp {
		summary, err := deps.Picks.Summary(sessionID, ownerID)
		if err != nil {
			return err
		}
		if len(summary.Players) == 0 {
			return respondModal(s, i, msg.PropModal(sessionID, ""))
		}
	}
	return renderBuilder(s, i, deps, sessionID)
}

// PickProp opens the line modal for the selected player.
func PickProp(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID := strings.TrimPrefix(customID, msg.PickPropPrefix)
	return respondModal(s, i, msg.PropModal(sessionID, selectedValue(i)))
}

func PickPropModal(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID := strings.TrimPrefix(customID, msg.PickPropModalPrefix)

	player := modalValue(i, "player")
	line, err := strconv.ParseFloat(modalValue(i, "line"), 64)
	if err != nil {
		return common.RespondEphemeral(s, i, "Invalid line. Please enter a number such as 24.5.")
	}

	if err := deps.Picks.ChooseProp(sessionID, common.InteractionUser(i).ID, player, line); err != nil {
		return err
	}
	return renderBuilder(s, i, deps, sessionID)
}

func PickSide(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID, arg := splitID(customID, msg.PickSidePrefix)
	if _, err := deps.Picks.ChooseSide(sessionID, common.InteractionUser(i).ID, models.PickSide(arg)); err != nil {
		return err
	}
	return renderBuilder(s, i, deps, sessionID)
}

func PickAdd(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID := strings.TrimPrefix(customID, msg.PickAddPrefix)
	if _, err := deps.Picks.AddLeg(sessionID, common.InteractionUser(i).ID); err != nil {
		return err
	}
	return renderBuilder(s, i, deps, sessionID)
}

func PickRemove(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID := strings.TrimPrefix(customID, msg.PickRemovePrefix)
	idx, err := strconv.Atoi(selectedValue(i))
	if err != nil {
		return fmt.Errorf("invalid leg selection")
	}
	if err := deps.Picks.RemoveLeg(sessionID, common.InteractionUser(i).ID, idx); err != nil {
		return err
	}
	return renderBuilder(s, i, deps, sessionID)
}

// PickShare asks for the stake and caption before the post is created.
func PickShare(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID := strings.TrimPrefix(customID, msg.PickSharePrefix)
	if _, err := deps.Picks.Summary(sessionID, common.InteractionUser(i).ID); err != nil {
		return err
	}
	return respondModal(s, i, msg.ShareModal(sessionID))
}

func parseStake(raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	stake, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
	if err != nil || !stake.IsPositive() {
		return decimal.NullDecimal{}, fmt.Errorf("invalid stake %q", raw)
	}
	return decimal.NewNullDecimal(stake.Round(2)), nil
}

func PickShareModal(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID := strings.TrimPrefix(customID, msg.PickShareModalPrefix)

	stake, err := parseStake(modalValue(i, "stake"))
	if err != nil {
		return common.RespondEphemeral(s, i, "Invalid stake. Please enter a positive amount.")
	}

	ctx, cancel := deps.context()
	defer cancel()

	author, err := common.EnsureProfile(ctx, deps.Store, i)
	if err != nil {
		return err
	}
	post, err := deps.Picks.Share(ctx, sessionID, author, modalValue(i, "caption"), stake)
	if err != nil {
		return err
	}

	if err := updateMessage(s, i, "📣 Pick shared!", nil, nil); err != nil {
		return err
	}
	publishPost(ctx, s, i, deps, *post)
	return nil
}

func PickCancel(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	sessionID := strings.TrimPrefix(customID, msg.PickCancelPrefix)
	if err := deps.Picks.Cancel(sessionID, common.InteractionUser(i).ID); err != nil {
		return err
	}
	return updateMessage(s, i, "Pick discarded.", nil, nil)
}

// publishPost sends a post to the interaction's channel and records where it
// went so settlement and counters can edit it later.
func publishPost(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, post models.Post) {
	sent, err := s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{msg.PostEmbed(post, 0)},
		Components: msg.PostComponents(post),
	})
	if err != nil {
		slog.Warn("error publishing post", "post", post.ID, "error", err)
		return
	}
	if err := deps.Store.SetPostMessage(ctx, post.ID, i.GuildID, i.ChannelID, sent.ID); err != nil {
		slog.Warn("error saving post message", "post", post.ID, "error", err)
	}
}
