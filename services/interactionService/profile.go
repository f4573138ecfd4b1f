package interactionService

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"picksBot/models"
	"picksBot/services/common"
	msg "picksBot/services/messageService"
	"picksBot/services/postService"
	"picksBot/services/store"
)

func profileCard(p *postService.ProfileView) msg.ProfileCard {
	return msg.ProfileCard{
		User:          p.User,
		Followers:     p.FollowerCount(),
		Following:     p.Following,
		Posts:         p.Posts,
		Recent:        p.Recent,
		ViewerFollows: p.ViewerFollows(),
		IsSelf:        p.IsSelf(),
	}
}

// userOption resolves a user option to a profile, defaulting to the invoker.
func userOption(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, name string) (*models.User, error) {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			target := opt.UserValue(s)
			if target == nil {
				return nil, fmt.Errorf("user not found")
			}
			return deps.Store.EnsureUser(ctx, target.ID, common.GetUsernameFromUser(target))
		}
	}
	return common.EnsureProfile(ctx, deps.Store, i)
}

// ShowProfile handles /profile.
func ShowProfile(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	ctx, cancel := deps.context()
	defer cancel()

	viewer, err := common.EnsureProfile(ctx, deps.Store, i)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}
	target, err := userOption(ctx, s, i, deps, "user")
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}
	profile, err := deps.Posts.Profile(ctx, viewer, target)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}

	card := profileCard(profile)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{msg.ProfileEmbed(card)},
			Components: msg.ProfileComponents(card),
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		common.SendError(s, i, err, deps.Store)
	}
}

// ProfileFollow toggles the follow button on a profile card.
func ProfileFollow(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	targetID := strings.TrimPrefix(customID, msg.ProfileFollowPrefix)

	ctx, cancel := deps.context()
	defer cancel()

	viewer, err := common.EnsureProfile(ctx, deps.Store, i)
	if err != nil {
		return err
	}
	target, err := deps.Store.UserByDiscordID(ctx, targetID)
	if err != nil {
		return err
	}
	profile, err := deps.Posts.Profile(ctx, viewer, target)
	if err != nil {
		return err
	}

	_, toggleErr := deps.Posts.ToggleFollow(ctx, profile)
	card := profileCard(profile)
	if err := updateMessage(s, i, "", []*discordgo.MessageEmbed{msg.ProfileEmbed(card)}, msg.ProfileComponents(card)); err != nil {
		return err
	}
	if toggleErr != nil {
		_, _ = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: fmt.Sprintf("Could not save that change: %v", toggleErr),
			Flags:   discordgo.MessageFlagsEphemeral,
		})
	}
	return nil
}

// SetFollowing handles /follow and /unfollow.
func SetFollowing(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, following bool) {
	ctx, cancel := deps.context()
	defer cancel()

	follower, err := common.EnsureProfile(ctx, deps.Store, i)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}
	followee, err := userOption(ctx, s, i, deps, "user")
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}

	err = deps.Posts.SetFollowing(ctx, follower, followee, following)
	if errors.Is(err, store.ErrSelfFollow) {
		_ = common.RespondEphemeral(s, i, "You can't follow yourself.")
		return
	}
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}

	verb := "Following"
	if !following {
		verb = "Unfollowed"
	}
	if err := common.RespondEphemeral(s, i, fmt.Sprintf("%s **%s**.", verb, followee.DisplayName())); err != nil {
		common.SendError(s, i, err, deps.Store)
	}
}
