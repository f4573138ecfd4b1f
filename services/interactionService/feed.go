package interactionService

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"picksBot/services/common"
	msg "picksBot/services/messageService"
	"picksBot/services/postService"
)

var errFeedClosed = errors.New("this feed has expired, run /feed again")

func feedState(v *postService.FeedView, newPosts int) msg.FeedState {
	return msg.FeedState{
		ViewID:        v.ID,
		FollowingOnly: v.FollowingOnly,
		Page:          v.Page(),
		Posts:         v.Posts(),
		Liked:         v.Liked,
		Reposted:      v.Reposted,
		NewPosts:      newPosts,
	}
}

// ShowFeed handles /feed. The view stays open so realtime batches and
// deletions reach it.
func ShowFeed(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	ctx, cancel := deps.context()
	defer cancel()

	followingOnly := false
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "following" {
			followingOnly = opt.BoolValue()
		}
	}

	viewer, err := common.EnsureProfile(ctx, deps.Store, i)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}

	view := deps.Posts.Views().Open(viewer.ID, followingOnly)
	if _, err := deps.Posts.LoadPage(ctx, view, 0); err != nil {
		deps.Posts.Views().Close(view.ID)
		common.SendError(s, i, err, deps.Store)
		return
	}

	content, embeds, components := msg.FeedMessage(feedState(view, 0))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     embeds,
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		common.SendError(s, i, err, deps.Store)
	}
}

func openView(deps *Deps, viewID string) (*postService.FeedView, error) {
	view, ok := deps.Posts.Views().Get(viewID)
	if !ok {
		return nil, errFeedClosed
	}
	return view, nil
}

func renderFeed(s *discordgo.Session, i *discordgo.InteractionCreate, view *postService.FeedView, newPosts int) error {
	content, embeds, components := msg.FeedMessage(feedState(view, newPosts))
	return updateMessage(s, i, content, embeds, components)
}

func FeedPage(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	viewID, arg := splitID(customID, msg.FeedPagePrefix)
	page, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid page %q", arg)
	}
	view, err := openView(deps, viewID)
	if err != nil {
		return err
	}

	ctx, cancel := deps.context()
	defer cancel()

	applied, err := deps.Posts.LoadPage(ctx, view, page)
	if err != nil {
		return err
	}
	if !applied {
		// a newer page request owns the message
		return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
	}
	return renderFeed(s, i, view, 0)
}

// FeedRefresh reloads the first page and reports how many posts arrived since
// the last render.
func FeedRefresh(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	view, err := openView(deps, strings.TrimPrefix(customID, msg.FeedRefreshPrefix))
	if err != nil {
		return err
	}
	arrived := view.TakeUnseen()

	ctx, cancel := deps.context()
	defer cancel()

	if _, err := deps.Posts.LoadPage(ctx, view, 0); err != nil {
		return err
	}
	return renderFeed(s, i, view, arrived)
}

type viewToggle func(v *postService.FeedView, postID uint) (bool, error)

func feedToggle(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID, prefix string, toggle viewToggle) error {
	view, err := openView(deps, strings.TrimPrefix(customID, prefix))
	if err != nil {
		return err
	}
	postID, err := strconv.ParseUint(selectedValue(i), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid post selection")
	}
	if _, err := toggle(view, uint(postID)); err != nil {
		// the view was rolled back; show it as it is now
		if renderErr := renderFeed(s, i, view, 0); renderErr != nil {
			return renderErr
		}
		_, _ = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: fmt.Sprintf("Could not save that change: %v", err),
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return nil
	}
	return renderFeed(s, i, view, 0)
}

func FeedLike(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	ctx, cancel := deps.context()
	defer cancel()
	return feedToggle(s, i, deps, customID, msg.FeedLikePrefix, func(v *postService.FeedView, postID uint) (bool, error) {
		return deps.Posts.ToggleLike(ctx, v, postID)
	})
}

func FeedRepost(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	ctx, cancel := deps.context()
	defer cancel()
	return feedToggle(s, i, deps, customID, msg.FeedRepostPrefix, func(v *postService.FeedView, postID uint) (bool, error) {
		return deps.Posts.ToggleRepost(ctx, v, postID)
	})
}
