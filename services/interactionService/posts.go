package interactionService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"picksBot/models"
	"picksBot/services/common"
	msg "picksBot/services/messageService"
	"picksBot/services/store"
)

const commentsShown = 20

func parsePostID(customID, prefix string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimPrefix(customID, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid post id in %q", customID)
	}
	return uint(id), nil
}

// CreatePost handles /post.
func CreatePost(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	ctx, cancel := deps.context()
	defer cancel()

	var body string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "text" {
			body = opt.StringValue()
		}
	}

	author, err := common.EnsureProfile(ctx, deps.Store, i)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}
	post, err := deps.Posts.CreateTextPost(ctx, author, body)
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{msg.PostEmbed(*post, 0)},
			Components: msg.PostComponents(*post),
		},
	})
	if err != nil {
		common.SendError(s, i, err, deps.Store)
		return
	}

	sent, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		slog.Warn("error fetching post message", "post", post.ID, "error", err)
		return
	}
	if err := deps.Store.SetPostMessage(ctx, post.ID, i.GuildID, i.ChannelID, sent.ID); err != nil {
		slog.Warn("error saving post message", "post", post.ID, "error", err)
	}
}

// rerenderPost refreshes the post message the button was pressed on.
func rerenderPost(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, postID uint) error {
	post, err := deps.Store.Post(ctx, postID)
	if err != nil {
		return err
	}
	return updateMessage(s, i, "", []*discordgo.MessageEmbed{msg.PostEmbed(*post, 0)}, msg.PostComponents(*post))
}

type relationSetter func(ctx context.Context, postID, userID uint) (bool, int, error)

func togglePost(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID, prefix string, set relationSetter) error {
	postID, err := parsePostID(customID, prefix)
	if err != nil {
		return err
	}

	ctx, cancel := deps.context()
	defer cancel()

	user, err := common.EnsureProfile(ctx, deps.Store, i)
	if err != nil {
		return err
	}
	if _, _, err := set(ctx, postID, user.ID); err != nil {
		return err
	}
	return rerenderPost(ctx, s, i, deps, postID)
}

func LikePost(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	return togglePost(s, i, deps, customID, msg.PostLikePrefix, deps.Posts.SetLiked)
}

func RepostPost(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	return togglePost(s, i, deps, customID, msg.PostRepostPrefix, deps.Posts.SetReposted)
}

func CommentPrompt(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	postID, err := parsePostID(customID, msg.PostCommentPrefix)
	if err != nil {
		return err
	}
	return respondModal(s, i, msg.CommentModal(postID))
}

func CommentSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	postID, err := parsePostID(customID, msg.PostCommentModalPrefix)
	if err != nil {
		return err
	}

	ctx, cancel := deps.context()
	defer cancel()

	author, err := common.EnsureProfile(ctx, deps.Store, i)
	if err != nil {
		return err
	}
	if _, err := deps.Posts.AddComment(ctx, author, postID, modalValue(i, "body")); err != nil {
		return err
	}
	return rerenderPost(ctx, s, i, deps, postID)
}

func ShowComments(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	postID, err := parsePostID(customID, msg.PostCommentsPrefix)
	if err != nil {
		return err
	}

	ctx, cancel := deps.context()
	defer cancel()

	post, err := deps.Store.Post(ctx, postID)
	if err != nil {
		return err
	}
	comments, err := deps.Posts.Comments(ctx, postID, commentsShown)
	if err != nil {
		return err
	}

	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{msg.CommentsEmbed(*post, comments)},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func DeletePost(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error {
	postID, err := parsePostID(customID, msg.PostDeletePrefix)
	if err != nil {
		return err
	}

	ctx, cancel := deps.context()
	defer cancel()

	user, err := common.EnsureProfile(ctx, deps.Store, i)
	if err != nil {
		return err
	}
	err = deps.Posts.DeletePost(ctx, postID, user)
	if errors.Is(err, store.ErrForbidden) {
		return common.RespondEphemeral(s, i, "Only the author can delete this post.")
	}
	if err != nil {
		return err
	}
	return updateMessage(s, i, "_This post was deleted._", nil, nil)
}

// RefreshSharedPost re-renders a post's Discord message, if it has one. It is
// called when settlement changes a post's status.
func RefreshSharedPost(s *discordgo.Session, deps *Deps) func(models.Post) {
	return func(post models.Post) {
		if post.MessageID == nil || post.ChannelID == "" {
			return
		}

		ctx, cancel := deps.context()
		defer cancel()

		full, err := deps.Store.Post(ctx, post.ID)
		if err != nil {
			slog.Warn("error loading settled post", "post", post.ID, "error", err)
			return
		}

		embeds := []*discordgo.MessageEmbed{msg.PostEmbed(*full, 0)}
		components := msg.PostComponents(*full)
		_, err = s.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         *post.MessageID,
			Channel:    post.ChannelID,
			Embeds:     &embeds,
			Components: &components,
		})
		if err != nil {
			slog.Warn("error editing settled post", "post", post.ID, "error", err)
			deps.Store.LogError(ctx, models.ErrorLog{
				GuildID: post.GuildID,
				Source:  "settlement",
				Message: fmt.Sprintf("error editing settled post %d: %v", post.ID, err),
			})
		}
	}
}
