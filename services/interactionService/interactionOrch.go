package interactionService

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"picksBot/services/common"
	msg "picksBot/services/messageService"
	"picksBot/services/metrics"
	"picksBot/services/pickService"
	"picksBot/services/postService"
	"picksBot/services/store"
)

// interactionTimeout bounds the store and provider calls made while
// answering one interaction.
const interactionTimeout = 10 * time.Second

// Deps are the services the Discord handlers call into.
type Deps struct {
	Store   store.Store
	Games   pickService.GameSource
	Picks   *pickService.Service
	Posts   *postService.Service
	Metrics *metrics.Metrics
}

func (d *Deps) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), interactionTimeout)
}

type componentHandler func(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps, customID string) error

// componentRoutes is searched in order; a prefix that extends another must
// come first.
var componentRoutes = []struct {
	prefix  string
	handler componentHandler
}{
	{msg.PickGamePrefix, PickGame},
	{msg.PickTypePrefix, PickType},
	{msg.PickPropPrefix, PickProp},
	{msg.PickSidePrefix, PickSide},
	{msg.PickAddPrefix, PickAdd},
	{msg.PickRemovePrefix, PickRemove},
	{msg.PickSharePrefix, PickShare},
	{msg.PickCancelPrefix, PickCancel},
	{msg.PostLikePrefix, LikePost},
	{msg.PostRepostPrefix, RepostPost},
	{msg.PostCommentsPrefix, ShowComments},
	{msg.PostCommentPrefix, CommentPrompt},
	{msg.PostDeletePrefix, DeletePost},
	{msg.FeedPagePrefix, FeedPage},
	{msg.FeedLikePrefix, FeedLike},
	{msg.FeedRepostPrefix, FeedRepost},
	{msg.FeedRefreshPrefix, FeedRefresh},
	{msg.ProfileFollowPrefix, ProfileFollow},
}

var modalRoutes = []struct {
	prefix  string
	handler componentHandler
}{
	{msg.PickPropModalPrefix, PickPropModal},
	{msg.PickShareModalPrefix, PickShareModal},
	{msg.PostCommentModalPrefix, CommentSubmit},
}

func HandleComponentInteraction(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	customID := i.MessageComponentData().CustomID

	for _, route := range componentRoutes {
		if strings.HasPrefix(customID, route.prefix) {
			if err := route.handler(s, i, deps, customID); err != nil {
				common.SendError(s, i, err, deps.Store)
			}
			return
		}
	}
}

func HandleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate, deps *Deps) {
	customID := i.ModalSubmitData().CustomID

	for _, route := range modalRoutes {
		if strings.HasPrefix(customID, route.prefix) {
			if err := route.handler(s, i, deps, customID); err != nil {
				common.SendError(s, i, err, deps.Store)
			}
			return
		}
	}
}

// splitID cuts "prefix<id>_<arg>" into id and arg. Ids never contain '_'.
func splitID(customID, prefix string) (id, arg string) {
	id, arg, _ = strings.Cut(strings.TrimPrefix(customID, prefix), "_")
	return id, arg
}

// modalValue reads a text input from a submitted modal by its custom id.
func modalValue(i *discordgo.InteractionCreate, inputID string) string {
	for _, row := range i.ModalSubmitData().Components {
		actions, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range actions.Components {
			if input, ok := c.(*discordgo.TextInput); ok && input.CustomID == inputID {
				return strings.TrimSpace(input.Value)
			}
		}
	}
	return ""
}

func selectedValue(i *discordgo.InteractionCreate) string {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func updateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, content string, embeds []*discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if embeds == nil {
		embeds = []*discordgo.MessageEmbed{}
	}
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Embeds:     embeds,
			Components: components,
		},
	})
}

func respondModal(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: data,
	})
}
