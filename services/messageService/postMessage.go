package messageService

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"picksBot/models"
	"picksBot/services/odds"
)

// Component id prefixes. Ids carry the post, session or view they act on.
const (
	PostLikePrefix         = "post_like_"
	PostRepostPrefix       = "post_repost_"
	PostCommentPrefix      = "post_comment_"
	PostCommentModalPrefix = "post_comment_modal_"
	PostCommentsPrefix     = "post_comments_"
	PostDeletePrefix       = "post_delete_"
	ProfileFollowPrefix    = "profile_follow_"
)

const (
	colorText    = 0x3498DB
	colorPending = 0xF1C40F
	colorWon     = 0x57F287
	colorLost    = 0xED4245

	discordFieldValueLimit = 1024
	feedBodyLimit          = 300
)

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-3]) + "..."
}

func statusColor(status models.PostStatus) int {
	switch status {
	case models.PostStatusWon:
		return colorWon
	case models.PostStatusLost:
		return colorLost
	}
	return colorPending
}

func statusLabel(status models.PostStatus) string {
	switch status {
	case models.PostStatusWon:
		return "✅ Won"
	case models.PostStatusLost:
		return "❌ Lost"
	}
	return "⏳ Pending"
}

func resultIcon(r models.PickResult) string {
	switch r {
	case models.PickResultWon:
		return "✅"
	case models.PickResultLost:
		return "❌"
	case models.PickResultPush:
		return "➖"
	}
	return "⏳"
}

// PickLine renders one leg, e.g. "Lakers -3.5 (-110) · Celtics @ Lakers".
func PickLine(p models.Pick) string {
	line := fmt.Sprintf("%s (%s)", p.Label(), odds.FormatAmerican(p.Odds))
	if p.OddsDefaulted {
		line += " *default odds*"
	}
	return fmt.Sprintf("%s · %s @ %s", line, p.AwayTeam, p.HomeTeam)
}

func countsFooter(p models.Post) *discordgo.MessageEmbedFooter {
	return &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("♥ %d  🔁 %d  💬 %d", p.LikeCount, p.RepostCount, p.CommentCount),
	}
}

// PostEmbed renders a post of either kind. bodyLimit truncates the caption;
// zero leaves it whole.
func PostEmbed(p models.Post, bodyLimit int) *discordgo.MessageEmbed {
	body := p.Body
	if bodyLimit > 0 {
		body = truncate(body, bodyLimit)
	}

	embed := &discordgo.MessageEmbed{
		Author:    &discordgo.MessageEmbedAuthor{Name: p.Author.DisplayName()},
		Timestamp: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Footer:    countsFooter(p),
	}

	switch p.Kind {
	case models.PostKindText:
		embed.Description = body
		embed.Color = colorText

	case models.PostKindPick:
		embed.Color = statusColor(p.Status)
		embed.Description = body
		if p.IsParlay() {
			embed.Title = fmt.Sprintf("🎯 %d-Leg Parlay", len(p.Picks))
		} else {
			embed.Title = "🎯 Pick"
		}

		var legs strings.Builder
		for idx, pick := range p.Picks {
			fmt.Fprintf(&legs, "%s %d. %s\n", resultIcon(pick.Result), idx+1, PickLine(pick))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Legs",
			Value: truncate(legs.String(), discordFieldValueLimit),
		})

		if p.CombinedOdds != nil {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   "Odds",
				Value:  odds.FormatAmerican(*p.CombinedOdds),
				Inline: true,
			})
		}
		if p.Stake.Valid {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   "Stake",
				Value:  p.Stake.Decimal.StringFixed(2),
				Inline: true,
			})
			if payout, err := odds.ParlayPayout(p.Stake.Decimal, p.Legs()); err == nil {
				embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
					Name:   "Payout",
					Value:  payout.StringFixed(2),
					Inline: true,
				})
			}
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Status",
			Value:  statusLabel(p.Status),
			Inline: true,
		})

	default:
		embed.Description = body
	}

	return embed
}

// PostComponents are the buttons under a shared post.
func PostComponents(p models.Post) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    fmt.Sprintf("%d", p.LikeCount),
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("%s%d", PostLikePrefix, p.ID),
					Emoji:    &discordgo.ComponentEmoji{Name: "♥️"},
				},
				discordgo.Button{
					Label:    fmt.Sprintf("%d", p.RepostCount),
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("%s%d", PostRepostPrefix, p.ID),
					Emoji:    &discordgo.ComponentEmoji{Name: "🔁"},
				},
				discordgo.Button{
					Label:    "Comment",
					Style:    discordgo.PrimaryButton,
					CustomID: fmt.Sprintf("%s%d", PostCommentPrefix, p.ID),
					Emoji:    &discordgo.ComponentEmoji{Name: "💬"},
				},
				discordgo.Button{
					Label:    fmt.Sprintf("Comments (%d)", p.CommentCount),
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("%s%d", PostCommentsPrefix, p.ID),
				},
				discordgo.Button{
					Label:    "Delete",
					Style:    discordgo.DangerButton,
					CustomID: fmt.Sprintf("%s%d", PostDeletePrefix, p.ID),
					Emoji:    &discordgo.ComponentEmoji{Name: "🗑️"},
				},
			},
		},
	}
}

func CommentModal(postID uint) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: fmt.Sprintf("%s%d", PostCommentModalPrefix, postID),
		Title:    "Add a Comment",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "body",
						Label:     "Comment",
						Style:     discordgo.TextInputParagraph,
						Required:  true,
						MaxLength: 1000,
					},
				},
			},
		},
	}
}

func CommentsEmbed(p models.Post, comments []models.Comment) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("💬 Comments on %s's post", p.Author.DisplayName()),
		Color: colorText,
	}
	if len(comments) == 0 {
		embed.Description = "_No comments yet_"
		return embed
	}
	for _, c := range comments {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  c.Author.DisplayName(),
			Value: truncate(c.Body, discordFieldValueLimit),
		})
	}
	return embed
}
