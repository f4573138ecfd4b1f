package messageService

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"picksBot/models"
	"picksBot/models/external"
	"picksBot/services/odds"
)

const (
	FeedPagePrefix    = "feed_page_"
	FeedLikePrefix    = "feed_like_"
	FeedRepostPrefix  = "feed_repost_"
	FeedRefreshPrefix = "feed_refresh_"
)

// maxEmbeds is Discord's per-message embed limit.
const maxEmbeds = 10

// FeedState is what a feed message needs from a view.
type FeedState struct {
	ViewID        string
	FollowingOnly bool
	Page          int
	Posts         []models.Post
	Liked         func(postID uint) bool
	Reposted      func(postID uint) bool
	NewPosts      int
}

func feedTitle(f FeedState) string {
	title := "📰 Feed"
	if f.FollowingOnly {
		title = "📰 Following"
	}
	return fmt.Sprintf("%s · page %d", title, f.Page+1)
}

func optionLabel(prefix string, p models.Post) string {
	text := p.Body
	if p.Kind == models.PostKindPick && len(p.Picks) > 0 {
		text = p.Picks[0].Label()
		if p.IsParlay() {
			text = fmt.Sprintf("%d-leg parlay", len(p.Picks))
		}
	}
	return truncate(fmt.Sprintf("%s %s: %s", prefix, p.Author.DisplayName(), text), 100)
}

func toggleMenu(customID, placeholder, verb string, posts []models.Post, on func(uint) bool) discordgo.ActionsRow {
	var options []discordgo.SelectMenuOption
	for _, p := range posts {
		desc := verb
		if on != nil && on(p.ID) {
			desc = "Un" + strings.ToLower(verb)
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       optionLabel(fmt.Sprintf("#%d", p.ID), p),
			Value:       strconv.FormatUint(uint64(p.ID), 10),
			Description: desc,
		})
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    customID,
				Placeholder: placeholder,
				Options:     options,
			},
		},
	}
}

// FeedMessage renders a page of the feed with like and repost menus and
// paging buttons.
func FeedMessage(f FeedState) (string, []*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	posts := f.Posts
	if len(posts) > maxEmbeds {
		posts = posts[:maxEmbeds]
	}

	content := feedTitle(f)
	if f.NewPosts > 0 {
		content += fmt.Sprintf(" · %d new", f.NewPosts)
	}
	if len(posts) == 0 {
		content += "\n_Nothing here yet._"
	}

	embeds := make([]*discordgo.MessageEmbed, 0, len(posts))
	for _, p := range posts {
		embeds = append(embeds, PostEmbed(p, feedBodyLimit))
	}

	var components []discordgo.MessageComponent
	if len(posts) > 0 {
		components = append(components,
			toggleMenu(FeedLikePrefix+f.ViewID, "♥ Like a post", "Like", posts, f.Liked),
			toggleMenu(FeedRepostPrefix+f.ViewID, "🔁 Repost a post", "Repost", posts, f.Reposted),
		)
	}

	components = append(components, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Newer",
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("%s%s_%d", FeedPagePrefix, f.ViewID, f.Page-1),
				Disabled: f.Page == 0,
			},
			discordgo.Button{
				Label:    "Older",
				Style:    discordgo.SecondaryButton,
				CustomID: fmt.Sprintf("%s%s_%d", FeedPagePrefix, f.ViewID, f.Page+1),
				Disabled: len(f.Posts) < maxEmbeds,
			},
			discordgo.Button{
				Label:    "Refresh",
				Style:    discordgo.PrimaryButton,
				CustomID: FeedRefreshPrefix + f.ViewID,
				Emoji:    &discordgo.ComponentEmoji{Name: "🔄"},
			},
		},
	})

	return content, embeds, components
}

// ProfileCard is the data shown by /profile.
type ProfileCard struct {
	User          models.User
	Followers     int64
	Following     int64
	Posts         int64
	Recent        []models.Post
	ViewerFollows bool
	IsSelf        bool
}

func ProfileEmbed(p ProfileCard) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("👤 %s", p.User.DisplayName()),
		Description: p.User.Bio,
		Color:       colorText,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Posts", Value: strconv.FormatInt(p.Posts, 10), Inline: true},
			{Name: "Followers", Value: strconv.FormatInt(p.Followers, 10), Inline: true},
			{Name: "Following", Value: strconv.FormatInt(p.Following, 10), Inline: true},
		},
	}

	if len(p.Recent) > 0 {
		var recent strings.Builder
		for _, post := range p.Recent {
			fmt.Fprintf(&recent, "• %s\n", truncate(optionLabel(post.CreatedAt.Format("Jan 2"), post), 200))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent",
			Value: truncate(recent.String(), discordFieldValueLimit),
		})
	}
	return embed
}

func ProfileComponents(p ProfileCard) []discordgo.MessageComponent {
	if p.IsSelf {
		return []discordgo.MessageComponent{}
	}
	label, style := "Follow", discordgo.PrimaryButton
	if p.ViewerFollows {
		label, style = "Unfollow", discordgo.SecondaryButton
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    label,
					Style:    style,
					CustomID: ProfileFollowPrefix + p.User.DiscordID,
				},
			},
		},
	}
}

func scoreLine(e external.ESPN_Event) string {
	home, away := e.Home(), e.Away()
	if home == nil || away == nil {
		return e.Name
	}
	state := e.Status.Type.ShortDetail
	if e.Status.Type.State == "pre" {
		return fmt.Sprintf("%s @ %s · %s", away.Team.DisplayName, home.Team.DisplayName, state)
	}
	return fmt.Sprintf("%s %s @ %s %s · %s", away.Team.DisplayName, away.Score, home.Team.DisplayName, home.Score, state)
}

func ScoresEmbed(sportName string, events []external.ESPN_Event) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏟️ %s Scoreboard", sportName),
		Color: colorText,
	}
	if len(events) == 0 {
		embed.Description = "_No games today_"
		return embed
	}
	var lines strings.Builder
	for _, e := range events {
		line := scoreLine(e) + "\n"
		if lines.Len()+len(line) > 4000 {
			break
		}
		lines.WriteString(line)
	}
	embed.Description = lines.String()
	return embed
}

// ParlayPriceEmbed shows the combined price of a set of legs and, with a
// stake, the payout.
func ParlayPriceEmbed(legs []int, combined int, stake decimal.NullDecimal, payout decimal.Decimal) *discordgo.MessageEmbed {
	formatted := make([]string, 0, len(legs))
	for _, leg := range legs {
		formatted = append(formatted, odds.FormatAmerican(leg))
	}
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🧮 %d-Leg Parlay", len(legs)),
		Color: colorText,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Legs", Value: strings.Join(formatted, ", ")},
			{Name: "Combined Odds", Value: odds.FormatAmerican(combined), Inline: true},
		},
	}
	if stake.Valid {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Stake", Value: stake.Decimal.StringFixed(2), Inline: true},
			&discordgo.MessageEmbedField{Name: "Payout", Value: payout.StringFixed(2), Inline: true},
		)
	}
	return embed
}
