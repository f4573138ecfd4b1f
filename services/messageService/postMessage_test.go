package messageService

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"picksBot/models"
	"picksBot/models/external"
	"picksBot/services/store"
)

func author() models.User {
	name := "sharp"
	return models.User{DiscordID: "42", Username: &name}
}

func TestPostEmbedByKind(t *testing.T) {
	combined := 264
	line := -3.5
	tests := []struct {
		name      string
		post      models.Post
		wantTitle string
		wantColor int
		wantField string
	}{
		{
			name:      "text post",
			post:      models.Post{Kind: models.PostKindText, Body: "hello", Author: author()},
			wantTitle: "",
			wantColor: colorText,
		},
		{
			name: "single pending",
			post: models.Post{
				Kind: models.PostKindPick, Author: author(), Status: models.PostStatusPending,
				Picks: []models.Pick{{PickType: models.PickTypeSpread, PickSide: models.PickSideHome, HomeTeam: "Lakers", AwayTeam: "Celtics", Line: &line, Odds: -110}},
			},
			wantTitle: "🎯 Pick",
			wantColor: colorPending,
			wantField: "Legs",
		},
		{
			name: "parlay won with stake",
			post: models.Post{
				Kind: models.PostKindPick, Author: author(), Status: models.PostStatusWon, CombinedOdds: &combined,
				Stake: decimal.NewNullDecimal(decimal.NewFromInt(10)),
				Picks: []models.Pick{
					{PickType: models.PickTypeMoneyline, PickSide: models.PickSideHome, HomeTeam: "Lakers", AwayTeam: "Celtics", Odds: -110, Result: models.PickResultWon},
					{PickType: models.PickTypeMoneyline, PickSide: models.PickSideAway, HomeTeam: "Jets", AwayTeam: "Bills", Odds: -110, Result: models.PickResultWon},
				},
			},
			wantTitle: "🎯 2-Leg Parlay",
			wantColor: colorWon,
			wantField: "Payout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := PostEmbed(tt.post, 0)
			if embed.Title != tt.wantTitle {
				t.Errorf("Expected title %q, got %q", tt.wantTitle, embed.Title)
			}
			if embed.Color != tt.wantColor {
				t.Errorf("Expected color %x, got %x", tt.wantColor, embed.Color)
			}
			if embed.Author.Name != "sharp" {
				t.Errorf("Expected author sharp, got %q", embed.Author.Name)
			}
			if tt.wantField == "" {
				return
			}
			found := false
			for _, f := range embed.Fields {
				if f.Name == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected field %q in %+v", tt.wantField, embed.Fields)
			}
		})
	}
}

func TestPostEmbedTruncatesBody(t *testing.T) {
	post := models.Post{Kind: models.PostKindText, Body: strings.Repeat("a", 500), Author: author()}
	embed := PostEmbed(post, feedBodyLimit)
	if n := len([]rune(embed.Description)); n != feedBodyLimit {
		t.Errorf("Expected body truncated to %d runes, got %d", feedBodyLimit, n)
	}
	if !strings.HasSuffix(embed.Description, "...") {
		t.Error("Expected ellipsis on truncated body")
	}
}

func TestFeedMessageLimits(t *testing.T) {
	var posts []models.Post
	for i := 1; i <= 12; i++ {
		posts = append(posts, models.Post{ID: uint(i), Kind: models.PostKindText, Body: "p", Author: author()})
	}
	content, embeds, components := FeedMessage(FeedState{ViewID: "v1", Posts: posts, NewPosts: 2})

	if len(embeds) != maxEmbeds {
		t.Errorf("Expected %d embeds, got %d", maxEmbeds, len(embeds))
	}
	if !strings.Contains(content, "2 new") {
		t.Errorf("Expected new post count in %q", content)
	}
	if len(components) != 3 {
		t.Fatalf("Expected like, repost and paging rows, got %d", len(components))
	}
	menu := components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	if menu.CustomID != "feed_like_v1" || len(menu.Options) != maxEmbeds {
		t.Errorf("Unexpected like menu %s with %d options", menu.CustomID, len(menu.Options))
	}
	newer := components[2].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	if !newer.Disabled {
		t.Error("Expected Newer disabled on the first page")
	}
}

func TestFeedMessageEmpty(t *testing.T) {
	_, embeds, components := FeedMessage(FeedState{ViewID: "v1"})
	if len(embeds) != 0 || len(components) != 1 {
		t.Errorf("Expected only paging row for empty feed, got %d embeds %d rows", len(embeds), len(components))
	}
}

func TestBuilderComponentsByStep(t *testing.T) {
	event := external.ESPN_Event{ID: "401", Name: "Celtics at Lakers"}
	resolved := models.Pick{PickType: models.PickTypeMoneyline, PickSide: models.PickSideHome, Odds: -155}

	tests := []struct {
		name      string
		view      BuilderView
		wantRows  int
		wantFirst string
	}{
		{"choose game", BuilderView{SessionID: "s", Games: []external.ESPN_Event{event}}, 2, "pick_game_s"},
		{"choose type", BuilderView{SessionID: "s", Game: &event}, 2, "pick_type_s_moneyline"},
		{"choose side", BuilderView{SessionID: "s", Game: &event, PickType: models.PickTypeTotal}, 3, "pick_type_s_moneyline"},
		{"resolved with legs", BuilderView{SessionID: "s", Game: &event, PickType: models.PickTypeMoneyline, Resolved: &resolved, Legs: []models.Pick{resolved}}, 4, "pick_type_s_moneyline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := BuilderComponents(tt.view)
			if len(rows) != tt.wantRows {
				t.Fatalf("Expected %d rows, got %d", tt.wantRows, len(rows))
			}
			var first string
			switch c := rows[0].(discordgo.ActionsRow).Components[0].(type) {
			case discordgo.SelectMenu:
				first = c.CustomID
			case discordgo.Button:
				first = c.CustomID
			}
			if first != tt.wantFirst {
				t.Errorf("Expected first component %q, got %q", tt.wantFirst, first)
			}
		})
	}
}

func TestGameOptionValue(t *testing.T) {
	sport, id, ok := ParseGameOptionValue(GameOptionValue("nba", "401585601"))
	if !ok || sport != "nba" || id != "401585601" {
		t.Errorf("Unexpected parse %q %q %v", sport, id, ok)
	}
}

func TestLeaderboardEmbed(t *testing.T) {
	name := "sharp"
	embed := LeaderboardEmbed([]store.Standing{
		{User: models.User{DiscordID: "1", Username: &name}, Won: 3, Lost: 1},
		{User: models.User{DiscordID: "2"}, Won: 1, Lost: 1},
	})
	if !strings.Contains(embed.Description, "🥇 **sharp** 3-1 (75%)") {
		t.Errorf("Unexpected leader line in %q", embed.Description)
	}
	if !strings.Contains(embed.Description, "🥈 **2** 1-1 (50%)") {
		t.Errorf("Expected Discord ID fallback in %q", embed.Description)
	}

	if empty := LeaderboardEmbed(nil); empty.Description != "No settled picks yet." {
		t.Errorf("Unexpected empty leaderboard %q", empty.Description)
	}
}
