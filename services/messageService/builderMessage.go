package messageService

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"picksBot/config"
	"picksBot/models"
	"picksBot/models/external"
	"picksBot/services/odds"
)

const (
	PickGamePrefix       = "pick_game_"
	PickTypePrefix       = "pick_type_"
	PickPropPrefix       = "pick_prop_"
	PickPropModalPrefix  = "pick_prop_modal_"
	PickSidePrefix       = "pick_side_"
	PickAddPrefix        = "pick_add_"
	PickRemovePrefix     = "pick_remove_"
	PickSharePrefix      = "pick_share_"
	PickShareModalPrefix = "pick_share_modal_"
	PickCancelPrefix     = "pick_cancel_"
)

// maxMenuOptions is Discord's select menu option limit.
const maxMenuOptions = 25

// BuilderView is a snapshot of a pick session for rendering.
type BuilderView struct {
	SessionID    string
	Sport        config.Sport
	Game         *external.ESPN_Event
	PickType     models.PickType
	Resolved     *models.Pick
	Legs         []models.Pick
	CombinedOdds *int
	// Games offered when no game is selected.
	Games []external.ESPN_Event
	// Roster players offered for a player prop.
	Players []string
}

// GameOptionValue packs the sport and event id into a select value.
func GameOptionValue(sportTag, eventID string) string {
	return sportTag + ":" + eventID
}

func ParseGameOptionValue(v string) (sportTag, eventID string, ok bool) {
	return strings.Cut(v, ":")
}

func gameLabel(e external.ESPN_Event) string {
	if e.HomeName() == "" {
		return e.Name
	}
	return fmt.Sprintf("%s @ %s", e.AwayName(), e.HomeName())
}

func BuilderEmbed(v BuilderView) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎯 Build a Pick",
		Color: colorPending,
	}
	if v.Sport.DisplayName != "" {
		embed.Title = fmt.Sprintf("🎯 Build a Pick · %s", v.Sport.DisplayName)
	}

	if len(v.Legs) > 0 {
		var legs strings.Builder
		for idx, leg := range v.Legs {
			fmt.Fprintf(&legs, "%d. %s\n", idx+1, PickLine(leg))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Legs",
			Value: truncate(legs.String(), discordFieldValueLimit),
		})
	}
	if v.CombinedOdds != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Parlay Odds",
			Value:  odds.FormatAmerican(*v.CombinedOdds),
			Inline: true,
		})
	}

	switch {
	case v.Resolved != nil:
		embed.Description = fmt.Sprintf("**%s**", PickLine(*v.Resolved))
		if v.Resolved.OddsDefaulted {
			embed.Description += "\nNo bookmaker line was found, so standard -110 odds were used."
		}
	case v.Game != nil && v.PickType != "":
		embed.Description = fmt.Sprintf("%s · **%s**\nPick a side.", gameLabel(*v.Game), v.PickType)
	case v.Game != nil:
		embed.Description = fmt.Sprintf("%s\nChoose a pick type.", gameLabel(*v.Game))
	default:
		embed.Description = "Choose a game."
	}
	return embed
}

func gameMenu(v BuilderView) discordgo.ActionsRow {
	var options []discordgo.SelectMenuOption
	for idx, e := range v.Games {
		if idx == maxMenuOptions {
			break
		}
		desc := e.Status.Type.ShortDetail
		if start := e.StartTime(); desc == "" && !start.IsZero() {
			desc = start.Format("Jan 2 3:04 PM MST")
		}
		options = append(options, discordgo.SelectMenuOption{
			Label:       truncate(gameLabel(e), 100),
			Value:       GameOptionValue(v.Sport.Tag, e.ID),
			Description: truncate(desc, 100),
		})
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    PickGamePrefix + v.SessionID,
				Placeholder: "Select a game",
				Options:     options,
			},
		},
	}
}

func typeButtons(v BuilderView) discordgo.ActionsRow {
	labels := map[models.PickType]string{
		models.PickTypeMoneyline:  "Moneyline",
		models.PickTypeSpread:     "Spread",
		models.PickTypeTotal:      "Total",
		models.PickTypePlayerProp: "Player Prop",
	}
	var buttons []discordgo.MessageComponent
	for _, t := range models.PickTypes {
		style := discordgo.SecondaryButton
		if t == v.PickType {
			style = discordgo.PrimaryButton
		}
		buttons = append(buttons, discordgo.Button{
			Label:    labels[t],
			Style:    style,
			CustomID: fmt.Sprintf("%s%s_%s", PickTypePrefix, v.SessionID, t),
		})
	}
	return discordgo.ActionsRow{Components: buttons}
}

func sideLabel(v BuilderView, side models.PickSide) string {
	switch side {
	case models.PickSideHome:
		return v.Game.HomeName()
	case models.PickSideAway:
		return v.Game.AwayName()
	case models.PickSideDraw:
		return "Draw"
	case models.PickSideOver:
		return "Over"
	case models.PickSideUnder:
		return "Under"
	}
	return string(side)
}

func sideButtons(v BuilderView) discordgo.ActionsRow {
	var buttons []discordgo.MessageComponent
	for _, side := range models.ValidSides(v.PickType, v.Sport.AllowsDraw) {
		buttons = append(buttons, discordgo.Button{
			Label:    truncate(sideLabel(v, side), 80),
			Style:    discordgo.SuccessButton,
			CustomID: fmt.Sprintf("%s%s_%s", PickSidePrefix, v.SessionID, side),
		})
	}
	return discordgo.ActionsRow{Components: buttons}
}

func playerMenu(v BuilderView) discordgo.ActionsRow {
	var options []discordgo.SelectMenuOption
	for idx, name := range v.Players {
		if idx == maxMenuOptions {
			break
		}
		options = append(options, discordgo.SelectMenuOption{Label: truncate(name, 100), Value: truncate(name, 100)})
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    PickPropPrefix + v.SessionID,
				Placeholder: "Select a player",
				Options:     options,
			},
		},
	}
}

func legMenu(v BuilderView) discordgo.ActionsRow {
	var options []discordgo.SelectMenuOption
	for idx, leg := range v.Legs {
		options = append(options, discordgo.SelectMenuOption{
			Label: truncate(fmt.Sprintf("Remove %d. %s", idx+1, leg.Label()), 100),
			Value: strconv.Itoa(idx),
		})
	}
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    PickRemovePrefix + v.SessionID,
				Placeholder: "Remove a leg",
				Options:     options,
			},
		},
	}
}

func actionButtons(v BuilderView) discordgo.ActionsRow {
	canShare := v.Resolved != nil || len(v.Legs) > 0
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Add Leg",
				Style:    discordgo.PrimaryButton,
				CustomID: PickAddPrefix + v.SessionID,
				Disabled: v.Resolved == nil,
				Emoji:    &discordgo.ComponentEmoji{Name: "➕"},
			},
			discordgo.Button{
				Label:    "Share",
				Style:    discordgo.SuccessButton,
				CustomID: PickSharePrefix + v.SessionID,
				Disabled: !canShare,
				Emoji:    &discordgo.ComponentEmoji{Name: "📣"},
			},
			discordgo.Button{
				Label:    "Cancel",
				Style:    discordgo.DangerButton,
				CustomID: PickCancelPrefix + v.SessionID,
			},
		},
	}
}

// BuilderComponents offers the controls for the builder's current step.
// Discord allows five rows per message.
func BuilderComponents(v BuilderView) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent

	switch {
	case v.Game == nil:
		if len(v.Games) > 0 {
			rows = append(rows, gameMenu(v))
		}
	case v.PickType == "":
		rows = append(rows, typeButtons(v))
	default:
		rows = append(rows, typeButtons(v))
		if v.PickType == models.PickTypePlayerProp && len(v.Players) > 0 && v.Resolved == nil {
			rows = append(rows, playerMenu(v))
		}
		rows = append(rows, sideButtons(v))
	}

	if len(v.Legs) > 0 {
		rows = append(rows, legMenu(v))
	}
	rows = append(rows, actionButtons(v))
	return rows
}

func PropModal(sessionID, player string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: PickPropModalPrefix + sessionID,
		Title:    "Player Prop",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "player",
						Label:     "Player",
						Style:     discordgo.TextInputShort,
						Value:     player,
						Required:  true,
						MaxLength: 128,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "line",
						Label:       "Line",
						Style:       discordgo.TextInputShort,
						Placeholder: "24.5",
						Required:    true,
						MaxLength:   8,
					},
				},
			},
		},
	}
}

func ShareModal(sessionID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: PickShareModalPrefix + sessionID,
		Title:    "Share Pick",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "stake",
						Label:       "Stake (optional)",
						Style:       discordgo.TextInputShort,
						Placeholder: "10.00",
						Required:    false,
						MaxLength:   12,
					},
				},
			},
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "caption",
						Label:     "Caption",
						Style:     discordgo.TextInputParagraph,
						Required:  false,
						MaxLength: 2000,
					},
				},
			},
		},
	}
}
