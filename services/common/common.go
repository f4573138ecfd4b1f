package common

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"picksBot/models"
	"picksBot/services/store"
)

// errorEntry describes a failed interaction; i may be nil.
func errorEntry(i *discordgo.InteractionCreate, err error) models.ErrorLog {
	entry := models.ErrorLog{Message: err.Error()}
	if i == nil {
		return entry
	}
	entry.GuildID = i.GuildID
	if user := InteractionUser(i); user != nil {
		entry.UserID = user.ID
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		entry.Source = "/" + i.ApplicationCommandData().Name
	case discordgo.InteractionMessageComponent:
		entry.Source = i.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		entry.Source = i.ModalSubmitData().CustomID
	}
	return entry
}

// SendError answers the interaction ephemerally and records the error.
func SendError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, st store.Store) {
	slog.Error("interaction failed", "error", err)

	if i != nil {
		localErr := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("An error occured: %v", err),
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		})
		if localErr != nil {
			slog.Warn("error sending interaction", "error", localErr)
		}
	}
	if st != nil {
		st.LogError(context.Background(), errorEntry(i, err))
	}
}

// SendFollowupError reports an error on an interaction that was already
// acknowledged with a deferred response.
func SendFollowupError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, st store.Store) {
	slog.Error("interaction failed after defer", "error", err)
	_, localErr := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: fmt.Sprintf("An error occured: %v", err),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if localErr != nil {
		slog.Warn("error sending followup", "error", localErr)
	}
	if st != nil {
		st.LogError(context.Background(), errorEntry(i, err))
	}
}

// RespondEphemeral sends a message only the invoking user can see.
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

// InteractionUser returns the invoking user for guild and DM interactions.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// GetUsernameFromUser extracts username from a discordgo.User object
func GetUsernameFromUser(user *discordgo.User) string {
	if user == nil {
		return "Unknown User"
	}
	username := user.GlobalName
	if username == "" {
		username = user.Username
	}
	if username == "" {
		return "Unknown User"
	}
	return username
}

// EnsureProfile loads or lazily creates the invoking user's profile.
func EnsureProfile(ctx context.Context, st store.Store, i *discordgo.InteractionCreate) (*models.User, error) {
	user := InteractionUser(i)
	if user == nil {
		return nil, fmt.Errorf("interaction has no user")
	}
	return st.EnsureUser(ctx, user.ID, GetUsernameFromUser(user))
}

// CalculateEntryWin grades a side against a spread given from the home
// team's perspective. scoreDiff is home minus away; landing exactly on the
// number does not cover.
func CalculateEntryWin(side models.PickSide, scoreDiff int, spread float64) bool {
	if side == models.PickSideHome {
		// home + spread beats away when scoreDiff > -spread
		return float64(scoreDiff) > -spread
	}
	// away - spread beats home when -scoreDiff > spread
	return float64(-scoreDiff) > spread
}
