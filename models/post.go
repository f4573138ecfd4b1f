package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PostKind string

const (
	PostKindText PostKind = "text"
	PostKindPick PostKind = "pick"
)

type PostStatus string

const (
	PostStatusNone    PostStatus = ""
	PostStatusPending PostStatus = "pending"
	PostStatusWon     PostStatus = "won"
	PostStatusLost    PostStatus = "lost"
)

// Post is a feed entry. Kind discriminates a plain text post from a pick post;
// only pick posts carry Picks, CombinedOdds and Stake.
type Post struct {
	ID           uint      `gorm:"primaryKey"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
	ShareID      string   `gorm:"uniqueIndex; size:36"`
	AuthorID     uint     `gorm:"index"`
	Author       User     `gorm:"foreignKey:AuthorID"`
	Kind         PostKind `gorm:"size:16"`
	Body         string   `gorm:"size:2000"`
	CombinedOdds *int
	Stake        decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	Status       PostStatus          `gorm:"size:16"`
	LikeCount    int                 `gorm:"default:0"`
	RepostCount  int                 `gorm:"default:0"`
	CommentCount int                 `gorm:"default:0"`
	Picks        []Pick              `gorm:"foreignKey:PostID"`
	// Where the post was shared on Discord, if anywhere.
	GuildID   string  `gorm:"size:64"`
	ChannelID string  `gorm:"size:64"`
	MessageID *string `gorm:"size:64"`
}

// IsParlay is true for pick posts with two or more legs.
func (p Post) IsParlay() bool {
	return p.Kind == PostKindPick && len(p.Picks) > 1
}

// Legs returns the American odds of every pick in order.
func (p Post) Legs() []int {
	legs := make([]int, 0, len(p.Picks))
	for _, pick := range p.Picks {
		legs = append(legs, pick.Odds)
	}
	return legs
}

// DeriveStatus is won when every leg won, lost when any leg lost, otherwise pending.
func (p Post) DeriveStatus() PostStatus {
	if p.Kind != PostKindPick || len(p.Picks) == 0 {
		return PostStatusNone
	}

	allWon := true
	for _, pick := range p.Picks {
		switch pick.Result {
		case PickResultLost, PickResultPush:
			return PostStatusLost
		case PickResultWon:
		default:
			allWon = false
		}
	}

	if allWon {
		return PostStatusWon
	}
	return PostStatusPending
}
