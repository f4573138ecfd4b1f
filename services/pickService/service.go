// Package pickService drives the pick builder: game selection, pick type and
// side, odds resolution, and sharing the finished single or parlay as a post.
package pickService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"picksBot/config"
	"picksBot/models"
	"picksBot/models/external"
	"picksBot/services/extService"
	"picksBot/services/metrics"
	"picksBot/services/store"
)

// maxGameChoices matches Discord's select menu option limit.
const maxGameChoices = 25

var (
	ErrNotOwner    = errors.New("pick session belongs to another user")
	ErrGameStarted = errors.New("game has already started")
)

// GameSource is the slice of the provider client the builder needs.
type GameSource interface {
	Sport(tag string) (config.Sport, error)
	Scoreboard(ctx context.Context, sportTag string, day *time.Time) ([]external.ESPN_Event, error)
	Event(ctx context.Context, sportTag, eventID string, day *time.Time) (external.ESPN_Event, error)
	GameDetails(ctx context.Context, sportTag string, event external.ESPN_Event) (*extService.GameDetails, error)
	Now() time.Time
}

type Service struct {
	games    GameSource
	store    store.Store
	sessions *Sessions
	metrics  *metrics.Metrics
}

func NewService(games GameSource, st store.Store, sessions *Sessions, m *metrics.Metrics) *Service {
	if m == nil {
		m = metrics.Default()
	}
	return &Service{games: games, store: st, sessions: sessions, metrics: m}
}

func (s *Service) Sessions() *Sessions {
	return s.sessions
}

// Start opens a builder session. The session id is not shared until Start
// returns, so setting the sport here is not racy.
func (s *Service) Start(ownerID, sportTag string) *Session {
	session := s.sessions.Start(ownerID)
	session.SportTag = sportTag
	return session
}

// UpcomingGames lists today's games that have not started, up to the number
// a select menu can show.
func (s *Service) UpcomingGames(ctx context.Context, sportTag string) ([]external.ESPN_Event, error) {
	events, err := s.games.Scoreboard(ctx, sportTag, nil)
	if err != nil {
		return nil, err
	}

	now := s.games.Now()
	var open []external.ESPN_Event
	for _, event := range events {
		if !event.Upcoming(now) {
			continue
		}
		open = append(open, event)
		if len(open) == maxGameChoices {
			break
		}
	}
	return open, nil
}

// ChooseGame fetches the game with its odds outside the session lock, then
// selects it.
func (s *Service) ChooseGame(ctx context.Context, sessionID, ownerID, sportTag, eventID string) error {
	sport, err := s.games.Sport(sportTag)
	if err != nil {
		return err
	}
	event, err := s.games.Event(ctx, sportTag, eventID, nil)
	if err != nil {
		return err
	}
	if !event.Upcoming(s.games.Now()) {
		return fmt.Errorf("%w: %s", ErrGameStarted, event.Name)
	}
	details, err := s.games.GameDetails(ctx, sportTag, event)
	if err != nil {
		return err
	}

	return s.sessions.With(sessionID, ownerID, func(session *Session) error {
		session.SportTag = sport.Tag
		return session.Builder.SelectGame(sport, details)
	})
}

func (s *Service) ChooseType(sessionID, ownerID string, t models.PickType) error {
	return s.sessions.With(sessionID, ownerID, func(session *Session) error {
		return session.Builder.SelectType(t)
	})
}

func (s *Service) ChooseProp(sessionID, ownerID, player string, line float64) error {
	return s.sessions.With(sessionID, ownerID, func(session *Session) error {
		return session.Builder.SetProp(player, line)
	})
}

// ChooseSide returns the leg with its resolved odds.
func (s *Service) ChooseSide(sessionID, ownerID string, side models.PickSide) (models.Pick, error) {
	var resolved models.Pick
	err := s.sessions.With(sessionID, ownerID, func(session *Session) error {
		if err := session.Builder.SelectSide(side); err != nil {
			return err
		}
		resolved = *session.Builder.Resolved()
		return nil
	})
	return resolved, err
}

func (s *Service) AddLeg(sessionID, ownerID string) (models.Pick, error) {
	var pick models.Pick
	err := s.sessions.With(sessionID, ownerID, func(session *Session) error {
		var err error
		pick, err = session.Builder.Commit()
		return err
	})
	return pick, err
}

func (s *Service) RemoveLeg(sessionID, ownerID string, idx int) error {
	return s.sessions.With(sessionID, ownerID, func(session *Session) error {
		return session.Builder.RemoveLeg(idx)
	})
}

// Summary is a point-in-time copy of a builder for rendering.
type Summary struct {
	SessionID    string
	SportTag     string
	State        State
	Sport        config.Sport
	Game         *external.ESPN_Event
	PickType     models.PickType
	Resolved     *models.Pick
	Legs         []models.Pick
	Mode         Mode
	CombinedOdds *int
	// Players from both rosters, for player props.
	Players []string
	Now     time.Time
}

func rosterPlayers(game *extService.GameDetails) []string {
	var players []string
	for _, roster := range []*external.ESPN_Roster{game.HomeRoster, game.AwayRoster} {
		if roster == nil {
			continue
		}
		for _, athlete := range roster.Players() {
			if athlete.FullName != "" {
				players = append(players, athlete.FullName)
			}
		}
	}
	return players
}

func (s *Service) Summary(sessionID, ownerID string) (Summary, error) {
	var summary Summary
	err := s.sessions.With(sessionID, ownerID, func(session *Session) error {
		b := session.Builder
		summary = Summary{
			SessionID: session.ID,
			SportTag:  session.SportTag,
			State:     b.State(),
			Sport:     b.Sport(),
			PickType:  b.PickType(),
			Legs:      append([]models.Pick(nil), b.Legs()...),
			Mode:      b.Mode(),
			Now:       s.games.Now(),
		}
		if game := b.Game(); game != nil {
			event := game.Event
			summary.Game = &event
			if b.PickType() == models.PickTypePlayerProp {
				summary.Players = rosterPlayers(game)
			}
		}
		if r := b.Resolved(); r != nil {
			pick := *r
			summary.Resolved = &pick
		}
		combined, err := b.CombinedOdds()
		if err != nil {
			return err
		}
		summary.CombinedOdds = combined
		return nil
	})
	return summary, err
}

// Share stores the builder's legs as a pick post and ends the session. Legs
// whose game started while the session sat idle are refused.
func (s *Service) Share(ctx context.Context, sessionID string, author *models.User, body string, stake decimal.NullDecimal) (*models.Post, error) {
	var (
		post *models.Post
		mode Mode
	)
	now := s.games.Now()
	err := s.sessions.With(sessionID, author.DiscordID, func(session *Session) error {
		if leg, ok := session.Builder.StartedLeg(now); ok {
			return fmt.Errorf("%w: %s at %s", ErrGameStarted, leg.AwayTeam, leg.HomeTeam)
		}
		var err error
		post, err = session.Builder.Post(author.ID, body, stake)
		mode = session.Builder.Mode()
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("error sharing pick: %w", err)
	}
	post.Author = *author
	s.sessions.End(sessionID)

	s.metrics.PicksShared.WithLabelValues(string(mode)).Inc()
	slog.Info("pick shared", "post", post.ID, "mode", mode, "legs", len(post.Picks))
	return post, nil
}

func (s *Service) Cancel(sessionID, ownerID string) error {
	err := s.sessions.With(sessionID, ownerID, func(*Session) error { return nil })
	if err != nil {
		return err
	}
	s.sessions.End(sessionID)
	return nil
}

// CleanupSessions is run by the scheduler.
func (s *Service) CleanupSessions() {
	if removed := s.sessions.Cleanup(); removed > 0 {
		slog.Info("expired pick sessions removed", "count", removed)
	}
}
