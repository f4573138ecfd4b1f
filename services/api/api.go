// Package api serves read-only game, odds and feed data over HTTP, plus
// health and Prometheus endpoints.
package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"picksBot/config"
	"picksBot/models"
	"picksBot/services/extService"
	"picksBot/services/metrics"
	"picksBot/services/odds"
	"picksBot/services/pickService"
	"picksBot/services/store"
)

// Games is the provider client as the API uses it.
type Games interface {
	pickService.GameSource
	Sports() *config.SportRegistry
	Location() *time.Location
}

type Handler struct {
	games   Games
	store   store.Store
	metrics *metrics.Metrics
}

func NewHandler(games Games, st store.Store, m *metrics.Metrics) *Handler {
	if m == nil {
		m = metrics.Default()
	}
	return &Handler{games: games, store: st, metrics: m}
}

// NewRouter wires every route onto a fresh gin engine. With no allowed
// origins any browser origin may read the API.
func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{})))

	v1 := router.Group("/v1")
	{
		v1.GET("/sports", h.GetSports)
		v1.GET("/scores/:sport", h.GetScores)
		v1.GET("/games/:sport/:eventId", h.GetGame)
		v1.POST("/parlay/price", h.PriceParlay)
		v1.GET("/feed", h.GetFeed)
		v1.GET("/leaderboard", h.GetLeaderboard)
		v1.GET("/posts/:id", h.GetPost)
		v1.GET("/posts/:id/comments", h.GetComments)
	}
	return router
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) GetSports(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.games.Sports().All(),
	})
}

// upstreamStatus maps provider errors onto HTTP statuses.
func upstreamStatus(err error) int {
	var statusErr *extService.StatusError
	switch {
	case errors.Is(err, extService.ErrUnknownSport):
		return http.StatusNotFound
	case errors.Is(err, extService.ErrGameNotFound):
		return http.StatusNotFound
	case errors.As(err, &statusErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// GetScores returns the scoreboard for today or for ?date=YYYY-MM-DD, read as
// a day in the provider's zone.
func (h *Handler) GetScores(c *gin.Context) {
	sport, err := h.games.Sport(c.Param("sport"))
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}

	var day *time.Time
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, h.games.Location())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		day = &parsed
	}

	events, err := h.games.Scoreboard(c.Request.Context(), sport.Tag, day)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"sport":   sport.Tag,
		"data":    events,
		"count":   len(events),
	})
}

type quoteResponse struct {
	PickType  models.PickType `json:"pick_type"`
	Side      models.PickSide `json:"side"`
	Odds      int             `json:"odds"`
	Line      *float64        `json:"line,omitempty"`
	Bookmaker string          `json:"bookmaker,omitempty"`
}

// GetGame returns one event with its matched odds record and the resolved
// price of every side.
func (h *Handler) GetGame(c *gin.Context) {
	ctx := c.Request.Context()
	sport, err := h.games.Sport(c.Param("sport"))
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	event, err := h.games.Event(ctx, sport.Tag, c.Param("eventId"), nil)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}
	details, err := h.games.GameDetails(ctx, sport.Tag, event)
	if err != nil {
		c.JSON(upstreamStatus(err), gin.H{"error": err.Error()})
		return
	}

	var quotes []quoteResponse
	for _, t := range []models.PickType{models.PickTypeMoneyline, models.PickTypeSpread, models.PickTypeTotal} {
		for _, side := range models.ValidSides(t, sport.AllowsDraw) {
			quote, ok := extService.QuoteFor(details, t, side)
			if !ok {
				continue
			}
			quotes = append(quotes, quoteResponse{PickType: t, Side: side, Odds: quote.Odds, Line: quote.Line, Bookmaker: quote.Bookmaker})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"event":  details.Event,
			"odds":   details.Odds,
			"quotes": quotes,
		},
	})
}

type parlayRequest struct {
	Legs  []int            `json:"legs" binding:"required,min=2"`
	Stake *decimal.Decimal `json:"stake"`
}

func (h *Handler) PriceParlay(c *gin.Context) {
	var req parlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	combined, err := odds.CombinedParlayOdds(req.Legs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	multiplier, err := odds.DecimalMultiplier(req.Legs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data := gin.H{
		"legs":                req.Legs,
		"combined_odds":       *combined,
		"decimal_odds":        multiplier.StringFixed(4),
		"implied_probability": decimal.NewFromInt(1).Div(multiplier).StringFixed(4),
	}
	if req.Stake != nil {
		if !req.Stake.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stake must be positive"})
			return
		}
		payout, err := odds.ParlayPayout(*req.Stake, req.Legs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		data["stake"] = req.Stake.StringFixed(2)
		data["payout"] = payout.StringFixed(2)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

type pickResponse struct {
	Sport         string            `json:"sport"`
	EventID       string            `json:"event_id"`
	HomeTeam      string            `json:"home_team"`
	AwayTeam      string            `json:"away_team"`
	CommenceTime  time.Time         `json:"commence_time"`
	PickType      models.PickType   `json:"pick_type"`
	PickSide      models.PickSide   `json:"pick_side"`
	Line          *float64          `json:"line,omitempty"`
	Selection     string            `json:"selection,omitempty"`
	Odds          int               `json:"odds"`
	OddsDefaulted bool              `json:"odds_defaulted"`
	Result        models.PickResult `json:"result"`
	Label         string            `json:"label"`
}

type postResponse struct {
	ID           string            `json:"id"`
	Kind         models.PostKind   `json:"kind"`
	Author       string            `json:"author"`
	Body         string            `json:"body"`
	CreatedAt    time.Time         `json:"created_at"`
	Status       models.PostStatus `json:"status,omitempty"`
	CombinedOdds *int              `json:"combined_odds,omitempty"`
	Stake        *string           `json:"stake,omitempty"`
	Likes        int               `json:"likes"`
	Reposts      int               `json:"reposts"`
	Comments     int               `json:"comments"`
	Picks        []pickResponse    `json:"picks,omitempty"`
}

// toPostResponse exposes posts by their share id only.
func toPostResponse(p models.Post) postResponse {
	resp := postResponse{
		ID:           p.ShareID,
		Kind:         p.Kind,
		Author:       p.Author.DisplayName(),
		Body:         p.Body,
		CreatedAt:    p.CreatedAt,
		Status:       p.Status,
		CombinedOdds: p.CombinedOdds,
		Likes:        p.LikeCount,
		Reposts:      p.RepostCount,
		Comments:     p.CommentCount,
	}
	if p.Stake.Valid {
		stake := p.Stake.Decimal.StringFixed(2)
		resp.Stake = &stake
	}
	for _, pick := range p.Picks {
		resp.Picks = append(resp.Picks, pickResponse{
			Sport:         pick.Sport,
			EventID:       pick.EventID,
			HomeTeam:      pick.HomeTeam,
			AwayTeam:      pick.AwayTeam,
			CommenceTime:  pick.CommenceTime,
			PickType:      pick.PickType,
			PickSide:      pick.PickSide,
			Line:          pick.Line,
			Selection:     pick.Selection,
			Odds:          pick.Odds,
			OddsDefaulted: pick.OddsDefaulted,
			Result:        pick.Result,
			Label:         pick.Label(),
		})
	}
	return resp
}

// GetFeed pages the public feed with ?limit and ?offset, optionally for one
// author's Discord id.
func (h *Handler) GetFeed(c *gin.Context) {
	ctx := c.Request.Context()
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultPageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	q := store.FeedQuery{Limit: limit, Offset: offset}
	if discordID := c.Query("author"); discordID != "" {
		author, err := h.store.UserByDiscordID(ctx, discordID)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Author not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch author"})
			return
		}
		q.AuthorID = author.ID
	}
	q = q.Normalize()

	posts, err := h.store.Feed(ctx, q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}

	data := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		data = append(data, toPostResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"count":   len(data),
		"limit":   q.Limit,
		"offset":  q.Offset,
	})
}

type standingResponse struct {
	Rank   int    `json:"rank"`
	Author string `json:"author"`
	Won    int64  `json:"won"`
	Lost   int64  `json:"lost"`
}

func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(store.DefaultPageSize)))
	if limit <= 0 || limit > store.MaxPageSize {
		limit = store.DefaultPageSize
	}

	standings, err := h.store.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}

	data := make([]standingResponse, 0, len(standings))
	for idx, st := range standings {
		data = append(data, standingResponse{Rank: idx + 1, Author: st.User.DisplayName(), Won: st.Won, Lost: st.Lost})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func (h *Handler) lookupPost(c *gin.Context) (*models.Post, bool) {
	post, err := h.store.PostByShareID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return nil, false
	}
	return post, true
}

func (h *Handler) GetPost(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": toPostResponse(*post)})
}

type commentResponse struct {
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *Handler) GetComments(c *gin.Context) {
	post, ok := h.lookupPost(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	comments, err := h.store.Comments(c.Request.Context(), post.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	data := make([]commentResponse, 0, len(comments))
	for _, cm := range comments {
		data = append(data, commentResponse{Author: cm.Author.DisplayName(), Body: cm.Body, CreatedAt: cm.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "count": len(data)})
}
