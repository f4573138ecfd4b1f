package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"

	"picksBot/config"
	"picksBot/models"
	"picksBot/models/external"
	"picksBot/services/extService"
	"picksBot/services/metrics"
	"picksBot/services/store/storetest"
)

type fakeGames struct {
	events []external.ESPN_Event
	odds   *external.OddsAPI_Event
}

func (f *fakeGames) Sports() *config.SportRegistry { return config.DefaultSports() }

func (f *fakeGames) Sport(tag string) (config.Sport, error) {
	s, ok := config.DefaultSports().Get(tag)
	if !ok {
		return config.Sport{}, extService.ErrUnknownSport
	}
	return s, nil
}

func (f *fakeGames) Scoreboard(ctx context.Context, sportTag string, day *time.Time) ([]external.ESPN_Event, error) {
	return f.events, nil
}

func (f *fakeGames) Event(ctx context.Context, sportTag, eventID string, day *time.Time) (external.ESPN_Event, error) {
	for _, e := range f.events {
		if e.ID == eventID {
			return e, nil
		}
	}
	return external.ESPN_Event{}, extService.ErrGameNotFound
}

func (f *fakeGames) GameDetails(ctx context.Context, sportTag string, event external.ESPN_Event) (*extService.GameDetails, error) {
	return &extService.GameDetails{Event: event, Odds: f.odds}, nil
}

func (f *fakeGames) Now() time.Time { return time.Now() }

func (f *fakeGames) Location() *time.Location { return time.UTC }

func newTestRouter(t *testing.T) (*gin.Engine, *storetest.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	games := &fakeGames{
		events: []external.ESPN_Event{{ID: "401", Name: "Boston Celtics at Los Angeles Lakers"}},
		odds: &external.OddsAPI_Event{
			HomeTeam: "Los Angeles Lakers",
			AwayTeam: "Boston Celtics",
			Bookmakers: []external.OddsAPI_Bookmaker{{
				Key:   "draftkings",
				Title: "DraftKings",
				Markets: []external.OddsAPI_Market{{
					Key: "h2h",
					Outcomes: []external.OddsAPI_Outcome{
						{Name: "Los Angeles Lakers", Price: -150},
						{Name: "Boston Celtics", Price: 130},
					},
				}},
			}},
		},
	}
	mem := storetest.NewMemory()
	return NewRouter(NewHandler(games, mem, metrics.New()), nil), mem
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("Invalid JSON %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	if w := doRequest(router, http.MethodGet, "/healthz", nil); w.Code != http.StatusOK {
		t.Errorf("Expected 200 from /healthz, got %d", w.Code)
	}
	w := doRequest(router, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 from /metrics, got %d", w.Code)
	}
}

func TestGetScores(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		path string
		code int
	}{
		{"known sport", "/v1/scores/nba", http.StatusOK},
		{"unknown sport", "/v1/scores/curling", http.StatusNotFound},
		{"bad date", "/v1/scores/nba?date=yesterday", http.StatusBadRequest},
		{"explicit date", "/v1/scores/nba?date=2025-01-15", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tt.path, nil)
			if w.Code != tt.code {
				t.Errorf("Expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetScoresRequestsDayInProviderZone(t *testing.T) {
	gin.SetMode(gin.TestMode)

	dates := make(chan string, 1)
	espn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dates <- r.URL.Query().Get("dates")
		w.Write([]byte(`{"events": []}`))
	}))
	defer espn.Close()

	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	client := extService.NewClient(config.DefaultSports(),
		extService.WithESPNBaseURL(espn.URL),
		extService.WithMetrics(metrics.New()),
		extService.WithLocation(est),
	)
	router := NewRouter(NewHandler(client, storetest.NewMemory(), metrics.New()), nil)

	w := doRequest(router, http.MethodGet, "/v1/scores/nba?date=2025-01-15", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if got := <-dates; got != "20250115" {
		t.Errorf("Expected upstream dates=20250115, got %q", got)
	}
}

func TestGetGameQuotes(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/v1/games/nba/401", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := decode(t, w)["data"].(map[string]any)
	quotes, _ := data["quotes"].([]any)
	if len(quotes) != 2 {
		t.Fatalf("Expected home and away moneyline quotes, got %v", data["quotes"])
	}
	home := quotes[0].(map[string]any)
	if home["odds"].(float64) != -150 || home["bookmaker"] != "DraftKings" {
		t.Errorf("Unexpected home quote %v", home)
	}

	if w := doRequest(router, http.MethodGet, "/v1/games/nba/999", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a missing game, got %d", w.Code)
	}
}

func TestPriceParlay(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		body   string
		code   int
		payout string
	}{
		{"two even legs", `{"legs":[100,100],"stake":"10"}`, http.StatusOK, "40.00"},
		{"no stake", `{"legs":[-110,150]}`, http.StatusOK, ""},
		{"single leg", `{"legs":[-110]}`, http.StatusBadRequest, ""},
		{"zero odds", `{"legs":[0,100]}`, http.StatusBadRequest, ""},
		{"zero stake", `{"legs":[100,100],"stake":"0"}`, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/v1/parlay/price", []byte(tt.body))
			if w.Code != tt.code {
				t.Fatalf("Expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
			if tt.payout == "" {
				return
			}
			data := decode(t, w)["data"].(map[string]any)
			if data["payout"] != tt.payout {
				t.Errorf("Expected payout %s, got %v", tt.payout, data["payout"])
			}
			if data["combined_odds"].(float64) != 300 {
				t.Errorf("Expected combined +300, got %v", data["combined_odds"])
			}
		})
	}
}

func TestFeedAndPosts(t *testing.T) {
	router, mem := newTestRouter(t)
	ctx := context.Background()

	author, _ := mem.EnsureUser(ctx, "d1", "sharp")
	post := &models.Post{AuthorID: author.ID, Kind: models.PostKindText, Body: "hammer the over"}
	if err := mem.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if err := mem.AddComment(ctx, &models.Comment{PostID: post.ID, AuthorID: author.ID, Body: "tailing"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	w := doRequest(router, http.MethodGet, "/v1/feed?limit=500", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	feed := decode(t, w)
	if feed["count"].(float64) != 1 || feed["limit"].(float64) != 50 {
		t.Errorf("Expected one post and a clamped limit, got %v", feed)
	}
	first := feed["data"].([]any)[0].(map[string]any)
	if first["id"] != post.ShareID || first["author"] != "sharp" {
		t.Errorf("Unexpected feed entry %v", first)
	}

	if w := doRequest(router, http.MethodGet, "/v1/feed?author=nobody", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown author, got %d", w.Code)
	}

	w = doRequest(router, http.MethodGet, "/v1/posts/"+post.ShareID, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "hammer the over") {
		t.Errorf("Expected the post, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodGet, "/v1/posts/"+post.ShareID+"/comments", nil)
	if w.Code != http.StatusOK || decode(t, w)["count"].(float64) != 1 {
		t.Errorf("Expected one comment, got %d: %s", w.Code, w.Body.String())
	}

	if w := doRequest(router, http.MethodGet, "/v1/posts/missing", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestGetLeaderboard(t *testing.T) {
	router, mem := newTestRouter(t)
	ctx := context.Background()

	sharp, _ := mem.EnsureUser(ctx, "d1", "sharp")
	square, _ := mem.EnsureUser(ctx, "d2", "square")
	for _, tc := range []struct {
		author uint
		result models.PickResult
	}{
		{sharp.ID, models.PickResultWon},
		{sharp.ID, models.PickResultWon},
		{square.ID, models.PickResultLost},
		{square.ID, models.PickResultPending},
	} {
		post := &models.Post{
			AuthorID: tc.author,
			Kind:     models.PostKindPick,
			Picks:    []models.Pick{{Sport: "nba", EventID: "401", PickType: models.PickTypeMoneyline, PickSide: models.PickSideHome, Odds: -110, Result: tc.result}},
		}
		if err := mem.CreatePost(ctx, post); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}

	w := doRequest(router, http.MethodGet, "/v1/leaderboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	data := decode(t, w)["data"].([]any)
	if len(data) != 2 {
		t.Fatalf("Expected two ranked authors, got %v", data)
	}
	leader := data[0].(map[string]any)
	if leader["author"] != "sharp" || leader["won"].(float64) != 2 || leader["rank"].(float64) != 1 {
		t.Errorf("Unexpected leader %v", leader)
	}
	runnerUp := data[1].(map[string]any)
	if runnerUp["won"].(float64) != 0 || runnerUp["lost"].(float64) != 1 {
		t.Errorf("Unexpected runner-up %v", runnerUp)
	}
}

func TestCORSAllowedOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(NewHandler(&fakeGames{}, storetest.NewMemory(), metrics.New()), []string{"https://picks.example"})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://picks.example", true},
		{"https://elsewhere.example", false},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", tt.origin)
		router.ServeHTTP(w, req)

		got := w.Header().Get("Access-Control-Allow-Origin") == tt.origin
		if got != tt.allowed {
			t.Errorf("Origin %s: expected allowed=%v, got status %d header %q", tt.origin, tt.allowed, w.Code, w.Header().Get("Access-Control-Allow-Origin"))
		}
	}
}

func TestGetSportsHidesProviderKeys(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/v1/sports", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "basketball_nba") {
		t.Errorf("Expected provider keys to be hidden, got %s", w.Body.String())
	}
	data := decode(t, w)["data"].([]any)
	if len(data) != len(config.DefaultSports().All()) {
		t.Errorf("Expected every configured sport, got %d", len(data))
	}
}
