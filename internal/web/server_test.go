package web

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/booksdash/internal/config"
	"github.com/JonMunkholm/booksdash/internal/core"
	"github.com/JonMunkholm/booksdash/internal/country"
	"github.com/JonMunkholm/booksdash/internal/web/templates"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			RequestTimeout: 5 * time.Second,
		},
		Render:   config.RenderConfig{MaxConcurrent: 2, MaxWait: time.Second},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

func testDataset() *core.Dataset {
	mk := func(country, title, author string, rating, year int, age float64) core.Record {
		return core.Record{
			Country: country, BookTitle: title, BookAuthor: author,
			BookRating: rating, YearOfPublication: year, Age: age,
		}
	}
	raw := core.Table{
		mk("Spain", "Niebla", "Unamuno", 8, 1914, 40),
		mk("Austria", "Der Prozess", "Kafka", 9, 1925, 33),
		mk("Austria", "Das Schloss", "Kafka", 7, 1926, math.NaN()),
		mk("Austria", "Amerika", "Kafka", 6, 1925, 21),
		mk("Spain", "Marianela", "Galdos", 0, 1878, 21),
		mk("Canada", "Surfacing", "Atwood", 9, 1972, 50),
	}
	lookup := country.NewRegistry([]country.Entry{
		{Name: "Spain", Alpha3: "ESP"},
		{Name: "Austria", Alpha3: "AUT"},
	})
	return core.NewDataset("test", raw, lookup)
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	s := NewServer(cfg, testDataset())
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func get(s *Server, target string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
		check   func(t *testing.T, sel core.Selection)
	}{
		{
			name:  "empty",
			query: "",
			check: func(t *testing.T, sel core.Selection) {
				assert.Equal(t, core.Selection{}, sel)
			},
		},
		{
			name:  "all_fields",
			query: "country=Austria&year=1925&age=33.5",
			check: func(t *testing.T, sel core.Selection) {
				assert.Equal(t, "Austria", sel.Country)
				assert.Equal(t, 1925, *sel.Year)
				assert.Equal(t, 33.5, *sel.Age)
			},
		},
		{
			name:  "blank_values_stay_unset",
			query: "country=&year=&age=",
			check: func(t *testing.T, sel core.Selection) {
				assert.Nil(t, sel.Year)
				assert.Nil(t, sel.Age)
			},
		},
		{name: "bad_year", query: "year=abc", wantErr: true},
		{name: "fractional_year", query: "year=1999.5", wantErr: true},
		{name: "nan_age", query: "age=NaN", wantErr: true},
		{name: "inf_age", query: "age=Inf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			sel, err := parseSelection(q)

			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidSelection)
				return
			}
			require.NoError(t, err)
			tt.check(t, sel)
		})
	}
}

func TestHandleDashboard(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := get(s, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	body := rec.Body.String()
	assert.Contains(t, body, templates.PageTitle)
	assert.Contains(t, body, "Top Books for Austria in 1925")
	assert.NotContains(t, body, "Canada")
}

func TestHandleDashboard_InvalidSelection(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := get(s, "/?year=abc")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "SEL001")
}

func TestHandleDashboard_SelectionQuotingErrorText(t *testing.T) {
	s := newTestServer(t, testConfig())

	for _, year := range []string{"data unavailable", "unknown view", "rate limit"} {
		t.Run(year, func(t *testing.T) {
			q := url.Values{"year": {year}}
			_, err := parseSelection(q)
			require.ErrorIs(t, err, core.ErrInvalidSelection)
			assert.Equal(t, "SEL001", core.MapError(err).Code)

			rec := get(s, "/api/views?"+q.Encode())

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "SEL001", body.Code)
		})
	}
}

func TestHandleViews(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := get(s, "/api/views?country=Spain")

	require.Equal(t, http.StatusOK, rec.Code)
	var vs struct {
		Selection struct {
			Country string `json:"country"`
			Year    int    `json:"year"`
		} `json:"selection"`
		Options    core.Options `json:"options"`
		Choropleth []any         `json:"choropleth"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &vs))
	assert.Equal(t, "Spain", vs.Selection.Country)
	assert.Equal(t, 1914, vs.Selection.Year)
	assert.Equal(t, []string{"Austria", "Spain"}, vs.Options.Countries)
	assert.Len(t, vs.Choropleth, 4)
}

func TestHandleView(t *testing.T) {
	s := newTestServer(t, testConfig())

	t.Run("year_top", func(t *testing.T) {
		rec := get(s, "/api/views/year-top?country=Austria&year=1925")

		require.Equal(t, http.StatusOK, rec.Code)
		var rows []struct {
			BookTitle  string `json:"book_title"`
			BookRating int    `json:"book_rating"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
		require.Len(t, rows, 2)
		assert.Equal(t, "Amerika", rows[0].BookTitle)
		assert.Equal(t, "Der Prozess", rows[1].BookTitle)
	})

	t.Run("unknown_selection_is_empty", func(t *testing.T) {
		rec := get(s, "/api/views/age-top?country=Atlantis&age=30")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("unknown_view", func(t *testing.T) {
		rec := get(s, "/api/views/pie")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"SEL002"`)
	})
}

func TestHandleOptions(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := get(s, "/api/options?country=Austria")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp OptionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int{1925, 1926}, resp.Options.Years)
	assert.Equal(t, []float64{21, 33}, resp.Options.Ages)
	assert.Equal(t, 1925, *resp.Selection.Year)
	assert.Equal(t, 21.0, *resp.Selection.Age)
}

func TestHandleChart(t *testing.T) {
	s := newTestServer(t, testConfig())

	for _, view := range core.ViewNames {
		t.Run(view, func(t *testing.T) {
			rec := get(s, "/chart/"+view+".svg?country=Austria&year=1925&age=21")

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "<svg")
		})
	}

	t.Run("empty_view_renders_placeholder", func(t *testing.T) {
		rec := get(s, "/chart/scatter.svg?country=Malta")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "No data")
	})

	t.Run("unknown_view", func(t *testing.T) {
		rec := get(s, "/chart/pie.svg")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleChart_Busy(t *testing.T) {
	cfg := testConfig()
	cfg.Render = config.RenderConfig{MaxConcurrent: 1, MaxWait: 10 * time.Millisecond}
	s := newTestServer(t, cfg)

	require.NoError(t, s.renders.Acquire(context.Background()))
	defer s.renders.Release()

	rec := get(s, "/chart/authors.svg", "Accept", "application/json")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"RND001"`)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := get(s, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Source)
	assert.Equal(t, 6, resp.RawRows)
	assert.Equal(t, 4, resp.WorkingRows)
	assert.Equal(t, 2, resp.Countries)
	assert.Equal(t, 2, resp.Renders.Available)
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	assert.Equal(t, http.StatusUnauthorized, get(s, "/api/options").Code)
	assert.Equal(t, http.StatusOK, get(s, "/api/options", "X-API-Key", "secret").Code)
	assert.Equal(t, http.StatusOK, get(s, "/").Code, "dashboard is not behind the API key")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, ChartLimit: 1}
	s := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, get(s, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(s, "/healthz").Code)

	rec := get(s, "/healthz")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"code":"RATE001"`)
}

func TestRateLimiter_Allow(t *testing.T) {
	rl := newRateLimiter(2, 50*time.Millisecond)
	defer rl.Close()

	assert.True(t, rl.allow("a"))
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"), "limits are per client")

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.allow("a"), "a new window refills the bucket")

	rl.Close()
	rl.Close()
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "Niebla", truncateLabel("Niebla"))

	long := truncateLabel("The Unbearable Lightness of Being")
	assert.Equal(t, maxLabelRunes, len([]rune(long)))
	assert.Equal(t, "…", string([]rune(long)[maxLabelRunes-1:]))
}
