package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kit2552/tadka-cms-final-sub001/internal/config"
	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/services"
)

func scraperConfig() config.ScraperConfig {
	return config.ScraperConfig{
		UserAgent:      "test-agent/1.0",
		RequestTimeout: 5 * time.Second,
		RetryAttempts:  2,
		Parallelism:    1,
	}
}

func TestFeedAdapterFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent/1.0" {
			t.Errorf("Unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [
			{"external_key": "https://v/1", "title": "Clip 1", "published_at": "2026-08-01T10:00:00Z"},
			{"external_key": "https://v/2", "title": "Clip 2", "published_at": "not-a-date"}
		]}`))
	}))
	defer server.Close()

	adapter := services.NewFeedAdapter(scraperConfig(), newTestLogger(t))
	items, err := adapter.Fetch(context.Background(), models.AgentDefinition{ID: "a", SourceURL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Clip 1" || items[0].PublishedAt.IsZero() {
		t.Errorf("First item not decoded: %+v", items[0])
	}
	if !items[1].PublishedAt.IsZero() {
		t.Error("Unparseable timestamp should be left zero")
	}
}

func TestFeedAdapterBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := services.NewFeedAdapter(scraperConfig(), newTestLogger(t))
	_, err := adapter.Fetch(context.Background(), models.AgentDefinition{ID: "a", SourceURL: server.URL})
	if err == nil {
		t.Fatal("Expected source error")
	}
	if models.KindOf(err) != models.ErrorKindSource {
		t.Errorf("Expected source kind, got %s", models.KindOf(err))
	}
}

func TestFeedAdapterInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	adapter := services.NewFeedAdapter(scraperConfig(), newTestLogger(t))
	_, err := adapter.Fetch(context.Background(), models.AgentDefinition{ID: "a", SourceURL: server.URL})
	if err == nil {
		t.Fatal("Expected decode error")
	}
	if models.KindOf(err) != models.ErrorKindSource {
		t.Errorf("Expected source kind, got %s", models.KindOf(err))
	}
}

// Tripping the breaker for one upstream must not block feeds from others.
func TestFeedAdapterBreakerIsPerHost(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [{"external_key": "https://v/1", "title": "Clip 1"}]}`))
	}))
	defer healthy.Close()

	adapter := services.NewFeedAdapter(scraperConfig(), newTestLogger(t))

	// enough consecutive failures to open the failing host's breaker
	for i := 0; i < 3; i++ {
		if _, err := adapter.Fetch(context.Background(), models.AgentDefinition{ID: "bad", SourceURL: failing.URL}); err == nil {
			t.Fatal("Failing upstream should error")
		}
	}

	items, err := adapter.Fetch(context.Background(), models.AgentDefinition{ID: "good", SourceURL: healthy.URL})
	if err != nil {
		t.Fatalf("Healthy upstream must not share the open breaker: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Expected 1 item from the healthy feed, got %d", len(items))
	}
}

func TestChannelAdapterFetch(t *testing.T) {
	page := `<html><body>
		<div class="video-card">
			<a href="/v/1" title="Clip 1"><img src="/thumbs/1.jpg"></a>
			<h3 class="video-title">Clip 1</h3>
			<time datetime="2026-08-01T10:00:00Z">Aug 1</time>
		</div>
		<div class="video-card">
			<a href="/v/2"></a>
			<h3 class="video-title">Clip 2</h3>
		</div>
		<div class="video-card"><span>broken card, no link</span></div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	adapter := services.NewChannelAdapter(scraperConfig(), newTestLogger(t))
	items, err := adapter.Fetch(context.Background(), models.AgentDefinition{ID: "a", SourceURL: server.URL})

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if err == nil {
		t.Error("Broken card should surface as a partial-parse error")
	} else if models.KindOf(err) != models.ErrorKindSource {
		t.Errorf("Expected source kind, got %s", models.KindOf(err))
	}

	if items[0].Title != "Clip 1" {
		t.Errorf("Unexpected title %q", items[0].Title)
	}
	if items[0].URL != server.URL+"/v/1" {
		t.Errorf("Relative link should resolve against the page URL, got %q", items[0].URL)
	}
	if items[0].PublishedAt.IsZero() {
		t.Error("Publish time should be parsed from the time element")
	}
}

func TestListingAdapterReleases(t *testing.T) {
	page := `<html><body>
		<div class="release-item">
			<a href="/movies/pathaan"><span class="release-title">Pathaan</span></a>
			<span class="release-year">2023</span>
			<p class="release-synopsis">A spy returns.</p>
		</div>
		<div class="release-item">
			<span class="release-title">Jawan</span>
		</div>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	adapter := services.NewListingAdapter(scraperConfig(), newTestLogger(t))
	items, err := adapter.Fetch(context.Background(), models.AgentDefinition{ID: "r", SourceURL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Pathaan" || items[0].Year != 2023 {
		t.Errorf("Release row not parsed: %+v", items[0])
	}
	if items[1].Year != 0 {
		t.Errorf("Missing year should stay zero, got %d", items[1].Year)
	}
}

func TestListingAdapterSchedules(t *testing.T) {
	page := `<html><body><table>
		<tr class="match-row">
			<td class="team-a">India</td>
			<td class="team-b">Australia</td>
			<td class="date">2026-10-04</td>
		</tr>
		<tr class="match-row">
			<td class="team-a">England</td>
			<td class="team-b"></td>
		</tr>
	</table></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	adapter := services.NewListingAdapter(scraperConfig(), newTestLogger(t))
	items, err := adapter.Fetch(context.Background(), models.AgentDefinition{ID: "s", SourceURL: server.URL})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Rows missing a team should be skipped; got %d items", len(items))
	}
	if items[0].Team1 != "India" || items[0].Team2 != "Australia" || items[0].MatchDate != "2026-10-04" {
		t.Errorf("Match row not parsed: %+v", items[0])
	}
	if items[0].Title != "India vs Australia" {
		t.Errorf("Unexpected title %q", items[0].Title)
	}
}

func TestListingAdapterFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := services.NewListingAdapter(scraperConfig(), newTestLogger(t))
	items, err := adapter.Fetch(context.Background(), models.AgentDefinition{ID: "r", SourceURL: server.URL})
	if err == nil {
		t.Fatal("Expected source error")
	}
	if len(items) != 0 {
		t.Errorf("No items expected on total failure, got %d", len(items))
	}
}
