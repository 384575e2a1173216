package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	logx "github.com/swayam-agent/server/pkg/logger"
)

// Config holds the gateway policy knobs, sourced from env.
type Config struct {
	ServiceURL string `split_words:"true" default:"http://127.0.0.1:5001/search" validate:"url"`
	MaxResults int    `split_words:"true" default:"5"`

	CacheTTL         time.Duration `split_words:"true" default:"900s"`
	MinInterval      time.Duration `split_words:"true" default:"2500ms"`
	Cooldown         time.Duration `split_words:"true" default:"120s"`
	Timeout          time.Duration `split_words:"true" default:"25s"`
	FailureThreshold int           `split_words:"true" default:"3"`
}

// Messages returned to the model when the upstream cannot be used. They are
// tool output, not errors: the tool loop must keep running on them.
const (
	msgUnreachable = "Search service is not reachable. Please answer from what you already know."
	msgNoResults   = "No results found"
)

type cacheEntry struct {
	at     time.Time
	result string
}

type searchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// Gateway fronts the scarce external search backend with a process-wide
// result cache, a minimum inter-request interval and a cooldown window that
// opens on observed rate limiting or repeated connection failures. One mutex
// guards the cache, the last-request timestamp and the cooldown deadline; the
// HTTP call itself happens outside the critical section.
type Gateway struct {
	cfg  Config
	http *http.Client

	mu          sync.Mutex
	cache       map[string]cacheEntry
	lastRequest time.Time
	cooldownTil time.Time
	failures    int

	now   func() time.Time
	sleep func(time.Duration)
}

func NewGateway(cfg Config) *Gateway {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	return &Gateway{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		cache: make(map[string]cacheEntry),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Search runs a query through the gateway policy and always returns a string
// the model can read: results, a cached copy, a cooldown notice or a failure
// hint. It never returns an error; tool failures must stay tool output.
func (g *Gateway) Search(ctx context.Context, query string) string {
	qkey := strings.ToLower(strings.TrimSpace(query))
	if qkey == "" {
		return msgNoResults
	}

	wait, verdict := g.admit(qkey)
	if verdict != "" {
		return verdict
	}
	if wait > 0 {
		g.sleep(wait)
	}

	// upstream call runs outside the critical section so a slow search cannot
	// block unrelated cache lookups
	out, failure := g.fetch(ctx, query)
	g.settle(qkey, out, failure)
	return out
}

type failureKind int

const (
	failureNone failureKind = iota
	failureConnection
	failureRateLimited
)

// admit performs the cache lookup, cooldown check and interval reservation in
// one critical section. It returns a non-empty verdict for cache hits and
// cooldown notices, otherwise the duration to wait before calling upstream.
func (g *Gateway) admit(qkey string) (time.Duration, string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if hit, ok := g.cache[qkey]; ok && now.Sub(hit.at) <= g.cfg.CacheTTL {
		logx.Debug().Str("query", qkey).Msg("search cache hit")
		return 0, hit.result
	}

	if now.Before(g.cooldownTil) {
		retryAfter := int(g.cooldownTil.Sub(now).Seconds())
		msg := fmt.Sprintf("Web search temporarily rate-limited. Try again in ~%ds.", retryAfter)
		logx.Warn().Int("retry_after_s", retryAfter).Msg("search gateway in cooldown")
		return 0, msg
	}

	// reserve the next request slot while still holding the lock
	wait := time.Duration(0)
	earliest := g.lastRequest.Add(g.cfg.MinInterval)
	if earliest.After(now) {
		wait = earliest.Sub(now)
	}
	g.lastRequest = now.Add(wait)
	return wait, ""
}

// settle writes the outcome back under the lock: a success refreshes the
// cache and resets the failure streak, a rate-limit or a failure streak over
// the threshold opens the cooldown window.
func (g *Gateway) settle(qkey, result string, failure failureKind) {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch failure {
	case failureNone:
		g.cache[qkey] = cacheEntry{at: g.now(), result: result}
		g.failures = 0
	case failureRateLimited:
		g.failures++
		g.cooldownTil = g.now().Add(g.cfg.Cooldown)
		logx.Warn().Int("failures", g.failures).Msg("upstream rate limit observed, opening cooldown")
	case failureConnection:
		g.failures++
		if g.failures >= g.cfg.FailureThreshold {
			g.cooldownTil = g.now().Add(g.cfg.Cooldown)
			logx.Warn().Int("failures", g.failures).Msg("failure streak reached threshold, opening cooldown")
		}
	}
}

// fetch performs the actual upstream call and formats results as the
// "title - url\nsnippet" lines the evaluator prompt expects.
func (g *Gateway) fetch(ctx context.Context, query string) (string, failureKind) {
	u, err := url.Parse(g.cfg.ServiceURL)
	if err != nil {
		logx.Error().Err(err).Str("url", g.cfg.ServiceURL).Msg("invalid search service url")
		return msgUnreachable, failureConnection
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("n", strconv.Itoa(g.cfg.MaxResults))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return msgUnreachable, failureConnection
	}

	resp, err := g.http.Do(req)
	if err != nil {
		logx.Error().Err(err).Msg("search service unreachable")
		return msgUnreachable, failureConnection
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "Search backend is rate limiting requests right now.", failureRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("Search service error %d.", resp.StatusCode), failureConnection
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		logx.Error().Err(err).Msg("malformed search response")
		return "Search returned an unreadable response.", failureConnection
	}

	var lines []string
	for _, r := range payload.Results {
		title := strings.TrimSpace(r.Title)
		link := strings.TrimSpace(r.URL)
		snippet := strings.TrimSpace(r.Snippet)
		if title != "" || link != "" {
			lines = append(lines, strings.TrimSpace(title+" - "+link))
		}
		if snippet != "" {
			lines = append(lines, snippet)
		}
	}
	out := strings.TrimSpace(strings.Join(lines, "\n"))
	if out == "" {
		out = msgNoResults
	}
	return out, failureNone
}
