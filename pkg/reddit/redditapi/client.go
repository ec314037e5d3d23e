// Package redditapi provides a reddit.Client implementation backed by the
// Reddit OAuth API, authenticating as a script application with the
// password grant.
package redditapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"linkfixer/pkg/domain"
	"linkfixer/pkg/reddit"
	"linkfixer/pkg/serrors"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultAuthURL is where access tokens are issued.
	DefaultAuthURL = "https://www.reddit.com"
	// DefaultAPIURL is the OAuth API host.
	DefaultAPIURL = "https://oauth.reddit.com"

	webURL = "https://www.reddit.com"

	// tokens are refreshed this long before Reddit expires them
	tokenExpiryLeeway = time.Minute
)

// errUnauthorized marks a 401 response. On API calls the cached token is
// dropped so the next attempt logs in again.
var errUnauthorized = errors.New("unauthorized")

// Options configures a Client.
type Options struct {
	// Username and Password of the bot account.
	Username string
	Password string
	// ClientID and ClientSecret of the script application.
	ClientID     string
	ClientSecret string
	// UserAgent is sent with every request; Reddit throttles generic agents.
	UserAgent string
	// AuthURL overrides DefaultAuthURL.
	AuthURL string
	// APIURL overrides DefaultAPIURL.
	APIURL string
}

// Client talks to the Reddit API and fulfills the reddit.Client interface.
// It is safe for concurrent use; the access token is shared by all callers
// and refreshed when it expires or the API rejects it.
type Client struct {
	httpClient *http.Client
	opts       Options

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// RateLimitStatus is Reddit's view of our request budget, taken from the
// X-Ratelimit-* response headers.
type RateLimitStatus struct {
	Used      int           // Used is the number of requests made in the current window.
	Remaining float64       // Remaining is how many requests are left in the window.
	Reset     time.Duration // Reset is the time until the window resets.
}

// ParseRateLimit extracts Reddit's rate-limit headers. Missing or malformed
// values are reported as zero.
func ParseRateLimit(h http.Header) RateLimitStatus {
	var rl RateLimitStatus
	if n, err := strconv.Atoi(strings.TrimSpace(h.Get("X-Ratelimit-Used"))); err == nil {
		rl.Used = n
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(h.Get("X-Ratelimit-Remaining")), 64); err == nil {
		rl.Remaining = f
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(h.Get("X-Ratelimit-Reset")), 64); err == nil && f > 0 {
		rl.Reset = time.Duration(f * float64(time.Second))
	}

	return rl
}

// retryAfter picks the cooldown for a 429 response.
func retryAfter(h http.Header) time.Duration {
	if rl := ParseRateLimit(h); rl.Reset > 0 {
		return rl.Reset
	}
	if n, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After"))); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}

	return 0
}

// accessToken returns a valid bearer token, requesting a new one if needed.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.expiresAt) {
		return c.token, nil
	}

	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.opts.Username},
		"password":   {c.opts.Password},
	}
	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		c.opts.AuthURL+"/api/v1/access_token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("could not create token request: %w", err)
	}
	req.SetBasicAuth(c.opts.ClientID, c.opts.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	b, err := c.send(ctx, req)
	if err != nil {
		if errors.Is(err, errUnauthorized) {
			return "", serrors.Wrap(serrors.ErrForbidden, err, "invalid client credentials")
		}

		return "", fmt.Errorf("could not request access token: %w", err)
	}

	var tokenResp struct {
		AccessToken string  `json:"access_token"`
		ExpiresIn   float64 `json:"expires_in"`
		Error       string  `json:"error"`
	}
	if err := json.Unmarshal(b, &tokenResp); err != nil {
		return "", serrors.Wrap(serrors.ErrAPI, err, "could not decode token response")
	}
	if tokenResp.Error != "" || tokenResp.AccessToken == "" {
		return "", serrors.With(serrors.ErrForbidden, "token request rejected: %s", tokenResp.Error)
	}

	c.token = tokenResp.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpiryLeeway)

	return c.token, nil
}

func (c *Client) invalidateToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == token {
		c.token = ""
	}
}

// send executes req and maps transport failures and HTTP status codes to
// serrors kinds. It returns the response body of successful requests.
func (c *Client) send(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("could not send request: %w", ctx.Err())
		}

		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not send request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrUnavailable, err, "could not read response body")
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, serrors.With(serrors.ErrRateLimited, "rate limited: %s", strings.TrimSpace(string(b))).
			WithRetryAfter(retryAfter(resp.Header))
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, serrors.Wrap(serrors.ErrAPI, errUnauthorized, "request rejected")
	case resp.StatusCode == http.StatusForbidden:
		return nil, serrors.With(serrors.ErrForbidden, "forbidden: %s", strings.TrimSpace(string(b)))
	case resp.StatusCode == http.StatusNotFound:
		return nil, serrors.With(serrors.ErrNotFound, "not found: %s", req.URL.Path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, serrors.With(serrors.ErrAPI, "request failed with status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return b, nil
}

// call performs an authenticated API request. A non-nil form turns the
// request into a form-encoded POST.
func (c *Client) call(ctx context.Context, path string, query url.Values, form url.Values) ([]byte, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	method := http.MethodGet
	var body io.Reader
	if form != nil {
		method = http.MethodPost
		body = strings.NewReader(form.Encode())
	}

	target := c.opts.APIURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Authorization", "bearer "+token)
	req.Header.Set("User-Agent", c.opts.UserAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	b, err := c.send(ctx, req)
	if err != nil {
		if errors.Is(err, errUnauthorized) {
			c.invalidateToken(token)
		}

		return nil, err
	}

	return b, nil
}

// Me returns the authenticated account.
func (c *Client) Me(ctx context.Context) (domain.Account, error) {
	b, err := c.call(ctx, "/api/v1/me", nil, nil)
	if err != nil {
		return domain.Account{}, fmt.Errorf("could not get identity: %w", err)
	}

	var me struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &me); err != nil {
		return domain.Account{}, serrors.Wrap(serrors.ErrAPI, err, "could not decode identity")
	}

	return domain.Account{ID: "t2_" + me.ID, Name: me.Name}, nil
}

type listing[T any] struct {
	Data struct {
		Children []struct {
			Kind string `json:"kind"`
			Data T      `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type submissionData struct {
	ID         string  `json:"id"`
	URL        string  `json:"url"`
	Permalink  string  `json:"permalink"`
	Subreddit  string  `json:"subreddit"`
	Title      string  `json:"title"`
	CreatedUTC float64 `json:"created_utc"`
}

type commentData struct {
	ID             string `json:"id"`
	Author         string `json:"author"`
	AuthorFullname string `json:"author_fullname"`
	Permalink      string `json:"permalink"`
}

// NewSubmissions returns the newest submissions of a subreddit, newest first.
func (c *Client) NewSubmissions(ctx context.Context, subreddit string, limit int) ([]domain.Submission, error) {
	if subreddit == "" {
		subreddit = reddit.AllSubreddits
	}
	query := url.Values{
		"limit":    {strconv.Itoa(limit)},
		"raw_json": {"1"},
	}

	b, err := c.call(ctx, "/r/"+url.PathEscape(subreddit)+"/new", query, nil)
	if err != nil {
		return nil, fmt.Errorf("could not list new submissions: %w", err)
	}

	var l listing[submissionData]
	if err := json.Unmarshal(b, &l); err != nil {
		return nil, serrors.Wrap(serrors.ErrAPI, err, "could not decode submissions")
	}

	out := make([]domain.Submission, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		s := child.Data
		out = append(out, domain.Submission{
			ID:        domain.SubmissionID(s.ID),
			URL:       s.URL,
			Permalink: absolute(s.Permalink),
			Subreddit: s.Subreddit,
			Title:     s.Title,
			CreatedAt: time.Unix(int64(s.CreatedUTC), 0).UTC(),
		})
	}

	return out, nil
}

// Comments returns the top-level comments of a submission. "Load more"
// stubs are skipped.
func (c *Client) Comments(ctx context.Context, id domain.SubmissionID) ([]domain.Comment, error) {
	query := url.Values{
		"limit":    {"500"},
		"depth":    {"1"},
		"raw_json": {"1"},
	}

	b, err := c.call(ctx, "/comments/"+url.PathEscape(string(id)), query, nil)
	if err != nil {
		return nil, fmt.Errorf("could not get comments: %w", err)
	}

	// the response is [submission listing, comment listing]
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil {
		return nil, serrors.Wrap(serrors.ErrAPI, err, "could not decode comments")
	}
	if len(parts) < 2 {
		return nil, serrors.With(serrors.ErrAPI, "unexpected comments response with %d parts", len(parts))
	}

	var l listing[commentData]
	if err := json.Unmarshal(parts[1], &l); err != nil {
		return nil, serrors.Wrap(serrors.ErrAPI, err, "could not decode comment listing")
	}

	out := make([]domain.Comment, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != "t1" {
			continue
		}
		out = append(out, domain.Comment{
			ID:        child.Data.ID,
			Author:    child.Data.Author,
			AuthorID:  child.Data.AuthorFullname,
			Permalink: absolute(child.Data.Permalink),
		})
	}

	return out, nil
}

// goneErrors are Reddit error codes after which commenting can never succeed.
var goneErrors = map[string]bool{ //nolint: gochecknoglobals
	"DELETED_LINK":    true,
	"DELETED_COMMENT": true,
	"THREAD_LOCKED":   true,
	"TOO_OLD":         true,
}

var cooldownPattern = regexp.MustCompile(`(\d+) (second|minute|hour)`)

// parseCooldown reads the wait from messages like "Take a break for 5
// minutes before trying again."
func parseCooldown(msg string) time.Duration {
	m := cooldownPattern.FindStringSubmatch(msg)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	switch m[2] {
	case "hour":
		return time.Duration(n) * time.Hour
	case "minute":
		return time.Duration(n) * time.Minute
	default:
		return time.Duration(n) * time.Second
	}
}

// Reply posts body as a comment on the submission and returns the permalink
// of the new comment.
func (c *Client) Reply(ctx context.Context, id domain.SubmissionID, body string) (string, error) {
	form := url.Values{
		"api_type": {"json"},
		"thing_id": {id.Fullname()},
		"text":     {body},
	}

	b, err := c.call(ctx, "/api/comment", nil, form)
	if err != nil {
		if errors.Is(err, serrors.ErrNotFound) {
			return "", serrors.Wrap(serrors.ErrGone, err, "submission %s not found", id)
		}

		return "", fmt.Errorf("could not post comment: %w", err)
	}

	var resp struct {
		JSON struct {
			Errors    [][]string `json:"errors"`
			Ratelimit float64    `json:"ratelimit"`
			Data      struct {
				Things []struct {
					Data struct {
						ID        string `json:"id"`
						Permalink string `json:"permalink"`
					} `json:"data"`
				} `json:"things"`
			} `json:"data"`
		} `json:"json"`
	}
	if err := json.Unmarshal(b, &resp); err != nil {
		return "", serrors.Wrap(serrors.ErrAPI, err, "could not decode comment response")
	}

	if len(resp.JSON.Errors) > 0 {
		apiErr := resp.JSON.Errors[0]
		code, msg := "", ""
		if len(apiErr) > 0 {
			code = apiErr[0]
		}
		if len(apiErr) > 1 {
			msg = apiErr[1]
		}

		switch {
		case code == "RATELIMIT":
			wait := time.Duration(resp.JSON.Ratelimit * float64(time.Second))
			if wait <= 0 {
				wait = parseCooldown(msg)
			}

			return "", serrors.With(serrors.ErrRateLimited, "%s: %s", code, msg).WithRetryAfter(wait)
		case goneErrors[code]:
			return "", serrors.With(serrors.ErrGone, "%s: %s", code, msg)
		default:
			return "", serrors.With(serrors.ErrAPI, "%s: %s", code, msg)
		}
	}

	if len(resp.JSON.Data.Things) == 0 {
		return "", serrors.With(serrors.ErrAPI, "comment response contained no comment")
	}

	return absolute(resp.JSON.Data.Things[0].Data.Permalink), nil
}

func absolute(permalink string) string {
	if permalink == "" || strings.HasPrefix(permalink, "http") {
		return permalink
	}

	return webURL + permalink
}

// Ensure Client conforms to the reddit.Client interface at compile time.
var _ reddit.Client = (*Client)(nil)

// New constructs a Client that uses the provided http.Client.
func New(httpClient *http.Client, opts Options) *Client {
	if opts.AuthURL == "" {
		opts.AuthURL = DefaultAuthURL
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	opts.AuthURL = strings.TrimRight(opts.AuthURL, "/")
	opts.APIURL = strings.TrimRight(opts.APIURL, "/")

	return &Client{
		httpClient: httpClient,
		opts:       opts,
	}
}
