package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vidtrack/vidtrack/internal/model"
)

// DefaultYouTubeBaseURL is the production Data API endpoint.
const DefaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

var (
	// ErrVideoStatsNotFound is returned when the API knows no such video.
	ErrVideoStatsNotFound = errors.New("video stats not found")
	// ErrProviderUnavailable is returned on non-2xx provider responses.
	ErrProviderUnavailable = errors.New("provider request failed")
)

// TokenSource supplies the stored OAuth token for a provider.
type TokenSource interface {
	CurrentToken(ctx context.Context, provider string) (*model.ProviderToken, error)
}

// YouTubeClient fetches video statistics from the Data API.
type YouTubeClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// NewYouTubeClient creates a client for the Data API.
// baseURL overrides the production endpoint, for tests.
func NewYouTubeClient(apiKey, baseURL string, client *http.Client) *YouTubeClient {
	if baseURL == "" {
		baseURL = DefaultYouTubeBaseURL
	}
	if client == nil {
		client = NewHTTPClient()
	}
	return &YouTubeClient{apiKey: apiKey, baseURL: baseURL, http: client}
}

// SetTokenSource attaches a token store. When it holds an active,
// unexpired OAuth token the client authenticates with it instead of
// the API key.
func (c *YouTubeClient) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

// bearerToken returns the stored OAuth access token, or "" when none
// is usable. Lookup failures and expired tokens degrade to the API key.
func (c *YouTubeClient) bearerToken(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.CurrentToken(ctx, model.ProviderYouTube)
	if err != nil || token.Expired() {
		return ""
	}
	return token.AccessToken
}

// videosResponse mirrors the slice of the videos.list payload we read.
type videosResponse struct {
	Items []struct {
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// VideoStats fetches the public statistics for a video ID.
// Average watch time is not exposed by the public API and stays zero.
func (c *YouTubeClient) VideoStats(ctx context.Context, videoID string) (*model.VideoStats, error) {
	bearer := c.bearerToken(ctx)

	q := url.Values{}
	q.Set("part", "statistics")
	q.Set("id", videoID)
	if bearer == "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("videos.list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: videos.list returned %d", ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed videosResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Items) == 0 {
		return nil, ErrVideoStatsNotFound
	}

	stats := parsed.Items[0].Statistics
	return &model.VideoStats{
		Views:    parseCount(stats.ViewCount),
		Likes:    parseCount(stats.LikeCount),
		Comments: parseCount(stats.CommentCount),
	}, nil
}

// Ping verifies the credentials by requesting an empty videos.list.
func (c *YouTubeClient) Ping(ctx context.Context) error {
	bearer := c.bearerToken(ctx)

	q := url.Values{}
	q.Set("part", "id")
	q.Set("id", "")
	if bearer == "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

// parseCount tolerates the API's string-typed counters.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
