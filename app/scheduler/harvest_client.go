// Package scheduler
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/magnetlab/signal-pipeline/config"
	"github.com/magnetlab/signal-pipeline/icp"
)

// HarvestPost is one LinkedIn post returned by the data provider
type HarvestPost struct {
	URN      string
	Text     string
	Author   icp.Profile
	PostedAt time.Time
}

// HarvestComment is one comment on a harvested post
type HarvestComment struct {
	Author      icp.Profile
	Text        string
	CommentedAt time.Time
}

// HarvestReaction is one reaction on a harvested post
type HarvestReaction struct {
	Author    icp.Profile
	Kind      string
	ReactedAt time.Time
}

// HarvestClient talks to the LinkedIn data provider. Scans fetch recent
// posts for a monitor target, then fan out to comments and reactions per
// post.
type HarvestClient interface {
	SearchPostsByKeyword(ctx context.Context, keyword string, limit int) ([]HarvestPost, error)
	PostsByCompany(ctx context.Context, companyURN string, limit int) ([]HarvestPost, error)
	PostsByProfile(ctx context.Context, profileURN string, limit int) ([]HarvestPost, error)
	GetPostComments(ctx context.Context, postURN string, limit int) ([]HarvestComment, error)
	GetPostReactions(ctx context.Context, postURN string, limit int) ([]HarvestReaction, error)
}

type httpHarvestClient struct {
	cfg    config.HarvestConfig
	client *http.Client
}

func NewHTTPHarvestClient(cfg config.HarvestConfig) HarvestClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &httpHarvestClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Wire shapes. The provider is loose about types (sizes arrive as strings
// like "51-200", timestamps as RFC3339 or epoch millis), so everything is
// normalized here and nowhere else.
type harvestProfileWire struct {
	Name        string `json:"name"`
	Headline    string `json:"headline"`
	Position    string `json:"position"`
	CompanyName string `json:"companyName"`
	CompanySize string `json:"companySize"`
	Industry    string `json:"industry"`
	Location    string `json:"location"`
	URL         string `json:"linkedinUrl"`
}

type harvestPostWire struct {
	URN      string             `json:"urn"`
	Text     string             `json:"text"`
	Author   harvestProfileWire `json:"author"`
	PostedAt string             `json:"postedAt"`
}

type harvestCommentWire struct {
	Author    harvestProfileWire `json:"author"`
	Text      string             `json:"text"`
	CreatedAt string             `json:"createdAt"`
}

type harvestReactionWire struct {
	Author    harvestProfileWire `json:"author"`
	Type      string             `json:"type"`
	CreatedAt string             `json:"createdAt"`
}

func (w harvestProfileWire) toProfile() icp.Profile {
	p := icp.Profile{
		FullName:   strings.TrimSpace(w.Name),
		Headline:   strings.TrimSpace(w.Headline),
		Title:      strings.TrimSpace(w.Position),
		Company:    strings.TrimSpace(w.CompanyName),
		Industry:   strings.TrimSpace(w.Industry),
		Location:   strings.TrimSpace(w.Location),
		ProfileURL: strings.TrimSpace(w.URL),
	}
	if size, ok := parseCompanySize(w.CompanySize); ok {
		p.CompanySize = &size
	}
	return p
}

// parseCompanySize extracts a representative headcount from provider size
// strings like "201", "51-200" or "10,001+".
func parseCompanySize(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	cleaned := strings.NewReplacer(",", "", "+", "", " ", "").Replace(raw)
	if i := strings.IndexAny(cleaned, "-–"); i >= 0 {
		// Use the range's lower bound.
		cleaned = cleaned[:i]
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func parseHarvestTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	if millis, err := strconv.ParseInt(raw, 10, 64); err == nil && millis > 0 {
		return time.UnixMilli(millis).UTC()
	}
	return time.Time{}
}

func (c *httpHarvestClient) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	retries := c.cfg.RetryCount
	if retries < 0 {
		retries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-API-Key", c.cfg.APIKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		func() {
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				lastErr = fmt.Errorf("harvest %s http status: %d", path, resp.StatusCode)
				return
			}
			lastErr = json.NewDecoder(resp.Body).Decode(out)
		}()
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (c *httpHarvestClient) fetchPosts(ctx context.Context, path string, query url.Values, limit int) ([]HarvestPost, error) {
	if limit <= 0 {
		limit = c.cfg.MaxPosts
	}
	query.Set("limit", strconv.Itoa(limit))

	var wire struct {
		Elements []harvestPostWire `json:"elements"`
	}
	if err := c.get(ctx, path, query, &wire); err != nil {
		return nil, err
	}

	posts := make([]HarvestPost, 0, len(wire.Elements))
	for _, p := range wire.Elements {
		if p.URN == "" {
			continue
		}
		posts = append(posts, HarvestPost{
			URN:      p.URN,
			Text:     p.Text,
			Author:   p.Author.toProfile(),
			PostedAt: parseHarvestTime(p.PostedAt),
		})
	}
	return posts, nil
}

func (c *httpHarvestClient) SearchPostsByKeyword(ctx context.Context, keyword string, limit int) ([]HarvestPost, error) {
	query := url.Values{}
	query.Set("search", keyword)
	return c.fetchPosts(ctx, "/linkedin/post-search", query, limit)
}

func (c *httpHarvestClient) PostsByCompany(ctx context.Context, companyURN string, limit int) ([]HarvestPost, error) {
	query := url.Values{}
	query.Set("company", companyURN)
	return c.fetchPosts(ctx, "/linkedin/company-posts", query, limit)
}

func (c *httpHarvestClient) PostsByProfile(ctx context.Context, profileURN string, limit int) ([]HarvestPost, error) {
	query := url.Values{}
	query.Set("profile", profileURN)
	return c.fetchPosts(ctx, "/linkedin/profile-posts", query, limit)
}

func (c *httpHarvestClient) GetPostComments(ctx context.Context, postURN string, limit int) ([]HarvestComment, error) {
	if limit <= 0 {
		limit = c.cfg.MaxEngagers
	}
	query := url.Values{}
	query.Set("post", postURN)
	query.Set("limit", strconv.Itoa(limit))

	var wire struct {
		Elements []harvestCommentWire `json:"elements"`
	}
	if err := c.get(ctx, "/linkedin/post-comments", query, &wire); err != nil {
		return nil, err
	}

	comments := make([]HarvestComment, 0, len(wire.Elements))
	for _, cm := range wire.Elements {
		comments = append(comments, HarvestComment{
			Author:      cm.Author.toProfile(),
			Text:        cm.Text,
			CommentedAt: parseHarvestTime(cm.CreatedAt),
		})
	}
	return comments, nil
}

func (c *httpHarvestClient) GetPostReactions(ctx context.Context, postURN string, limit int) ([]HarvestReaction, error) {
	if limit <= 0 {
		limit = c.cfg.MaxEngagers
	}
	query := url.Values{}
	query.Set("post", postURN)
	query.Set("limit", strconv.Itoa(limit))

	var wire struct {
		Elements []harvestReactionWire `json:"elements"`
	}
	if err := c.get(ctx, "/linkedin/post-reactions", query, &wire); err != nil {
		return nil, err
	}

	reactions := make([]HarvestReaction, 0, len(wire.Elements))
	for _, r := range wire.Elements {
		reactions = append(reactions, HarvestReaction{
			Author:    r.Author.toProfile(),
			Kind:      r.Type,
			ReactedAt: parseHarvestTime(r.CreatedAt),
		})
	}
	return reactions, nil
}
