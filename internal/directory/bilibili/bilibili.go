// Package bilibili implements the video directory against the platform's
// public web-interface endpoints. The upstream is eventually consistent
// and occasionally flaky: a non-200 status or a non-zero API code is
// reported as an empty result, not an error, so callers only ever see an
// error for transport-level failures.
package bilibili

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
	"github.com/duoshoumiao/bilibilisearch/internal/util"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"

// Client implements models.Directory for the real platform.
type Client struct {
	client   *http.Client
	baseURL  string // search and view endpoints
	spaceURL string // per-creator upload listing
	cookie   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides both API hosts; used by tests and mirror setups.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
		c.spaceURL = base
	}
}

// WithSpaceURL overrides only the upload-listing host.
func WithSpaceURL(space string) Option {
	return func(c *Client) { c.spaceURL = space }
}

// WithCookie sets the session cookie some endpoints require.
func WithCookie(cookie string) Option {
	return func(c *Client) { c.cookie = cookie }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// New creates a new directory client.
func New(opts ...Option) *Client {
	c := &Client{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  "https://api.bilibili.com",
		spaceURL: "https://api.bilibili.com",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetInfo returns static information about this backend.
func (c *Client) GetInfo() models.DirectoryInfo {
	return models.DirectoryInfo{ID: "bilibili", Name: "Bilibili"}
}

// SearchVideos runs a keyword search against the search endpoint.
// order is one of models.OrderRelevance or models.OrderNewest.
func (c *Client) SearchVideos(ctx context.Context, keyword, order string, pageSize int) ([]models.VideoRecord, error) {
	if order == "" {
		order = models.OrderRelevance
	}
	req, err := c.newRequest(ctx, c.baseURL+"/x/web-interface/search/type", map[string]string{
		"search_type": "video",
		"keyword":     keyword,
		"order":       order,
		"ps":          strconv.Itoa(pageSize),
		"platform":    "web",
	})
	if err != nil {
		return nil, err
	}

	var body searchResponse
	ok, err := c.do(req, &body)
	if err != nil {
		return nil, err
	}
	if !ok || body.Code != 0 {
		log.Printf("Video search for %q returned no usable data (code %d %s)", keyword, body.Code, body.Message)
		return nil, nil
	}

	var results []models.VideoRecord
	for _, item := range body.Data.Result {
		if item.Type != "" && item.Type != "video" {
			continue
		}
		results = append(results, models.VideoRecord{
			ID:           item.BVID,
			Title:        util.StripMarkup(item.Title),
			Author:       item.Author,
			AuthorID:     item.MID,
			PublishedAt:  time.Unix(item.PubDate, 0).UTC(),
			ThumbnailURL: normalizePic(item.Pic),
			Plays:        item.Play,
		})
	}
	return results, nil
}

// SearchCreators searches creator accounts, most-followed first.
func (c *Client) SearchCreators(ctx context.Context, keyword string) ([]models.CreatorRecord, error) {
	req, err := c.newRequest(ctx, c.baseURL+"/x/web-interface/search/type", map[string]string{
		"search_type": "bili_user",
		"keyword":     keyword,
		"order":       "fans",
		"platform":    "web",
	})
	if err != nil {
		return nil, err
	}

	var body userSearchResponse
	ok, err := c.do(req, &body)
	if err != nil {
		return nil, err
	}
	if !ok || body.Code != 0 {
		log.Printf("Creator search for %q returned no usable data (code %d %s)", keyword, body.Code, body.Message)
		return nil, nil
	}

	var results []models.CreatorRecord
	for _, item := range body.Data.Result {
		results = append(results, models.CreatorRecord{
			ID:        item.MID,
			Name:      item.Uname,
			AvatarURL: normalizePic(item.Upic),
			Fans:      item.Fans,
		})
	}
	return results, nil
}

// GetCreatorRecentVideos lists a creator's uploads, newest first.
func (c *Client) GetCreatorRecentVideos(ctx context.Context, creatorID int64, pageSize int) ([]models.VideoRecord, error) {
	req, err := c.newRequest(ctx, c.spaceURL+"/x/space/wbi/arc/search", map[string]string{
		"mid":      strconv.FormatInt(creatorID, 10),
		"ps":       strconv.Itoa(pageSize),
		"pn":       "1",
		"order":    models.OrderNewest,
		"platform": "web",
	})
	if err != nil {
		return nil, err
	}
	// The space endpoint rejects requests without a matching Referer.
	req.Header.Set("Referer", fmt.Sprintf("https://space.bilibili.com/%d/", creatorID))

	var body spaceArcResponse
	ok, err := c.do(req, &body)
	if err != nil {
		return nil, err
	}
	if !ok || body.Code != 0 {
		log.Printf("Upload listing for mid %d returned no usable data (code %d %s)", creatorID, body.Code, body.Message)
		return nil, nil
	}

	var results []models.VideoRecord
	for _, item := range body.Data.List.Vlist {
		results = append(results, models.VideoRecord{
			ID:           item.BVID,
			Title:        util.StripMarkup(item.Title),
			Author:       item.Author,
			AuthorID:     item.MID,
			PublishedAt:  time.Unix(item.Created, 0).UTC(),
			ThumbnailURL: normalizePic(item.Pic),
			Plays:        item.Play,
		})
	}
	return results, nil
}

// GetVideoByID fetches one video's metadata. Returns (nil, nil) when the
// directory does not know the ID.
func (c *Client) GetVideoByID(ctx context.Context, videoID string) (*models.VideoRecord, error) {
	req, err := c.newRequest(ctx, c.baseURL+"/x/web-interface/view", map[string]string{
		"bvid": videoID,
	})
	if err != nil {
		return nil, err
	}

	var body viewResponse
	ok, err := c.do(req, &body)
	if err != nil {
		return nil, err
	}
	if !ok || body.Code != 0 || body.Data.BVID == "" {
		return nil, nil
	}

	return &models.VideoRecord{
		ID:           body.Data.BVID,
		Title:        util.StripMarkup(body.Data.Title),
		Author:       body.Data.Owner.Name,
		AuthorID:     body.Data.Owner.MID,
		PublishedAt:  time.Unix(body.Data.PubDate, 0).UTC(),
		ThumbnailURL: normalizePic(body.Data.Pic),
		Plays:        body.Data.Stat.View,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string, params map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	for k, v := range params {
		q.Add(k, v)
	}
	req.URL.RawQuery = q.Encode()

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://www.bilibili.com/")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	return req, nil
}

// do runs the request and decodes the body into out. The bool result is
// false when the response was unusable (non-200 or undecodable) but the
// failure is of the kind callers should treat as "no results".
func (c *Client) do(req *http.Request, out any) (bool, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("directory request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Directory request %s returned HTTP %d", req.URL.Path, resp.StatusCode)
		return false, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Printf("Directory request %s returned malformed JSON: %v", req.URL.Path, err)
		return false, nil
	}
	return true, nil
}

// normalizePic upgrades the protocol-relative thumbnail URLs the API
// returns ("//i0.hdslb.com/...") to https.
func normalizePic(pic string) string {
	if strings.HasPrefix(pic, "//") {
		return "https:" + pic
	}
	return pic
}
