// Package contentapi talks to the upstream course content API and shapes
// its responses into course detail records. The upstream is unreliable:
// endpoints time out, 5xx under load, and sometimes return an object where
// an array is documented. Every fetch absorbs failure into an empty value,
// so callers treat "no data" as absent rather than as an error.
package contentapi

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"course-catalog/internal/httpx"
	"course-catalog/internal/jsonval"
)

// Headers is the fixed header set sent with every request.
type Headers struct {
	Referer   string
	Origin    string
	UserAgent string
}

type Client struct {
	BaseURL string
	Headers Headers
	Retry   httpx.RetryConfig
	HTTP    *http.Client
}

func New(baseURL string, hdr Headers, timeout time.Duration, retry httpx.RetryConfig) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Headers: hdr,
		Retry:   retry,
		HTTP: &http.Client{
			Timeout: timeout, // per-request
		},
	}
}

// FetchJSON fetches a URL and parses the body as JSON. It never fails:
// transport errors and 5xx are retried with backoff, any other non-2xx or
// an unparseable body short-circuits, and every failure path logs once and
// returns null.
func (c *Client) FetchJSON(ctx context.Context, rawURL string) jsonval.Value {
	buildReq := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Accept-Encoding", "br")
		if c.Headers.Referer != "" {
			req.Header.Set("Referer", c.Headers.Referer)
		}
		if c.Headers.Origin != "" {
			req.Header.Set("Origin", c.Headers.Origin)
		}
		if c.Headers.UserAgent != "" {
			req.Header.Set("User-Agent", c.Headers.UserAgent)
		}
		return req, nil
	}

	_, body, err := httpx.DoWithRetry(ctx, c.HTTP, buildReq, c.Retry)
	if err != nil {
		log.Printf("[!] error fetching %s: %v", rawURL, err)
		return jsonval.Null{}
	}

	v, err := jsonval.Parse(body)
	if err != nil {
		log.Printf("[!] error fetching %s: %v", rawURL, err)
		return jsonval.Null{}
	}
	return v
}

func (c *Client) endpoint(parts ...string) string {
	b := strings.Builder{}
	b.WriteString(c.BaseURL)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// Batches lists all course summaries.
func (c *Client) Batches(ctx context.Context) *jsonval.List {
	return jsonval.EnsureList(c.FetchJSON(ctx, c.endpoint("batches")))
}

// Classroom lists the classroom entries of a course.
func (c *Client) Classroom(ctx context.Context, courseID string) *jsonval.List {
	return jsonval.EnsureList(c.FetchJSON(ctx, c.endpoint("classroom", courseID)))
}

// Lessons lists the lessons of a classroom, with embedded video stubs.
func (c *Client) Lessons(ctx context.Context, classroomID string) *jsonval.List {
	return jsonval.EnsureList(c.FetchJSON(ctx, c.endpoint("lesson", classroomID)))
}

// Video fetches the secondary per-video detail carrying playback URLs.
// Returns an empty object when nothing usable came back.
func (c *Client) Video(ctx context.Context, videoID string) *jsonval.Object {
	if obj, ok := jsonval.AsObject(c.FetchJSON(ctx, c.endpoint("video", videoID))); ok {
		return obj
	}
	return jsonval.NewObject()
}

// LiveClasses lists today's live sessions for a course.
func (c *Client) LiveClasses(ctx context.Context, courseID string) *jsonval.List {
	return jsonval.EnsureList(c.FetchJSON(ctx, c.endpoint("today", courseID)))
}

// Announcements lists the update feed of a course.
func (c *Client) Announcements(ctx context.Context, courseID string) *jsonval.List {
	return jsonval.EnsureList(c.FetchJSON(ctx, c.endpoint("updates", courseID)))
}
