package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/time/rate"
)

// DefaultTopicBaseURL is public broadcast endpoint used for topic pushes.
const DefaultTopicBaseURL = "https://ntfy.sh"

// TopicSettings provides push topic configured by user.
type TopicSettings interface {
	TopicName() string
}

// Filter gates messages sent to shared topic. Empty fields match everything.
type Filter struct {
	Region  string
	Pattern *regexp.Regexp
}

// Allows reports whether message observed in region passes the filter.
func (f Filter) Allows(region, message string) bool {
	if f.Region != "" && f.Region != region {
		return false
	}
	if f.Pattern != nil && !f.Pattern.MatchString(message) {
		return false
	}
	return true
}

// Topic posts messages to topic of broadcast endpoint.
type Topic struct {
	client   *http.Client
	baseURL  string
	settings TopicSettings
	region   func() string
	filter   Filter
	limiter  *rate.Limiter
	pageURL  string
}

// NewTopic returns new Topic. Limiter may be nil.
func NewTopic(
	client *http.Client,
	baseURL string,
	settings TopicSettings,
	region func() string,
	filter Filter,
	limiter *rate.Limiter,
	pageURL string,
) *Topic {
	if baseURL == "" {
		baseURL = DefaultTopicBaseURL
	}
	return &Topic{
		client:   client,
		baseURL:  strings.TrimRight(baseURL, "/"),
		settings: settings,
		region:   region,
		filter:   filter,
		limiter:  limiter,
		pageURL:  pageURL,
	}
}

// Notify posts message to configured topic. Messages rejected by filter are skipped
// silently, messages over rate limit return ErrRateLimited.
func (t *Topic) Notify(ctx context.Context, message string) error {
	topic := strings.TrimSpace(t.settings.TopicName())
	if topic == "" {
		return nil
	}

	if !t.filter.Allows(t.region(), message) {
		return nil
	}

	if t.limiter != nil && !t.limiter.Allow() {
		return ErrRateLimited
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.baseURL+"/"+url.PathEscape(topic),
		strings.NewReader(withLink(message, t.pageURL)),
	)
	if err != nil {
		return fmt.Errorf("can't build topic request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("can't send topic message: %w", err)
	}

	return checkResponse(resp)
}

// Name returns channel name.
func (t *Topic) Name() string {
	return "topic"
}
