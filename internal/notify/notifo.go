// Package notify implements the Notifo push-notification client used for
// high-level message alerts and subscriber verification.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIURL is the Notifo REST endpoint.
const DefaultAPIURL = "https://api.notifo.com/v1"

// Notifier is the surface the HTTP service depends on. The zero-value
// Disabled implementation is used when no credentials are configured.
type Notifier interface {
	// Send pushes one notification to subscriber handle to.
	Send(ctx context.Context, to, title, msg, uri string) error
	// Subscribe verifies (and subscribes) a handle with the provider.
	// A non-nil error means the handle must not be stored.
	Subscribe(ctx context.Context, to string) error
}

// Disabled is a Notifier that rejects every call. Used when the service
// runs without provider credentials.
type Disabled struct{}

func (Disabled) Send(context.Context, string, string, string, string) error {
	return fmt.Errorf("notify: no provider configured")
}

func (Disabled) Subscribe(context.Context, string) error {
	return fmt.Errorf("notify: no provider configured")
}

// Client talks to the Notifo API with service credentials.
type Client struct {
	apiURL string
	user   string
	secret string
	hc     *http.Client
}

// Options configures a Client.
type Options struct {
	// APIURL overrides DefaultAPIURL; tests point it at a fake server.
	APIURL string
	User   string
	Secret string
	// HTTPClient overrides the default client (10s timeout).
	HTTPClient *http.Client
}

// New builds a Notifo client.
func New(opts Options) *Client {
	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{apiURL: strings.TrimRight(apiURL, "/"), user: opts.User, secret: opts.Secret, hc: hc}
}

// apiResponse is the provider's envelope; anything but status "success"
// counts as a failure.
type apiResponse struct {
	Status string `json:"status"`
}

// Send pushes a notification to a subscribed handle.
func (c *Client) Send(ctx context.Context, to, title, msg, uri string) error {
	form := url.Values{
		"to":    {to},
		"title": {title},
		"msg":   {msg},
		"uri":   {uri},
	}
	return c.post(ctx, "/send_notification", form)
}

// Subscribe asks the provider to subscribe a handle to this service.
func (c *Client) Subscribe(ctx context.Context, to string) error {
	form := url.Values{"username": {to}}
	return c.post(ctx, "/subscribe_user", form)
}

func (c *Client) post(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.user, c.secret)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("notify: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("notify: %s: http %d", path, resp.StatusCode)
	}
	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("notify: %s: decode: %w", path, err)
	}
	if out.Status != "success" {
		return fmt.Errorf("notify: %s: provider status %q", path, out.Status)
	}
	return nil
}
