package loglet

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the hosted loglet service.
const DefaultBaseURL = "http://loglet.radbox.org/"

// RemoteError reports a failed exchange with the loglet service.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("loglet: %s: %v", e.Op, e.Err) }
func (e *RemoteError) Unwrap() error { return e.Err }

// Options configures a Client. The zero value targets the hosted service
// with a fresh log and synchronous delivery.
type Options struct {
	// BaseURL is the service root. Defaults to DefaultBaseURL.
	BaseURL string
	// LogID names an existing log. When empty, New creates a log with a
	// blocking request against the service before returning.
	LogID string
	// Mode selects the delivery strategy: "sync" (default), "goroutine",
	// "process", or "pool". Unknown modes fail construction, not Submit.
	Mode string
	// HTTPClient overrides the default http.Client.
	HTTPClient *http.Client
}

// Client submits messages to one log through a delivery strategy chosen
// at construction time.
type Client struct {
	baseURL  string
	logID    string
	dispatch Dispatcher
	hc       *http.Client
}

// New builds a Client, resolving the delivery mode and auto-provisioning
// a log when opts.LogID is empty.
func New(opts Options) (*Client, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	dispatch, err := DefaultRegistry().Resolve(opts.Mode)
	if err != nil {
		return nil, err
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}

	c := &Client{baseURL: baseURL, logID: opts.LogID, dispatch: dispatch, hc: hc}
	if c.logID == "" {
		logID, err := createLog(hc, baseURL)
		if err != nil {
			return nil, err
		}
		c.logID = logID
	}
	return c, nil
}

// LogID returns the identifier of the client's log.
func (c *Client) LogID() string { return c.logID }

// URL returns the absolute URL of the client's log.
func (c *Client) URL() string { return c.baseURL + "/" + c.logID }

// Submit posts one message through the configured delivery strategy.
// Under the sync mode, send failures are returned; under every other
// mode, Submit returns nil once the send is scheduled.
func (c *Client) Submit(message string, level int) error {
	sub := Submission{BaseURL: c.baseURL, LogID: c.logID, Message: message, Level: level}
	return c.dispatch.Dispatch(c.post, sub)
}

func (c *Client) post(sub Submission) error {
	return Post(c.hc, sub.BaseURL, sub.LogID, sub.Message, sub.Level)
}

// Post sends one message to a log. It is the low-level operation every
// delivery strategy ultimately performs.
func Post(hc *http.Client, baseURL, logID, message string, level int) error {
	if hc == nil {
		hc = http.DefaultClient
	}
	form := url.Values{
		"message": {message},
		"level":   {strconv.Itoa(level)},
	}
	resp, err := hc.PostForm(strings.TrimRight(baseURL, "/")+"/"+logID, form)
	if err != nil {
		return &RemoteError{Op: "post message", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RemoteError{Op: "post message", Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	return nil
}

// createLog asks the service for a new log and returns the identifier
// carried by the redirect target.
func createLog(hc *http.Client, baseURL string) (string, error) {
	// Clone the client without redirect following: the id rides in the
	// Location header of the 302.
	nc := *hc
	nc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := nc.Post(baseURL+"/new", "application/x-www-form-urlencoded", nil)
	if err != nil {
		return "", &RemoteError{Op: "create log", Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return "", &RemoteError{Op: "create log", Err: fmt.Errorf("http %d", resp.StatusCode)}
	}
	loc := resp.Header.Get("Location")
	logID := strings.TrimPrefix(loc, "/")
	if logID == "" {
		return "", &RemoteError{Op: "create log", Err: fmt.Errorf("redirect without location")}
	}
	return logID, nil
}
