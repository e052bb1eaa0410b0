package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"

	"github.com/hookworks/git-slack-hook/pkg/version"
)

// The legacy incoming webhook endpoint wants the JSON document wrapped in a
// form-encoded payload field.
type form struct {
	Payload string `url:"payload"`
}

// Client posts payloads to a Slack incoming webhook endpoint.
type Client struct {
	// URL is the webhook endpoint.
	URL string

	// Debug prints the request to Out instead of sending it.
	Debug bool

	// Out is the sink for debug output.
	Out io.Writer

	httpClient *http.Client
}

// NewClient returns a client for the given webhook endpoint.
func NewClient(url string) *Client {
	return &Client{
		URL: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send posts a single payload. Delivery is fire-and-forget: the response is
// drained and discarded, and non-2xx statuses are only logged at debug
// level. Transport errors are returned.
func (c *Client) Send(ctx context.Context, p Payload) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return err
	}

	v, err := query.Values(form{Payload: string(doc)})
	if err != nil {
		return err
	}
	body := v.Encode()

	if c.Debug {
		fmt.Fprintf(c.Out, "POST %s\n%s\n", c.URL, body)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, strings.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Add("User-Agent", "git-slack-hook/"+version.Version)
	req.Header.Add("X-Delivery", uuid.NewString())

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close() // nolint: errcheck
	_, _ = io.Copy(io.Discard, res.Body)
	log.FromContext(ctx).Debug("webhook delivered", "status", res.StatusCode)

	return nil
}
