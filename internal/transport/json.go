package transport

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
)

// GetJSON fetches url and decodes the JSON body into target.
//
// Failures are classified:
//   - transport errors become *errors.APIError (or *errors.TimeoutError)
//   - non-2xx responses become *errors.APIError carrying a body excerpt
//   - undecodable bodies become *errors.ParseError
func (c *Client) GetJSON(ctx context.Context, rawURL string, target any) error {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.FromContext(ctx).Debug().Err(cerr).Str("system", c.system).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return c.classify(ctx, rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &errors.APIError{
			System:     c.system,
			StatusCode: resp.StatusCode,
			Message:    Excerpt(body),
			Endpoint:   Endpoint(rawURL),
		}
	}

	if int64(len(body)) > c.maxBody {
		return errors.NewParseError("json", Endpoint(rawURL),
			fmt.Sprintf("response body exceeds %d bytes", c.maxBody), nil)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.NewParseError("json", Endpoint(rawURL), err.Error(), err)
	}
	return nil
}

// classify turns a transport error into the package's typed errors.
func (c *Client) classify(ctx context.Context, rawURL string, err error) error {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		if ctx.Err() == nil || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return errors.NewTimeoutError("GET "+Endpoint(rawURL), c.settings.Timeout.String(), err.Error())
		}
	}
	return &errors.APIError{
		System:   c.system,
		Message:  err.Error(),
		Endpoint: Endpoint(rawURL),
		Err:      err,
	}
}

// Getter is the part of Client the fetchers depend on.
type Getter interface {
	System() string
	GetJSON(ctx context.Context, rawURL string, target any) error
}

// Fetch decodes url into a T and reports the outcome as a lookup.Result.
// Failures are logged at warn level before being returned as Failed.
func Fetch[T any](ctx context.Context, g Getter, rawURL string) lookup.Result[T] {
	var v T
	if err := g.GetJSON(ctx, rawURL, &v); err != nil {
		logFailure(ctx, g.System(), rawURL, err)
		return lookup.Failed[T](err)
	}
	return lookup.OK(v)
}

// SafeGet decodes url into a T, returning fallback on any failure.
// It never returns an error; the cause is logged instead.
func SafeGet[T any](ctx context.Context, g Getter, rawURL string, fallback T) T {
	v, ok := Fetch[T](ctx, g, rawURL).Get()
	if !ok {
		return fallback
	}
	return v
}

func logFailure(ctx context.Context, system, rawURL string, err error) {
	event := logging.FromContext(ctx).Warn().
		Err(err).
		Str("system", system).
		Str("endpoint", Endpoint(rawURL))

	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		event = event.Int("status", apiErr.StatusCode).Str("body", apiErr.Message)
	}
	event.Msg("HTTP request failed")
}

// Endpoint strips the query string from a URL so credentials passed as
// parameters never reach logs or errors.
func Endpoint(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		if i := strings.IndexByte(rawURL, '?'); i >= 0 {
			return rawURL[:i]
		}
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}

// Excerpt returns at most constants.BodyExcerptSize bytes of body, cut at a
// rune boundary.
func Excerpt(body []byte) string {
	if len(body) <= constants.BodyExcerptSize {
		return strings.TrimSpace(string(body))
	}
	cut := constants.BodyExcerptSize
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return strings.TrimSpace(string(body[:cut])) + "..."
}
