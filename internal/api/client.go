// Package api is the client of the remote MedCare GraphQL API.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/graphql"
	"golang.org/x/time/rate"

	apperrors "github.com/DarkZangetsu/medcare/internal/errors"
	"github.com/DarkZangetsu/medcare/internal/logger"
)

// TokenSource provides the bearer token of the current session. An empty
// token means the request is sent anonymously.
type TokenSource interface {
	Token() (string, error)
}

type Options struct {
	URL           string
	Timeout       time.Duration
	RatePerSecond float64
	HTTPClient    *http.Client
}

type Client struct {
	gql     *graphql.Client
	tokens  TokenSource
	limiter *rate.Limiter
}

func NewClient(opts Options, tokens TokenSource) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	gql := graphql.NewClient(opts.URL, graphql.WithHTTPClient(httpClient))
	gql.Log = func(s string) { logger.Debug("graphql", "msg", s) }

	return &Client{
		gql:     gql,
		tokens:  tokens,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// run sends req and decodes the data field into resp. Every failure is
// reported as a RemoteError tagged with op.
func (c *Client) run(ctx context.Context, op string, req *graphql.Request, resp any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.Remote(op, err)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return apperrors.Remote(op, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "JWT "+token)
		}
	}

	start := time.Now()
	err := c.gql.Run(ctx, req, resp)
	logger.Debug("API call", "op", op, "duration", time.Since(start), "error", err)
	if err != nil {
		return apperrors.Remote(op, cleanError(err))
	}
	return nil
}

// cleanError strips the transport prefix so the server message reads as-is.
func cleanError(err error) error {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, "graphql: "); trimmed != msg {
		return errors.New(trimmed)
	}
	return err
}

func remoteFailure(op, msg string) error {
	return apperrors.Remote(op, errors.New(msg))
}
