package api

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"time"
	"tournament-elo/internal/constants"
	"tournament-elo/internal/loader"

	"github.com/valyala/fasthttp"
)

// ResultsClient downloads tournament result files published over HTTP.
type ResultsClient struct {
	client *fasthttp.Client
}

func NewResultsClient() *ResultsClient {
	return &ResultsClient{
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Sources turns result URLs into loader sources, oldest first. The batch
// date comes from the last path segment, as with files on disk.
func (c *ResultsClient) Sources(urls []string) ([]loader.Source, error) {
	sources := make([]loader.Source, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid results url %q: %w", raw, err)
		}
		name := path.Base(u.Path)
		date, ok := loader.DateFromName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a results file", loader.ErrMalformedInput, raw)
		}
		sources = append(sources, loader.Source{
			Date: date,
			Name: name,
			Open: func(ctx context.Context) ([]byte, error) {
				return c.Fetch(ctx, raw)
			},
		})
	}

	if err := loader.SortSources(sources); err != nil {
		return nil, err
	}
	return sources, nil
}

func (c *ResultsClient) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(rawURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	deadline, _ := ctx.Deadline()
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	// resp is released on return
	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
