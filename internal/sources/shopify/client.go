// Package shopify is the catalog source backed by the Shopify Storefront
// GraphQL API. It is the only place that knows the Shopify wire format.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/bikeyard/internal/domain"
	"github.com/MrSnakeDoc/bikeyard/internal/logger"
	"github.com/MrSnakeDoc/bikeyard/internal/utils"
)

const (
	sourceName = "shopify"

	// maxPages bounds pagination against a service that never stops paging.
	maxPages = 1000

	maxBodyBytes = 16 << 20
)

// Options configures a Client.
type Options struct {
	StoreDomain string        // ex: "bike-yard.myshopify.com"
	AccessToken string        // storefront access token
	APIVersion  string        // ex: "2024-10"
	PageSize    int           // products per page, 1..250
	Timeout     time.Duration // budget of one FetchCatalog call, all pages included
}

// Client fetches the full catalog from the Storefront API.
// It implements domain.Source.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	pageSize   int
	timeout    time.Duration
	mapper     *Mapper
	log        logger.Logger
}

// NewClient builds a client for https://{store}/api/{version}/graphql.json.
func NewClient(opts Options, log logger.Logger) *Client {
	endpoint := fmt.Sprintf("https://%s/api/%s/graphql.json", opts.StoreDomain, opts.APIVersion)
	return newClient(&http.Client{}, endpoint, opts, log)
}

// newClient lets tests inject the http.Client and endpoint.
func newClient(httpClient *http.Client, endpoint string, opts Options, log logger.Logger) *Client {
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > 250 {
		pageSize = 100
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		token:      opts.AccessToken,
		pageSize:   pageSize,
		timeout:    opts.Timeout,
		mapper:     NewMapper(),
		log:        log,
	}
}

// Name identifies the source in logs, errors and the Redis snapshot.
func (c *Client) Name() string { return sourceName }

// FetchCatalog returns every product in storefront order.
// All failures are *domain.FetchError.
func (c *Client) FetchCatalog(ctx context.Context) ([]*domain.CatalogItem, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	var records []*ProductRecord
	var cursor *string

	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, c.fail(fmt.Errorf("%w: more than %d pages", domain.ErrMalformedResponse, maxPages))
		}

		conn, err := c.fetchPage(ctx, cursor)
		if err != nil {
			return nil, c.fail(err)
		}

		for _, edge := range conn.Edges {
			if edge.Node != nil {
				records = append(records, edge.Node)
			}
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		if conn.PageInfo.EndCursor == nil || *conn.PageInfo.EndCursor == "" {
			return nil, c.fail(fmt.Errorf("%w: next page announced without cursor", domain.ErrMalformedResponse))
		}
		cursor = conn.PageInfo.EndCursor
	}

	items, rejected := c.mapper.MapProducts(records)
	for _, err := range rejected {
		c.log.Warn("shopify product skipped", logger.Error(err))
	}

	if len(items) == 0 {
		return nil, c.fail(domain.ErrEmptyCatalog)
	}

	c.log.Info("shopify catalog fetched",
		logger.Int("products", len(items)),
		logger.Int("skipped", len(rejected)),
		logger.Duration("duration", time.Since(start)),
	)
	return items, nil
}

func (c *Client) fetchPage(ctx context.Context, after *string) (*productConnection, error) {
	vars := map[string]any{"first": c.pageSize}
	if after != nil {
		vars["after"] = *after
	}

	body, err := json.Marshal(graphQLRequest{Query: productsQuery, Variables: vars})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request storefront api: %w", err)
	}
	defer utils.DrainAndClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", domain.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: status %d", domain.ErrStoreNotFound, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: status %d", domain.ErrMalformedResponse, resp.StatusCode)
	}

	var out graphQLResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", domain.ErrMalformedResponse, err)
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("%w: graphql: %s", domain.ErrMalformedResponse, strings.Join(msgs, "; "))
	}
	if out.Data == nil || out.Data.Products == nil {
		return nil, fmt.Errorf("%w: missing products", domain.ErrMalformedResponse)
	}
	return out.Data.Products, nil
}

func (c *Client) fail(cause error) *domain.FetchError {
	fe := domain.NewFetchError(sourceName, cause)
	switch {
	case errors.Is(cause, domain.ErrUnauthorized):
		fe.Guidance = "Check BIKEYARD_SHOPIFY_ACCESS_TOKEN: the storefront access token was rejected."
	case errors.Is(cause, domain.ErrStoreNotFound):
		fe.Guidance = "Check BIKEYARD_SHOPIFY_STORE_DOMAIN: the store was not found."
	case errors.Is(cause, context.DeadlineExceeded):
		fe.Guidance = "The storefront API did not answer in time. Check network access or raise BIKEYARD_SHOPIFY_TIMEOUT, then reload."
	}
	c.log.Error("shopify catalog fetch failed", logger.Error(fe))
	return fe
}
