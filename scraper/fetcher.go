package scraper

import (
	"context"
	"errors"
	"net/http"

	"github.com/gocolly/colly/v2"
)

const (
	ctxBody   = "body"
	ctxStatus = "status"
)

// Fetcher retrieves the raw markup of one listing page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// CollyFetcher issues one blocking GET per call through a colly collector.
// There is no retry and no timeout beyond the collector defaults.
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher builds a synchronous collector that sends userAgent.
func NewCollyFetcher(userAgent string) *CollyFetcher {
	collector := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	// Status handling happens in Fetch so that every 2xx counts as content.
	collector.ParseHTTPErrorResponse = true

	collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(ctxStatus, r.StatusCode)
		r.Ctx.Put(ctxBody, string(r.Body))
	})

	return &CollyFetcher{collector: collector}
}

// WithTransport replaces the HTTP transport used by the collector.
func (f *CollyFetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Fetch returns the body of pageURL. Any transport failure or non-2xx status
// yields a *FetchError.
func (f *CollyFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", classifyError(pageURL, err, 0)
	}

	reqCtx := colly.NewContext()
	if err := f.collector.Request(http.MethodGet, pageURL, nil, reqCtx, nil); err != nil {
		return "", classifyError(pageURL, err, 0)
	}

	status, ok := reqCtx.GetAny(ctxStatus).(int)
	if !ok {
		return "", &FetchError{URL: pageURL, Kind: KindOther, Err: errors.New("no response received")}
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return "", classifyError(pageURL, nil, status)
	}
	return reqCtx.Get(ctxBody), nil
}
