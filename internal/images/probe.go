package images

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Probe checks whether an image URL is actually reachable. Implementations
// must treat a timeout as a negative answer rather than blocking.
type Probe interface {
	HeadCheck(ctx context.Context, url string) bool
}

// RestyProbe issues a HEAD request with a short timeout.
type RestyProbe struct {
	client *resty.Client
}

func NewRestyProbe(timeout time.Duration) *RestyProbe {
	return &RestyProbe{
		client: resty.New().SetTimeout(timeout),
	}
}

func (p *RestyProbe) HeadCheck(ctx context.Context, url string) bool {
	resp, err := p.client.R().SetContext(ctx).Head(url)
	if err != nil {
		return false
	}
	return resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices
}

// AlwaysOKProbe skips the network round-trip; used in tests and when
// probing is disabled.
type AlwaysOKProbe struct{}

func (AlwaysOKProbe) HeadCheck(ctx context.Context, url string) bool { return true }
