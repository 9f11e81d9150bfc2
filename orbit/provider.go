package orbit

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

// Client is the HTTP surface the providers use; *fetch.Client satisfies it.
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Download(ctx context.Context, url, path string) error
}

// Match is a located orbit file.
type Match struct {
	Candidate
	URL string
}

// Provider searches one archive family for the orbit of a product.
type Provider interface {
	Name() string
	Search(ctx context.Context, p Product) (Match, error)
}

// listing fetches and parses one archive page.
func listing(ctx context.Context, c Client, pageURL string) ([]string, error) {
	body, err := c.Get(ctx, pageURL)
	if err != nil {
		return nil, networkErr(err)
	}
	names, err := ParseListing(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", ErrParse, pageURL, err)
	}
	log.Debug().Str("url", pageURL).Int("entries", len(names)).Msg("fetched listing")
	return names, nil
}

func dirURL(base string) string {
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}

// ASF searches the precise orbit directory, then the restituted one.
type ASF struct {
	PreciseURL    string
	RestitutedURL string
	Client        Client
}

func (a *ASF) Name() string { return "ASF" }

func (a *ASF) Search(ctx context.Context, p Product) (Match, error) {
	for _, dir := range []string{a.PreciseURL, a.RestitutedURL} {
		dir = dirURL(dir)
		names, err := listing(ctx, a.Client, dir)
		if err != nil {
			return Match{}, err
		}
		if c, ok := Best(p.Platform, p.Start, names); ok {
			return Match{Candidate: c, URL: dir + c.Name}, nil
		}
		log.Debug().Str("product", p.ID).Str("url", dir).Msg("no covering orbit")
	}
	return Match{}, &NotFoundError{Product: p.ID, Provider: a.Name()}
}

// ESA queries the QC service filtered by validity start: the precise set
// starting the day before acquisition, then at most Pages pages of the
// restituted set starting on the acquisition day. Results beyond the last
// page are never seen.
type ESA struct {
	PreciseURL    string
	RestitutedURL string
	Pages         int
	Client        Client
}

func (e *ESA) Name() string { return "ESA" }

func (e *ESA) Search(ctx context.Context, p Product) (Match, error) {
	day := time.Date(p.Start.Year(), p.Start.Month(), p.Start.Day(), 0, 0, 0, 0, time.UTC)

	precise := dirURL(e.PreciseURL)
	q := url.Values{"validity_start_time": {day.AddDate(0, 0, -1).Format(dateLayout)}}
	names, err := listing(ctx, e.Client, precise+"?"+q.Encode())
	if err != nil {
		return Match{}, err
	}
	if c, ok := Best(p.Platform, p.Start, names); ok {
		return Match{Candidate: c, URL: precise + c.Name}, nil
	}

	restituted := dirURL(e.RestitutedURL)
	for page := 1; page <= e.Pages; page++ {
		pageURL := fmt.Sprintf("%s?page=%d&validity_start_time=%s", restituted, page, day.Format(dateLayout))
		names, err := listing(ctx, e.Client, pageURL)
		if err != nil {
			return Match{}, err
		}
		if c, ok := Best(p.Platform, p.Start, names); ok {
			return Match{Candidate: c, URL: restituted + c.Name}, nil
		}
	}
	return Match{}, &NotFoundError{Product: p.ID, Provider: e.Name()}
}

// Endpoints are the archive roots for both providers.
type Endpoints struct {
	ASFPrecise    string
	ASFRestituted string
	ESAPrecise    string
	ESARestituted string
	ESAPages      int
}

// NewProvider returns the provider called name (case-insensitive).
func NewProvider(name string, ep Endpoints, c Client) (Provider, error) {
	switch strings.ToUpper(name) {
	case "ASF":
		return &ASF{PreciseURL: ep.ASFPrecise, RestitutedURL: ep.ASFRestituted, Client: c}, nil
	case "ESA":
		return &ESA{PreciseURL: ep.ESAPrecise, RestitutedURL: ep.ESARestituted, Pages: ep.ESAPages, Client: c}, nil
	}
	return nil, fmt.Errorf("unknown orbit provider %q", name)
}
