package orbit

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Download saves the matched file as <dir>/<name> and returns that path.
func Download(ctx context.Context, c Client, m Match, dir string) (string, error) {
	path := filepath.Join(dir, m.Name)
	if err := c.Download(ctx, m.URL, path); err != nil {
		return "", networkErr(err)
	}
	log.Info().Str("file", path).Msg("downloaded orbit file")
	return path, nil
}

// Fetch parses the product id, searches p and downloads the match.
func Fetch(ctx context.Context, p Provider, c Client, id, dir string) (Match, string, error) {
	product, err := ParseProduct(id)
	if err != nil {
		return Match{}, "", err
	}
	m, err := p.Search(ctx, product)
	if err != nil {
		return Match{}, "", err
	}
	log.Info().Str("product", product.ID).Str("orbit", m.Name).Str("url", m.URL).Msg("found orbit file")
	path, err := Download(ctx, c, m, dir)
	return m, path, err
}
