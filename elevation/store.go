package elevation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/idixon/hyp3-lib/internal/fetch"
	"github.com/rs/zerolog/log"
)

// ObjectGetter is the part of the S3 API the store needs; *s3.Client
// satisfies it.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type StoreConfig struct {
	StagingDir string
	Table      SourceTable
	HTTP       *fetch.Client

	// Objects is created on first use with the default AWS credential chain
	// when nil.
	Objects ObjectGetter
}

type Meta struct {
	Tile   string
	Path   string
	Source string // staged | local | s3 | http
}

// TileStore stages DEM tiles into a local directory.
type TileStore struct {
	cfg StoreConfig
}

func NewTileStore(cfg StoreConfig) (*TileStore, error) {
	if cfg.StagingDir == "" {
		return nil, fmt.Errorf("StagingDir required")
	}
	if err := os.MkdirAll(cfg.StagingDir, 0o755); err != nil {
		return nil, err
	}
	return &TileStore{cfg: cfg}, nil
}

// SRTM products share tile names, so staged tiles are kept per source.
func (s *TileStore) stagedPath(ref TileRef) string {
	return filepath.Join(s.cfg.StagingDir, ref.Source.String(), ref.Tile+tileExt)
}

// Stage makes ref available as <staging>/<source>/<tile>.tif. A tile already
// staged from the same source is reused.
func (s *TileStore) Stage(ctx context.Context, ref TileRef) (Meta, error) {
	meta := Meta{Tile: ref.Tile, Path: s.stagedPath(ref)}

	// 1) staged
	if fi, err := os.Stat(meta.Path); err == nil && fi.Size() > 0 {
		meta.Source = "staged"
		return meta, nil
	}

	// 2) local copy or download
	loc, err := s.cfg.Table.Resolve(ref)
	if err != nil {
		return meta, err
	}
	if err := s.retrieve(ctx, loc, meta.Path); err != nil {
		return meta, fmt.Errorf("stage %s tile %s: %w", ref.Source, ref.Tile, err)
	}
	meta.Source = loc.Kind.String()
	log.Debug().Str("tile", ref.Tile).Str("from", loc.Path).Msg("staged tile")
	return meta, nil
}

// StageFile copies a whole-file dataset of src to dst.
func (s *TileStore) StageFile(ctx context.Context, src Source, file, dst string) error {
	loc, err := s.cfg.Table.ResolveFile(src, file)
	if err != nil {
		return err
	}
	return s.retrieve(ctx, loc, dst)
}

func (s *TileStore) retrieve(ctx context.Context, loc Location, dst string) error {
	switch loc.Kind {
	case ObjectStore:
		return s.getObject(ctx, loc.Path, dst)
	case RemoteHTTP:
		if s.cfg.HTTP == nil {
			return errors.New("no HTTP client configured")
		}
		return s.cfg.HTTP.Download(ctx, loc.Path, dst)
	default:
		return copyFile(loc.Path, dst)
	}
}

func (s *TileStore) getObject(ctx context.Context, rawURL, dst string) error {
	bucket, key, err := splitS3URL(rawURL)
	if err != nil {
		return err
	}
	if s.cfg.Objects == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("aws config: %w", err)
		}
		s.cfg.Objects = s3.NewFromConfig(awsCfg)
	}
	out, err := s.cfg.Objects.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer out.Body.Close()
	return writeFile(dst, out.Body)
}

func splitS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("not an s3 url: %s", raw)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	return writeFile(dst, in)
}

func writeFile(dst string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
