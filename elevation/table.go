package elevation

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// SourceTable maps a source name to its storage root: a local directory,
// an s3:// prefix or an http(s):// prefix.
type SourceTable map[string]string

// ParseSourceTable reads "NAME ROOT" lines. Blank lines and lines starting
// with # are ignored, and so are names that are not a known DEM source.
func ParseSourceTable(r io.Reader) (SourceTable, error) {
	t := SourceTable{}
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("source table line %d: want NAME ROOT, got %q", line, text)
		}
		src, err := ParseSource(fields[0])
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping source table entry")
			continue
		}
		t[src.String()] = fields[1]
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return t, nil
}

func LoadSourceTable(path string) (SourceTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseSourceTable(f)
}

// Merge overlays entries; names are matched case-insensitively.
func (t SourceTable) Merge(overrides map[string]string) SourceTable {
	for name, root := range overrides {
		t[strings.ToUpper(name)] = root
	}
	return t
}

// LocationKind says how a tile is retrieved.
type LocationKind int

const (
	LocalFile LocationKind = iota
	ObjectStore
	RemoteHTTP
)

func (k LocationKind) String() string {
	switch k {
	case ObjectStore:
		return "s3"
	case RemoteHTTP:
		return "http"
	}
	return "local"
}

// Location is a resolved tile address.
type Location struct {
	Kind LocationKind
	Path string
}

// TileRef names one tile of one source.
type TileRef struct {
	Source Source
	Tile   string
}

const tileExt = ".tif"

func kindOf(root string) LocationKind {
	switch {
	case strings.HasPrefix(root, "s3://"):
		return ObjectStore
	case strings.HasPrefix(root, "http://"), strings.HasPrefix(root, "https://"):
		return RemoteHTTP
	}
	return LocalFile
}

func joinRemote(root string, elems ...string) string {
	return strings.TrimRight(root, "/") + "/" + strings.Join(elems, "/")
}

// Resolve maps a tile to <root>/<NAME>/<tile>.tif for remote roots and
// <root>/geotiff/<tile>.tif for local ones.
func (t SourceTable) Resolve(ref TileRef) (Location, error) {
	return t.resolve(ref.Source, ref.Tile+tileExt, "geotiff")
}

// ResolveFile maps a whole-file dataset (antimeridian substitutes) to
// <root>/<NAME>/<file> remotely or <root>/<file> locally.
func (t SourceTable) ResolveFile(src Source, file string) (Location, error) {
	return t.resolve(src, file, "")
}

func (t SourceTable) resolve(src Source, file, localSub string) (Location, error) {
	root, ok := t[src.String()]
	if !ok {
		return Location{}, fmt.Errorf("no storage root configured for %s", src)
	}
	kind := kindOf(root)
	if kind != LocalFile {
		return Location{Kind: kind, Path: joinRemote(root, src.String(), file)}, nil
	}
	return Location{Kind: LocalFile, Path: filepath.Join(root, localSub, file)}, nil
}
