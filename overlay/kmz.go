package overlay

import (
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/zip"
)

// WriteKMZ deflates the given files into path. entries maps the name inside
// the archive to the file on disk.
func WriteKMZ(path string, entries map[string]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	// KML first so viewers pick it as the root document.
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ki, kj := isKML(names[i]), isKML(names[j])
		if ki != kj {
			return ki
		}
		return names[i] < names[j]
	})

	zw := zip.NewWriter(f)
	for _, name := range names {
		if err := addFile(zw, name, entries[name]); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

func isKML(name string) bool {
	return len(name) > 4 && name[len(name)-4:] == ".kml"
}

func addFile(zw *zip.Writer, name, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}
