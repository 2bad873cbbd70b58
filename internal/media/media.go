// Package media serves cover and audio files referenced by catalog songs.
package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// LimitHeader tells the player how many seconds of the file may be played.
// 0 means no limit.
const LimitHeader = "X-Playback-Limit"

var (
	ErrNotFound = errors.New("asset not found")
	ErrBadRef   = errors.New("asset reference escapes the asset root")
)

// Server resolves asset refs inside fsys. Refs are slash-separated paths
// relative to the root; anything that would escape the root is rejected.
type Server struct {
	fsys fs.FS
}

func New(fsys fs.FS) *Server { return &Server{fsys: fsys} }

func clean(ref string) (string, error) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "./")
	if ref == "" || strings.Contains(ref, `\`) {
		return "", ErrBadRef
	}
	if !fs.ValidPath(ref) || path.Clean(ref) != ref {
		return "", ErrBadRef
	}
	return ref, nil
}

type seekFile interface {
	fs.File
	io.ReadSeeker
}

func (s *Server) open(ref string) (seekFile, fs.FileInfo, error) {
	name, err := clean(ref)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, nil, ErrNotFound
	}
	sf, ok := f.(seekFile)
	if !ok {
		f.Close()
		return nil, nil, fmt.Errorf("%s is not seekable", name)
	}
	return sf, info, nil
}

// Serve writes the asset with range support. limitSeconds is reported in
// LimitHeader; cutting the snippet is left to the player.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, ref string, limitSeconds int) error {
	f, info, err := s.open(ref)
	if err != nil {
		return err
	}
	defer f.Close()

	w.Header().Set(LimitHeader, strconv.Itoa(limitSeconds))
	w.Header().Set("Cache-Control", "private, no-store")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return nil
}
