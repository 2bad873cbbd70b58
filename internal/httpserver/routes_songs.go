package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/spordle/internal/song"
)

const maxTitleLimit = 500

func (s *Server) mountSongs(r chi.Router) {
	r.Get("/songs", s.handleTitles)
	r.Get("/songs/{id}", s.handleSong)
}

func (s *Server) mountAdmin(r chi.Router) {
	r.Get("/admin/songs", s.handleAdminList)
	r.Post("/admin/songs", s.handleAdminCreate)
	r.Put("/admin/songs/{id}", s.handleAdminUpdate)
	r.Delete("/admin/songs/{id}", s.handleAdminDelete)
}

// publicSong is a catalog entry without hints or asset refs.
type publicSong struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Artists  []string `json:"artists"`
	Year     int      `json:"year"`
	Genres   []string `json:"genres"`
	Types    []string `json:"types"`
	Length   int      `json:"length"`
	Duration string   `json:"duration"`
	CoverURL string   `json:"coverUrl,omitempty"`
}

func toPublic(sg song.Song) publicSong {
	p := publicSong{
		ID:       sg.ID,
		Title:    sg.Title,
		Artists:  sg.Artists,
		Year:     sg.Year,
		Genres:   sg.Genres,
		Types:    sg.TypeNames(),
		Length:   sg.Length,
		Duration: song.FormatLength(sg.Length),
	}
	if sg.HasCover() {
		p.CoverURL = "/api/songs/" + strconv.FormatInt(sg.ID, 10) + "/cover"
	}
	return p
}

// adminSong is the editable form of a song. Duration is entered as m:ss.
type adminSong struct {
	ID        int64    `json:"id,omitempty"`
	Title     string   `json:"title"`
	Artists   []string `json:"artists"`
	Year      int      `json:"year"`
	Genres    []string `json:"genres"`
	Types     []string `json:"types"`
	Duration  string   `json:"duration"`
	Hint1     string   `json:"hint1"`
	Hint2     string   `json:"hint2"`
	Hint3     string   `json:"hint3"`
	CoverRef  string   `json:"coverRef,omitempty"`
	AudioRef  string   `json:"audioRef,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

func toAdmin(sg song.Song) adminSong {
	return adminSong{
		ID:        sg.ID,
		Title:     sg.Title,
		Artists:   sg.Artists,
		Year:      sg.Year,
		Genres:    sg.Genres,
		Types:     sg.TypeNames(),
		Duration:  song.FormatLength(sg.Length),
		Hint1:     sg.Hints[0],
		Hint2:     sg.Hints[1],
		Hint3:     sg.Hints[2],
		CoverRef:  sg.CoverRef,
		AudioRef:  sg.AudioRef,
		CreatedAt: sg.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (a adminSong) toSong() (song.Song, error) {
	length, err := song.ParseLength(a.Duration)
	if err != nil {
		return song.Song{}, err
	}
	kinds := make([]song.Kind, 0, len(a.Types))
	for _, t := range a.Types {
		k, err := song.ParseKind(t)
		if err != nil {
			return song.Song{}, err
		}
		kinds = append(kinds, k)
	}
	return song.Song{
		Title:    a.Title,
		Artists:  a.Artists,
		Year:     a.Year,
		Genres:   a.Genres,
		Types:    kinds,
		Length:   length,
		Hints:    [3]string{a.Hint1, a.Hint2, a.Hint3},
		CoverRef: strings.TrimSpace(a.CoverRef),
		AudioRef: strings.TrimSpace(a.AudioRef),
	}, nil
}

func songID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_id"})
		return 0, false
	}
	return id, true
}

// handleTitles serves the autocomplete list: every title, or the titles
// containing ?q= (newest first) when given.
func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_limit"})
			return
		}
		limit = min(n, maxTitleLimit)
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	out := []song.Title{}
	if q == "" {
		titles, err := s.Catalog.Titles(r.Context())
		if err != nil {
			writeError(w, r, catalogDown(err))
			return
		}
		if limit > 0 && len(titles) > limit {
			titles = titles[:limit]
		}
		out = append(out, titles...)
	} else {
		found, err := s.Catalog.Search(r.Context(), q, limit)
		if err != nil {
			writeError(w, r, catalogDown(err))
			return
		}
		for _, sg := range found {
			out = append(out, song.Title{ID: sg.ID, Title: sg.Title})
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSong(w http.ResponseWriter, r *http.Request) {
	id, ok := songID(w, r)
	if !ok {
		return
	}
	sg, err := s.Catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, catalogErr(err))
		return
	}
	writeJSON(w, http.StatusOK, toPublic(sg))
}

// handleSongCover serves the cover of any catalog song. Guess rows use it;
// the target's cover is only reachable through the session-scoped route.
func (s *Server) handleSongCover(w http.ResponseWriter, r *http.Request) {
	id, ok := songID(w, r)
	if !ok {
		return
	}
	sg, err := s.Catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, catalogErr(err))
		return
	}
	if !sg.HasCover() {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
		return
	}
	if err := s.Media.Serve(w, r, sg.CoverRef, 0); err != nil {
		writeError(w, r, err)
	}
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	all, err := s.Catalog.List(r.Context())
	if err != nil {
		writeError(w, r, catalogDown(err))
		return
	}
	out := make([]adminSong, 0, len(all))
	for _, sg := range all {
		out = append(out, toAdmin(sg))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAdminCreate(w http.ResponseWriter, r *http.Request) {
	var req adminSong
	if err := decode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	sg, err := req.toSong()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.Catalog.Create(r.Context(), sg)
	if err != nil {
		writeError(w, r, catalogErr(err))
		return
	}
	writeJSON(w, http.StatusCreated, toAdmin(created))
}

func (s *Server) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := songID(w, r)
	if !ok {
		return
	}
	var req adminSong
	if err := decode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	sg, err := req.toSong()
	if err != nil {
		writeError(w, r, err)
		return
	}
	sg.ID = id
	updated, err := s.Catalog.Update(r.Context(), sg)
	if err != nil {
		writeError(w, r, catalogErr(err))
		return
	}
	writeJSON(w, http.StatusOK, toAdmin(updated))
}

func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := songID(w, r)
	if !ok {
		return
	}
	if err := s.Catalog.Delete(r.Context(), id); err != nil {
		writeError(w, r, catalogErr(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// catalogErr passes not-found and validation errors through and treats
// anything else as the catalog being unavailable.
func catalogErr(err error) error {
	if isClientError(err) {
		return err
	}
	return catalogDown(err)
}
