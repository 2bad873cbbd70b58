package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/spordle/internal/catalog"
	"github.com/robalobadob/spordle/internal/media"
	"github.com/robalobadob/spordle/internal/round"
	"github.com/robalobadob/spordle/internal/song"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// retryAfterSeconds is sent with 503 responses while the catalog is down.
const retryAfterSeconds = "5"

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func badJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_json"})
}

// writeError maps domain errors onto status codes and JSON error bodies.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, round.ErrSessionOver):
		writeJSON(w, http.StatusConflict, errorBody{Error: "invalid_session", Message: "round already finished"})
	case errors.Is(err, round.ErrInvalidSession):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "invalid_session"})
	case errors.Is(err, round.ErrSessionNotTerminal):
		writeJSON(w, http.StatusConflict, errorBody{Error: "session_not_terminal"})
	case errors.Is(err, round.ErrCatalogUnavailable):
		hlog.FromRequest(r).Error().Err(err).Msg("catalog unavailable")
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "catalog_unavailable"})
	case errors.Is(err, round.ErrEmptyCatalog):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "empty_catalog", Message: "no songs available"})
	case errors.Is(err, round.ErrAssetLocked):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "locked"})
	case errors.Is(err, catalog.ErrDuplicateTitle):
		writeJSON(w, http.StatusConflict, errorBody{Error: "duplicate_title", Message: err.Error()})
	case errors.Is(err, round.ErrNoAsset), errors.Is(err, media.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
	case errors.Is(err, media.ErrBadRef):
		hlog.FromRequest(r).Warn().Err(err).Msg("rejected asset ref")
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
	case errors.Is(err, song.ErrInvalid), errors.Is(err, song.ErrInvalidLength), errors.Is(err, song.ErrInvalidKind):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid_song", Message: validationMessage(err)})
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal"})
	}
}

// validationMessage strips the package prefix from a song validation error.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), "song: ")
}

func isClientError(err error) bool {
	return errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, catalog.ErrDuplicateTitle) ||
		errors.Is(err, song.ErrInvalid) ||
		errors.Is(err, song.ErrInvalidLength) ||
		errors.Is(err, song.ErrInvalidKind)
}

func catalogDown(err error) error {
	return fmt.Errorf("%w: %v", round.ErrCatalogUnavailable, err)
}
