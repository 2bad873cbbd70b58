package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/spordle/internal/daily"
)

func (s *Server) mountDaily(r chi.Router) {
	r.Get("/daily/summary", s.handleSummary)
}

// handleSummary reports archived results for ?date=YYYY-MM-DD (default today, UTC).
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_date", Message: "date must be YYYY-MM-DD"})
		return
	}
	sum, err := s.Archive.Summary(r.Context(), date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
