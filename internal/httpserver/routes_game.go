// internal/httpserver/routes_game.go
//
// HTTP routes for playing a round.
//   - POST /api/game/start          → start a round (optionally discarding a finished one)
//   - POST /api/game/{sid}/guess    → submit a title guess
//   - GET  /api/game/{sid}          → state for resuming after a reload
//   - GET  /api/game/{sid}/hints    → hints unlocked so far
//   - GET  /api/game/{sid}/reveal   → the target, once the round is over
//   - GET  /api/game/{sid}/audio/*  → gated audio (preview, extended, full)
//   - GET  /api/game/{sid}/cover    → gated cover art

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/spordle/internal/round"
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/start", s.handleStart)
	r.Get("/game/{sid}", s.handleState)
	r.Post("/game/{sid}/guess", s.handleGuess)
	r.Get("/game/{sid}/hints", s.handleHints)
	r.Get("/game/{sid}/reveal", s.handleReveal)
}

func (s *Server) mountMedia(r chi.Router) {
	r.Get("/game/{sid}/audio/{stage}", s.handleAudio)
	r.Get("/game/{sid}/cover", s.handleCover)
	r.Get("/songs/{id}/cover", s.handleSongCover)
}

type startReq struct {
	PreviousSessionID string `json:"previousSessionId"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := decode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	res, err := s.Rounds.StartRound(r.Context(), req.PreviousSessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type guessReq struct {
	Title string `json:"title"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decode(w, r, &req); err != nil {
		badJSON(w)
		return
	}
	res, err := s.Rounds.SubmitGuess(r.Context(), chi.URLParam(r, "sid"), req.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	res, err := s.Rounds.State(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	res, err := s.Rounds.Hints(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	res, err := s.Rounds.RevealSolution(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	stage, ok := round.ParseStage(chi.URLParam(r, "stage"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "unknown audio stage"})
		return
	}
	a, err := s.Rounds.Audio(r.Context(), chi.URLParam(r, "sid"), stage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.Media.Serve(w, r, a.Ref, a.LimitSeconds); err != nil {
		writeError(w, r, err)
	}
}

func (s *Server) handleCover(w http.ResponseWriter, r *http.Request) {
	a, err := s.Rounds.Cover(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.Media.Serve(w, r, a.Ref, 0); err != nil {
		writeError(w, r, err)
	}
}
