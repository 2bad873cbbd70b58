// internal/round/service.go
//
// Round controller: starts rounds, applies guesses, gates media.
// The catalog is read outside the per-session lock; only Round.Apply runs
// inside store.Update, so concurrent guesses on one session are serialized
// and guesses on different sessions never wait on each other.

package round

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/spordle/internal/catalog"
	"github.com/robalobadob/spordle/internal/daily"
	"github.com/robalobadob/spordle/internal/game"
	"github.com/robalobadob/spordle/internal/metrics"
	"github.com/robalobadob/spordle/internal/song"
	"github.com/robalobadob/spordle/internal/store"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	// ErrSessionOver is an ErrInvalidSession for a session that exists but is finished.
	ErrSessionOver        = fmt.Errorf("%w: round already finished", ErrInvalidSession)
	ErrUnresolvedGuess    = errors.New("guess matches no song")
	ErrSessionNotTerminal = errors.New("round still in progress")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrEmptyCatalog       = errors.New("catalog has no songs")
	ErrAssetLocked        = errors.New("asset not unlocked yet")
	ErrNoAsset            = errors.New("song has no such asset")
)

const unresolvedMessage = "This song does not exist in our catalog. Please check your input."

// Archiver records finished rounds.
type Archiver interface {
	InsertResult(ctx context.Context, r daily.Result) error
}

// Metrics is the subset of metrics.Recorder used by the controller.
type Metrics interface {
	IncRoundsStarted()
	IncRoundsFinished(status string)
	IncGuess(outcome string)
}

type Options struct {
	MaxMisses       int
	PreviewSeconds  int
	ExtendedSeconds int
}

type Service struct {
	catalog catalog.Catalog
	store   store.Store
	picker  daily.Picker
	archive Archiver
	metrics Metrics
	opts    Options
	now     func() time.Time
}

// NewService wires the controller. archive may be nil.
func NewService(cat catalog.Catalog, st store.Store, picker daily.Picker, archive Archiver, m Metrics, opts Options) *Service {
	if opts.MaxMisses <= 0 {
		opts.MaxMisses = game.DefaultMaxMisses
	}
	if m == nil {
		m = metrics.Noop{}
	}
	return &Service{
		catalog: cat,
		store:   st,
		picker:  picker,
		archive: archive,
		metrics: m,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
}

// load returns a copy of the round, mapping a missing session to ErrInvalidSession.
func (s *Service) load(ctx context.Context, sid string) (*game.Round, error) {
	r, err := s.store.Get(ctx, sid)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// target loads the round's song. A target removed from the catalog can never
// be guessed again, so its session is dropped and reported as invalid.
func (s *Service) target(ctx context.Context, r *game.Round) (song.Song, error) {
	t, err := s.catalog.Get(ctx, r.TargetID)
	if errors.Is(err, catalog.ErrNotFound) {
		if derr := s.store.Delete(ctx, r.ID); derr != nil && !errors.Is(derr, store.ErrNotFound) {
			log.Warn().Err(derr).Str("session", r.ID).Msg("drop orphaned session")
		}
		log.Info().Str("session", r.ID).Int64("song", r.TargetID).Msg("round target removed from catalog")
		return song.Song{}, ErrInvalidSession
	}
	if err != nil {
		return song.Song{}, unavailable(err)
	}
	return t, nil
}

// StartRound begins a new round. A finished previousID is discarded first;
// an unknown or still running one is left alone.
func (s *Service) StartRound(ctx context.Context, previousID string) (Start, error) {
	if previousID != "" {
		if prev, err := s.store.Get(ctx, previousID); err == nil && prev.Terminal() {
			_ = s.store.Delete(ctx, previousID)
		}
	}

	ids, err := s.catalog.IDs(ctx)
	if err != nil {
		return Start{}, unavailable(err)
	}
	now := s.now()
	targetID, err := s.picker.Pick(ctx, ids, now)
	if errors.Is(err, daily.ErrNoCandidates) {
		return Start{}, ErrEmptyCatalog
	}
	if err != nil {
		return Start{}, err
	}

	r := game.NewRound(uuid.NewString(), targetID, s.opts.MaxMisses, now)
	if err := s.store.Create(ctx, r); err != nil {
		return Start{}, fmt.Errorf("create session: %w", err)
	}
	s.metrics.IncRoundsStarted()
	log.Debug().Str("session", r.ID).Msg("round started")

	return Start{
		SessionID:      r.ID,
		PreviewURL:     AudioURL(r.ID, StagePreview),
		MaxAttempts:    r.MaxMisses,
		PreviewSeconds: s.opts.PreviewSeconds,
	}, nil
}

// resolve maps free text to a catalog song.
func (s *Service) resolve(ctx context.Context, title string) (song.Song, error) {
	if song.TitleKey(title) == "" {
		return song.Song{}, ErrUnresolvedGuess
	}
	candidates, err := s.catalog.Search(ctx, title, 0)
	if err != nil {
		return song.Song{}, unavailable(err)
	}
	g, ok := game.Resolve(title, candidates)
	if !ok {
		return song.Song{}, ErrUnresolvedGuess
	}
	return g, nil
}

// SubmitGuess resolves title and applies it to the session.
func (s *Service) SubmitGuess(ctx context.Context, sid, title string) (GuessResult, error) {
	r, err := s.load(ctx, sid)
	if err != nil {
		return GuessResult{}, err
	}
	if r.Terminal() {
		return GuessResult{}, ErrSessionOver
	}

	guess, err := s.resolve(ctx, title)
	if errors.Is(err, ErrUnresolvedGuess) {
		s.metrics.IncGuess(metrics.OutcomeInvalid)
		return GuessResult{
			Valid:       false,
			Message:     unresolvedMessage,
			Status:      r.Status,
			Attempts:    r.Misses,
			MaxAttempts: r.MaxMisses,
			NextHintAt:  game.NextHintAt(r.Misses),
		}, nil
	}
	if err != nil {
		return GuessResult{}, err
	}

	target, err := s.target(ctx, r)
	if err != nil {
		return GuessResult{}, err
	}

	next, err := s.store.Update(ctx, sid, func(cur *game.Round) error {
		_, err := cur.Apply(guess, target, s.now())
		return err
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		return GuessResult{}, ErrInvalidSession
	case errors.Is(err, game.ErrRoundOver):
		return GuessResult{}, ErrSessionOver
	case err != nil:
		return GuessResult{}, err
	}

	row := rowFor(next.Guesses[len(next.Guesses)-1])
	res := GuessResult{
		Valid:       true,
		Correct:     next.Status == game.StatusWon,
		Status:      next.Status,
		Attempts:    next.Misses,
		MaxAttempts: next.MaxMisses,
		Guess:       &row,
		NextHintAt:  game.NextHintAt(next.Misses),
	}
	if res.Correct {
		s.metrics.IncGuess(metrics.OutcomeHit)
	} else {
		s.metrics.IncGuess(metrics.OutcomeMiss)
		res.Hints = game.HintsFor(target, next.Misses, mediaFor(sid))
	}
	if next.Status == game.StatusLost {
		res.Solution = solutionFor(sid, target)
	}
	if next.Terminal() {
		s.finish(ctx, next)
	}
	return res, nil
}

// finish archives a round that just reached a terminal state. It runs once
// per round because only one Update can make that transition.
func (s *Service) finish(ctx context.Context, r *game.Round) {
	s.metrics.IncRoundsFinished(string(r.Status))
	log.Info().Str("session", r.ID).Str("status", string(r.Status)).Int("misses", r.Misses).Msg("round finished")
	if s.archive == nil {
		return
	}
	err := s.archive.InsertResult(ctx, daily.Result{
		SessionID: r.ID,
		Date:      daily.DateKey(r.CreatedAt),
		SongID:    r.TargetID,
		Status:    string(r.Status),
		Misses:    r.Misses,
		Guesses:   len(r.Guesses),
		ElapsedMs: r.UpdatedAt.Sub(r.CreatedAt).Milliseconds(),
	})
	if err != nil {
		log.Warn().Err(err).Str("session", r.ID).Msg("archive round")
	}
}

// Hints returns the tiers unlocked so far.
func (s *Service) Hints(ctx context.Context, sid string) (HintsView, error) {
	r, err := s.load(ctx, sid)
	if err != nil {
		return HintsView{}, err
	}
	target, err := s.target(ctx, r)
	if err != nil {
		return HintsView{}, err
	}
	return HintsView{
		Attempts:    r.Misses,
		MaxAttempts: r.MaxMisses,
		NextHintAt:  game.NextHintAt(r.Misses),
		Hints:       game.HintsFor(target, r.Misses, mediaFor(sid)),
	}, nil
}

// State returns everything needed to redraw a round.
func (s *Service) State(ctx context.Context, sid string) (StateView, error) {
	r, err := s.load(ctx, sid)
	if err != nil {
		return StateView{}, err
	}
	target, err := s.target(ctx, r)
	if err != nil {
		return StateView{}, err
	}
	v := StateView{
		SessionID:   r.ID,
		Status:      r.Status,
		Attempts:    r.Misses,
		MaxAttempts: r.MaxMisses,
		PreviewURL:  AudioURL(r.ID, StagePreview),
		Guesses:     make([]GuessRow, 0, len(r.Guesses)),
		Hints:       game.HintsFor(target, r.Misses, mediaFor(sid)),
		NextHintAt:  game.NextHintAt(r.Misses),
	}
	for _, g := range r.Guesses {
		v.Guesses = append(v.Guesses, rowFor(g))
	}
	if r.Terminal() {
		v.Solution = solutionFor(sid, target)
	}
	return v, nil
}

// RevealSolution returns the target of a finished round.
func (s *Service) RevealSolution(ctx context.Context, sid string) (Solution, error) {
	r, err := s.load(ctx, sid)
	if err != nil {
		return Solution{}, err
	}
	if !r.Terminal() {
		return Solution{}, ErrSessionNotTerminal
	}
	target, err := s.target(ctx, r)
	if err != nil {
		return Solution{}, err
	}
	return *solutionFor(sid, target), nil
}

// Audio gates access to the target's audio.
//
//	preview:  always
//	extended: once the third hint is unlocked, or the round is over
//	full:     only when the round is over
func (s *Service) Audio(ctx context.Context, sid string, st Stage) (Asset, error) {
	r, err := s.load(ctx, sid)
	if err != nil {
		return Asset{}, err
	}
	limit := 0
	switch st {
	case StagePreview:
		limit = s.opts.PreviewSeconds
	case StageExtended:
		if !r.Terminal() && !game.ExtendedAudioUnlocked(r.Misses) {
			return Asset{}, ErrAssetLocked
		}
		limit = s.opts.ExtendedSeconds
	case StageFull:
		if !r.Terminal() {
			return Asset{}, ErrSessionNotTerminal
		}
	default:
		return Asset{}, fmt.Errorf("unknown audio stage %q", st)
	}
	target, err := s.target(ctx, r)
	if err != nil {
		return Asset{}, err
	}
	if !target.HasAudio() {
		return Asset{}, ErrNoAsset
	}
	return Asset{Ref: target.AudioRef, LimitSeconds: limit}, nil
}

// Cover gates access to the target's cover art.
func (s *Service) Cover(ctx context.Context, sid string) (Asset, error) {
	r, err := s.load(ctx, sid)
	if err != nil {
		return Asset{}, err
	}
	if !r.Terminal() && !game.CoverUnlocked(r.Misses) {
		return Asset{}, ErrAssetLocked
	}
	target, err := s.target(ctx, r)
	if err != nil {
		return Asset{}, err
	}
	if !target.HasCover() {
		return Asset{}, ErrNoAsset
	}
	return Asset{Ref: target.CoverRef}, nil
}
