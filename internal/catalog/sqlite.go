package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/spordle/internal/song"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const songColumns = `id, title, artists, year, genres, types, length, hint1, hint2, hint3, cover_ref, audio_ref, created_at`

// SQLite is a Catalog backed by the songs table.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite wraps an open, migrated database.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSong(row scanner) (song.Song, error) {
	var (
		s                      song.Song
		artists, genres, types string
		created                string
	)
	if err := row.Scan(&s.ID, &s.Title, &artists, &s.Year, &genres, &types, &s.Length,
		&s.Hints[0], &s.Hints[1], &s.Hints[2], &s.CoverRef, &s.AudioRef, &created); err != nil {
		return song.Song{}, err
	}
	if err := json.Unmarshal([]byte(artists), &s.Artists); err != nil {
		return song.Song{}, fmt.Errorf("decode artists of song %d: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(genres), &s.Genres); err != nil {
		return song.Song{}, fmt.Errorf("decode genres of song %d: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(types), &s.Types); err != nil {
		return song.Song{}, fmt.Errorf("decode types of song %d: %w", s.ID, err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return song.Song{}, fmt.Errorf("decode created_at of song %d: %w", s.ID, err)
	}
	s.CreatedAt = t
	return s, nil
}

func (c *SQLite) querySongs(ctx context.Context, query string, args ...any) ([]song.Song, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []song.Song{}
	for rows.Next() {
		s, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (c *SQLite) Get(ctx context.Context, id int64) (song.Song, error) {
	row := c.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songs WHERE id=?`, id)
	s, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return song.Song{}, ErrNotFound
	}
	if err != nil {
		return song.Song{}, fmt.Errorf("query song %d: %w", id, err)
	}
	return s, nil
}

func (c *SQLite) Search(ctx context.Context, query string, limit int) ([]song.Song, error) {
	if limit <= 0 {
		limit = -1
	}
	out, err := c.querySongs(ctx, `
        SELECT `+songColumns+`
        FROM songs
        WHERE instr(title_key, ?) > 0
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, song.TitleKey(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	return out, nil
}

func (c *SQLite) Titles(ctx context.Context) ([]song.Title, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, title FROM songs ORDER BY title_key ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	out := []song.Title{}
	for rows.Next() {
		var t song.Title
		if err := rows.Scan(&t.ID, &t.Title); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (c *SQLite) IDs(ctx context.Context) ([]int64, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id FROM songs ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (c *SQLite) List(ctx context.Context) ([]song.Song, error) {
	out, err := c.querySongs(ctx, `SELECT `+songColumns+` FROM songs ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return out, nil
}

func (c *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM songs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return n, nil
}

// encoded holds the JSON array columns of a song.
type encoded struct {
	artists, genres, types string
}

func encode(s song.Song) (encoded, error) {
	var e encoded
	for _, f := range []struct {
		dst *string
		v   any
	}{{&e.artists, trimAll(s.Artists)}, {&e.genres, trimAll(s.Genres)}, {&e.types, s.Types}} {
		b, err := json.Marshal(f.v)
		if err != nil {
			return encoded{}, err
		}
		*f.dst = string(b)
	}
	return e, nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func (c *SQLite) Create(ctx context.Context, s song.Song) (song.Song, error) {
	if err := song.Validate(s); err != nil {
		return song.Song{}, err
	}
	e, err := encode(s)
	if err != nil {
		return song.Song{}, err
	}
	s.Title = strings.TrimSpace(s.Title)
	s.CreatedAt = c.now().UTC()

	res, err := c.db.ExecContext(ctx, `
        INSERT INTO songs (title, title_key, artists, year, genres, types, length,
                           hint1, hint2, hint3, cover_ref, audio_ref, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.Title, song.TitleKey(s.Title), e.artists, s.Year, e.genres, e.types, s.Length,
		s.Hints[0], s.Hints[1], s.Hints[2], s.CoverRef, s.AudioRef, s.CreatedAt.Format(timeLayout),
	)
	if isUnique(err) {
		return song.Song{}, fmt.Errorf("%w: %q", ErrDuplicateTitle, s.Title)
	}
	if err != nil {
		return song.Song{}, fmt.Errorf("insert song: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return song.Song{}, err
	}
	return c.Get(ctx, s.ID)
}

func (c *SQLite) Update(ctx context.Context, s song.Song) (song.Song, error) {
	if err := song.Validate(s); err != nil {
		return song.Song{}, err
	}
	e, err := encode(s)
	if err != nil {
		return song.Song{}, err
	}
	s.Title = strings.TrimSpace(s.Title)

	res, err := c.db.ExecContext(ctx, `
        UPDATE songs SET title=?, title_key=?, artists=?, year=?, genres=?, types=?, length=?,
                         hint1=?, hint2=?, hint3=?, cover_ref=?, audio_ref=?
        WHERE id=?`,
		s.Title, song.TitleKey(s.Title), e.artists, s.Year, e.genres, e.types, s.Length,
		s.Hints[0], s.Hints[1], s.Hints[2], s.CoverRef, s.AudioRef, s.ID,
	)
	if isUnique(err) {
		return song.Song{}, fmt.Errorf("%w: %q", ErrDuplicateTitle, s.Title)
	}
	if err != nil {
		return song.Song{}, fmt.Errorf("update song %d: %w", s.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return song.Song{}, ErrNotFound
	}
	return c.Get(ctx, s.ID)
}

func (c *SQLite) Delete(ctx context.Context, id int64) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM songs WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete song %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUnique(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}
