package assets

import (
	"embed"
	"io"
	"io/fs"
)

//go:embed migrations/*.sql seed_songs.json
var FS embed.FS

// Migrations returns the SQL migration files rooted at the migrations directory.
func Migrations() fs.FS {
	sub, err := fs.Sub(FS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// SeedSongs opens the sample catalog shipped with the server.
func SeedSongs() (io.ReadCloser, error) {
	return FS.Open("seed_songs.json")
}
