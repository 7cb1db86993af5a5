package models

import "fmt"

// Artist is a shared, immutable performer record.
type Artist struct {
	id      int64
	name    string
	genre   string
	country string
}

// NewArtist builds an Artist. Callers outside the registries and the codec should
// obtain artists through flyweight.ArtistRegistry.
func NewArtist(id int64, name, genre, country string) *Artist {
	return &Artist{id: id, name: name, genre: genre, country: country}
}

func (a *Artist) ID() int64       { return a.id }
func (a *Artist) Name() string    { return a.name }
func (a *Artist) Genre() string   { return a.genre }
func (a *Artist) Country() string { return a.country }

func (a *Artist) String() string {
	return fmt.Sprintf("%s (%s, %s) #%d", a.name, a.genre, a.country, a.id)
}

// Song is a shared, immutable track. It references its artist without owning it;
// the artist may be nil for decoded snapshots that carried none.
type Song struct {
	id     int64
	title  string
	artist *Artist
}

// NewSong builds a Song. See [NewArtist] for who should call it.
func NewSong(id int64, title string, artist *Artist) *Song {
	return &Song{id: id, title: title, artist: artist}
}

func (s *Song) ID() int64       { return s.id }
func (s *Song) Title() string   { return s.title }
func (s *Song) Artist() *Artist { return s.artist }

func (s *Song) String() string {
	if s.artist == nil {
		return fmt.Sprintf("%s #%d", s.title, s.id)
	}
	return fmt.Sprintf("%s - %s #%d", s.title, s.artist.name, s.id)
}
