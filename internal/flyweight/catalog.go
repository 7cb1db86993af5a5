package flyweight

import (
	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// ArtistRegistry interns artists by name.
type ArtistRegistry struct {
	*Registry[*models.Artist]
}

// NewArtistRegistry returns an empty registry. A nil logger discards output.
func NewArtistRegistry(enabled bool, logger *log.Logger) *ArtistRegistry {
	return &ArtistRegistry{newRegistry[*models.Artist]("artists", enabled, logger)}
}

// Resolve returns the canonical artist for name. Genre and country are only
// used when a new artist has to be built.
func (r *ArtistRegistry) Resolve(name, genre, country string) *models.Artist {
	return r.resolve(shared.NormalizeName(name), func(id int64) *models.Artist {
		return models.NewArtist(id, shared.DisplayName(name), genre, country)
	})
}

// SongRegistry interns songs by title and artist name.
type SongRegistry struct {
	*Registry[*models.Song]
	artists *ArtistRegistry
}

// NewSongRegistry returns an empty registry that resolves artists through artists.
func NewSongRegistry(artists *ArtistRegistry, enabled bool, logger *log.Logger) *SongRegistry {
	return &SongRegistry{
		Registry: newRegistry[*models.Song]("songs", enabled, logger),
		artists:  artists,
	}
}

// Artists returns the registry used for artist resolution.
func (r *SongRegistry) Artists() *ArtistRegistry { return r.artists }

// Resolve returns the canonical song for (title, artist). On a miss the artist is
// resolved first, so it is shared according to the artist registry's own mode.
//
// Lock order is song registry, then artist registry.
func (r *SongRegistry) Resolve(title, artist, genre, country string) *models.Song {
	return r.resolve(shared.NormalizeTrackKey(title, artist), func(id int64) *models.Song {
		a := r.artists.Resolve(artist, genre, country)
		return models.NewSong(id, shared.DisplayName(title), a)
	})
}

// ClearAll clears the song registry and its artist registry.
func (r *SongRegistry) ClearAll() {
	r.Clear()
	r.artists.Clear()
}
