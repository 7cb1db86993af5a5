package tasks

// Track is one catalog row used to build synthetic playlists.
type Track struct {
	Title   string
	Artist  string
	Genre   string
	Country string
}

// Catalog is the fixed song list scenarios draw from.
var Catalog = []Track{
	{"Despacito", "Luis Fonsi", "Reggaeton", "Puerto Rico"},
	{"Shape of You", "Ed Sheeran", "Pop", "UK"},
	{"Blinding Lights", "The Weeknd", "Synthpop", "Canada"},
	{"Dance Monkey", "Tones and I", "Pop", "Australia"},
	{"Someone You Loved", "Lewis Capaldi", "Pop", "UK"},
	{"Señorita", "Shawn Mendes", "Pop", "Canada"},
	{"Bad Guy", "Billie Eilish", "Electropop", "USA"},
	{"Roses", "SAINt JHN", "Hip Hop", "USA"},
	{"Memories", "Maroon 5", "Pop Rock", "USA"},
	{"Before You Go", "Lewis Capaldi", "Pop", "UK"},
}

// demoPlaylists is the small hand-built set shown by [Engine.Demo]; several songs repeat across lists.
var demoPlaylists = []struct {
	Name   string
	Tracks []Track
}{
	{"Top Pop Hits", []Track{Catalog[1], Catalog[6], Catalog[4]}},
	{"My Favorites", []Track{Catalog[1], Catalog[2], Catalog[9]}},
	{"Workout Mix", []Track{Catalog[2], Catalog[6], Catalog[3]}},
}
