package models

import (
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func samplePlaylist() *Playlist {
	sheeran := NewArtist(2, "Ed Sheeran", "Pop", "UK")
	capaldi := NewArtist(5, "Lewis Capaldi", "Pop", "UK")

	p := NewPlaylist("Road trip")
	p.Append(NewSong(1, "Shape of You", sheeran))
	p.Append(NewSong(7, "Someone You Loved", capaldi))
	p.Append(NewSong(8, "Before You Go", capaldi))
	p.Append(NewSong(9, "Untitled", nil))
	p.Append(NewSong(1, "Shape of You", sheeran))
	for range 3 {
		p.IncrementUsage()
	}
	return p
}

func TestCodec(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		p := samplePlaylist()

		data, err := Encode(p)
		if err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}

		got, err := Decode(data)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}

		if got.Name() != p.Name() {
			t.Errorf("expected name %q, got %q", p.Name(), got.Name())
		}
		if got.Usage() != 3 {
			t.Errorf("expected usage 3, got %d", got.Usage())
		}

		want, have := p.Songs(), got.Songs()
		if len(have) != len(want) {
			t.Fatalf("expected %d songs, got %d", len(want), len(have))
		}

		for i := range want {
			if have[i].ID() != want[i].ID() || have[i].Title() != want[i].Title() {
				t.Errorf("song %d: expected %v, got %v", i, want[i], have[i])
			}

			wa, ha := want[i].Artist(), have[i].Artist()
			if wa == nil {
				if ha != nil {
					t.Errorf("song %d: expected no artist, got %v", i, ha)
				}
				continue
			}
			if ha == nil {
				t.Fatalf("song %d: expected artist %v, got none", i, wa)
			}
			if ha.ID() != wa.ID() || ha.Name() != wa.Name() || ha.Genre() != wa.Genre() || ha.Country() != wa.Country() {
				t.Errorf("song %d: expected artist %v, got %v", i, wa, ha)
			}
		}
	})

	t.Run("empty playlist", func(t *testing.T) {
		data, err := Encode(NewPlaylist("empty"))
		if err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		if got.Len() != 0 || got.Usage() != 0 || got.Name() != "empty" {
			t.Errorf("unexpected playlist %q len=%d usage=%d", got.Name(), got.Len(), got.Usage())
		}
	})

	t.Run("nil songs do not shorten the round trip", func(t *testing.T) {
		p := NewPlaylist("gaps")
		p.Append(nil)
		p.Append(NewSong(1, "a", nil))
		p.Append(nil)
		p.Append(NewSong(2, "b", nil))

		data, err := Encode(p)
		if err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		if got.Len() != p.Len() {
			t.Fatalf("expected %d songs, got %d", p.Len(), got.Len())
		}
		for i, s := range got.Songs() {
			if s.Title() != p.Songs()[i].Title() {
				t.Errorf("song %d: expected %q, got %q", i, p.Songs()[i].Title(), s.Title())
			}
		}
	})

	t.Run("varints above int64 are corrupt", func(t *testing.T) {
		header := func() []byte {
			var b []byte
			b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
			b = protowire.AppendVarint(b, SnapshotVersion)
			return b
		}

		usage := protowire.AppendTag(header(), fieldUsage, protowire.VarintType)
		usage = protowire.AppendVarint(usage, math.MaxUint64)

		var song []byte
		song = protowire.AppendTag(song, songID, protowire.VarintType)
		song = protowire.AppendVarint(song, math.MaxInt64+1)
		badSong := protowire.AppendTag(header(), fieldSong, protowire.BytesType)
		badSong = protowire.AppendBytes(badSong, song)

		var artist []byte
		artist = protowire.AppendTag(artist, artistID, protowire.VarintType)
		artist = protowire.AppendVarint(artist, math.MaxUint64)
		var withArtist []byte
		withArtist = protowire.AppendTag(withArtist, songArtist, protowire.BytesType)
		withArtist = protowire.AppendBytes(withArtist, artist)
		badArtist := protowire.AppendTag(header(), fieldSong, protowire.BytesType)
		badArtist = protowire.AppendBytes(badArtist, withArtist)

		for name, data := range map[string][]byte{"usage": usage, "song id": badSong, "artist id": badArtist} {
			if _, err := Decode(data); !errors.Is(err, ErrCorruptPayload) {
				t.Errorf("%s: expected ErrCorruptPayload, got %v", name, err)
			}
		}
	})

	t.Run("nil playlist", func(t *testing.T) {
		if _, err := Encode(nil); !errors.Is(err, ErrNilPlaylist) {
			t.Errorf("expected ErrNilPlaylist, got %v", err)
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		var b []byte
		b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
		b = protowire.AppendVarint(b, 2)
		b = protowire.AppendTag(b, fieldName, protowire.BytesType)
		b = protowire.AppendString(b, "future")

		if _, err := Decode(b); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("expected ErrUnsupportedVersion, got %v", err)
		}
	})

	t.Run("missing version", func(t *testing.T) {
		if _, err := Decode(nil); !errors.Is(err, ErrUnsupportedVersion) {
			t.Errorf("expected ErrUnsupportedVersion, got %v", err)
		}
	})

	t.Run("truncated payload", func(t *testing.T) {
		data, _ := Encode(samplePlaylist())
		if _, err := Decode(data[:len(data)-3]); !errors.Is(err, ErrCorruptPayload) {
			t.Errorf("expected ErrCorruptPayload, got %v", err)
		}
	})

	t.Run("wrong wire type", func(t *testing.T) {
		var b []byte
		b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
		b = protowire.AppendVarint(b, SnapshotVersion)
		b = protowire.AppendTag(b, fieldName, protowire.VarintType)
		b = protowire.AppendVarint(b, 9)

		if _, err := Decode(b); !errors.Is(err, ErrCorruptPayload) {
			t.Errorf("expected ErrCorruptPayload, got %v", err)
		}
	})

	t.Run("unknown fields are skipped", func(t *testing.T) {
		data, _ := Encode(samplePlaylist())
		data = protowire.AppendTag(data, 15, protowire.Fixed64Type)
		data = protowire.AppendFixed64(data, 42)
		data = protowire.AppendTag(data, 16, protowire.BytesType)
		data = protowire.AppendString(data, "extra")

		got, err := Decode(data)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}
		if got.Len() != 5 {
			t.Errorf("expected 5 songs, got %d", got.Len())
		}
	})
}
