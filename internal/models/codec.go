package models

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// SnapshotVersion is the schema version written by [Encode] and required by [Decode].
const SnapshotVersion = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrCorruptPayload     = errors.New("corrupt snapshot payload")
	ErrNilPlaylist        = errors.New("nil playlist")
)

// Snapshot field numbers. Payloads use the protobuf wire format so that fields can
// be added later without breaking older readers; unknown fields are skipped.
const (
	fieldVersion protowire.Number = 1
	fieldName    protowire.Number = 2
	fieldUsage   protowire.Number = 3
	fieldSong    protowire.Number = 4

	songID           protowire.Number = 1
	songTitle        protowire.Number = 2
	songArtist       protowire.Number = 3
	songArtistAbsent protowire.Number = 4

	artistID      protowire.Number = 1
	artistName    protowire.Number = 2
	artistGenre   protowire.Number = 3
	artistCountry protowire.Number = 4
)

// Encode serializes p as a versioned snapshot.
func Encode(p *Playlist) ([]byte, error) {
	if p == nil {
		return nil, ErrNilPlaylist
	}

	var b []byte
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, SnapshotVersion)
	b = protowire.AppendTag(b, fieldName, protowire.BytesType)
	b = protowire.AppendString(b, p.Name())
	b = protowire.AppendTag(b, fieldUsage, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Usage()))

	for _, s := range p.Songs() {
		b = protowire.AppendTag(b, fieldSong, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeSong(s))
	}
	return b, nil
}

func encodeSong(s *Song) []byte {
	var b []byte
	b = protowire.AppendTag(b, songID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.ID()))
	b = protowire.AppendTag(b, songTitle, protowire.BytesType)
	b = protowire.AppendString(b, s.Title())

	a := s.Artist()
	if a == nil {
		b = protowire.AppendTag(b, songArtistAbsent, protowire.VarintType)
		return protowire.AppendVarint(b, 1)
	}

	var ab []byte
	ab = protowire.AppendTag(ab, artistID, protowire.VarintType)
	ab = protowire.AppendVarint(ab, uint64(a.ID()))
	ab = protowire.AppendTag(ab, artistName, protowire.BytesType)
	ab = protowire.AppendString(ab, a.Name())
	ab = protowire.AppendTag(ab, artistGenre, protowire.BytesType)
	ab = protowire.AppendString(ab, a.Genre())
	ab = protowire.AppendTag(ab, artistCountry, protowire.BytesType)
	ab = protowire.AppendString(ab, a.Country())

	b = protowire.AppendTag(b, songArtist, protowire.BytesType)
	return protowire.AppendBytes(b, ab)
}

// Decode rebuilds a playlist from a payload produced by [Encode].
//
// Songs and artists are rebuilt as fresh values carrying the encoded identities;
// they are not interned.
func Decode(data []byte) (*Playlist, error) {
	var (
		version uint64
		seen    bool
		name    string
		usage   int64
		songs   []*Song
	)

	err := walk(data, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			version, seen = n, true
		case num == fieldName && typ == protowire.BytesType:
			name = string(v)
		case num == fieldUsage && typ == protowire.VarintType:
			if n > math.MaxInt64 {
				return fmt.Errorf("%w: usage %d overflows int64", ErrCorruptPayload, n)
			}
			usage = int64(n)
		case num == fieldSong && typ == protowire.BytesType:
			s, err := decodeSong(v)
			if err != nil {
				return err
			}
			songs = append(songs, s)
		case num <= fieldSong:
			return fmt.Errorf("%w: field %d has wire type %d", ErrCorruptPayload, num, typ)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !seen || version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	p := NewPlaylist(name)
	p.setUsage(usage)
	p.songs = songs
	return p, nil
}

func decodeSong(data []byte) (*Song, error) {
	var (
		id     int64
		title  string
		artist *Artist
	)

	err := walk(data, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == songID && typ == protowire.VarintType:
			if n > math.MaxInt64 {
				return fmt.Errorf("%w: song id %d overflows int64", ErrCorruptPayload, n)
			}
			id = int64(n)
		case num == songTitle && typ == protowire.BytesType:
			title = string(v)
		case num == songArtist && typ == protowire.BytesType:
			a, err := decodeArtist(v)
			if err != nil {
				return err
			}
			artist = a
		case num == songArtistAbsent && typ == protowire.VarintType:
			artist = nil
		case num <= songArtistAbsent:
			return fmt.Errorf("%w: song field %d has wire type %d", ErrCorruptPayload, num, typ)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return NewSong(id, title, artist), nil
}

func decodeArtist(data []byte) (*Artist, error) {
	a := &Artist{}
	err := walk(data, func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error {
		switch {
		case num == artistID && typ == protowire.VarintType:
			if n > math.MaxInt64 {
				return fmt.Errorf("%w: artist id %d overflows int64", ErrCorruptPayload, n)
			}
			a.id = int64(n)
		case num == artistName && typ == protowire.BytesType:
			a.name = string(v)
		case num == artistGenre && typ == protowire.BytesType:
			a.genre = string(v)
		case num == artistCountry && typ == protowire.BytesType:
			a.country = string(v)
		case num <= artistCountry:
			return fmt.Errorf("%w: artist field %d has wire type %d", ErrCorruptPayload, num, typ)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// walk calls fn for every field in data. Bytes fields pass their contents in v;
// varint fields pass their value in n. Other wire types are skipped.
func walk(data []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, n uint64) error) error {
	for len(data) > 0 {
		num, typ, tagLen := protowire.ConsumeTag(data)
		if tagLen < 0 {
			return fmt.Errorf("%w: %v", ErrCorruptPayload, protowire.ParseError(tagLen))
		}
		data = data[tagLen:]

		var (
			v   []byte
			n   uint64
			adv int
		)
		switch typ {
		case protowire.VarintType:
			n, adv = protowire.ConsumeVarint(data)
		case protowire.BytesType:
			v, adv = protowire.ConsumeBytes(data)
		default:
			adv = protowire.ConsumeFieldValue(num, typ, data)
			if adv >= 0 {
				data = data[adv:]
				continue
			}
		}
		if adv < 0 {
			return fmt.Errorf("%w: %v", ErrCorruptPayload, protowire.ParseError(adv))
		}
		data = data[adv:]

		if err := fn(num, typ, v, n); err != nil {
			return err
		}
	}
	return nil
}
