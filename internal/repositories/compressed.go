package repositories

import (
	"bytes"
	"context"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// CompressedStore zstd-compresses payloads on the way into another [Backend] and
// decompresses them on the way out. Payloads stored without compression are returned as-is.
type CompressedStore struct {
	Backend
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCompressedStore wraps inner using the given zstd level (1-22).
func NewCompressedStore(inner Backend, level int) (*CompressedStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &CompressedStore{Backend: inner, encoder: encoder, decoder: decoder}, nil
}

func (s *CompressedStore) Upsert(ctx context.Context, name string, payload []byte, usage int64) error {
	return s.Backend.Upsert(ctx, name, s.encoder.EncodeAll(payload, nil), usage)
}

func (s *CompressedStore) Fetch(ctx context.Context, name string) ([]byte, error) {
	data, err := s.Backend.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}

	out, err := s.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	return out, nil
}

func (s *CompressedStore) Close() error {
	s.encoder.Close()
	s.decoder.Close()
	return s.Backend.Close()
}
