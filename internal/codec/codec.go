// Package codec encodes slim snapshots for the cache and the snapshot store.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"gw2vault-api/internal/model"
)

// ErrEmpty is returned when decoding an empty blob.
var ErrEmpty = errors.New("codec: empty blob")

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

// EncodeAll and DecodeAll may be called concurrently on one coder.
func sharedEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return encoder
}

func sharedDecoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		decoder, _ = zstd.NewReader(nil)
	})
	return decoder
}

// Marshal renders s as JSON.
func Marshal(s *model.SlimSnapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// Encode renders s as zstd-compressed JSON.
func Encode(s *model.SlimSnapshot) ([]byte, error) {
	data, err := Marshal(s)
	if err != nil {
		return nil, err
	}
	return sharedEncoder().EncodeAll(data, make([]byte, 0, len(data)/4)), nil
}

// Decode reverses Encode.
func Decode(blob []byte) (*model.SlimSnapshot, error) {
	data, err := Decompress(blob)
	if err != nil {
		return nil, err
	}

	var s model.SlimSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// Decompress returns the JSON held in blob.
func Decompress(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return nil, ErrEmpty
	}
	data, err := sharedDecoder().DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return data, nil
}
