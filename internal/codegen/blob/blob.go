// Package blob implements the serialized package blob described in
// spec.md §4.J ("emit the complete set of (module filename, module
// contents) pairs as a byte array together with its SHA-3 hash") and
// SPEC_FULL.md §4.O's concrete compressor wiring.
package blob

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/sha3"
)

// Entry is one (module filename, module contents) pair feeding the blob.
type Entry struct {
	Name     string
	Contents []byte
}

// Blob is the materialized package blob: compressed bytes plus their
// SHA-3-256 hash of the UNcompressed contents (so the hash is stable
// across compression-level choices).
type Blob struct {
	Compressed []byte
	Hash       [32]byte
	Level      int
}

// Build concatenates entries (sorted by Name for determinism) into one
// framed byte stream, hashes it, and compresses it at level (spec.md §4.J
// "Compression level 0-5 selects a blob compressor... the generator only
// passes the parameter through"; SPEC_FULL.md §4.O wires zstd concretely:
// level 0 is "store", 1-5 map to zstd.SpeedFastest..SpeedBestCompression).
func Build(entries []Entry, level int) (*Blob, error) {
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var raw bytes.Buffer
	for _, e := range sorted {
		fmt.Fprintf(&raw, "%d:%s\n", len(e.Contents), e.Name)
		raw.Write(e.Contents)
	}
	rawBytes := raw.Bytes()
	hash := sha3.Sum256(rawBytes)

	compressed, err := compress(rawBytes, level)
	if err != nil {
		return nil, fmt.Errorf("blob: compressing package blob: %w", err)
	}
	return &Blob{Compressed: compressed, Hash: hash, Level: level}, nil
}

func compress(data []byte, level int) ([]byte, error) {
	if level <= 0 {
		return data, nil
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(speedForLevel(level)))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func speedForLevel(level int) zstd.EncoderLevel {
	switch {
	case level <= 1:
		return zstd.SpeedFastest
	case level == 2:
		return zstd.SpeedDefault
	case level == 3:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}

// Decompress reverses Build's compression step, for tests that want to
// verify the blob round-trips.
func Decompress(compressed []byte, level int) ([]byte, error) {
	if level <= 0 {
		return compressed, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(compressed, nil)
}
