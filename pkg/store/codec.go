package store

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/longtail/pkg/persist"
	"github.com/Sumatoshi-tech/longtail/pkg/snapshot"
)

// Codec serializes a snapshot.Snapshot to opaque bytes and back, using
// persist.Codec for the structural encoding and lz4 for compression on
// top of it. It plays the role spec.md assigns to the external
// serialization+compression collaborator, scoped down to what this module
// needs to drive its own CLI and tests.
type Codec struct {
	inner persist.Codec
}

// NewCodec builds a Codec over the given persist.Codec (typically
// persist.NewJSONCodec()).
func NewCodec(inner persist.Codec) *Codec {
	return &Codec{inner: inner}
}

// Encode serializes snap with the inner codec, then lz4-compresses the
// result. Per spec.md §7's SnapshotFailed entry, a failure here must not
// be retried by the caller — Encode returns the error and the engine
// drops the recording.
func (c *Codec) Encode(snap snapshot.Snapshot) ([]byte, error) {
	var structured bytes.Buffer

	if err := c.inner.Encode(&structured, snap); err != nil {
		return nil, fmt.Errorf("store: encode snapshot: %w", err)
	}

	var compressed bytes.Buffer

	zw := lz4.NewWriter(&compressed)

	if _, err := zw.Write(structured.Bytes()); err != nil {
		return nil, fmt.Errorf("store: compress snapshot: %w", err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("store: finalize compression: %w", err)
	}

	return compressed.Bytes(), nil
}

// Decode reverses Encode: lz4-decompresses opaque, then decodes it with
// the inner codec into a fresh snapshot.Snapshot.
func (c *Codec) Decode(opaque []byte) (snapshot.Snapshot, error) {
	zr := lz4.NewReader(bytes.NewReader(opaque))

	decompressed, err := io.ReadAll(zr)
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("store: decompress recording: %w", err)
	}

	var snap snapshot.Snapshot

	if err := c.inner.Decode(bytes.NewReader(decompressed), &snap); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("store: decode recording: %w", err)
	}

	return snap, nil
}
