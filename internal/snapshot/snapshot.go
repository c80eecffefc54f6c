// Package snapshot serialises engine snapshots for the sync layer and for
// saving a table to disk.
//
// Two encodings are supported: indented JSON for humans and msgpack for
// compact transfer. Both reproduce a snapshot exactly.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tinylib/msgp/msgp"

	"github.com/lox/holdembet/internal/engine"
	"github.com/lox/holdembet/internal/fileutil"
)

// ErrUnknownFormat is returned for a file extension with no codec
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Format selects a snapshot encoding
type Format int

const (
	FormatJSON Format = iota
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatMsgpack:
		return "msgpack"
	default:
		return "json"
	}
}

// FormatFor picks the encoding from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".msgp", ".mp":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Encode writes s to w
func Encode(w io.Writer, s engine.Snapshot, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatMsgpack:
		return msgp.Encode(w, &wire{s})
	default:
		return ErrUnknownFormat
	}
}

// Decode reads a snapshot from r. The snapshot is not validated; Restore
// does that.
func Decode(r io.Reader, f Format) (engine.Snapshot, error) {
	switch f {
	case FormatJSON:
		var s engine.Snapshot
		if err := json.NewDecoder(r).Decode(&s); err != nil {
			return engine.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		return s, nil
	case FormatMsgpack:
		var w wire
		if err := msgp.Decode(r, &w); err != nil {
			return engine.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
		}
		return w.Snapshot, nil
	default:
		return engine.Snapshot{}, ErrUnknownFormat
	}
}

// Marshal encodes s into a byte slice
func Marshal(s engine.Snapshot, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot from data
func Unmarshal(data []byte, f Format) (engine.Snapshot, error) {
	return Decode(bytes.NewReader(data), f)
}

// Save writes s to path atomically, choosing the encoding by extension
func Save(path string, s engine.Snapshot) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Encode(w, s, f)
	})
}

// Load reads a snapshot written by Save
func Load(path string) (engine.Snapshot, error) {
	f, err := FormatFor(path)
	if err != nil {
		return engine.Snapshot{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return engine.Snapshot{}, err
	}
	defer file.Close()

	return Decode(file, f)
}
