// Package load reads schema snapshots from files and writes snapshot
// caches.
package load

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/syssam/veloxts/compiler/gen"
	"github.com/syssam/veloxts/schema"
)

// Format is the encoding of a snapshot file.
type Format string

// Supported snapshot formats.
const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	Msgpack Format = "msgpack"
)

// FormatOf returns the format of a snapshot file from its extension.
// Files without a known extension are read as JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".msgpack", ".mpk", ".cache":
		return Msgpack
	}
	return JSON
}

// envelope is the response shape of the platform's API, which wraps the
// snapshot in a data member.
type envelope struct {
	Data *schema.Snapshot `json:"data" yaml:"data" msgpack:"data"`
}

// Decode decodes a snapshot. A snapshot wrapped in a {"data": ...}
// envelope is unwrapped.
func Decode(buf []byte, f Format) (*schema.Snapshot, error) {
	var env envelope
	if err := unmarshal(buf, f, &env); err == nil && env.Data != nil {
		return env.Data, nil
	}
	s := &schema.Snapshot{}
	if err := unmarshal(buf, f, s); err != nil {
		return nil, fmt.Errorf("decode %s snapshot: %w", f, err)
	}
	return s, nil
}

func unmarshal(buf []byte, f Format, v any) error {
	switch f {
	case YAML:
		return yaml.Unmarshal(buf, v)
	case Msgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(buf))
		dec.SetCustomStructTag("json")
		return dec.Decode(v)
	case JSON, "":
		return json.Unmarshal(buf, v)
	}
	return fmt.Errorf("unknown snapshot format %q", f)
}

// Encode encodes a snapshot in the given format.
func Encode(s *schema.Snapshot, f Format) ([]byte, error) {
	switch f {
	case YAML:
		return yaml.Marshal(s)
	case Msgpack:
		var b bytes.Buffer
		enc := msgpack.NewEncoder(&b)
		enc.SetCustomStructTag("json")
		if err := enc.Encode(s); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case JSON, "":
		return json.MarshalIndent(s, "", "  ")
	}
	return nil, fmt.Errorf("unknown snapshot format %q", f)
}

// Load reads the snapshot file at path.
func Load(path string) (*schema.Snapshot, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, gen.NewSourceError("file", path, "read snapshot", err)
	}
	s, err := Decode(buf, FormatOf(path))
	if err != nil {
		return nil, gen.NewSourceError("file", path, "", err)
	}
	return s, nil
}

// Save writes the snapshot to path, in the format of its extension.
func Save(path string, s *schema.Snapshot) error {
	buf, err := Encode(s, FormatOf(path))
	if err != nil {
		return gen.NewGenerationError("cache", path, "encode snapshot", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return gen.NewGenerationError("cache", path, "create directory", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return gen.NewGenerationError("cache", path, "", err)
	}
	return nil
}

// File is a snapshot source backed by a file.
type File struct {
	Path string
}

// Snapshot reads the file. The context is only checked before reading.
func (f *File) Snapshot(ctx context.Context) (*schema.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(f.Path)
}

// String returns the file path.
func (f *File) String() string {
	return f.Path
}
