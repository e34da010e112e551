// Package config loads and saves configuration structs as TOML or YAML,
// choosing the format from the file extension.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a supported config encoding.
type Format int

const (
	TOML Format = iota
	YAML
)

func (f Format) String() string {
	switch f {
	case TOML:
		return "toml"
	case YAML:
		return "yaml"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ErrUnknownFormat is returned for paths whose extension names no Format.
var ErrUnknownFormat = errors.New("config: unknown format")

// FormatFor returns the format implied by the extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

type options struct {
	strict bool
}

// Option configures decoding.
type Option func(*options)

// Strict rejects keys that do not map to a field of the target.
func Strict() Option {
	return func(o *options) { o.strict = true }
}

// Decode reads one document from r into v. Fields absent from the
// document keep their current values, so v may be pre-filled with
// defaults. An empty document is not an error.
func Decode(r io.Reader, format Format, v any, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var err error
	switch format {
	case TOML:
		dec := toml.NewDecoder(r)
		if o.strict {
			dec.DisallowUnknownFields()
		}
		err = dec.Decode(v)
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(o.strict)
		err = dec.Decode(v)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("config: decode %v: %w", format, err)
	}
	return nil
}

// Load decodes the file at path into v.
func Load(path string, v any, opts ...Option) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := Decode(f, format, v, opts...); err != nil {
		return fmt.Errorf("%w (%s)", err, path)
	}
	return nil
}

// LoadFS is Load reading from fsys.
func LoadFS(fsys fs.FS, path string, v any, opts ...Option) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := Decode(bytes.NewReader(data), format, v, opts...); err != nil {
		return fmt.Errorf("%w (%s)", err, path)
	}
	return nil
}

// Encode writes v to w.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case TOML:
		return toml.NewEncoder(w).Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w: %v", ErrUnknownFormat, format)
}

// Save writes v to path, replacing any existing file.
func Save(path string, v any) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, v); err != nil {
		return fmt.Errorf("config: encode %v: %w", format, err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
