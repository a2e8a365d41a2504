package decode

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bedforge/pkg/errors"
)

// Format identifies the serialization of a document.
type Format string

// Supported document formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// ParseFormat validates a user supplied format name. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatTOML:
		return FormatTOML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported document format %q (must be json, yaml or toml)", s)
}

// Document decodes data into a top-level mapping.
func Document(data []byte, format Format) (map[string]any, error) {
	var doc map[string]any
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&doc)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "decode %s document", format)
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "empty %s document", format)
	}
	return doc, nil
}
