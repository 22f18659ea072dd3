// Package config reads and writes the persisted settings file.
//
// The file is TOML with one table per concern. Parameters live in
// [mencoder], every value a string and booleans spelled "True" or
// "False". Saving merges into what is already on disk: tables and keys
// that are not being written are kept.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/achernya/tvcapture/params"
	"github.com/rs/zerolog/log"
)

const (
	Dir  = ".tvcapture"
	File = "tvcapture.toml"

	// ParamsSection holds the capture parameters.
	ParamsSection = "mencoder"
	// ToolsSection holds tool paths and directories.
	ToolsSection = "tvcapture"
)

// DefaultDir is ~/.tvcapture, or .tvcapture if there is no home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return Dir
	}
	return filepath.Join(home, Dir)
}

// DefaultPath is the settings file inside DefaultDir.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), File)
}

func read(path string) (map[string]any, error) {
	doc := make(map[string]any)
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return doc, nil
}

// Load returns one table of the file as strings. A missing file or
// table is empty, not an error. Values that were not written as
// strings are formatted.
func Load(path, section string) (map[string]string, error) {
	doc, err := read(path)
	if err != nil {
		return nil, err
	}
	result := make(map[string]string)
	table, ok := doc[section].(map[string]any)
	if !ok {
		return result, nil
	}
	for key, val := range table {
		switch v := val.(type) {
		case string:
			result[key] = v
		case bool:
			result[key] = params.FormatBool(v)
		case map[string]any, []any, []map[string]any:
			log.Warn().Str("key", key).Str("section", section).Msg("ignoring nested value")
		default:
			result[key] = fmt.Sprint(v)
		}
	}
	return result, nil
}

// Save writes values into one table of the file, creating the file
// and its directory as needed.
func Save(path, section string, values map[string]string) error {
	doc, err := read(path)
	if err != nil {
		return err
	}
	table, ok := doc[section].(map[string]any)
	if !ok {
		table = make(map[string]any)
	}
	for key, val := range values {
		table[key] = val
	}
	doc[section] = table

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(doc); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// LoadParameters returns the defaults overlaid with the stored
// parameters. Unknown keys are logged and skipped.
func LoadParameters(path string) (*params.Parameters, error) {
	values, err := Load(path, ParamsSection)
	if err != nil {
		return nil, err
	}
	p := params.Default()
	unknown := p.Apply(values)
	sort.Strings(unknown)
	for _, key := range unknown {
		log.Warn().Str("key", key).Str("file", path).Msg("unknown parameter")
	}
	return p, nil
}

// SaveParameters stores every parameter.
func SaveParameters(path string, p *params.Parameters) error {
	return Save(path, ParamsSection, p.Flatten())
}
