// Package catalogfile loads enumeration catalogs from YAML, TOML or JSON
// documents so that the entries can live in static configuration data.
//
//	type: Feast
//	description: movable feasts
//	entries:
//	  - {value: 0, name: Theophany}
//	  - {value: 1, name: Easter}
package catalogfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"

	enum "github.com/goliatone/go-enum"
	"github.com/goliatone/go-enum/internal/hydrate"
)

// Supported document formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for extensions or format names not listed above.
var ErrUnknownFormat = errors.New("catalogfile: unknown format")

// File is the decoded form of a catalog document. Entry order is ordinal
// order.
type File struct {
	Type        string     `json:"type" validate:"required"`
	Description string     `json:"description,omitempty"`
	Entries     []EntryDef `json:"entries" validate:"required,min=1,dive"`
}

// EntryDef is one declared entry.
type EntryDef struct {
	Value int64  `json:"value"`
	Name  string `json:"name" validate:"required"`
}

// Names returns the entry names in ordinal order.
func (f File) Names() []string {
	names := make([]string, len(f.Entries))
	for i, entry := range f.Entries {
		names[i] = entry.Name
	}
	return names
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FormatOf maps a path extension to a format name.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// Load reads and decodes the catalog document at path.
func Load(path string) (File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return File{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("catalogfile: %w", err)
	}
	return decode(hydrate.Source{Path: path, Format: format}, data)
}

// Decode parses data written in format. "yml" is accepted for yaml.
func Decode(format string, data []byte) (File, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "yml" {
		format = FormatYAML
	}
	return decode(hydrate.Source{Format: format}, data)
}

func decode(src hydrate.Source, data []byte) (File, error) {
	doc := map[string]any{}
	var err error
	switch src.Format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		_, err = toml.Decode(string(data), &doc)
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&doc)
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, src.Format)
	}
	if err != nil {
		return File{}, fmt.Errorf("catalogfile: parse %s: %w", src, err)
	}

	file, err := decoder.Decode(src, doc)
	if err != nil {
		return File{}, fmt.Errorf("catalogfile: %w", err)
	}
	return file, nil
}

var decoder = hydrate.New(
	hydrate.WithPreHook[File](entryMapping),
	hydrate.WithStrictFields[File](),
	hydrate.WithUseNumber[File](),
	hydrate.WithPostHook[File](validateFile),
)

// entryMapping accepts the short form where entries are written as a
// name: value mapping. Entries are then ordered by value.
func entryMapping(_ hydrate.Source, doc map[string]any) (map[string]any, error) {
	mapping, ok := doc["entries"].(map[string]any)
	if !ok {
		return doc, nil
	}
	type pair struct {
		name  string
		value int64
	}
	pairs := make([]pair, 0, len(mapping))
	for name, raw := range mapping {
		number, ok := raw.(json.Number)
		if !ok {
			return nil, fmt.Errorf("entry %q: value must be an integer, got %T", name, raw)
		}
		value, err := number.Int64()
		if err != nil {
			return nil, fmt.Errorf("entry %q: value must be an integer, got %s", name, number)
		}
		pairs = append(pairs, pair{name: name, value: value})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].value != pairs[j].value {
			return pairs[i].value < pairs[j].value
		}
		return pairs[i].name < pairs[j].name
	})
	list := make([]any, len(pairs))
	for i, p := range pairs {
		list[i] = map[string]any{"name": p.name, "value": p.value}
	}
	doc["entries"] = list
	return doc, nil
}

func validateFile(_ hydrate.Source, file *File) error {
	if err := validate.Struct(file); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, len(fieldErrs))
			for i, fe := range fieldErrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("invalid catalog: %s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Build turns file into a catalog over the integer type T. The file's type is
// used as the catalog type name unless opts override it. Name and value
// uniqueness are checked by enum.NewCatalog.
func Build[T constraints.Integer](file File, opts ...enum.CatalogOption) (*enum.Catalog[T], error) {
	var zero T
	unsigned := zero-1 > zero
	entries := make([]enum.Entry[T], len(file.Entries))
	for i, def := range file.Entries {
		value := T(def.Value)
		if int64(value) != def.Value || (unsigned && def.Value < 0) {
			return nil, fmt.Errorf("catalogfile: %s entry %q: value %d overflows %T", file.Type, def.Name, def.Value, value)
		}
		entries[i] = enum.Entry[T]{Value: value, Name: def.Name}
	}
	opts = append([]enum.CatalogOption{enum.WithTypeName(file.Type)}, opts...)
	catalog, err := enum.NewCatalog(entries, opts...)
	if err != nil {
		return nil, fmt.Errorf("catalogfile: %w", err)
	}
	return catalog, nil
}

// LoadCatalog is Load followed by Build.
func LoadCatalog[T constraints.Integer](path string, opts ...enum.CatalogOption) (*enum.Catalog[T], File, error) {
	file, err := Load(path)
	if err != nil {
		return nil, File{}, err
	}
	catalog, err := Build[T](file, opts...)
	if err != nil {
		return nil, File{}, err
	}
	return catalog, file, nil
}
