package datagrid

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// ModuleManifestDocument models a YAML manifest describing list modules.
type ModuleManifestDocument struct {
	Version string           `json:"version" yaml:"version"`
	Name    string           `json:"name,omitempty" yaml:"name,omitempty"`
	Modules []ManifestModule `json:"modules" yaml:"modules"`
	Source  string           `json:"-" yaml:"-"`
}

// ManifestModule is one module entry of a manifest.
type ManifestModule struct {
	Definition ModuleDefinition `json:"definition" yaml:"definition"`
	Source     ManifestSource   `json:"source,omitempty" yaml:"source,omitempty"`
	Tags       []string         `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ManifestSource records where a module's rows come from.
type ManifestSource struct {
	Kind     string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Summary  string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

func (s ManifestSource) isZero() bool {
	return s.Kind == "" && s.Endpoint == "" && s.Summary == ""
}

// LoadManifestFile reads a manifest from disk and registers its modules.
func (r *Registry) LoadManifestFile(path string) (*ModuleManifestDocument, error) {
	doc, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	if err := r.LoadManifestDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadManifestDocument registers the modules and source metadata of doc.
func (r *Registry) LoadManifestDocument(doc *ModuleManifestDocument) error {
	if doc == nil {
		return errors.New("datagrid: manifest document is nil")
	}
	for _, mod := range doc.Modules {
		if err := r.RegisterModule(mod.Definition); err != nil {
			return fmt.Errorf("datagrid: register module %s from %s: %w", mod.Definition.Key, doc.Source, err)
		}
		r.recordManifestSource(mod.Definition.Key, mod.Source)
	}
	return nil
}

// ReadManifest loads a manifest file without registering it.
func ReadManifest(path string) (*ModuleManifestDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("datagrid: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("datagrid: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader. Unknown fields are rejected.
func DecodeManifest(r io.Reader) (*ModuleManifestDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc ModuleManifestDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("datagrid: manifest is empty")
		}
		return nil, fmt.Errorf("datagrid: parse manifest: %w", err)
	}
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeManifest writes doc as YAML.
func EncodeManifest(w io.Writer, doc *ModuleManifestDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("datagrid: encode manifest: %w", err)
	}
	return enc.Close()
}

// Validate checks the version, unique module keys and each module definition.
func (doc *ModuleManifestDocument) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("datagrid: unsupported manifest version %q", doc.Version)
	}
	seen := make(map[string]struct{}, len(doc.Modules))
	for idx, mod := range doc.Modules {
		key := mod.Definition.Key
		if key == "" {
			return fmt.Errorf("datagrid: manifest module at index %d is missing definition.key", idx)
		}
		if mod.Definition.Title == "" {
			return fmt.Errorf("datagrid: manifest module %s missing definition.title", key)
		}
		if _, exists := seen[key]; exists {
			return fmt.Errorf("datagrid: manifest duplicates module key %s", key)
		}
		seen[key] = struct{}{}
		if _, err := normalizeModule(mod.Definition); err != nil {
			return err
		}
	}
	return nil
}
