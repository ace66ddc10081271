package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

type cli struct {
	Scaffold scaffoldCmd `cmd:"" help:"Add a list module to a manifest."`
	Validate validateCmd `cmd:"" help:"Validate one or more module manifests."`
	Defaults defaultsCmd `cmd:"" help:"Print the built-in modules as a manifest."`
}

type scaffoldCmd struct {
	Title        string   `required:"" help:"Display title of the module (e.g. \"Damage Claims\")."`
	Key          string   `help:"Module key; derived from the title when empty."`
	Column       []string `required:"" help:"Column accessor key, optionally key:Header (repeat the flag)."`
	Hidden       []string `help:"Accessor keys hidden by default."`
	Status       []string `help:"Options of a multi-select status filter, value or value:Label."`
	DateFilter   []string `name:"date-filter" help:"Accessor keys that get a date filter."`
	SortBy       string   `name:"sort-by" help:"Default sort column; the first column when empty."`
	PageSize     int      `name:"page-size" help:"Default rows per page."`
	Variant      string   `default:"paged" enum:"paged,report" help:"Table variant (paged or report)."`
	SourceKind   string   `name:"source-kind" help:"Row source kind recorded in the manifest (rest, static, ...)."`
	Endpoint     string   `help:"Row source endpoint recorded in the manifest."`
	Tag          []string `help:"Optional tags (repeat the flag)."`
	ManifestPath string   `required:"" type:"path" help:"Path to the manifest YAML file to update."`
	Overwrite    bool     `help:"Replace an existing module with the same key."`
}

type validateCmd struct {
	Paths []string `arg:"" type:"existingfile" help:"Manifest files to validate."`
}

type defaultsCmd struct {
	Out string `type:"path" help:"Write to this file instead of stdout."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Manifest utility for go-datagrid list modules."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	return cmd.run(os.Stdout)
}

func (cmd *scaffoldCmd) run(out io.Writer) error {
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("gridctl: resolve manifest path: %w", err)
	}
	module, err := cmd.module()
	if err != nil {
		return err
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}
	entry := datagrid.ManifestModule{
		Definition: module,
		Source:     datagrid.ManifestSource{Kind: cmd.SourceKind, Endpoint: cmd.Endpoint},
		Tags:       cmd.Tag,
	}
	replaced := false
	for idx := range doc.Modules {
		if doc.Modules[idx].Definition.Key != module.Key {
			continue
		}
		if !cmd.Overwrite {
			return fmt.Errorf("gridctl: manifest already defines module %s (use --overwrite to replace)", module.Key)
		}
		doc.Modules[idx] = entry
		replaced = true
	}
	if !replaced {
		doc.Modules = append(doc.Modules, entry)
	}
	sort.Slice(doc.Modules, func(i, j int) bool {
		return doc.Modules[i].Definition.Key < doc.Modules[j].Definition.Key
	})
	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Added %s (%d columns) to %s\n", module.Key, len(module.Columns), manifestPath)
	return nil
}

func (cmd *scaffoldCmd) module() (datagrid.ModuleDefinition, error) {
	key := strings.TrimSpace(cmd.Key)
	if key == "" {
		key = strcase.ToKebab(cmd.Title)
	}
	if key == "" {
		return datagrid.ModuleDefinition{}, errors.New("gridctl: module key or title is required")
	}
	hidden := make(map[string]bool, len(cmd.Hidden))
	for _, h := range cmd.Hidden {
		hidden[strings.TrimSpace(h)] = true
	}
	module := datagrid.ModuleDefinition{
		Key:             key,
		Title:           cmd.Title,
		Variant:         datagrid.ModuleVariant(cmd.Variant),
		DefaultPageSize: cmd.PageSize,
	}
	for idx, raw := range cmd.Column {
		accessor, header := splitPair(raw)
		if accessor == "" {
			return datagrid.ModuleDefinition{}, fmt.Errorf("gridctl: column %d has no accessor key", idx)
		}
		if header == "" {
			header = humanize(accessor)
		}
		module.Columns = append(module.Columns, datagrid.ColumnDescriptor{
			ModuleKey:               key,
			ColumnHeader:            accessor,
			ColumnHeaderDescription: header,
			OrderIndex:              idx,
			IsSelected:              !hidden[accessor],
		})
	}
	module.Filters = append(module.Filters, datagrid.FilterDescriptor{
		ID: datagrid.FilterIDSearch, Title: "Search", Kind: datagrid.FilterText,
	})
	if len(cmd.Status) > 0 {
		status := datagrid.FilterDescriptor{ID: datagrid.FilterIDStatus, Title: "Status", Kind: datagrid.FilterMultiSelect}
		for _, raw := range cmd.Status {
			value, label := splitPair(raw)
			if label == "" {
				label = humanize(value)
			}
			status.Options = append(status.Options, datagrid.FilterOption{Value: value, Label: label})
		}
		module.Filters = append(module.Filters, status)
	}
	for _, field := range cmd.DateFilter {
		module.Filters = append(module.Filters, datagrid.FilterDescriptor{
			ID: field, Title: humanize(field), Kind: datagrid.FilterDate,
		})
	}
	sortBy := cmd.SortBy
	if sortBy == "" {
		sortBy = module.Columns[0].ColumnHeader
	}
	direction := datagrid.DefaultSortDirection
	module.Filters = append(module.Filters,
		datagrid.FilterDescriptor{ID: datagrid.FilterIDSortBy, Title: "Sort by", Kind: datagrid.FilterHidden, Default: &sortBy},
		datagrid.FilterDescriptor{ID: datagrid.FilterIDSortDirection, Title: "Sort direction", Kind: datagrid.FilterHidden, Default: &direction},
	)
	return module, nil
}

func (cmd *validateCmd) Run(_ context.Context) error {
	return cmd.run(os.Stdout)
}

func (cmd *validateCmd) run(out io.Writer) error {
	var errs []error
	for _, path := range cmd.Paths {
		doc, err := datagrid.ReadManifest(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		keys := make([]string, 0, len(doc.Modules))
		for _, mod := range doc.Modules {
			keys = append(keys, mod.Definition.Key)
		}
		fmt.Fprintf(out, "✓ %s: %d modules (%s)\n", path, len(keys), strings.Join(keys, ", "))
	}
	return errors.Join(errs...)
}

func (cmd *defaultsCmd) Run(_ context.Context) error {
	if cmd.Out == "" {
		return writeDefaults(os.Stdout)
	}
	doc := defaultsDocument()
	return writeManifest(cmd.Out, doc)
}

func defaultsDocument() *datagrid.ModuleManifestDocument {
	doc := &datagrid.ModuleManifestDocument{Version: datagrid.ManifestVersion, Name: "defaults"}
	for _, module := range datagrid.DefaultModules() {
		doc.Modules = append(doc.Modules, datagrid.ManifestModule{Definition: module})
	}
	return doc
}

func writeDefaults(w io.Writer) error {
	return datagrid.EncodeManifest(w, defaultsDocument())
}

func loadOrInitManifest(path string) (*datagrid.ModuleManifestDocument, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &datagrid.ModuleManifestDocument{
				Version: datagrid.ManifestVersion,
				Modules: []datagrid.ManifestModule{},
				Source:  path,
			}, nil
		}
		return nil, fmt.Errorf("gridctl: stat manifest: %w", err)
	}
	return datagrid.ReadManifest(path)
}

func writeManifest(path string, doc *datagrid.ModuleManifestDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("gridctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("gridctl: create manifest %s: %w", path, err)
	}
	defer file.Close()
	return datagrid.EncodeManifest(file, doc)
}

// splitPair splits "key:Label" into its parts.
func splitPair(raw string) (string, string) {
	key, label, _ := strings.Cut(raw, ":")
	return strings.TrimSpace(key), strings.TrimSpace(label)
}

// humanize turns an accessor key such as licenseNumber into "License number".
func humanize(key string) string {
	words := strings.ReplaceAll(strcase.ToSnake(key), "_", " ")
	if words == "" {
		return key
	}
	return strings.ToUpper(words[:1]) + words[1:]
}
