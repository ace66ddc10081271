package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-datagrid/components/datagrid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaffoldWritesModule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifests", "modules.yaml")
	cmd := &scaffoldCmd{
		Title:        "Damage Claims",
		Column:       []string{"claimNumber:Claim #", "vehicleNo", "reportedAt"},
		Hidden:       []string{"reportedAt"},
		Status:       []string{"open", "settled:Settled"},
		DateFilter:   []string{"reportedAt"},
		Variant:      "paged",
		SourceKind:   "rest",
		Endpoint:     "/claims/search",
		ManifestPath: path,
	}
	var out bytes.Buffer
	require.NoError(t, cmd.run(&out))
	assert.Contains(t, out.String(), "damage-claims")

	doc, err := datagrid.ReadManifest(path)
	require.NoError(t, err)
	require.Len(t, doc.Modules, 1)
	module := doc.Modules[0].Definition
	assert.Equal(t, "damage-claims", module.Key)
	require.Len(t, module.Columns, 3)
	assert.Equal(t, "Claim #", module.Columns[0].ColumnHeaderDescription)
	assert.Equal(t, "Vehicle no", module.Columns[1].ColumnHeaderDescription)
	assert.False(t, module.Columns[2].IsSelected)
	assert.Equal(t, "rest", doc.Modules[0].Source.Kind)

	ids := map[string]datagrid.FilterDescriptor{}
	for _, f := range module.Filters {
		ids[f.ID] = f
	}
	require.Contains(t, ids, datagrid.FilterIDStatus)
	assert.Equal(t, "Open", ids[datagrid.FilterIDStatus].Options[0].Label)
	require.Contains(t, ids, datagrid.FilterIDSortBy)
	assert.Equal(t, "claimNumber", *ids[datagrid.FilterIDSortBy].Default)
	assert.Equal(t, datagrid.DefaultSortDirection, *ids[datagrid.FilterIDSortDirection].Default)
	assert.Equal(t, datagrid.FilterDate, ids["reportedAt"].Kind)
}

func TestScaffoldRejectsDuplicateWithoutOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "modules.yaml")
	cmd := &scaffoldCmd{Title: "Branches", Column: []string{"code"}, Variant: "paged", ManifestPath: path}
	require.NoError(t, cmd.run(&bytes.Buffer{}))
	if err := cmd.run(&bytes.Buffer{}); err == nil {
		t.Fatalf("expected duplicate module error")
	}
	cmd.Overwrite = true
	cmd.Column = []string{"code", "city"}
	require.NoError(t, cmd.run(&bytes.Buffer{}))

	doc, err := datagrid.ReadManifest(path)
	require.NoError(t, err)
	require.Len(t, doc.Modules, 1)
	assert.Len(t, doc.Modules[0].Definition.Columns, 2)
}

func TestValidateReportsEveryBadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	f, err := os.Create(good)
	require.NoError(t, err)
	require.NoError(t, writeDefaults(f))
	require.NoError(t, f.Close())

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("version: \"9\"\nmodules: []\n"), 0o644))

	var out bytes.Buffer
	err = (&validateCmd{Paths: []string{good, bad}}).run(&out)
	if err == nil {
		t.Fatalf("expected validation error for %s", bad)
	}
	assert.Contains(t, out.String(), datagrid.ModuleAgreements)
	assert.Contains(t, err.Error(), "unsupported manifest version")
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "License number", humanize("licenseNumber"))
	assert.Equal(t, "Status", humanize("status"))
}
