package restsource

import (
	"context"
	"fmt"

	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

// NewRowSource adapts the search client into a module row source.
func NewRowSource(client SearchClient, moduleKey string) datagrid.RowSource {
	return &rowSource{client: client, moduleKey: moduleKey}
}

type rowSource struct {
	client    SearchClient
	moduleKey string
}

func (s *rowSource) FetchRows(ctx context.Context, query datagrid.RowQuery) (datagrid.RowPage, error) {
	key := query.ModuleKey
	if key == "" {
		key = s.moduleKey
	}
	return s.client.Search(ctx, key, query)
}

// NewColumnRegistry adapts the column client into a datagrid.ColumnRegistry.
func NewColumnRegistry(client ColumnClient) datagrid.ColumnRegistry {
	return &columnRegistry{client: client}
}

type columnRegistry struct {
	client ColumnClient
}

func (r *columnRegistry) Columns(ctx context.Context, viewer datagrid.ViewerContext, moduleKey string) ([]datagrid.ColumnDescriptor, error) {
	if viewer.UserID == "" {
		return nil, nil
	}
	return r.client.FetchColumns(ctx, viewer.UserID, moduleKey)
}

func (r *columnRegistry) SaveColumns(ctx context.Context, viewer datagrid.ViewerContext, moduleKey string, descriptors []datagrid.ColumnDescriptor) error {
	if viewer.UserID == "" {
		return fmt.Errorf("restsource: viewer user id is required")
	}
	return r.client.SaveColumns(ctx, viewer.UserID, moduleKey, descriptors)
}

// RegisterSources points every listed module at the search client.
func RegisterSources(registry datagrid.ModuleRegistry, client SearchClient, moduleKeys ...string) error {
	for _, key := range moduleKeys {
		if err := registry.RegisterSource(key, NewRowSource(client, key)); err != nil {
			return fmt.Errorf("restsource: register %s: %w", key, err)
		}
	}
	return nil
}
