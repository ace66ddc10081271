package restsource

import (
	"context"

	datagrid "github.com/goliatone/go-datagrid/components/datagrid"
)

// SearchClient fetches one page of a module's search endpoint.
type SearchClient interface {
	Search(ctx context.Context, moduleKey string, query datagrid.RowQuery) (datagrid.RowPage, error)
}

// ColumnClient reads and writes the remote column registry.
type ColumnClient interface {
	FetchColumns(ctx context.Context, userID, moduleKey string) ([]datagrid.ColumnDescriptor, error)
	SaveColumns(ctx context.Context, userID, moduleKey string, columns []datagrid.ColumnDescriptor) error
}

// Client is a convenience union for backends that serve both.
type Client interface {
	SearchClient
	ColumnClient
}
