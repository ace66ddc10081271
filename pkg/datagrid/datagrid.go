package datagrid

import (
	core "github.com/goliatone/go-datagrid/components/datagrid"
)

// Service exposes the underlying components/datagrid.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext re-export for hosts resolving the acting user.
type ViewerContext = core.ViewerContext

// ModuleDefinition re-export for hosts registering list modules.
type ModuleDefinition = core.ModuleDefinition

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewRegistry proxies to the module registry constructor.
func NewRegistry() *core.Registry {
	return core.NewRegistry()
}
