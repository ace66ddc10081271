package datagrid

import (
	"fmt"
	"sort"
	"sync"
)

// ModuleHook lets packages register list modules during init().
type ModuleHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []ModuleHook
)

// RegisterModuleHook registers a hook executed against new registries.
func RegisterModuleHook(h ModuleHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements ModuleRegistry with hook and manifest support.
type Registry struct {
	mu       sync.RWMutex
	modules  map[string]ModuleDefinition
	sources  map[string]RowSource
	manifest map[string]ManifestSource
}

var _ ModuleRegistry = (*Registry)(nil)

// NewRegistry builds a registry seeded with the rental list modules and
// applies global hooks.
func NewRegistry() *Registry {
	reg := NewEmptyRegistry()
	for _, def := range DefaultModules() {
		_ = reg.RegisterModule(def)
	}
	_ = reg.ApplyHooks()
	return reg
}

// NewEmptyRegistry builds a registry without default modules or hooks.
func NewEmptyRegistry() *Registry {
	return &Registry{
		modules:  map[string]ModuleDefinition{},
		sources:  map[string]RowSource{},
		manifest: map[string]ManifestSource{},
	}
}

// ApplyHooks executes registered module hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterModule validates and stores a module definition.
func (r *Registry) RegisterModule(def ModuleDefinition) error {
	def, err := normalizeModule(def)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[def.Key] = def
	return nil
}

// RegisterSource associates a row source with a registered module.
func (r *Registry) RegisterSource(moduleKey string, source RowSource) error {
	if moduleKey == "" {
		return errModuleKey
	}
	if source == nil {
		return fmt.Errorf("datagrid: row source for %s cannot be nil", moduleKey)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[moduleKey]; !ok {
		return fmt.Errorf("datagrid: module %s not found", moduleKey)
	}
	r.sources[moduleKey] = source
	return nil
}

// Module fetches a module definition by key.
func (r *Registry) Module(key string) (ModuleDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.modules[key]
	return def, ok
}

// Source fetches the row source of a module.
func (r *Registry) Source(key string) (RowSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.sources[key]
	return src, ok
}

// ManifestSource returns the manifest metadata recorded for a module.
func (r *Registry) ManifestSource(key string) (ManifestSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.manifest[key]
	return meta, ok
}

// Modules returns all registered modules sorted by key.
func (r *Registry) Modules() []ModuleDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModuleDefinition, 0, len(r.modules))
	for _, def := range r.modules {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (r *Registry) recordManifestSource(key string, meta ManifestSource) {
	if meta.isZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.manifest[key] = meta
}

func normalizeModule(def ModuleDefinition) (ModuleDefinition, error) {
	if def.Key == "" {
		return def, errModuleKey
	}
	switch def.Variant {
	case "":
		def.Variant = VariantPaged
	case VariantPaged, VariantReport:
	default:
		return def, fmt.Errorf("datagrid: module %s has unknown variant %q", def.Key, def.Variant)
	}
	if def.DefaultPageSize <= 0 {
		def.DefaultPageSize = DefaultPageSize
	}
	headers := make(map[string]struct{}, len(def.Columns))
	for _, col := range def.Columns {
		if col.ColumnHeader == "" {
			return def, fmt.Errorf("datagrid: module %s has a column without header", def.Key)
		}
		if _, dup := headers[col.ColumnHeader]; dup {
			return def, fmt.Errorf("datagrid: module %s duplicates column %s", def.Key, col.ColumnHeader)
		}
		headers[col.ColumnHeader] = struct{}{}
	}
	filters := make(map[string]struct{}, len(def.Filters))
	for _, f := range def.Filters {
		if f.ID == "" {
			return def, fmt.Errorf("datagrid: module %s has a filter without id", def.Key)
		}
		if _, dup := filters[f.ID]; dup {
			return def, fmt.Errorf("datagrid: module %s duplicates filter %s", def.Key, f.ID)
		}
		if f.ID == QueryPage || f.ID == QuerySize {
			return def, fmt.Errorf("datagrid: module %s filter %s uses a reserved key", def.Key, f.ID)
		}
		filters[f.ID] = struct{}{}
	}
	def.Columns = withModuleKey(def.Columns, def.Key)
	return def, nil
}
