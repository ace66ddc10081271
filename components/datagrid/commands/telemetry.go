package commands

import (
	"context"

	"github.com/goliatone/go-datagrid/components/datagrid"
)

// Telemetry is the sink command outcomes are reported to.
type Telemetry = datagrid.Telemetry

type discardTelemetry struct{}

func (discardTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry{}
	}
	return t
}

// commandEvent namespaces a command outcome, e.g. "columns.reorder".
func commandEvent(name string) string {
	return "datagrid.command." + name
}
