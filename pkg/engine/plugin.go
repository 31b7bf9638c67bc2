package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/sanonone/grafdb/pkg/types"
)

// Plugin is a named server-side function callable through the engine. The
// argument schema is optional; when present, arguments are validated against
// it before Run is invoked.
type Plugin struct {
	Name        string
	Description string

	// ArgSchema describes the expected argument shape. Nil accepts anything.
	ArgSchema *jsonschema.Schema

	// Run receives the raw JSON argument and returns a raw JSON result.
	Run func(ctx context.Context, arg types.Value) (types.Value, error)
}

type registeredPlugin struct {
	plugin   Plugin
	resolved *jsonschema.Resolved
}

// RegisterPlugin makes the plugin callable by name, replacing any previous
// registration under the same name. The schema is resolved once here so that
// every later call validates against the compiled form.
func (e *Engine) RegisterPlugin(p Plugin) error {
	if p.Name == "" {
		return fmt.Errorf("plugin name must not be empty")
	}
	if p.Run == nil {
		return fmt.Errorf("plugin %q has no run function", p.Name)
	}

	var resolved *jsonschema.Resolved
	if p.ArgSchema != nil {
		r, err := p.ArgSchema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("plugin %q has an invalid argument schema: %w", p.Name, err)
		}
		resolved = r
	}

	e.pluginMu.Lock()
	defer e.pluginMu.Unlock()
	e.plugins[p.Name] = registeredPlugin{plugin: p, resolved: resolved}
	return nil
}

// Plugins lists registered plugins, for discovery endpoints.
func (e *Engine) Plugins() []Plugin {
	e.pluginMu.RLock()
	defer e.pluginMu.RUnlock()

	out := make([]Plugin, 0, len(e.plugins))
	for _, reg := range e.plugins {
		out = append(out, reg.plugin)
	}
	return out
}

// ExecutePlugin validates arg against the plugin's schema and runs it.
// Unknown names fail with ErrPluginNotFound; arguments that are not valid
// JSON, or that the schema rejects, fail with ErrMalformedValue.
func (e *Engine) ExecutePlugin(ctx context.Context, name string, arg types.Value) (types.Value, error) {
	e.pluginMu.RLock()
	reg, ok := e.plugins[name]
	e.pluginMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrPluginNotFound, name)
	}

	if reg.resolved != nil {
		var instance any
		if err := json.Unmarshal(arg, &instance); err != nil {
			return nil, fmt.Errorf("%w: plugin argument is not valid JSON: %v", types.ErrMalformedValue, err)
		}
		if err := reg.resolved.Validate(instance); err != nil {
			return nil, fmt.Errorf("%w: plugin argument rejected by schema: %v", types.ErrMalformedValue, err)
		}
	}

	return reg.plugin.Run(ctx, arg)
}
