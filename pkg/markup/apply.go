package markup

import (
	"github.com/taintmini/taintmini/pkg/pdg"
)

// Apply tags the graph with bindings: for each FormBinding, it finds the
// top-level `Page({...})` call, locates the property whose key matches
// Handler, and attaches Inputs to that property's function-expression's
// first parameter identifier under the "double_binding_values" attribute
// (spec.md §4.H: "the conventional path: method-value -> function-
// expression -> first parameter").
func Apply(g *pdg.Graph, root pdg.Handle, bindings []FormBinding) {
	if len(bindings) == 0 {
		return
	}
	pageCall := findPageCall(g, root)
	if pageCall == pdg.InvalidHandle() {
		return
	}
	obj := firstArgObject(g, pageCall)
	if obj == pdg.InvalidHandle() {
		return
	}

	byHandler := map[string]FormBinding{}
	for _, b := range bindings {
		if b.Handler != "" {
			byHandler[b.Handler] = b
		}
	}

	for _, prop := range g.Node(obj).Children {
		if g.Node(prop).Kind != pdg.KindProperty {
			continue
		}
		keyName := propertyKeyName(g, prop)
		binding, ok := byHandler[keyName]
		if !ok {
			continue
		}
		fn := propertyValueFunction(g, prop)
		if fn == pdg.InvalidHandle() {
			continue
		}
		param := firstParam(g, fn)
		if param == pdg.InvalidHandle() {
			continue
		}
		values := make(map[string]interface{}, len(binding.Inputs))
		for name, typ := range binding.Inputs {
			values[name] = typ
		}
		g.Node(param).Attrs["double_binding_values"] = values
	}
}

func findPageCall(g *pdg.Graph, root pdg.Handle) pdg.Handle {
	var found pdg.Handle = pdg.InvalidHandle()
	for _, stmt := range g.Node(root).Children {
		if g.Node(stmt).Kind != pdg.KindExpressionStatement {
			continue
		}
		if len(g.Node(stmt).Children) == 0 {
			continue
		}
		expr := g.Node(stmt).Children[0]
		if g.Node(expr).Kind != pdg.KindCallExpression {
			continue
		}
		callee := calleeOf(g, expr)
		if callee != pdg.InvalidHandle() && g.Node(callee).Kind == pdg.KindIdentifier &&
			g.Node(callee).Attrs["name"] == "Page" {
			found = expr
			break
		}
	}
	return found
}

func calleeOf(g *pdg.Graph, call pdg.Handle) pdg.Handle {
	for _, c := range g.Node(call).Children {
		if g.Node(c).Role == "callee" {
			return c
		}
	}
	return pdg.InvalidHandle()
}

func firstArgObject(g *pdg.Graph, call pdg.Handle) pdg.Handle {
	for _, c := range g.Node(call).Children {
		if g.Node(c).Role == "arguments" && g.Node(c).Kind == pdg.KindObjectExpression {
			return c
		}
	}
	return pdg.InvalidHandle()
}

func propertyKeyName(g *pdg.Graph, prop pdg.Handle) string {
	for _, c := range g.Node(prop).Children {
		if g.Node(c).Role == "key" {
			if name, ok := g.Node(c).Attrs["name"].(string); ok {
				return name
			}
			if val, ok := g.Node(c).Attrs["value"].(string); ok {
				return val
			}
		}
	}
	return ""
}

func propertyValueFunction(g *pdg.Graph, prop pdg.Handle) pdg.Handle {
	for _, c := range g.Node(prop).Children {
		if g.Node(c).Role == "value" && pdg.IsFunction(g.Node(c).Kind) {
			return c
		}
	}
	return pdg.InvalidHandle()
}

func firstParam(g *pdg.Graph, fn pdg.Handle) pdg.Handle {
	if g.Node(fn).Fn == nil || len(g.Node(fn).Fn.Params) == 0 {
		// fall back to structural children tagged role "params"
		for _, c := range g.Node(fn).Children {
			if g.Node(c).Role == "params" {
				return c
			}
		}
		return pdg.InvalidHandle()
	}
	return g.Node(fn).Fn.Params[0]
}
