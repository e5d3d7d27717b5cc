// Package markup implements the markup-input extractor of spec.md §4.H:
// it reads a page's XML-style markup file and produces a
// submit-handler -> {input-name -> input-type} map, the "double binding"
// table the taint resolver consults when a page-method parameter traces
// back to a form submission. No pack example parses WXML/HTML directly,
// so this adapts encoding/xml (stdlib) the way the teacher adapts other
// stdlib tree walkers elsewhere — justified in DESIGN.md: no example
// repo in the corpus brings an XML/HTML parsing library.
package markup

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// FormBinding is one `<form bind:submit="handler">` element's extracted
// input map (spec.md §4.H).
type FormBinding struct {
	Handler string            // the submit-handler attribute value
	Inputs  map[string]string // input name-or-id -> type ("password" wins over any declared type)
}

// formTags names the element (vendor-prefixed variants included) this
// extractor treats as a submittable form.
var formTags = map[string]bool{"form": true, "wx-form": true, "van-form": true}

// submitAttrs names the attribute (vendor-prefixed variants included)
// carrying the submit-handler name.
var submitAttrs = map[string]bool{
	"bind:submit": true, "bindsubmit": true, "catch:submit": true, "catchsubmit": true,
}

// Extract parses r as an XML-style markup document and returns one
// FormBinding per `form`/vendor-prefixed element found, each carrying
// every descendant `input` element's name-or-id and type.
func Extract(r io.Reader) ([]FormBinding, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose
	dec.Entity = xml.HTMLEntity

	var bindings []FormBinding
	var stack []*FormBinding

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("markup: parse: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(el.Name.Local)
			attrs := attrMap(el.Attr)

			if formTags[name] {
				fb := &FormBinding{Inputs: map[string]string{}}
				for attrName, val := range attrs {
					if submitAttrs[attrName] {
						fb.Handler = val
					}
				}
				stack = append(stack, fb)
				continue
			}

			if name == "input" && len(stack) > 0 {
				top := stack[len(stack)-1]
				inputName := attrs["name"]
				if inputName == "" {
					inputName = attrs["id"]
				}
				if inputName == "" {
					continue
				}
				typ := attrs["type"]
				if typ == "" {
					typ = "text"
				}
				if _, pw := attrs["password"]; pw || strings.EqualFold(typ, "password") {
					typ = "password"
				}
				top.Inputs[inputName] = typ
			}

		case xml.EndElement:
			name := strings.ToLower(el.Name.Local)
			if formTags[name] && len(stack) > 0 {
				bindings = append(bindings, *stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
		}
	}

	return bindings, nil
}

func attrMap(attrs []xml.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		name := a.Name.Local
		if a.Name.Space != "" {
			name = a.Name.Space + ":" + a.Name.Local
		}
		out[strings.ToLower(name)] = a.Value
	}
	return out
}
