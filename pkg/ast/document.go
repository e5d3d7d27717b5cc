// Package ast implements the AST adapter of spec.md §4.A: it converts an
// opaque AST document (at minimum a tree of `type`/child fields) into a
// pkg/pdg.Graph, classifying nodes into the node taxonomy.
package ast

import "encoding/json"

// Document mirrors the opaque AST shape spec.md §6 names: "an AST JSON
// document containing at least type, body, sourceType, range, tokens,
// comments, and optionally leadingComments". Fields are loosely typed
// (interface{}) because the adapter must accept whatever a parser
// service (pkg/parserservice) hands it without assuming a fixed schema —
// the parser is explicitly an opaque, replaceable collaborator.
type Document struct {
	Type           string
	Body           []*Document
	SourceType     string
	Range          []int
	Tokens         []interface{}
	Comments       []*Document
	LeadingComment []*Document
	Fields         map[string]interface{} // every other key: dict, list, or scalar
}

// knownKeys are the struct fields promoted to the top level of the JSON
// encoding; everything else in Fields round-trips under its own key,
// same as it arrived from the parser service.
var knownKeys = map[string]bool{
	"type": true, "body": true, "sourceType": true, "range": true,
	"tokens": true, "comments": true, "leadingComments": true,
}

// MarshalJSON flattens Fields alongside the named struct fields so a
// Document round-trips through astcache's sqlite store without losing
// the dynamic children/attributes every non-trivial node carries.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"type": d.Type}
	if d.Body != nil {
		out["body"] = d.Body
	}
	if d.SourceType != "" {
		out["sourceType"] = d.SourceType
	}
	if d.Range != nil {
		out["range"] = d.Range
	}
	if d.Tokens != nil {
		out["tokens"] = d.Tokens
	}
	if d.Comments != nil {
		out["comments"] = d.Comments
	}
	if d.LeadingComment != nil {
		out["leadingComments"] = d.LeadingComment
	}
	for k, v := range d.Fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the flattened encoding back into the named struct
// fields and the residual Fields map.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Fields = map[string]interface{}{}
	for k, v := range raw {
		switch k {
		case "type":
			_ = json.Unmarshal(v, &d.Type)
		case "body":
			_ = json.Unmarshal(v, &d.Body)
		case "sourceType":
			_ = json.Unmarshal(v, &d.SourceType)
		case "range":
			_ = json.Unmarshal(v, &d.Range)
		case "tokens":
			_ = json.Unmarshal(v, &d.Tokens)
		case "comments":
			_ = json.Unmarshal(v, &d.Comments)
		case "leadingComments":
			_ = json.Unmarshal(v, &d.LeadingComment)
		default:
			d.Fields[k] = unmarshalDynamic(v)
		}
	}
	return nil
}

// unmarshalDynamic decodes a raw field value into either a nested
// *Document (when it looks like one — carries a "type" key), a slice of
// *Document, or a plain interface{} scalar/map.
func unmarshalDynamic(v json.RawMessage) interface{} {
	var asDoc Document
	if err := json.Unmarshal(v, &asDoc); err == nil && asDoc.Type != "" {
		return &asDoc
	}
	var asDocs []*Document
	if err := json.Unmarshal(v, &asDocs); err == nil && len(asDocs) > 0 {
		allDocsOrNull := true
		var probe []json.RawMessage
		_ = json.Unmarshal(v, &probe)
		for i, item := range probe {
			if string(item) == "null" {
				continue
			}
			if asDocs[i] == nil || asDocs[i].Type == "" {
				allDocsOrNull = false
				break
			}
		}
		if allDocsOrNull {
			return asDocs
		}
	}
	var generic interface{}
	_ = json.Unmarshal(v, &generic)
	return generic
}
