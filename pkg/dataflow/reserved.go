package dataflow

// reserved carries js_reserved.py's fixed list of language keywords and
// common host APIs verbatim: identifiers in this set are never registered
// as "unknown" free uses (spec.md §4.D "Identifier").
var reserved = map[string]bool{
	// language keywords
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "export": true, "extends": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "new": true, "return": true, "super": true,
	"switch": true, "this": true, "throw": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true, "yield": true,
	"let": true, "static": true, "async": true, "await": true, "of": true,
	"true": true, "false": true, "null": true, "undefined": true, "NaN": true,
	"Infinity": true,

	// common host / global APIs
	"window": true, "document": true, "console": true, "browser": true,
	"chrome": true, "localStorage": true, "sessionStorage": true,
	"Promise": true, "JSON": true, "XMLHttpRequest": true, "fetch": true,
	"$": true, "CryptoJS": true, "addEventListener": true,
	"removeEventListener": true, "postMessage": true, "Symbol": true,
	"Set": true, "Map": true, "WeakMap": true, "WeakSet": true,
	"Array": true, "Object": true, "String": true, "Number": true,
	"Boolean": true, "Date": true, "RegExp": true, "Error": true,
	"Math": true, "parseInt": true, "parseFloat": true, "isNaN": true,
	"setTimeout": true, "setInterval": true, "clearTimeout": true,
	"clearInterval": true, "require": true, "module": true, "exports": true,
	"global": true, "process": true, "Buffer": true,

	// the small-application framework global
	"wx": true, "getApp": true, "getCurrentPages": true, "Page": true,
	"Component": true, "App": true,
}

// isReserved reports whether name is a reserved/built-in identifier that
// must never be registered as an unknown free use.
func isReserved(name string) bool { return reserved[name] }
