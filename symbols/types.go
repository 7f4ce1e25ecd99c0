package symbols

import "strings"

// Position is a zero-based position in a text document
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a span in a text document
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Location is a range within a named file
type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

// InterfaceSymbol is one interface declaration found by the workspace search.
// Identity binds on (DeclaringFile, Name); duplicate names in different files
// are distinct symbols.
type InterfaceSymbol struct {
	Name             string
	ContainerName    string
	DeclaringFile    string
	DeclarationRange Range
}

// KindInterface is the LSP symbol kind code for interfaces
const KindInterface = 11

// kindNames is the bounded lookup table for LSP symbol kind codes. Codes
// outside the table map to "Unknown" and are filtered, never matched.
var kindNames = map[int]string{
	1:  "File",
	2:  "Module",
	3:  "Namespace",
	4:  "Package",
	5:  "Class",
	6:  "Method",
	7:  "Property",
	8:  "Field",
	9:  "Constructor",
	10: "Enum",
	11: "Interface",
	12: "Function",
	13: "Variable",
	14: "Constant",
	15: "String",
	16: "Number",
	17: "Boolean",
	18: "Array",
	19: "Object",
	20: "Key",
	21: "Null",
	22: "EnumMember",
	23: "Struct",
	24: "Event",
	25: "Operator",
	26: "TypeParameter",
}

// KindName maps an LSP symbol kind code to its name, defaulting to "Unknown"
func KindName(code int) string {
	if name, ok := kindNames[code]; ok {
		return name
	}
	return "Unknown"
}

// uriToPath strips the file scheme from an LSP document URI
func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}
