package mcp

// FindToolName is the name of the only tool the server registers.
const FindToolName = "find"

const findToolDescription = "Find the next or previous occurrence of a literal string or regular " +
	"expression in a document, starting from a caret position and wrapping around the end. " +
	"Offsets are in Unicode code points. Pass either the document text or a file path."

// FindInput defines the input schema for the find tool.
type FindInput struct {
	Document  *string `json:"document,omitempty" jsonschema:"the text to search; mutually exclusive with path"`
	Path      string  `json:"path,omitempty" jsonschema:"file to search, relative to the server root; mutually exclusive with document"`
	Caret     int     `json:"caret,omitempty" jsonschema:"caret offset in code points, clamped to the document"`
	Pattern   string  `json:"pattern" jsonschema:"literal text or regular expression to find"`
	Regex     bool    `json:"regex,omitempty" jsonschema:"treat pattern as a regular expression"`
	Direction string  `json:"direction,omitempty" jsonschema:"start, forward (next) or backward (previous); default start"`
}

// FindOutput defines the output schema for the find tool.
type FindOutput struct {
	Found   bool   `json:"found" jsonschema:"whether a match was found"`
	Start   int    `json:"start" jsonschema:"match start offset, inclusive"`
	End     int    `json:"end" jsonschema:"match end offset, exclusive"`
	Match   string `json:"match,omitempty" jsonschema:"the matched text"`
	Caret   int    `json:"caret" jsonschema:"caret after the search: match end when found, else unchanged"`
	Wrapped bool   `json:"wrapped,omitempty" jsonschema:"true when the match came from wrapping around"`
}
