package toolsurface

import "encoding/json"

// ToolDef is the LLM-facing function definition for one tool-surface
// operation, in the OpenAI function-calling shape.
type ToolDef struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes one callable operation and its JSON Schema
// parameters, validated against a real call's arguments before dispatch.
type ToolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// toolDefs is the fixed set of nine retrieval operations.
func toolDefs() []ToolDef {
	return []ToolDef{
		{Type: "function", Function: ToolFunction{
			Name:        "list_regulations",
			Description: "List every ingested regulation with its title, scope, and page count.",
			Parameters:  mustMarshal(schema(nil, nil)),
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "get_toc",
			Description: "Get the chapter table of contents for a regulation, optionally truncated to a maximum depth.",
			Parameters: mustMarshal(schema(props{
				"reg_id":    stringProp("Regulation identifier."),
				"max_level": intProp("Maximum chapter depth to return; omit for the full tree."),
			}, []string{"reg_id"})),
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "smart_search",
			Description: "Hybrid lexical + semantic search over page blocks, fused by reciprocal rank fusion.",
			Parameters: mustMarshal(schema(props{
				"query":         stringProp("Search query text."),
				"reg_ids":       arrayOfStringsProp("Restrict search to these regulations; omit to infer from the query."),
				"chapter_scope": arrayOfStringsProp("Restrict to blocks whose chapter path begins with this prefix sequence."),
				"limit":         intProp("Maximum results to return; defaults to 10."),
			}, []string{"query"})),
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "read_page_range",
			Description: "Read the raw content of a page range, with any fully-contained cross-page tables stitched inline.",
			Parameters: mustMarshal(schema(props{
				"reg_id": stringProp("Regulation identifier."),
				"start":  intProp("First page to read, inclusive."),
				"end":    intProp("Last page to read, inclusive."),
			}, []string{"reg_id", "start", "end"})),
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "read_chapter_content",
			Description: "Resolve a section number to its page range and read that range.",
			Parameters: mustMarshal(schema(props{
				"reg_id":           stringProp("Regulation identifier."),
				"section_number":   stringProp("Section number, e.g. \"6\" or \"6.1.2\"."),
				"include_children": boolProp("Include every descendant chapter's pages, not just this section's own range."),
			}, []string{"reg_id", "section_number"})),
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "search_tables",
			Description: "Search table captions and cell text; returns logical table ids that can be fetched in full.",
			Parameters: mustMarshal(schema(props{
				"query":  stringProp("Search query text."),
				"reg_id": stringProp("Restrict to this regulation; omit to search every ingested regulation."),
				"mode":   stringProp("One of \"lexical\", \"semantic\", \"hybrid\" (default)."),
			}, []string{"query"})),
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "get_table_by_id",
			Description: "Fetch a logical table's fully stitched rows, headers, and caption.",
			Parameters: mustMarshal(schema(props{
				"reg_id":   stringProp("Regulation identifier."),
				"table_id": stringProp("Logical table id, as returned by search_tables."),
			}, []string{"reg_id", "table_id"})),
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "lookup_annotation",
			Description: "Find a page-local annotation (e.g. \"注1\", \"方案A\") by label, optionally hinting a nearby page.",
			Parameters: mustMarshal(schema(props{
				"reg_id":    stringProp("Regulation identifier."),
				"label":     stringProp("Annotation label to look up."),
				"page_hint": intProp("Page to search first, then its immediate neighbors."),
			}, []string{"reg_id", "label"})),
		}},
		{Type: "function", Function: ToolFunction{
			Name:        "resolve_reference",
			Description: "Classify and resolve a cross-reference phrase (e.g. \"见第六章\", \"参见表6-2\") to its target page range.",
			Parameters: mustMarshal(schema(props{
				"reg_id": stringProp("Regulation identifier."),
				"phrase": stringProp("The reference phrase as it appears in the source text."),
			}, []string{"reg_id", "phrase"})),
		}},
	}
}

type props map[string]any

func schema(properties props, required []string) map[string]any {
	s := map[string]any{"type": "object"}
	if properties != nil {
		s["properties"] = properties
	}
	if required != nil {
		s["required"] = required
	} else {
		s["required"] = []string{}
	}
	return s
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func intProp(desc string) map[string]any {
	return map[string]any{"type": "integer", "description": desc}
}

func boolProp(desc string) map[string]any {
	return map[string]any{"type": "boolean", "description": desc}
}

func arrayOfStringsProp(desc string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": desc}
}
