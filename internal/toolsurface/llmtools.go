package toolsurface

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackzampolin/regcore/internal/tables"
)

// LLMTools adapts a Surface to an LLM function-calling loop: named tool
// definitions plus an ExecuteTool dispatcher. The reasoning agent itself
// lives outside this module; there is no completion or result-capture
// step here, only the retrieval operations.
type LLMTools struct {
	surface *Surface
}

// NewLLMTools wraps a Surface for LLM function-calling consumption.
func NewLLMTools(s *Surface) *LLMTools {
	return &LLMTools{surface: s}
}

// GetTools returns the OpenAI-format tool definitions for every
// retrieval operation.
func (t *LLMTools) GetTools() []ToolDef {
	return toolDefs()
}

// ExecuteTool validates arguments against the named tool's JSON Schema,
// dispatches to the corresponding Surface method, and returns the result
// JSON-encoded (or a JSON error envelope).
func (t *LLMTools) ExecuteTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if err := validateArgs(name, args); err != nil {
		return jsonError(err.Error()), nil
	}

	switch name {
	case "list_regulations":
		return t.listRegulations()
	case "get_toc":
		return t.getTOC(args)
	case "smart_search":
		return t.smartSearch(ctx, args)
	case "read_page_range":
		return t.readPageRange(args)
	case "read_chapter_content":
		return t.readChapterContent(args)
	case "search_tables":
		return t.searchTables(args)
	case "get_table_by_id":
		return t.getTableByID(args)
	case "lookup_annotation":
		return t.lookupAnnotation(args)
	case "resolve_reference":
		return t.resolveReference(args)
	default:
		return jsonError(fmt.Sprintf("unknown tool: %s", name)), nil
	}
}

func (t *LLMTools) listRegulations() (string, error) {
	infos, err := t.surface.ListRegulations()
	if err != nil {
		return jsonError(err.Error()), nil
	}
	return jsonResult(infos), nil
}

func (t *LLMTools) getTOC(args map[string]any) (string, error) {
	regID, _ := args["reg_id"].(string)
	maxLevel := intArg(args, "max_level")
	tree, err := t.surface.GetTOC(regID, maxLevel)
	if err != nil {
		return jsonError(err.Error()), nil
	}
	return jsonResult(tree), nil
}

func (t *LLMTools) smartSearch(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	regIDs := stringsArg(args, "reg_ids")
	chapterScope := stringsArg(args, "chapter_scope")
	limit := intArg(args, "limit")
	results, err := t.surface.SmartSearch(ctx, query, regIDs, chapterScope, limit)
	if err != nil {
		return jsonError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (t *LLMTools) readPageRange(args map[string]any) (string, error) {
	regID, _ := args["reg_id"].(string)
	start := intArg(args, "start")
	end := intArg(args, "end")
	content, err := t.surface.ReadPageRange(regID, start, end)
	if err != nil {
		return jsonError(err.Error()), nil
	}
	return jsonResult(content), nil
}

func (t *LLMTools) readChapterContent(args map[string]any) (string, error) {
	regID, _ := args["reg_id"].(string)
	sectionNumber, _ := args["section_number"].(string)
	includeChildren, _ := args["include_children"].(bool)
	content, err := t.surface.ReadChapterContent(regID, sectionNumber, includeChildren)
	if err != nil {
		return jsonError(err.Error()), nil
	}
	return jsonResult(content), nil
}

func (t *LLMTools) searchTables(args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	regID, _ := args["reg_id"].(string)
	mode, _ := args["mode"].(string)
	hits, err := t.surface.SearchTables(regID, query, tables.SearchMode(mode))
	if err != nil {
		return jsonError(err.Error()), nil
	}
	return jsonResult(hits), nil
}

func (t *LLMTools) getTableByID(args map[string]any) (string, error) {
	regID, _ := args["reg_id"].(string)
	tableID, _ := args["table_id"].(string)
	table, err := t.surface.GetTableByID(regID, tableID)
	if err != nil {
		return jsonError(err.Error()), nil
	}
	return jsonResult(table), nil
}

func (t *LLMTools) lookupAnnotation(args map[string]any) (string, error) {
	regID, _ := args["reg_id"].(string)
	label, _ := args["label"].(string)
	pageHint := intArg(args, "page_hint")
	ann, err := t.surface.LookupAnnotation(regID, label, pageHint)
	if err != nil {
		return jsonError(err.Error()), nil
	}
	return jsonResult(ann), nil
}

func (t *LLMTools) resolveReference(args map[string]any) (string, error) {
	regID, _ := args["reg_id"].(string)
	phrase, _ := args["phrase"].(string)
	target, err := t.surface.ResolveReference(regID, phrase)
	if err != nil {
		return jsonError(err.Error()), nil
	}
	return jsonResult(target), nil
}

func intArg(args map[string]any, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

func stringsArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func jsonResult(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return jsonError(err.Error())
	}
	return string(b)
}

func jsonError(msg string) string {
	b, _ := json.Marshal(map[string]any{"error": msg})
	return string(b)
}
