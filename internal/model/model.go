// Package model defines the value types shared by every retrieval
// component: the persisted data model from the regulation down to a single
// content block, plus the result shapes the tool surface returns. Every
// type here is value-typed and JSON-tagged so it can be persisted by the
// page store, indexed by the lexical and vector backends, and returned
// across the tool surface unchanged.
package model

// BlockKind enumerates the kinds of content a page can carry.
type BlockKind string

const (
	BlockText    BlockKind = "text"
	BlockTable   BlockKind = "table"
	BlockHeading BlockKind = "heading"
	BlockList    BlockKind = "list"
)

// RegulationInfo is the manifest persisted at the root of a regulation's
// directory.
type RegulationInfo struct {
	RegID       string   `json:"reg_id"`
	Title       string   `json:"title"`
	SourceFile  string   `json:"source_file"`
	TotalPages  int      `json:"total_pages"`
	IngestedAt  string   `json:"ingested_at"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Scope       string   `json:"scope,omitempty"`
	VectorDim   int      `json:"vector_dimension"`
	Dirty       bool     `json:"dirty,omitempty"`
}

// Page is one physical page of a regulation.
type Page struct {
	RegID             string         `json:"reg_id"`
	PageNum           int            `json:"page_num"`
	ChapterPath       []string       `json:"chapter_path"`
	Blocks            []ContentBlock `json:"blocks"`
	RenderedText      string         `json:"rendered_text"`
	ContinuesFromPrev bool           `json:"continues_from_prev"`
	ContinuesToNext   bool           `json:"continues_to_next"`
	Annotations       []Annotation   `json:"annotations,omitempty"`
}

// ContentBlock is a single content unit within a page.
type ContentBlock struct {
	BlockID string     `json:"block_id"`
	Kind    BlockKind  `json:"kind"`
	Ordinal int        `json:"ordinal"`
	Text    string     `json:"text"`
	Table   *TableMeta `json:"table,omitempty"`
}

// TableMeta carries table structure for blocks with Kind == BlockTable.
type TableMeta struct {
	Caption         string      `json:"caption,omitempty"`
	ContinuesToNext bool        `json:"continues_to_next"`
	RowCount        int         `json:"row_count"`
	ColCount        int         `json:"col_count"`
	RowHeaders      []string    `json:"row_headers"`
	ColHeaders      []string    `json:"col_headers"`
	Cells           []TableCell `json:"cells"`
}

// TableCell is a single cell of a table block.
type TableCell struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Text string `json:"text"`
}

// Annotation is a page-local footnote-like element.
type Annotation struct {
	Label    string   `json:"label"`
	Body     string   `json:"body"`
	BlockIDs []string `json:"block_ids,omitempty"`
}

// TableEntry describes one logical (possibly cross-page) table.
type TableEntry struct {
	TableID   string   `json:"table_id"`
	StartPage int      `json:"start_page"`
	EndPage   int      `json:"end_page"`
	Segments  []string `json:"segments"` // ordered block_ids, document order
	CrossPage bool     `json:"cross_page"`
	Caption   string   `json:"caption,omitempty"`
}

// TableRegistry is one per regulation: every logical table plus the
// reverse index from segment block_id to logical table id.
type TableRegistry struct {
	RegID   string                `json:"reg_id"`
	Tables  map[string]TableEntry `json:"tables"`
	Reverse map[string]string     `json:"reverse"` // block_id -> table_id
}

// TocItem is a single node in the chapter forest.
type TocItem struct {
	Title         string     `json:"title"`
	Level         int        `json:"level"`
	PageStart     int        `json:"page_start"`
	PageEnd       int        `json:"page_end"`
	SectionNumber string     `json:"section_number,omitempty"`
	Children      []*TocItem `json:"children,omitempty"`
}

// TocTree is the root result of a get_toc call.
type TocTree struct {
	RegID string     `json:"reg_id"`
	Nodes []*TocItem `json:"nodes"`
}

// ChapterNode is the flat, parent-pointer view returned by
// get_chapter_structure.
type ChapterNode struct {
	Title         string `json:"title"`
	Level         int    `json:"level"`
	PageStart     int    `json:"page_start"`
	PageEnd       int    `json:"page_end"`
	SectionNumber string `json:"section_number,omitempty"`
	ParentIndex   int    `json:"parent_index"` // -1 for roots
}

// SearchResult is one fused hit from hybrid search.
type SearchResult struct {
	RegID       string   `json:"reg_id"`
	PageNum     int      `json:"page_num"`
	ChapterPath []string `json:"chapter_path"`
	BlockID     string   `json:"block_id"`
	Snippet     string   `json:"snippet"`
	Score       float64  `json:"score"`
}

// PageContent is the result of reading a page range or a chapter's pages.
type PageContent struct {
	Pages          []Page          `json:"pages"`
	StitchedTables []StitchedTable `json:"stitched_tables,omitempty"`
	PartialTables  []PartialTable  `json:"partial_tables,omitempty"`
}

// StitchedTable is a fully reassembled logical table.
type StitchedTable struct {
	TableID    string     `json:"table_id"`
	Caption    string     `json:"caption,omitempty"`
	RowHeaders []string   `json:"row_headers"`
	Columns    []string   `json:"columns"`
	Rows       [][]string `json:"rows"`
}

// PartialTable flags a logical table that straddles a read boundary and so
// was not stitched inline.
type PartialTable struct {
	TableID  string   `json:"table_id"`
	Segments []string `json:"segments"`
}

// TableHit is one match from search_tables.
type TableHit struct {
	TableID string  `json:"table_id"`
	RegID   string  `json:"reg_id"`
	Caption string  `json:"caption,omitempty"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// ReferenceKind enumerates the cross-reference grammar's target kinds.
type ReferenceKind string

const (
	RefChapter    ReferenceKind = "chapter"
	RefTable      ReferenceKind = "table"
	RefAnnotation ReferenceKind = "annotation"
	RefPage       ReferenceKind = "page"
)

// ReferenceTarget is the resolved destination of a cross-reference phrase.
type ReferenceTarget struct {
	Kind        ReferenceKind `json:"kind"`
	Target      string        `json:"target"`
	PageStart   int           `json:"page_start"`
	PageEnd     int           `json:"page_end"`
	Specificity int           `json:"specificity"`
}

// LexicalRecord is the unit indexed by the lexical backend.
type LexicalRecord struct {
	RegID        string   `json:"reg_id"`
	PageNum      int      `json:"page_num"`
	BlockID      string   `json:"block_id"`
	ChapterPath  []string `json:"chapter_path"`
	ContentText  string   `json:"content_text"`
	ShortPreview string   `json:"short_preview"`
}

// VectorRecord is the unit indexed by the vector backend.
type VectorRecord struct {
	RegID       string    `json:"reg_id"`
	PageNum     int       `json:"page_num"`
	BlockID     string    `json:"block_id"`
	ChapterPath []string  `json:"chapter_path"`
	Content     string    `json:"content"` // truncated to vector_content_limit
	Vector      []float32 `json:"vector"`
}
