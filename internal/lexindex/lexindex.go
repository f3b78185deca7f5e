// Package lexindex is the full-text inverted index over page blocks. One
// bleve index serves every ingested regulation; documents carry a reg_id
// field so a single regulation's blocks can be filtered or removed without
// touching the rest. Tokenization uses bleve's CJK analyzer so Chinese
// runs segment into overlapping bigrams while embedded ASCII terms pass
// through whole, matching the Chinese-dominant corpus. Stop-word
// filtering is never enabled: technical prepositions like 见 carry
// retrieval-relevant meaning here.
package lexindex

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/model"
)

const chapterPathSep = "\x1f"

// Hit is one ranked match, paired with the bleve relevance score it
// received before the deterministic tie-break pass.
type Hit struct {
	Record model.LexicalRecord
	Score  float64
}

// Index wraps a single bleve index instance.
type Index struct {
	bi bleve.Index
}

// Open opens the index at dir, creating it with the CJK-aware mapping if
// it does not already exist.
func Open(dir string) (*Index, error) {
	bi, err := bleve.Open(dir)
	if err == nil {
		return &Index{bi: bi}, nil
	}
	if err != bleve.ErrorIndexPathDoesNotExist && err != bleve.ErrorIndexMetaMissing {
		return nil, fmt.Errorf("opening lexical index: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lexical index dir: %w", err)
	}
	bi, err = bleve.New(dir, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("creating lexical index: %w", err)
	}
	return &Index{bi: bi}, nil
}

// Close releases the underlying index handle.
func (ix *Index) Close() error {
	return ix.bi.Close()
}

func buildMapping() *mapping.IndexMappingImpl {
	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = cjk.AnalyzerName
	contentField.Store = true

	keywordField := bleve.NewTextFieldMapping()
	keywordField.Analyzer = "keyword"
	keywordField.Store = true

	numericField := bleve.NewNumericFieldMapping()
	numericField.Store = true

	blockMapping := bleve.NewDocumentMapping()
	blockMapping.AddFieldMappingsAt("content_text", contentField)
	blockMapping.AddFieldMappingsAt("reg_id", keywordField)
	blockMapping.AddFieldMappingsAt("block_id", keywordField)
	blockMapping.AddFieldMappingsAt("chapter_path_joined", keywordField)
	blockMapping.AddFieldMappingsAt("short_preview", keywordField)
	blockMapping.AddFieldMappingsAt("page_num", numericField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = blockMapping
	im.DefaultAnalyzer = cjk.AnalyzerName
	return im
}

// blockDoc is the shape actually indexed; chapter_path is flattened to a
// joined string so the stored value round-trips in document order (bleve
// does not guarantee order across repeated field values).
type blockDoc struct {
	RegID             string `json:"reg_id"`
	PageNum           int    `json:"page_num"`
	BlockID           string `json:"block_id"`
	ChapterPathJoined string `json:"chapter_path_joined"`
	ContentText       string `json:"content_text"`
	ShortPreview      string `json:"short_preview"`
}

// previewRunes bounds how much of a block's text becomes its stored
// snippet for hybrid search.
const previewRunes = 160

// RecordsFromPages derives the lexical records for every content block of
// a regulation's pages, in document order.
func RecordsFromPages(pages []model.Page) []model.LexicalRecord {
	var records []model.LexicalRecord
	for _, page := range pages {
		for _, block := range page.Blocks {
			records = append(records, model.LexicalRecord{
				RegID:        page.RegID,
				PageNum:      page.PageNum,
				BlockID:      block.BlockID,
				ChapterPath:  page.ChapterPath,
				ContentText:  block.Text,
				ShortPreview: preview(block.Text, previewRunes),
			})
		}
	}
	return records
}

func preview(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}

func docID(regID, blockID string) string {
	return regID + "/" + blockID
}

func toBlockDoc(r model.LexicalRecord) blockDoc {
	return blockDoc{
		RegID:             r.RegID,
		PageNum:           r.PageNum,
		BlockID:           r.BlockID,
		ChapterPathJoined: strings.Join(r.ChapterPath, chapterPathSep),
		ContentText:       r.ContentText,
		ShortPreview:      r.ShortPreview,
	}
}

// IndexRegulation adds or replaces every block record for a regulation.
// Callers must delete the regulation first if re-indexing (see
// DeleteRegulation); IndexRegulation itself only adds.
func (ix *Index) IndexRegulation(records []model.LexicalRecord) error {
	batch := ix.bi.NewBatch()
	for _, r := range records {
		if err := batch.Index(docID(r.RegID, r.BlockID), toBlockDoc(r)); err != nil {
			return fmt.Errorf("batching block %s/%s: %w", r.RegID, r.BlockID, err)
		}
	}
	if err := ix.bi.Batch(batch); err != nil {
		return fmt.Errorf("committing lexical batch: %w", err)
	}
	return nil
}

// DeleteRegulation removes every indexed block belonging to reg_id.
func (ix *Index) DeleteRegulation(regID string) error {
	ids, err := ix.blockIDsForReg(regID)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	batch := ix.bi.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	return ix.bi.Batch(batch)
}

func (ix *Index) blockIDsForReg(regID string) ([]string, error) {
	q := bleve.NewTermQuery(regID)
	q.SetField("reg_id")
	req := bleve.NewSearchRequest(q)
	req.Size = 1_000_000
	res, err := ix.bi.Search(req)
	if err != nil {
		return nil, fmt.Errorf("listing blocks for %q: %w", regID, err)
	}
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// Query runs a tokenized query, optionally scoped to reg_ids and a
// chapter-path prefix, returning up to limit ranked hits.
func (ix *Index) Query(queryText string, regIDs []string, chapterScope []string, limit int) ([]Hit, error) {
	count, err := ix.bi.DocCount()
	if err != nil {
		return nil, fmt.Errorf("checking lexical index: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("lexical index: %w", errs.ErrIndexMissing)
	}

	textQuery := bleve.NewMatchQuery(queryText)
	textQuery.SetField("content_text")
	textQuery.Analyzer = cjk.AnalyzerName

	var q query.Query = textQuery
	if len(regIDs) > 0 {
		disj := bleve.NewDisjunctionQuery()
		for _, id := range regIDs {
			tq := bleve.NewTermQuery(id)
			tq.SetField("reg_id")
			disj.AddQuery(tq)
		}
		q = bleve.NewConjunctionQuery(textQuery, disj)
	}

	// Over-fetch: chapter-scope filtering happens client-side over an
	// ordered-sequence prefix test, which bleve cannot express as a term
	// filter directly.
	fetchSize := limit * 5
	if fetchSize < 100 {
		fetchSize = 100
	}

	req := bleve.NewSearchRequest(q)
	req.Size = fetchSize
	req.Fields = []string{"reg_id", "page_num", "block_id", "chapter_path_joined", "content_text", "short_preview"}

	res, err := ix.bi.Search(req)
	if err != nil {
		return nil, fmt.Errorf("querying lexical index: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		rec := recordFromFields(h.Fields)
		if len(chapterScope) > 0 && !hasPrefix(rec.ChapterPath, chapterScope) {
			continue
		}
		hits = append(hits, Hit{Record: rec, Score: h.Score})
	}

	sortHits(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func recordFromFields(fields map[string]interface{}) model.LexicalRecord {
	rec := model.LexicalRecord{}
	if v, ok := fields["reg_id"].(string); ok {
		rec.RegID = v
	}
	if v, ok := fields["block_id"].(string); ok {
		rec.BlockID = v
	}
	if v, ok := fields["content_text"].(string); ok {
		rec.ContentText = v
	}
	if v, ok := fields["short_preview"].(string); ok {
		rec.ShortPreview = v
	}
	if v, ok := fields["page_num"].(float64); ok {
		rec.PageNum = int(v)
	}
	if v, ok := fields["chapter_path_joined"].(string); ok && v != "" {
		rec.ChapterPath = strings.Split(v, chapterPathSep)
	}
	return rec
}

func hasPrefix(path, prefix []string) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i, p := range prefix {
		if path[i] != p {
			return false
		}
	}
	return true
}

// sortHits orders by score descending; hits with equal scores are broken
// by (reg_id, page_num, block_id) ascending for determinism.
func sortHits(hits []Hit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		a, b := hits[i].Record, hits[j].Record
		if a.RegID != b.RegID {
			return a.RegID < b.RegID
		}
		if a.PageNum != b.PageNum {
			return a.PageNum < b.PageNum
		}
		return a.BlockID < b.BlockID
	})
}
