// Package vecindex is the dense-vector similarity index over page blocks.
// Embeddings are produced outside this module and stored verbatim in a
// file-persisted chromem-go collection; queries are cosine-similarity
// searches with the same scope filters and tie-break rule as the lexical
// index.
package vecindex

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/model"
)

const (
	collectionName = "blocks"
	chapterPathSep = "\x1f"

	// contentLimit caps the content stored with every vector document,
	// whatever vector_content_limit the records were truncated to at
	// ingest time.
	contentLimit = 500
)

// Hit is one ranked match.
type Hit struct {
	Record model.VectorRecord
	Score  float64
}

// Index wraps a single persistent chromem-go collection.
type Index struct {
	db  *chromem.DB
	col *chromem.Collection
	dim int
}

// Open opens (creating if necessary) the persistent collection at dir.
// dim is the embedding dimensionality recorded for this process; queries
// and indexed vectors must match it exactly.
func Open(dir string, dim int) (*Index, error) {
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("opening vector index: %w", err)
	}
	// No embedding function is registered: every vector is supplied by
	// the caller (the external embedder), never computed in-process.
	col, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("opening vector collection: %w", err)
	}
	return &Index{db: db, col: col, dim: dim}, nil
}

// Dimension returns the dimensionality this index was opened with.
func (ix *Index) Dimension() int {
	return ix.dim
}

func docID(regID, blockID string) string {
	return regID + "/" + blockID
}

// IndexRegulation adds every block vector for a regulation. Every vector
// must have length equal to the index's configured dimension.
func (ix *Index) IndexRegulation(ctx context.Context, records []model.VectorRecord) error {
	docs := make([]chromem.Document, 0, len(records))
	for _, r := range records {
		if len(r.Vector) != ix.dim {
			return fmt.Errorf("block %s/%s has vector dimension %d, index expects %d: %w",
				r.RegID, r.BlockID, len(r.Vector), ix.dim, errs.ErrIntegrity)
		}
		docs = append(docs, chromem.Document{
			ID:        docID(r.RegID, r.BlockID),
			Embedding: r.Vector,
			Content:   truncate(r.Content, contentLimit),
			Metadata: map[string]string{
				"reg_id":              r.RegID,
				"page_num":            strconv.Itoa(r.PageNum),
				"block_id":            r.BlockID,
				"chapter_path_joined": strings.Join(r.ChapterPath, chapterPathSep),
			},
		})
	}
	if len(docs) == 0 {
		return nil
	}
	if err := ix.col.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("indexing vector batch: %w", err)
	}
	return nil
}

// DeleteRegulation removes every indexed vector belonging to reg_id.
func (ix *Index) DeleteRegulation(ctx context.Context, regID string) error {
	if err := ix.col.Delete(ctx, map[string]string{"reg_id": regID}, nil); err != nil {
		return fmt.Errorf("deleting vectors for %q: %w", regID, err)
	}
	return nil
}

// Query runs a cosine-similarity search against the given query vector,
// optionally scoped to reg_ids and a chapter-path prefix.
func (ix *Index) Query(ctx context.Context, queryVector []float32, regIDs []string, chapterScope []string, limit int) ([]Hit, error) {
	if ix.col.Count() == 0 {
		return nil, fmt.Errorf("vector index: %w", errs.ErrIndexMissing)
	}
	if len(queryVector) != ix.dim {
		return nil, fmt.Errorf("query vector dimension %d, index expects %d: %w", len(queryVector), ix.dim, errs.ErrIntegrity)
	}

	fetchSize := limit * 5
	if fetchSize < 100 {
		fetchSize = 100
	}
	if fetchSize > ix.col.Count() {
		fetchSize = ix.col.Count()
	}

	var where map[string]string
	if len(regIDs) == 1 {
		where = map[string]string{"reg_id": regIDs[0]}
	}

	results, err := ix.col.QueryEmbedding(ctx, queryVector, fetchSize, where, nil)
	if err != nil {
		return nil, fmt.Errorf("querying vector index: %w", err)
	}

	regSet := make(map[string]bool, len(regIDs))
	for _, id := range regIDs {
		regSet[id] = true
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		rec := recordFromResult(r)
		if len(regSet) > 0 && !regSet[rec.RegID] {
			continue
		}
		if len(chapterScope) > 0 && !hasPrefix(rec.ChapterPath, chapterScope) {
			continue
		}
		hits = append(hits, Hit{Record: rec, Score: float64(r.Similarity)})
	}

	sortHits(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func recordFromResult(r chromem.Result) model.VectorRecord {
	md := r.Metadata
	pageNum, _ := strconv.Atoi(md["page_num"])
	var path []string
	if v := md["chapter_path_joined"]; v != "" {
		path = strings.Split(v, chapterPathSep)
	}
	return model.VectorRecord{
		RegID:       md["reg_id"],
		PageNum:     pageNum,
		BlockID:     md["block_id"],
		ChapterPath: path,
		Content:     r.Content,
		Vector:      r.Embedding,
	}
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

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}

// RecordsFromPages derives the vector records for every content block of
// a regulation's pages, truncating content to contentLimit characters and
// leaving Vector unset (the embedder boundary fills it in before
// IndexRegulation is called).
func RecordsFromPages(pages []model.Page, contentLimit int) []model.VectorRecord {
	var records []model.VectorRecord
	for _, page := range pages {
		for _, block := range page.Blocks {
			records = append(records, model.VectorRecord{
				RegID:       page.RegID,
				PageNum:     page.PageNum,
				BlockID:     block.BlockID,
				ChapterPath: page.ChapterPath,
				Content:     truncate(block.Text, contentLimit),
			})
		}
	}
	return records
}
