// Package hybrid fuses the lexical and vector sub-rankings into a single
// ordered result list using reciprocal rank fusion. It depends on the two
// index packages only through the narrow capability each exposes (query
// text or vector, scope filters, limit, in; ranked hits, out) so the
// fusion operator stays oblivious to bleve or chromem-go internals and a
// third backend would only change the fusion input set.
package hybrid

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackzampolin/regcore/internal/errs"
	"github.com/jackzampolin/regcore/internal/lexindex"
	"github.com/jackzampolin/regcore/internal/model"
	"github.com/jackzampolin/regcore/internal/vecindex"
)

// LexicalSource is the capability hybrid needs from the lexical index.
type LexicalSource interface {
	Query(queryText string, regIDs []string, chapterScope []string, limit int) ([]lexindex.Hit, error)
}

// VectorSource is the capability hybrid needs from the vector index.
type VectorSource interface {
	Query(ctx context.Context, queryVector []float32, regIDs []string, chapterScope []string, limit int) ([]vecindex.Hit, error)
}

// Embedder turns query text into the vector the vector index expects.
// Implemented by internal/embedclient against an external provider; tests
// supply a stub.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Weights holds the fusion tuning: lexical and vector weight plus the RRF
// smoothing constant k in score(b) = w_lex/(k+rank_lex) + w_vec/(k+rank_vec).
type Weights struct {
	Lexical float64
	Vector  float64
	K       int
}

// Searcher runs hybrid search over a lexical and a vector index.
type Searcher struct {
	Lex     LexicalSource
	Vec     VectorSource
	Embed   Embedder
	Weights Weights
}

// New builds a Searcher from the two index providers, an embedder, and the
// fusion weights (ordinarily config.Config.FTSWeight/VectorWeight/RRFK).
func New(lex LexicalSource, vec VectorSource, embed Embedder, weights Weights) *Searcher {
	return &Searcher{Lex: lex, Vec: vec, Embed: embed, Weights: weights}
}

// candidate accumulates both sub-rankings' contributions for one block
// before the final score is computed: per-source rank, the originating
// hits, and whether the block appeared in both lists.
type candidate struct {
	key        blockKey
	lexRank    int // 1-based; 0 means absent from the lexical ranking
	vecRank    int
	lexHit     *lexindex.Hit
	vecHit     *vecindex.Hit
	inBothList bool
	fusedScore float64
}

type blockKey struct {
	RegID   string
	BlockID string
}

// InferRegIDs implements the fail-open reg_id inference rule: when
// the caller doesn't name regulations, match the query text against each
// regulation's keywords and scope; fall back to the full set if nothing
// matches.
func InferRegIDs(queryText string, infos []model.RegulationInfo) []string {
	q := strings.ToLower(queryText)
	var matched []string
	for _, info := range infos {
		if regulationMatches(q, info) {
			matched = append(matched, info.RegID)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return matched
}

func regulationMatches(lowerQuery string, info model.RegulationInfo) bool {
	for _, kw := range info.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowerQuery, strings.ToLower(kw)) {
			return true
		}
	}
	if info.Scope != "" && strings.Contains(lowerQuery, strings.ToLower(info.Scope)) {
		return true
	}
	return false
}

// Search runs the lexical and vector sub-queries, fuses their rankings, and
// returns the top `limit` results ordered by fused score then the
// (reg_id, page_num, block_id) tie-break.
//
// If reg_ids is empty, it is inferred per InferRegIDs; an empty inferred
// set still means "search everything" (fail open), not "search nothing".
//
// If one sub-index reports errs.ErrIndexMissing (or the embedder fails),
// the search degrades to the other sub-index's ranking alone. If both are
// unavailable, errs.ErrIndexMissing is returned.
func (s *Searcher) Search(ctx context.Context, queryText string, regIDs []string, chapterScope []string, limit int, regInfos []model.RegulationInfo) ([]model.SearchResult, error) {
	if strings.TrimSpace(queryText) == "" {
		return nil, fmt.Errorf("search query is empty: %w", errs.ErrValidation)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("search limit must be positive: %w", errs.ErrValidation)
	}
	if len(regIDs) == 0 {
		regIDs = InferRegIDs(queryText, regInfos)
	}

	fetchSize := limit * 3
	if fetchSize < 30 {
		fetchSize = 30
	}

	lexHits, lexErr := s.Lex.Query(queryText, regIDs, chapterScope, fetchSize)
	if lexErr != nil && !errs.Is(lexErr, errs.ErrIndexMissing) {
		return nil, fmt.Errorf("lexical query: %w", lexErr)
	}

	vecHits, vecErr := s.queryVector(ctx, queryText, regIDs, chapterScope, fetchSize)
	if vecErr != nil && !errs.Is(vecErr, errs.ErrIndexMissing) {
		return nil, fmt.Errorf("vector query: %w", vecErr)
	}

	lexAvailable := lexErr == nil
	vecAvailable := vecErr == nil
	if !lexAvailable && !vecAvailable {
		return nil, fmt.Errorf("hybrid search: %w", errs.ErrIndexMissing)
	}

	fused := fuse(lexHits, vecHits, s.effectiveWeights(lexAvailable, vecAvailable))
	if len(fused) > limit {
		fused = fused[:limit]
	}

	results := make([]model.SearchResult, 0, len(fused))
	for _, c := range fused {
		results = append(results, toSearchResult(c))
	}
	return results, nil
}

func (s *Searcher) queryVector(ctx context.Context, queryText string, regIDs, chapterScope []string, fetchSize int) ([]vecindex.Hit, error) {
	if s.Embed == nil || s.Vec == nil {
		return nil, fmt.Errorf("no embedder configured: %w", errs.ErrIndexMissing)
	}
	vec, err := s.Embed.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", errs.ErrIndexMissing)
	}
	return s.Vec.Query(ctx, vec, regIDs, chapterScope, fetchSize)
}

// effectiveWeights zeroes the weight of an unavailable sub-index so it
// contributes nothing to the fused score; the remaining weight is not
// renormalized.
func (s *Searcher) effectiveWeights(lexAvailable, vecAvailable bool) Weights {
	w := s.Weights
	if w.K <= 0 {
		w.K = 60
	}
	if !lexAvailable {
		w.Lexical = 0
	}
	if !vecAvailable {
		w.Vector = 0
	}
	return w
}

func fuse(lexHits []lexindex.Hit, vecHits []vecindex.Hit, w Weights) []candidate {
	byKey := make(map[blockKey]*candidate)
	order := make([]blockKey, 0, len(lexHits)+len(vecHits))

	for i := range lexHits {
		h := &lexHits[i]
		key := blockKey{RegID: h.Record.RegID, BlockID: h.Record.BlockID}
		c, ok := byKey[key]
		if !ok {
			c = &candidate{key: key}
			byKey[key] = c
			order = append(order, key)
		}
		c.lexRank = i + 1
		c.lexHit = h
	}
	for i := range vecHits {
		h := &vecHits[i]
		key := blockKey{RegID: h.Record.RegID, BlockID: h.Record.BlockID}
		c, ok := byKey[key]
		if !ok {
			c = &candidate{key: key}
			byKey[key] = c
			order = append(order, key)
		}
		c.vecRank = i + 1
		c.vecHit = h
	}

	candidates := make([]candidate, 0, len(order))
	for _, key := range order {
		c := byKey[key]
		c.inBothList = c.lexRank > 0 && c.vecRank > 0
		candidates = append(candidates, *c)
	}

	for i := range candidates {
		candidates[i].fusedScore = rrfScore(candidates[i], w)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si, sj := candidates[i].fusedScore, candidates[j].fusedScore
		if si != sj {
			return si > sj
		}
		return lessTieBreak(candidates[i], candidates[j])
	})

	return candidates
}

func rrfScore(c candidate, w Weights) float64 {
	k := float64(w.K)
	var score float64
	if c.lexRank > 0 {
		score += w.Lexical / (k + float64(c.lexRank))
	}
	if c.vecRank > 0 {
		score += w.Vector / (k + float64(c.vecRank))
	}
	return score
}

func lessTieBreak(a, b candidate) bool {
	ra, rb := regID(a), regID(b)
	if ra != rb {
		return ra < rb
	}
	pa, pb := pageNum(a), pageNum(b)
	if pa != pb {
		return pa < pb
	}
	return a.key.BlockID < b.key.BlockID
}

func regID(c candidate) string {
	if c.lexHit != nil {
		return c.lexHit.Record.RegID
	}
	return c.vecHit.Record.RegID
}

func pageNum(c candidate) int {
	if c.lexHit != nil {
		return c.lexHit.Record.PageNum
	}
	return c.vecHit.Record.PageNum
}

// toSearchResult flattens a candidate into the result shape. The snippet
// prefers the lexical record's stored preview, falling back to the vector
// record's truncated content; the score is always the fused RRF score,
// never a raw sub-index value.
func toSearchResult(c candidate) model.SearchResult {
	var regID string
	var pageNum int
	var chapterPath []string
	var snippet string

	if c.lexHit != nil {
		regID = c.lexHit.Record.RegID
		pageNum = c.lexHit.Record.PageNum
		chapterPath = c.lexHit.Record.ChapterPath
		snippet = c.lexHit.Record.ShortPreview
	}
	if c.vecHit != nil {
		regID = c.vecHit.Record.RegID
		pageNum = c.vecHit.Record.PageNum
		if len(chapterPath) == 0 {
			chapterPath = c.vecHit.Record.ChapterPath
		}
		if snippet == "" {
			snippet = c.vecHit.Record.Content
		}
	}

	return model.SearchResult{
		RegID:       regID,
		PageNum:     pageNum,
		ChapterPath: chapterPath,
		BlockID:     c.key.BlockID,
		Snippet:     snippet,
		Score:       c.fusedScore,
	}
}
