// Package resolver decides which directory record, if any, is an
// authoritative match for a free-text creator query, and classifies
// display-name changes observed between reconcile passes.
package resolver

import (
	"context"
	"strconv"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
	"github.com/duoshoumiao/bilibilisearch/internal/util"
)

// MatchKind is the confidence of a resolution.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchExact
	MatchAmbiguous
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchAmbiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// MatchResult is the outcome of resolving a query. For MatchExact the
// creator fields are authoritative; Video is the creator's most recent
// upload and may be nil for a creator with no uploads. For MatchAmbiguous
// everything is a best-effort hint and must never be auto-subscribed.
type MatchResult struct {
	Kind        MatchKind
	CreatorID   int64
	CreatorName string
	Video       *models.VideoRecord
}

const searchPageSize = 5

// Resolver resolves creator queries against a directory. The directory
// handed in is expected to be cache-wrapped; the resolver itself holds
// no state.
type Resolver struct {
	dir models.Directory
	// fallbackFirst controls the tie-break when no exact match exists:
	// surface the top-ranked search hit as a low-confidence guess, or
	// report no match at all.
	fallbackFirst bool
}

// New creates a Resolver. fallbackFirst enables the top-ranked-candidate
// fallback for queries with no exact match.
func New(dir models.Directory, fallbackFirst bool) *Resolver {
	return &Resolver{dir: dir, fallbackFirst: fallbackFirst}
}

// Resolve finds the creator a query refers to.
//
// The creator-account search is tried first: an account whose name equals
// the normalized query is an exact match and its newest upload is fetched
// by stable ID. Failing that, a newest-first video search is filtered for
// candidates attributed to an author equal to the query; a purely numeric
// query instead matches on author ID. Anything left is at best the
// top-ranked candidate, surfaced as ambiguous.
func (r *Resolver) Resolve(ctx context.Context, query string) (MatchResult, error) {
	norm := util.NormalizeName(query)
	if norm == "" {
		return MatchResult{Kind: MatchNone}, nil
	}

	// Stable-ID path via the account search.
	creators, err := r.dir.SearchCreators(ctx, query)
	if err != nil {
		return MatchResult{Kind: MatchNone}, err
	}
	for _, c := range creators {
		if util.NormalizeName(c.Name) != norm {
			continue
		}
		res := MatchResult{Kind: MatchExact, CreatorID: c.ID, CreatorName: c.Name}
		videos, err := r.dir.GetCreatorRecentVideos(ctx, c.ID, searchPageSize)
		if err == nil && len(videos) > 0 {
			res.Video = &videos[0]
		}
		return res, nil
	}

	// Degraded path: newest-first keyword search, filtered by attribution.
	videos, err := r.dir.SearchVideos(ctx, query, models.OrderNewest, searchPageSize)
	if err != nil {
		return MatchResult{Kind: MatchNone}, err
	}

	numericID, numeric := parseNumeric(norm)
	for i := range videos {
		v := &videos[i]
		if util.NormalizeName(v.Author) == norm || (numeric && v.AuthorID == numericID) {
			return MatchResult{
				Kind:        MatchExact,
				CreatorID:   v.AuthorID,
				CreatorName: v.Author,
				Video:       v,
			}, nil
		}
	}

	if r.fallbackFirst && len(videos) > 0 {
		v := &videos[0]
		return MatchResult{
			Kind:        MatchAmbiguous,
			CreatorID:   v.AuthorID,
			CreatorName: v.Author,
			Video:       v,
		}, nil
	}
	return MatchResult{Kind: MatchNone}, nil
}

func parseNumeric(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil && id > 0
}
