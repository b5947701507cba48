package api

import (
	"net/http"
	"strconv"

	"github.com/duoshoumiao/bilibilisearch/internal/models"
	"github.com/duoshoumiao/bilibilisearch/internal/resolver"
	"github.com/duoshoumiao/bilibilisearch/internal/util"
)

const defaultPageSize = 5

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"directory": s.app.Directory().GetInfo().ID,
	})
}

// videoResponse is the wire shape of a single search hit.
type videoResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	AuthorID    int64  `json:"author_id,omitempty"`
	PublishedAt string `json:"published_at"`
	Link        string `json:"link"`
	Plays       int64  `json:"plays,omitempty"`
}

func toVideoResponse(v *models.VideoRecord) videoResponse {
	return videoResponse{
		ID:          v.ID,
		Title:       v.Title,
		Author:      v.Author,
		AuthorID:    v.AuthorID,
		PublishedAt: v.PublishedAt.Format("2006-01-02 15:04:05"),
		Link:        util.VideoLink(v.ID),
		Plays:       v.Plays,
	}
}

// handleSearchVideos serves the ad-hoc keyword search. Results are
// relevance ordered by default; order=pubdate returns newest first.
func (s *Server) handleSearchVideos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing query parameter 'q'")
		return
	}

	order := models.OrderRelevance
	if r.URL.Query().Get("order") == models.OrderNewest {
		order = models.OrderNewest
	}
	pageSize := defaultPageSize
	if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 {
		pageSize = n
	}

	videos, err := s.app.Directory().SearchVideos(r.Context(), query, order, pageSize)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Video search is unavailable right now")
		return
	}

	results := make([]videoResponse, 0, len(videos))
	for i := range videos {
		results = append(results, toVideoResponse(&videos[i]))
	}
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"order":   order,
		"results": results,
	})
}

// handleResolveCreator reports what a free-text query resolves to,
// including the low-confidence hint for ambiguous queries.
func (s *Server) handleResolveCreator(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		RespondWithError(w, http.StatusBadRequest, "Missing query parameter 'q'")
		return
	}

	res, err := s.resolver.Resolve(r.Context(), query)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Creator lookup is unavailable right now")
		return
	}

	switch res.Kind {
	case resolver.MatchNone:
		RespondWithError(w, http.StatusNotFound, "No creator matched; try the exact display name or numeric ID")
	default:
		payload := map[string]interface{}{
			"match":        res.Kind.String(),
			"creator_id":   res.CreatorID,
			"creator_name": res.CreatorName,
		}
		if res.Video != nil {
			payload["latest"] = toVideoResponse(res.Video)
		}
		RespondWithJSON(w, http.StatusOK, payload)
	}
}

func (s *Server) handleGetJobsStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.JobManager().GetStatus())
}
