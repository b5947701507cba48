package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/duoshoumiao/bilibilisearch/internal/jobs"
	"github.com/duoshoumiao/bilibilisearch/internal/models"
	"github.com/duoshoumiao/bilibilisearch/internal/resolver"
	"github.com/duoshoumiao/bilibilisearch/internal/store"
	"github.com/duoshoumiao/bilibilisearch/internal/util"
	"github.com/go-chi/chi/v5"
)

// watchResponse is the wire shape of one watch-list entry.
type watchResponse struct {
	GroupID     string `json:"group_id"`
	CreatorKey  string `json:"creator_key"`
	CreatorID   int64  `json:"creator_id,omitempty"`
	DisplayName string `json:"display_name"`
	LastVideoID string `json:"last_video_id,omitempty"`
	LastChecked string `json:"last_checked,omitempty"`
}

func toWatchResponse(sub models.Subscription) watchResponse {
	resp := watchResponse{
		GroupID:     sub.GroupID,
		CreatorKey:  sub.CreatorKey,
		CreatorID:   sub.CreatorID,
		DisplayName: sub.DisplayName,
		LastVideoID: sub.LastVideoID,
	}
	if !sub.LastCheckedAt.IsZero() {
		resp.LastChecked = sub.LastCheckedAt.Format(time.RFC3339)
	}
	return resp
}

func toWatchResponses(subs []models.Subscription) []watchResponse {
	out := make([]watchResponse, 0, len(subs))
	for _, sub := range subs {
		out = append(out, toWatchResponse(sub))
	}
	return out
}

func (s *Server) handleListAllWatches(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, toWatchResponses(s.app.Store().ListAll()))
}

func (s *Server) handleListGroupWatches(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	RespondWithJSON(w, http.StatusOK, toWatchResponses(s.app.Store().ListGroup(groupID)))
}

// handleAddWatch subscribes a group to a creator resolved from a free-text
// query. An ambiguous resolution is returned as a hint and never
// subscribed automatically.
func (s *Server) handleAddWatch(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Query == "" {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	res, err := s.resolver.Resolve(r.Context(), payload.Query)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Creator lookup is unavailable right now")
		return
	}

	switch res.Kind {
	case resolver.MatchNone:
		RespondWithError(w, http.StatusNotFound, "No creator matched; try the exact display name or numeric ID")
		return
	case resolver.MatchAmbiguous:
		hint := map[string]interface{}{
			"match": res.Kind.String(),
			"hint":  res.CreatorName,
		}
		if res.Video != nil {
			hint["latest"] = toVideoResponse(res.Video)
		}
		RespondWithJSON(w, http.StatusOK, hint)
		return
	}

	sub := models.Subscription{
		GroupID:     groupID,
		CreatorKey:  util.NormalizeName(res.CreatorName),
		CreatorID:   res.CreatorID,
		DisplayName: res.CreatorName,
	}
	if res.Video != nil {
		// Baseline at the newest upload so the first reconcile pass
		// doesn't announce an old video.
		sub.LastVideoID = res.Video.ID
		sub.LastCheckedAt = time.Now()
	}
	s.respondWithNewWatch(w, sub)
}

// handleAddWatchByLink subscribes a group to the creator behind a shared
// video link.
func (s *Server) handleAddWatchByLink(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	var payload struct {
		Link string `json:"link"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Link == "" {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	videoID := util.ParseVideoID(payload.Link)
	if videoID == "" {
		RespondWithError(w, http.StatusBadRequest, "No video ID found in link")
		return
	}

	video, err := s.app.Directory().GetVideoByID(r.Context(), videoID)
	if err != nil {
		RespondWithError(w, http.StatusBadGateway, "Video lookup is unavailable right now")
		return
	}
	if video == nil {
		RespondWithError(w, http.StatusNotFound, "Video not found")
		return
	}

	s.respondWithNewWatch(w, models.Subscription{
		GroupID:       groupID,
		CreatorKey:    util.NormalizeName(video.Author),
		CreatorID:     video.AuthorID,
		DisplayName:   video.Author,
		LastVideoID:   video.ID,
		LastCheckedAt: time.Now(),
	})
}

func (s *Server) respondWithNewWatch(w http.ResponseWriter, sub models.Subscription) {
	if err := s.app.Store().Add(sub); err != nil {
		if errors.Is(err, store.ErrAlreadyWatching) {
			RespondWithError(w, http.StatusConflict, "Already watching this creator")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to create watch")
		return
	}
	RespondWithJSON(w, http.StatusCreated, toWatchResponse(sub))
}

func (s *Server) handleRemoveWatch(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	// The identifier is usually a display name and may arrive escaped.
	identifier, err := url.PathUnescape(chi.URLParam(r, "identifier"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid identifier")
		return
	}

	key, err := s.app.Store().Remove(groupID, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotWatching) {
			RespondWithError(w, http.StatusNotFound, "Not watching this creator")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to remove watch")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"removed": key})
}

func (s *Server) handleRecheckAll(w http.ResponseWriter, r *http.Request) {
	err := s.app.JobManager().RunJob(jobs.JobWatchReconcile, s.app)
	if err != nil {
		RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Re-check has been initiated."})
}
