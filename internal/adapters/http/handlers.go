// Package http exposes the thin request/response surface around the
// coordinator: meeting lifecycle, summaries and AI chat.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/store"
	"github.com/dkeye/Meet/internal/summary"
)

type API struct {
	Coord      *app.Coordinator
	Summarizer *summary.Client
}

func NewAPI(coord *app.Coordinator, summarizer *summary.Client) *API {
	return &API{Coord: coord, Summarizer: summarizer}
}

type createMeetingRequest struct {
	HostUserID   string `json:"hostUserId" binding:"required"`
	HostUsername string `json:"hostUsername" binding:"required"`
	Title        string `json:"title" binding:"required"`
}

func (a *API) CreateMeeting(c *gin.Context) {
	var req createMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}

	id := domain.MeetingID(uuid.NewString())
	host := domain.Host{UserID: domain.UserID(req.HostUserID), Username: req.HostUsername}
	m, err := a.Coord.Store.Create(id, host, req.Title)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := store.MeetingRecord{
		ID:        m.ID,
		Host:      m.Host,
		Title:     m.Title,
		IsActive:  true,
		CreatedAt: m.CreatedAt,
	}
	if err := a.Coord.Store.Durable().Insert(c.Request.Context(), rec); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Str("meeting", string(id)).Msg("durable insert failed")
		a.Coord.Store.Remove(id)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"meetingId": m.ID,
		"title":     m.Title,
		"host":      m.Host,
		"createdAt": m.CreatedAt,
	})
}

func (a *API) GetMeeting(c *gin.Context) {
	id := domain.MeetingID(c.Param("id"))
	m, err := a.Coord.Store.GetOrLoad(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}
	snap, err := a.Coord.Snapshot(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"meetingId":    m.ID,
		"title":        m.Title,
		"host":         m.Host,
		"isActive":     m.IsActive,
		"participants": snap.Participants,
	})
}

type endMeetingRequest struct {
	UserID string `json:"userId" binding:"required"`
}

func (a *API) EndMeeting(c *gin.Context) {
	id := domain.MeetingID(c.Param("id"))
	var req endMeetingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}

	err := a.Coord.EndMeeting(c.Request.Context(), id, domain.UserID(req.UserID))
	switch {
	case errors.Is(err, store.ErrMeetingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
	case errors.Is(err, app.ErrUnauthorized):
		// Non-hosts get the same shape as a missing meeting.
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
	case err != nil:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"ended": true})
	}
}

func (a *API) GenerateSummary(c *gin.Context) {
	id := domain.MeetingID(c.Param("id"))
	snap, err := a.Coord.Snapshot(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}

	text, err := a.Summarizer.Summarize(c.Request.Context(), snap)
	if err != nil {
		status, reason := summaryFailure(err)
		c.JSON(status, gin.H{"error": reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": text})
}

type aiChatRequest struct {
	Question string `json:"question" binding:"required"`
}

func (a *API) ChatWithAI(c *gin.Context) {
	id := domain.MeetingID(c.Param("id"))
	var req aiChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_payload"})
		return
	}

	snap, err := a.Coord.Snapshot(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "meeting not found"})
		return
	}

	text, err := a.Summarizer.Chat(c.Request.Context(), snap, req.Question)
	if err != nil {
		status, reason := summaryFailure(err)
		c.JSON(status, gin.H{"error": reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": text})
}

// summaryFailure maps client errors onto reason codes the UI can act on.
func summaryFailure(err error) (int, string) {
	switch {
	case errors.Is(err, summary.ErrRateLimited):
		return http.StatusTooManyRequests, "rate-limited"
	case errors.Is(err, summary.ErrBadCredentials):
		return http.StatusBadGateway, "invalid-credentials"
	default:
		return http.StatusServiceUnavailable, "service-unavailable"
	}
}
