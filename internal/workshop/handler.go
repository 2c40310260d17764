package workshop

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"workshop-backend/internal/conversation"
	"workshop-backend/internal/document"
	"workshop-backend/internal/generation"
	"workshop-backend/internal/history"
	"workshop-backend/internal/shared/server/middleware"
	"workshop-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the session manager.
type Handler struct {
	Manager *Manager
}

// NewHandler constructs a Handler.
func NewHandler(m *Manager) *Handler {
	return &Handler{Manager: m}
}

// RegisterRoutes attaches workshop routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	// Generation-triggering routes share a token bucket per client.
	limited := middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"GENERATE": {Rate: 1, Burst: 5},
		},
		DefaultGroup: "GENERATE",
	})

	rg.POST("/workshops", h.create)
	rg.GET("/workshops", h.list)
	rg.GET("/workshops/:id", h.get)
	rg.GET("/workshops/:id/document", h.document)
	rg.PUT("/workshops/:id/brief", h.setBrief)
	rg.PUT("/workshops/:id/sections/:title", h.editSection)
	rg.POST("/workshops/:id/sections/:title/confirm", h.confirmSection)
	rg.POST("/workshops/:id/sections/:title/generate", limited, h.generateSection)
	rg.POST("/workshops/:id/sections/:title/cancel", h.cancelGeneration)
	rg.GET("/workshops/:id/messages", h.messages)
	rg.POST("/workshops/:id/messages", limited, h.sendMessage)
	rg.POST("/workshops/:id/messages/cancel", h.cancelTurn)
	rg.GET("/workshops/:id/history", h.history)
	rg.GET("/workshops/:id/history/diff", h.diff)
	rg.GET("/workshops/:id/export", h.export)
	rg.GET("/workshops/:id/stream", h.stream)
}

type createRequest struct {
	Brief string `json:"brief"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	session := h.Manager.Create(req.Brief)
	respond.JSON(c, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) list(c *gin.Context) {
	sessions := h.Manager.List()
	out := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionResponse(session))
	}
	respond.JSON(c, http.StatusOK, gin.H{"workshops": out})
}

func (h *Handler) get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	respond.JSON(c, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) document(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	respond.JSON(c, http.StatusOK, toDocumentResponse(session.Document()))
}

type briefRequest struct {
	Brief string `json:"brief"`
}

func (h *Handler) setBrief(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req briefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	session.SetBrief(req.Brief)
	respond.JSON(c, http.StatusOK, toDocumentResponse(session.Document()))
}

type editRequest struct {
	Content string `json:"content"`
}

func (h *Handler) editSection(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := session.EditSection(c.Param("title"), req.Content); err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toDocumentResponse(session.Document()))
}

func (h *Handler) confirmSection(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.ConfirmSection(c.Param("title")); err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toDocumentResponse(session.Document()))
}

func (h *Handler) generateSection(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	task, err := session.Generate(c.Param("title"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusAccepted, taskResponse{
		TaskID:  task.ID,
		Section: task.Section,
		State:   string(task.State()),
	})
}

func (h *Handler) cancelGeneration(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.CancelGeneration(c.Param("title")); err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"cancelled": true})
}

func (h *Handler) messages(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"messages": toMessageResponses(session.Messages())})
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	userID, turnID, err := session.SendMessage(req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusAccepted, turnResponse{
		UserMessageID:      userID,
		AssistantMessageID: turnID,
	})
}

func (h *Handler) cancelTurn(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := session.CancelTurn(); err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"aborted": true})
}

func (h *Handler) history(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer", nil)
			return
		}
		limit = parsed
	}
	respond.JSON(c, http.StatusOK, gin.H{"snapshots": toSnapshotResponses(session.History(limit))})
}

func (h *Handler) diff(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	from, err := strconv.ParseUint(c.Query("from"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "from must be a sequence number", nil)
		return
	}
	to, err := strconv.ParseUint(c.Query("to"), 10, 64)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "to must be a sequence number", nil)
		return
	}
	delta, err := session.Diff(from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, delta)
}

func (h *Handler) export(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	html, err := ExportHTML(session.Document())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render document", nil)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (h *Handler) session(c *gin.Context) (*Session, bool) {
	session, err := h.Manager.Get(c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "session_not_found", "workshop session not found", nil)
		return nil, false
	}
	return session, true
}

// writeError maps domain errors onto the standardized error body. The
// precondition failures carry stable codes the UI keys its explanations on.
func writeError(c *gin.Context, err error) {
	var unmet *generation.DependencyUnmetError
	switch {
	case errors.As(err, &unmet):
		respond.Error(c, http.StatusConflict, "dependency_unmet", unmet.Error(), gin.H{"missing": unmet.Missing})
	case errors.Is(err, document.ErrSectionNotFound):
		respond.Error(c, http.StatusNotFound, "section_not_found", "section not found", nil)
	case errors.Is(err, document.ErrSectionLocked):
		respond.Error(c, http.StatusConflict, "section_locked", "section has a generation in progress", nil)
	case errors.Is(err, document.ErrNotGeneratable):
		respond.Error(c, http.StatusUnprocessableEntity, "not_generatable", "section does not support generation", nil)
	case errors.Is(err, document.ErrEmptySection):
		respond.Error(c, http.StatusUnprocessableEntity, "empty_section", "section has no content to confirm", nil)
	case errors.Is(err, generation.ErrInProgress):
		respond.Error(c, http.StatusConflict, "generation_in_progress", "section already has a generation in progress", nil)
	case errors.Is(err, generation.ErrNoActiveTask):
		respond.Error(c, http.StatusConflict, "no_active_task", "no generation task to cancel", nil)
	case errors.Is(err, conversation.ErrStreamBusy):
		respond.Error(c, http.StatusConflict, "stream_busy", "an assistant reply is still streaming", nil)
	case errors.Is(err, conversation.ErrTurnAlreadyOpen):
		respond.Error(c, http.StatusConflict, "turn_already_open", "an assistant turn is already open", nil)
	case errors.Is(err, conversation.ErrNotStreaming):
		respond.Error(c, http.StatusConflict, "not_streaming", "message is not streaming", nil)
	case errors.Is(err, ErrNoOpenTurn):
		respond.Error(c, http.StatusConflict, "no_open_turn", "no assistant turn to cancel", nil)
	case errors.Is(err, history.ErrSnapshotNotFound):
		respond.Error(c, http.StatusNotFound, "snapshot_not_found", "snapshot not retained", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "content is required", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
	}
}
