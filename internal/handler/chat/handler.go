package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	chatmodel "github.com/debunkbot/debunkbot/internal/model/chat"
	"github.com/debunkbot/debunkbot/internal/service/ai"
	"github.com/debunkbot/debunkbot/internal/service/history"
	"github.com/debunkbot/debunkbot/pkg/utils"
)

// Answerer runs the query-to-answer pipeline.
type Answerer interface {
	Answer(ctx context.Context, userID, query string) (*chatmodel.Answer, error)
}

// Handler exposes the chat endpoints. Authentication lives in front of this
// service; the caller-supplied user id is trusted as-is.
type Handler struct {
	pipeline Answerer
	ledger   history.Ledger
	logger   *zap.Logger
}

// New creates the chat handler.
func New(pipeline Answerer, ledger history.Ledger, logger *zap.Logger) *Handler {
	return &Handler{
		pipeline: pipeline,
		ledger:   ledger,
		logger:   logger,
	}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/chat/history", h.handleHistory)
	r.Post("/chat/clear", h.handleClear)
}

type chatResponse struct {
	Success          bool              `json:"success"`
	Response         *chatmodel.Answer `json:"response"`
	HistoryPersisted bool              `json:"historyPersisted"`
}

// handleChat runs the pipeline and, only on success, appends the user query
// and the bot answer to the ledger — exactly two messages, user first. A
// failed pipeline run appends nothing, so retries cannot duplicate history.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID  string `json:"userId"`
		Message string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	query := strings.TrimSpace(payload.Message)

	answer, err := h.pipeline.Answer(r.Context(), payload.UserID, query)
	if err != nil {
		h.respondPipelineError(w, payload.UserID, err)
		return
	}

	userMsg := chatmodel.Message{Text: query, IsFromUser: true}
	botMsg := chatmodel.Message{
		Text:            answer.CleanedText,
		IsFromUser:      false,
		AudioSegmentRef: answer.FirstSegmentRef(),
	}

	persisted := true
	if err := h.ledger.Append(r.Context(), payload.UserID, userMsg, botMsg); err != nil {
		// The answer was already computed; surface the storage failure
		// distinctly instead of discarding the result.
		persisted = false
		h.logger.Error("failed to persist chat exchange",
			zap.String("userId", payload.UserID),
			zap.Error(err))
	}

	utils.RespondJSON(w, http.StatusOK, chatResponse{
		Success:          true,
		Response:         answer,
		HistoryPersisted: persisted,
	})
}

func (h *Handler) respondPipelineError(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, ai.ErrEmptyQuery):
		utils.RespondError(w, http.StatusBadRequest, "message must not be empty")
	case errors.Is(err, ai.ErrMissingCredential):
		h.logger.Error("pipeline rejected request: upstream credential missing")
		utils.RespondError(w, http.StatusInternalServerError, "generative upstream is not configured")
	default:
		var upstreamErr *ai.UpstreamError
		if errors.As(err, &upstreamErr) {
			h.logger.Error("generative upstream call failed",
				zap.String("userId", userID),
				zap.Error(err))
			utils.RespondError(w, http.StatusBadGateway, "failed to generate a response")
			return
		}
		h.logger.Error("pipeline failed",
			zap.String("userId", userID),
			zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleHistory returns the user's complete ordered history.
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId query parameter is required")
		return
	}

	messages, err := h.ledger.ReadAll(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to read history", zap.String("userId", userID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to fetch chat history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": messages,
	})
}

// handleClear resets the user's whole history.
func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.UserID == "" {
		utils.RespondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if err := h.ledger.Clear(r.Context(), payload.UserID); err != nil {
		h.logger.Error("failed to clear history", zap.String("userId", payload.UserID), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to clear chat history")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "chat history cleared"})
}
