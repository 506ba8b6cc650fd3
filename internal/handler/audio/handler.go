package audio

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/debunkbot/debunkbot/pkg/utils"
)

// Handler proxies speech-segment URLs server-side so the browser never talks
// to the synthesis vendor directly. It only fetches from the configured
// synthesis host.
type Handler struct {
	client      *http.Client
	allowedHost string
	logger      *zap.Logger
}

// New creates the audio proxy. allowedHost is the host part of the segment
// URLs the synthesizer emits; an empty value disables the host check.
func New(allowedHost string, timeout time.Duration, logger *zap.Logger) *Handler {
	return &Handler{
		client:      &http.Client{Timeout: timeout},
		allowedHost: allowedHost,
		logger:      logger,
	}
}

// RegisterRoutes mounts the audio routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/audio/proxy", h.handleProxy)
}

func (h *Handler) handleProxy(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		utils.RespondError(w, http.StatusBadRequest, "url query parameter is required")
		return
	}

	target, err := url.Parse(raw)
	if err != nil || (target.Scheme != "http" && target.Scheme != "https") {
		utils.RespondError(w, http.StatusBadRequest, "invalid url")
		return
	}
	if h.allowedHost != "" && target.Host != h.allowedHost {
		utils.RespondError(w, http.StatusBadRequest, "url host not allowed")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target.String(), nil)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid url")
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("failed to fetch audio segment", zap.String("url", target.String()), zap.Error(err))
		utils.RespondError(w, http.StatusBadGateway, "failed to fetch audio")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.logger.Error("audio segment fetch returned non-OK status",
			zap.String("url", target.String()),
			zap.Int("status", resp.StatusCode))
		utils.RespondError(w, http.StatusBadGateway, "failed to fetch audio")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Warn("audio proxy write interrupted", zap.Error(err))
	}
}
