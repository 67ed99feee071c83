package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"cartola-trader/internal/metrics"
)

// Responder handles one inbound command and returns the reply text.
type Responder interface {
	Handle(ctx context.Context, phone, text string) string
}

// Sender delivers a reply back to a player.
type Sender interface {
	SendText(ctx context.Context, phone, text string) error
}

// Handler is the WhatsApp Cloud API webhook endpoint.
type Handler struct {
	responder   Responder
	sender      Sender
	verifyToken string
	logger      zerolog.Logger
}

// NewHandler creates the webhook handler. sender may be nil, in which case
// replies are logged only (useful without Cloud API credentials).
func NewHandler(responder Responder, sender Sender, verifyToken string, logger zerolog.Logger) *Handler {
	return &Handler{
		responder:   responder,
		sender:      sender,
		verifyToken: verifyToken,
		logger:      logger.With().Str("component", "webhook").Logger(),
	}
}

// Routes builds the HTTP router: the Meta webhook pair plus health and
// metrics endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/", h.home)
	r.Get("/webhook", h.verify)
	r.Post("/webhook", h.receive)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

func (h *Handler) home(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Cartola de Investimentos bot is up!"))
}

// verify answers the Meta webhook subscription handshake.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken && h.verifyToken != "" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}
	h.logger.Warn().Str("mode", mode).Msg("webhook verification rejected")
	http.Error(w, "verification failed", http.StatusForbidden)
}

// webhookPayload mirrors the relevant slice of the Cloud API event shape.
type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// receive handles an inbound event: extract the message, dispatch the
// command, deliver the reply. Non-message events (delivery receipts, status
// updates) are acknowledged and ignored.
func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Warn().Err(err).Msg("undecodable webhook payload")
		http.Error(w, `{"error":"bad payload"}`, http.StatusBadRequest)
		return
	}

	phone, text, ok := extractMessage(payload)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	h.logger.Info().Str("phone", phone).Msg("inbound message")
	reply := h.responder.Handle(r.Context(), phone, text)

	if h.sender != nil {
		if err := h.sender.SendText(r.Context(), phone, reply); err != nil {
			h.logger.Error().Err(err).Str("phone", phone).Msg("failed to deliver reply")
		}
	} else {
		h.logger.Info().Str("phone", phone).Str("reply", reply).Msg("no sender configured, reply logged")
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func extractMessage(payload webhookPayload) (phone, text string, ok bool) {
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.From != "" {
					return msg.From, msg.Text.Body, true
				}
			}
		}
	}
	return "", "", false
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
