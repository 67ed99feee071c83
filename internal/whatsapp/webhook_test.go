package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResponder struct {
	phone string
	text  string
	reply string
}

func (s *stubResponder) Handle(_ context.Context, phone, text string) string {
	s.phone = phone
	s.text = text
	return s.reply
}

type stubSender struct {
	phone string
	text  string
	err   error
}

func (s *stubSender) SendText(_ context.Context, phone, text string) error {
	s.phone = phone
	s.text = text
	return s.err
}

func newTestServer(t *testing.T, responder Responder, sender Sender) *httptest.Server {
	t.Helper()
	handler := NewHandler(responder, sender, "secret-token", zerolog.Nop())
	srv := httptest.NewServer(handler.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func inboundEvent(from, body string) string {
	return fmt.Sprintf(`{
		"entry": [{
			"changes": [{
				"value": {
					"messages": [{"from": %q, "text": {"body": %q}}]
				}
			}]
		}]
	}`, from, body)
}

func TestWebhookVerification(t *testing.T) {
	srv := newTestServer(t, &stubResponder{}, nil)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"valid handshake", "hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", http.StatusOK, "12345"},
		{"wrong token", "hub.mode=subscribe&hub.verify_token=nope&hub.challenge=12345", http.StatusForbidden, ""},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=12345", http.StatusForbidden, ""},
		{"no params", "", http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/webhook?" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, readAll(t, resp))
			}
		})
	}
}

func TestWebhookRejectsVerificationWithEmptyToken(t *testing.T) {
	handler := NewHandler(&stubResponder{}, nil, "", zerolog.Nop())
	srv := httptest.NewServer(handler.Routes())
	defer srv.Close()

	// An unset verify token must never accept a handshake, even one that
	// "matches" the empty string.
	resp, err := http.Get(srv.URL + "/webhook?hub.mode=subscribe&hub.verify_token=&hub.challenge=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestWebhookInboundMessage(t *testing.T) {
	responder := &stubResponder{reply: "✅ Bought 10x PETR4 at R$ 37.50."}
	sender := &stubSender{}
	srv := newTestServer(t, responder, sender)

	resp, err := http.Post(srv.URL+"/webhook", "application/json",
		strings.NewReader(inboundEvent("5511999990000", "buy PETR4 10")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeStatus(t, resp))

	assert.Equal(t, "5511999990000", responder.phone)
	assert.Equal(t, "buy PETR4 10", responder.text)
	assert.Equal(t, "5511999990000", sender.phone)
	assert.Equal(t, responder.reply, sender.text)
}

func TestWebhookInboundWithoutSender(t *testing.T) {
	responder := &stubResponder{reply: "hello"}
	srv := newTestServer(t, responder, nil)

	resp, err := http.Post(srv.URL+"/webhook", "application/json",
		strings.NewReader(inboundEvent("5511999990000", "help")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "help", responder.text)
}

func TestWebhookIgnoresNonMessageEvents(t *testing.T) {
	responder := &stubResponder{}
	srv := newTestServer(t, responder, nil)

	// A delivery-status event has entries but no messages.
	statusEvent := `{"entry":[{"changes":[{"value":{"statuses":[{"status":"delivered"}]}}]}]}`
	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader(statusEvent))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ignored", decodeStatus(t, resp))
	assert.Empty(t, responder.text, "responder must not run for non-message events")
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	srv := newTestServer(t, &stubResponder{}, nil)

	resp, err := http.Post(srv.URL+"/webhook", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebhookHomeAndHealth(t *testing.T) {
	srv := newTestServer(t, &stubResponder{}, nil)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readAll(t, resp), "Cartola de Investimentos bot is up!")

	health, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	prom, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer prom.Body.Close()
	assert.Equal(t, http.StatusOK, prom.StatusCode)
}

func TestClientSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody outboundMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		Token:   "tok",
		PhoneID: "12345",
		APIBase: srv.URL,
		Logger:  zerolog.Nop(),
	})
	require.True(t, client.Configured())

	err := client.SendText(context.Background(), "5511999990000", "hello there")
	require.NoError(t, err)

	assert.Equal(t, "/12345/messages", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "whatsapp", gotBody.MessagingProduct)
	assert.Equal(t, "5511999990000", gotBody.To)
	assert.Equal(t, "text", gotBody.Type)
	assert.Equal(t, "hello there", gotBody.Text.Body)
}

func TestClientSendTextRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		Token:   "tok",
		PhoneID: "12345",
		APIBase: srv.URL,
		Timeout: 2 * time.Second,
		Logger:  zerolog.Nop(),
	})

	err := client.SendText(context.Background(), "5511999990000", "eventually delivered")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestClientSendTextRequiresCredentials(t *testing.T) {
	client := NewClient(ClientConfig{Logger: zerolog.Nop()})
	assert.False(t, client.Configured())

	err := client.SendText(context.Background(), "5511999990000", "x")
	assert.Error(t, err)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func decodeStatus(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["status"]
}
