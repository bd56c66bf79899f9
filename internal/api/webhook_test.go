package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockpulse/pkg/errors"
)

type fakeProcessor struct {
	reply  string
	err    error
	userID string
	text   string
}

func (p *fakeProcessor) ProcessTurn(ctx context.Context, userID, text string) (string, error) {
	p.userID = userID
	p.text = text
	return p.reply, p.err
}

func postForm(t *testing.T, handler *WebhookHandler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)
	return rec
}

func TestWebhook_ReplyAsTwiML(t *testing.T) {
	processor := &fakeProcessor{reply: "AAPL is at $190.00 📈"}
	handler := NewWebhookHandler(processor)

	rec := postForm(t, handler, url.Values{
		"From": {"whatsapp:+15551234567"},
		"Body": {"what's AAPL at?"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<Response><Message>AAPL is at $190.00 📈</Message></Response>")

	assert.Equal(t, "+15551234567", processor.userID, "whatsapp: prefix is stripped")
	assert.Equal(t, "what's AAPL at?", processor.text)
}

func TestWebhook_EscapesXML(t *testing.T) {
	processor := &fakeProcessor{reply: `AAPL <up> & "holding"`}
	handler := NewWebhookHandler(processor)

	rec := postForm(t, handler, url.Values{
		"From": {"whatsapp:+15551234567"},
		"Body": {"hi"},
	})

	body := rec.Body.String()
	assert.Contains(t, body, "AAPL &lt;up&gt; &amp; &quot;holding&quot;")
	assert.NotContains(t, body, "<up>")
}

func TestWebhook_ProcessorError(t *testing.T) {
	processor := &fakeProcessor{err: errors.New("database down")}
	handler := NewWebhookHandler(processor)

	rec := postForm(t, handler, url.Values{
		"From": {"whatsapp:+15551234567"},
		"Body": {"hi"},
	})

	// Twilio still needs valid TwiML, never a 500
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.NotContains(t, rec.Body.String(), "database down")
}

func TestWebhook_MissingFields(t *testing.T) {
	processor := &fakeProcessor{reply: "should not be called"}
	handler := NewWebhookHandler(processor)

	rec := postForm(t, handler, url.Values{"Body": {"hi"}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "couldn't read that message")
	assert.Empty(t, processor.userID)
}

func TestWebhook_GetIsLivenessProbe(t *testing.T) {
	handler := NewWebhookHandler(&fakeProcessor{})

	req := httptest.NewRequest(http.MethodGet, "/whatsapp", nil)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "webhook is up")
}

func TestWebhook_MethodNotAllowed(t *testing.T) {
	handler := NewWebhookHandler(&fakeProcessor{})

	req := httptest.NewRequest(http.MethodDelete, "/whatsapp", nil)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
