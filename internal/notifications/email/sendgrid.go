// Package email delivers deterioration alerts through the SendGrid v3 Mail
// Send API. Each monitored event carries its own API key, so the dispatcher
// authenticates per call rather than holding a single service credential.
package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"fairhour/internal/external"
	"fairhour/internal/types"
)

// sendGridAPIBase is the default SendGrid API base URL.
// Overridable in tests via DispatcherConfig.BaseURL.
const sendGridAPIBase = "https://api.sendgrid.com"

// DispatcherConfig holds the configuration for creating a SendGridDispatcher.
type DispatcherConfig struct {
	FromAddress string
	FromName    string
	BaseURL     string // Override for testing; defaults to sendGridAPIBase
	Logger      *slog.Logger
}

// SendGridDispatcher implements types.NotificationDispatcher by making direct
// HTTP calls to the SendGrid v3 Mail Send API through BaseClient. All
// requests inherit the shared resilience behavior (circuit breaker, retries,
// error mapping), and httptest servers slot in via BaseURL.
type SendGridDispatcher struct {
	base     *external.BaseClient
	exporter types.CalendarExporter
	from     sendGridAddress
	baseURL  string
	logger   *slog.Logger
}

// NewSendGridDispatcher creates a dispatcher with a pre-configured BaseClient.
// The exporter renders the calendar attachment for alternative slots; a nil
// exporter disables attachments.
func NewSendGridDispatcher(base *external.BaseClient, exporter types.CalendarExporter, cfg DispatcherConfig) *SendGridDispatcher {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = sendGridAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &SendGridDispatcher{
		base:     base,
		exporter: exporter,
		from:     sendGridAddress{Email: cfg.FromAddress, Name: cfg.FromName},
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		logger:   logger,
	}
}

// ---------------------------------------------------------------------------
// NotificationDispatcher Implementation
// ---------------------------------------------------------------------------

// Send delivers the deterioration alert to the payload's contact address,
// authenticating with the event's own credential.
//
// Error mapping:
//   - 403 Forbidden -> types.ErrCodeEmailBlocked (recipient on suppression list)
//   - 429 Too Many Requests -> handled by BaseClient (retry + ErrCodeUpstreamRateLimited)
//   - 5xx -> handled by BaseClient (retry + ErrCodeUpstreamUnavailable)
//   - Other 4xx -> types.ErrCodeUpstreamEmailProvider
func (d *SendGridDispatcher) Send(ctx context.Context, payload types.DeteriorationPayload, credential types.SecretString) error {
	mail := d.buildMailPayload(payload)

	body, err := json.Marshal(mail)
	if err != nil {
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to marshal SendGrid mail payload",
			err,
		)
	}

	reqURL := d.baseURL + "/v3/mail/send"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create SendGrid mail send request",
			err,
		)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential.Unmask())

	resp, err := d.base.Do(req)
	if err != nil {
		return d.wrapTransportError(err)
	}
	defer resp.Body.Close()

	// SendGrid returns 202 Accepted on success.
	if resp.StatusCode == http.StatusAccepted {
		d.logger.InfoContext(ctx, "deterioration alert delivered",
			"contact", payload.Contact,
			"mode", payload.Mode,
			"message_id", resp.Header.Get("X-Message-Id"),
		)
		return nil
	}

	return d.handleErrorResponse(resp)
}

// ---------------------------------------------------------------------------
// Payload Construction
// ---------------------------------------------------------------------------

// sendGridMailPayload represents the SendGrid v3 mail/send JSON request body.
type sendGridMailPayload struct {
	Personalizations []sendGridPersonalization `json:"personalizations"`
	From             sendGridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendGridContent         `json:"content"`
	Attachments      []sendGridAttachment      `json:"attachments,omitempty"`
}

type sendGridPersonalization struct {
	To []sendGridAddress `json:"to"`
}

type sendGridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendGridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type sendGridAttachment struct {
	Content     string `json:"content"` // base64
	Type        string `json:"type"`
	Filename    string `json:"filename"`
	Disposition string `json:"disposition"`
}

// buildMailPayload maps the domain payload to the SendGrid v3 request body.
// When an alternative slot exists and an exporter is configured, a calendar
// invite for the new slot is attached.
func (d *SendGridDispatcher) buildMailPayload(payload types.DeteriorationPayload) sendGridMailPayload {
	mail := sendGridMailPayload{
		Personalizations: []sendGridPersonalization{
			{To: []sendGridAddress{{Email: payload.Contact}}},
		},
		From:    d.from,
		Subject: buildSubject(payload),
		Content: []sendGridContent{
			{Type: "text/plain", Value: buildBody(payload)},
		},
	}

	if payload.Alternative != nil && d.exporter != nil {
		ics := d.exporter.Export(types.CalendarInvite{
			Title:       fmt.Sprintf("%s (rescheduled)", modeLabel(payload.Mode)),
			Start:       payload.Alternative.Time,
			Duration:    durationOf(payload),
			Description: fmt.Sprintf("Conditions score %.1f, up from %.1f at the original time.", payload.Alternative.Score, payload.CurrentScore),
			Location:    payload.Location.DisplayName,
		})
		mail.Attachments = []sendGridAttachment{
			{
				Content:     base64.StdEncoding.EncodeToString(ics),
				Type:        "text/calendar",
				Filename:    "alternative-slot.ics",
				Disposition: "attachment",
			},
		}
	}

	return mail
}

// ---------------------------------------------------------------------------
// Error Handling
// ---------------------------------------------------------------------------

// sendGridErrorResponse represents the JSON error body returned by SendGrid.
type sendGridErrorResponse struct {
	Errors []struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"errors"`
}

// handleErrorResponse reads a SendGrid error response and maps it to a
// types.AppError.
func (d *SendGridDispatcher) handleErrorResponse(resp *http.Response) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("SendGrid returned status %d and response body was unreadable", resp.StatusCode),
			readErr,
		)
	}

	var sgErr sendGridErrorResponse
	errMsg := string(body)
	if jsonErr := json.Unmarshal(body, &sgErr); jsonErr == nil && len(sgErr.Errors) > 0 {
		errMsg = sgErr.Errors[0].Message
	}

	switch {
	case resp.StatusCode == http.StatusForbidden:
		// Recipient is on a suppression list / key lacks send permission.
		return types.NewAppError(
			types.ErrCodeEmailBlocked,
			fmt.Sprintf("SendGrid blocked delivery: %s", errMsg),
			nil,
		)
	default:
		return types.NewAppError(
			types.ErrCodeUpstreamEmailProvider,
			fmt.Sprintf("SendGrid error (%d): %s", resp.StatusCode, errMsg),
			nil,
		)
	}
}

// wrapTransportError passes through BaseClient AppErrors (circuit breaker,
// exhausted retries) and wraps anything else as a provider failure.
func (d *SendGridDispatcher) wrapTransportError(err error) error {
	if _, ok := err.(*types.AppError); ok {
		return err
	}
	return types.NewAppError(
		types.ErrCodeUpstreamEmailProvider,
		fmt.Sprintf("SendGrid request failed: %v", err),
		err,
	)
}

// Compile-time assertion that SendGridDispatcher satisfies NotificationDispatcher.
var _ types.NotificationDispatcher = (*SendGridDispatcher)(nil)
