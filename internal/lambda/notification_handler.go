package lambda

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	apperrors "github.com/DavidCuy/p2p-solution-sls-backend/internal/errors"
	"github.com/DavidCuy/p2p-solution-sls-backend/internal/httpclient"
)

// NotificationSentMessage is the body answered once a notification is handled.
const NotificationSentMessage = "Notification was sent"

// Notification is forwarded to the webhook.
type Notification struct {
	Source     string          `json:"source"`
	DetailType string          `json:"detail_type"`
	Detail     json.RawMessage `json:"detail"`
}

// NewNotificationHandler handles "Send Notification" events. When webhookURL
// is set the event detail is posted to it; a failed delivery is returned to
// the runtime so the event can be retried.
func NewNotificationHandler(client *httpclient.Client, webhookURL string, logger *slog.Logger) Handler {
	return HandlerFunc(func(ctx context.Context, event json.RawMessage) (any, error) {
		var bridgeEvent events.EventBridgeEvent
		if err := json.Unmarshal(event, &bridgeEvent); err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid notification event: %v", err)
		}

		if webhookURL == "" {
			logger.Debug("notification webhook not configured", slog.String("event_id", bridgeEvent.ID))
			return NewAPIResponse(NotificationSentMessage, http.StatusOK), nil
		}

		resp, err := client.PostJSON(ctx, webhookURL, Notification{
			Source:     bridgeEvent.Source,
			DetailType: bridgeEvent.DetailType,
			Detail:     bridgeEvent.Detail,
		})
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.ErrUnavailable, "notification webhook: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= http.StatusBadRequest {
			return nil, apperrors.Wrapf(
				apperrors.ErrUnavailable,
				"notification webhook answered %d", resp.StatusCode,
			)
		}

		return NewAPIResponse(NotificationSentMessage, http.StatusOK), nil
	})
}
