package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/office-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/sse"
	"github.com/go-chi/httplog/v3"
)

// Subscriber is the part of the SSE hub the stream endpoint needs.
type Subscriber interface {
	Subscribe(channel string) (<-chan sse.Event, func())
	SubscriberCount(channel string) int
}

// NotificationHandler serves the realtime attendance stream
type NotificationHandler interface {
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	hub        Subscriber
	jwtService jwt.Service
	keepalive  time.Duration
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(hub Subscriber, jwtService jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
		keepalive:  30 * time.Second,
	}
}

// streamChannel picks the channel a caller listens on: supervisors see the
// supervisors channel, everyone else only their own employee channel.
func streamChannel(role user.Role, employeeID *string) (string, error) {
	if user.HasPermission(role, user.PermissionStreamSubscribe) {
		return notification.ChannelSupervisors, nil
	}
	if employeeID == nil || *employeeID == "" {
		return "", user.ErrEmployeeProfileRequired
	}
	return notification.EmployeeChannel(*employeeID), nil
}

// GetStreamToken generates a short-lived token for SSE connections
func (h *notificationHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	caller, err := user.CallerFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if _, err := streamChannel(caller.Role, caller.EmployeeID); err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(jwt.SSEClaims{
		UserID:     caller.UserID,
		EmployeeID: caller.EmployeeID,
		Role:       caller.Role,
	})
	if err != nil {
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, notification.StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream handles SSE connection for real-time attendance events
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot set headers, so the token travels in the query
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	claims, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}

	channel, err := streamChannel(claims.Role, claims.EmployeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(channel)
	defer cleanup()

	httplog.SetAttrs(r.Context(),
		slog.String("stream_channel", channel),
		slog.Int("stream_subscribers", h.hub.SubscriberCount(channel)),
	)

	if err := response.Event(w, "connected", map[string]string{"status": "connected", "channel": channel}); err != nil {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := response.Event(w, event.Event, event.Data); err != nil {
				continue
			}
			flusher.Flush()

		case <-keepalive.C:
			if err := response.Event(w, "ping", map[string]int64{"timestamp": time.Now().Unix()}); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
