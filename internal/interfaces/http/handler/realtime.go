package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderingapp "github.com/restaurant/backend/internal/application/ordering"
	realtimeapp "github.com/restaurant/backend/internal/application/realtime"
	"github.com/restaurant/backend/internal/infrastructure/realtime"
	"go.uber.org/zap"
)

const defaultHeartbeat = 30 * time.Second

// StreamHub registers and releases event streams
type StreamHub interface {
	Subscribe(restaurantID uuid.UUID, orderNumber string) (*realtime.Client, error)
	Unsubscribe(c *realtime.Client)
}

// RealtimeHandler streams change events as server-sent events
type RealtimeHandler struct {
	BaseHandler
	hub          StreamHub
	orderService *orderingapp.OrderService
	logger       *zap.Logger
	heartbeat    time.Duration
}

// RealtimeOption configures the handler
type RealtimeOption func(*RealtimeHandler)

// WithRealtimeLogger sets the logger
func WithRealtimeLogger(logger *zap.Logger) RealtimeOption {
	return func(h *RealtimeHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithHeartbeat sets the heartbeat interval
func WithHeartbeat(interval time.Duration) RealtimeOption {
	return func(h *RealtimeHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(hub StreamHub, orderService *orderingapp.OrderService, opts ...RealtimeOption) *RealtimeHandler {
	h := &RealtimeHandler{
		hub:          hub,
		orderService: orderService,
		logger:       zap.NewNop(),
		heartbeat:    defaultHeartbeat,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stream godoc
// @Summary      Restaurant change feed
// @Description  Server-sent events for inserted and updated orders, menu items, categories and customers of the caller's restaurant. A heartbeat event is sent every 30 seconds.
// @Tags         realtime
// @Produce      text/event-stream
// @Success      200 {string} string "SSE stream"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /realtime/stream [get]
func (h *RealtimeHandler) Stream(c *gin.Context) {
	restaurantID, ok := h.restaurantScope(c)
	if !ok {
		return
	}
	h.serve(c, restaurantID, "")
}

// OrderStream godoc
// @Summary      Single order status stream
// @Description  Server-sent events for one order, used by the public tracking page
// @Tags         public
// @Produce      text/event-stream
// @Param        number path string true "Order number"
// @Success      200 {string} string "SSE stream"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /public/orders/{number}/stream [get]
func (h *RealtimeHandler) OrderStream(c *gin.Context) {
	order, err := h.orderService.GetByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.serve(c, order.RestaurantID, order.OrderNumber)
}

func (h *RealtimeHandler) serve(c *gin.Context, restaurantID uuid.UUID, orderNumber string) {
	client, err := h.hub.Subscribe(restaurantID, orderNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer h.hub.Unsubscribe(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	writeSSE(c.Writer, "connected", client.ID.String(),
		fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()))
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			writeSSE(c.Writer, "heartbeat", "", fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()))
			c.Writer.Flush()
		case event, ok := <-client.Events():
			if !ok {
				return
			}
			if err := writeChange(c.Writer, event); err != nil {
				h.logger.Warn("Failed to encode change event", zap.Error(err))
				continue
			}
			c.Writer.Flush()
		}
	}
}

func writeChange(w io.Writer, event realtimeapp.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	writeSSE(w, "change", event.RecordID.String(), string(data))
	return nil
}

func writeSSE(w io.Writer, event, id, data string) {
	if event != "" {
		fmt.Fprintf(w, "event: %s\n", event)
	}
	if id != "" {
		fmt.Fprintf(w, "id: %s\n", id)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
