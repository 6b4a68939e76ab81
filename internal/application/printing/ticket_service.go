package printing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/ordering"
	"github.com/restaurant/backend/internal/domain/restaurant"
	"github.com/restaurant/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ErrPrintingDisabled is returned when no PDF renderer is configured
var ErrPrintingDisabled = shared.NewDomainError("PRINTING_DISABLED", "Kitchen ticket printing is not enabled")

// PDFRenderer converts an HTML document to PDF on paper of the given width
type PDFRenderer interface {
	RenderPDF(ctx context.Context, html string, paperWidthMM float64) ([]byte, error)
}

// ObjectStorage stores rendered tickets
type ObjectStorage interface {
	PutObject(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

// TicketConfig holds ticket layout and storage settings
type TicketConfig struct {
	PaperWidthMM  float64
	StoragePrefix string
	Location      *time.Location
}

// TicketResponse describes a stored ticket
type TicketResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	URL         string    `json:"url"`
	Key         string    `json:"key"`
	Size        int       `json:"size"`
}

// TicketService renders kitchen tickets and stores them as PDF
type TicketService struct {
	orderRepo      ordering.OrderRepository
	restaurantRepo restaurant.RestaurantRepository
	renderer       PDFRenderer
	storage        ObjectStorage
	config         TicketConfig
	logger         *zap.Logger
}

// NewTicketService creates a new TicketService. renderer may be nil when
// printing is disabled.
func NewTicketService(
	orderRepo ordering.OrderRepository,
	restaurantRepo restaurant.RestaurantRepository,
	renderer PDFRenderer,
	storage ObjectStorage,
	config TicketConfig,
	logger *zap.Logger,
) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PaperWidthMM <= 0 {
		config.PaperWidthMM = 80
	}
	if config.StoragePrefix == "" {
		config.StoragePrefix = "tickets"
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &TicketService{
		orderRepo:      orderRepo,
		restaurantRepo: restaurantRepo,
		renderer:       renderer,
		storage:        storage,
		config:         config,
		logger:         logger,
	}
}

// PreviewHTML returns the ticket as HTML without rendering a PDF
func (s *TicketService) PreviewHTML(ctx context.Context, restaurantID, orderID uuid.UUID) (string, error) {
	data, err := s.ticketData(ctx, restaurantID, orderID)
	if err != nil {
		return "", err
	}
	return RenderTicketHTML(*data)
}

// RenderTicket renders the kitchen ticket of an order to PDF, stores it and
// returns its URL
func (s *TicketService) RenderTicket(ctx context.Context, restaurantID, orderID uuid.UUID) (*TicketResponse, error) {
	if s.renderer == nil {
		return nil, ErrPrintingDisabled
	}

	data, err := s.ticketData(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	html, err := RenderTicketHTML(*data)
	if err != nil {
		return nil, err
	}

	pdf, err := s.renderer.RenderPDF(ctx, html, s.config.PaperWidthMM)
	if err != nil {
		s.logger.Error("Failed to render kitchen ticket",
			zap.String("order_number", data.OrderNumber),
			zap.Error(err))
		return nil, err
	}

	key := s.ticketKey(restaurantID, data.OrderNumber)
	url, err := s.storage.PutObject(ctx, key, "application/pdf", bytes.NewReader(pdf), int64(len(pdf)))
	if err != nil {
		return nil, fmt.Errorf("store ticket %s: %w", data.OrderNumber, err)
	}

	s.logger.Info("Kitchen ticket rendered",
		zap.String("restaurant_id", restaurantID.String()),
		zap.String("order_number", data.OrderNumber),
		zap.Int("bytes", len(pdf)))

	return &TicketResponse{
		OrderID:     orderID,
		OrderNumber: data.OrderNumber,
		URL:         url,
		Key:         key,
		Size:        len(pdf),
	}, nil
}

func (s *TicketService) ticketData(ctx context.Context, restaurantID, orderID uuid.UUID) (*TicketData, error) {
	order, err := s.orderRepo.FindByIDForRestaurant(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	r, err := s.restaurantRepo.FindByID(ctx, restaurantID)
	if err != nil {
		s.logger.Warn("Restaurant not found for ticket header", zap.Error(err))
		r = nil
	}
	data := NewTicketData(r, order, s.config.Location, s.config.PaperWidthMM)
	return &data, nil
}

// ticketKey is <prefix>/<restaurantID>/<orderNumber>.pdf; re-printing overwrites
func (s *TicketService) ticketKey(restaurantID uuid.UUID, orderNumber string) string {
	return fmt.Sprintf("%s/%s/%s.pdf", s.config.StoragePrefix, restaurantID, orderNumber)
}
