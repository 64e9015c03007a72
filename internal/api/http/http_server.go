package http

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adrian-adduci/Algo-Driven-Trading/internal/api/dto"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/core"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/domain"
	"github.com/adrian-adduci/Algo-Driven-Trading/internal/middleware"
)

// Server is the HTTP transport over the matching engine. Callers marshal
// their own order representations into the engine's order kinds here; the
// core mandates no wire format.
type Server struct {
	eng         *core.Engine
	log         zerolog.Logger
	rl          *middleware.RateLimiter
	submittedID sync.Map // order-id deduplication
}

func NewServer(eng *core.Engine, rl *middleware.RateLimiter, log zerolog.Logger) *Server {
	return &Server{
		eng: eng,
		rl:  rl,
		log: log.With().Str("component", "http").Logger(),
	}
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if s.rl != nil {
		r.Use(s.rl.Middleware())
	}

	r.POST("/orders", s.submitOrder)
	r.POST("/orders/amend", s.amendOrder)
	r.POST("/orders/cancel", s.cancelOrder)
	r.GET("/orderbook", s.getOrderbook)
	return r
}

func (s *Server) Run(addr string) error {
	s.log.Info().Str("addr", addr).Msg("http server listening")
	return s.router().Run(addr)
}

func (s *Server) submitOrder(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orderID := req.OrderID
	if orderID == "" {
		orderID = uuid.NewString()
	}

	o, err := buildOrder(orderID, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Reserve the id only once the order is known to be valid, so a client
	// retrying a rejected request with the same id is not turned away.
	if req.OrderID != "" {
		if _, dup := s.submittedID.LoadOrStore(orderID, struct{}{}); dup {
			c.JSON(http.StatusConflict, gin.H{"error": "duplicate order", "order_id": orderID})
			return
		}
	}

	fills, err := s.eng.Submit(c.Request.Context(), o)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SubmitOrderResponse{
		OrderID:   o.ID,
		Fills:     convertFills(fills),
		Remaining: o.Quantity,
	})
}

func (s *Server) amendOrder(c *gin.Context) {
	var req dto.AmendOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	found, err := s.eng.Amend(c.Request.Context(), req.OrderID, req.NewQuantity)
	if err != nil {
		c.JSON(statusFor(err), dto.AmendOrderResponse{
			OrderID: req.OrderID,
			Amended: false,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, dto.AmendOrderResponse{
		OrderID: req.OrderID,
		Amended: found,
	})
}

func (s *Server) cancelOrder(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	found, err := s.eng.Cancel(c.Request.Context(), req.OrderID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.CancelOrderResponse{
		OrderID:   req.OrderID,
		Cancelled: found,
	})
}

func (s *Server) getOrderbook(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol query parameter required"})
		return
	}
	snap, err := s.eng.Snapshot(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderbookResponse{
		Symbol:    snap.Symbol,
		Bids:      convertOrders(snap.Bids),
		Asks:      convertOrders(snap.Asks),
		Timestamp: snap.Timestamp,
	})
}

// buildOrder routes the request through the validating domain constructor
// for its kind.
func buildOrder(id string, req *dto.SubmitOrderRequest) (*domain.Order, error) {
	now := time.Now()
	side := domain.Side(req.Side)
	switch req.Type {
	case dto.Limit:
		return domain.NewLimitOrder(id, req.Symbol, req.Quantity, req.Price, side, now)
	case dto.Market:
		return domain.NewMarketOrder(id, req.Symbol, req.Quantity, side, now)
	case dto.IOC:
		return domain.NewIOCOrder(id, req.Symbol, req.Quantity, req.Price, side, now)
	default:
		return nil, domain.ErrUndefinedOrderType
	}
}

// statusFor keeps the error kinds distinguishable on the wire. Upstream
// systems branch on them to decide order status transitions.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNonPositiveQuantity),
		errors.Is(err, domain.ErrNonPositivePrice),
		errors.Is(err, domain.ErrInvalidSide),
		errors.Is(err, domain.ErrUndefinedOrderType),
		errors.Is(err, domain.ErrUndefinedOrderSide):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNewQuantityNotSmaller):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func convertOrders(orders []domain.Order) []dto.Order {
	res := make([]dto.Order, len(orders))
	for i, o := range orders {
		res[i] = dto.Order{
			ID:        o.ID,
			Symbol:    o.Symbol,
			Side:      dto.Side(o.Side),
			Type:      dto.OrderType(o.Type),
			Price:     o.Price,
			Quantity:  o.Quantity,
			CreatedAt: o.CreatedAt,
		}
	}
	return res
}

func convertFills(fills []domain.Fill) []dto.Fill {
	res := make([]dto.Fill, len(fills))
	for i, f := range fills {
		res[i] = dto.Fill{
			ID:         f.ID,
			OrderID:    f.OrderID,
			Symbol:     f.Symbol,
			Side:       dto.Side(f.Side),
			Price:      f.Price,
			Quantity:   f.Quantity,
			Maker:      f.Maker,
			ExecutedAt: f.ExecutedAt,
		}
	}
	return res
}
