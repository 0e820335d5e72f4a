// Package api exposes the settlement engine over HTTP: JSON endpoints
// for the engine's entry points and a WebSocket feed of settlement
// events. Caller identity is an explicit request field; the engine
// performs all authorization against it.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"swapchain/internal/domain"
	"swapchain/internal/observability"
	"swapchain/internal/settlement"
)

// Server routes HTTP requests to the settlement engine.
type Server struct {
	engine  *settlement.Engine
	hub     *Hub
	logger  *log.Logger
	metrics *observability.Metrics
	mux     *http.ServeMux
}

// NewServer creates an API server. hub may be nil to disable the feed;
// metrics may be nil.
func NewServer(engine *settlement.Engine, hub *Hub, metrics *observability.Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		engine:  engine,
		hub:     hub,
		logger:  logger,
		metrics: metrics,
		mux:     http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /orders", s.instrument("/orders", s.handleCreateOrder))
	s.mux.HandleFunc("GET /orders", s.instrument("/orders", s.handleListOrders))
	s.mux.HandleFunc("GET /orders/{id}", s.instrument("/orders/{id}", s.handleGetOrder))
	s.mux.HandleFunc("POST /orders/{id}/fill", s.instrument("/orders/{id}/fill", s.handleFillOrder))
	s.mux.HandleFunc("POST /orders/{id}/cancel", s.instrument("/orders/{id}/cancel", s.handleCancelOrder))
	s.mux.HandleFunc("GET /escrow/{asset}", s.instrument("/escrow/{asset}", s.handleEscrowBalance))
	s.mux.HandleFunc("GET /owner", s.instrument("/owner", s.handleOwner))
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	if hub != nil {
		s.mux.HandleFunc("GET /ws", hub.ServeWS)
	}

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

//
// Request/response types
//

type createOrderRequest struct {
	Maker     string `json:"maker"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  uint64 `json:"amount_in"`
	AmountOut uint64 `json:"amount_out"`
}

type createOrderResponse struct {
	ID uint64 `json:"id"`
}

type fillOrderRequest struct {
	Taker string `json:"taker"`
}

type cancelOrderRequest struct {
	Caller string `json:"caller"`
}

type orderResponse struct {
	ID        uint64 `json:"id"`
	Maker     string `json:"maker"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  uint64 `json:"amount_in"`
	AmountOut uint64 `json:"amount_out"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

type escrowResponse struct {
	Asset   string `json:"asset"`
	Holding uint64 `json:"holding"`
}

type ownerResponse struct {
	Owner string `json:"owner"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// wsEventMessage is the WebSocket wire format of a settlement event.
type wsEventMessage struct {
	Type       string `json:"type"`
	OrderID    uint64 `json:"order_id"`
	Maker      string `json:"maker"`
	Taker      string `json:"taker,omitempty"`
	TokenIn    string `json:"token_in"`
	TokenOut   string `json:"token_out"`
	AmountIn   uint64 `json:"amount_in"`
	AmountOut  uint64 `json:"amount_out"`
	Status     string `json:"status"`
	OccurredAt int64  `json:"occurred_at"`
}

func eventMessage(e domain.SettlementEvent) wsEventMessage {
	return wsEventMessage{
		Type:       string(e.Type),
		OrderID:    uint64(e.OrderID),
		Maker:      string(e.Maker),
		Taker:      string(e.Taker),
		TokenIn:    string(e.TokenIn),
		TokenOut:   string(e.TokenOut),
		AmountIn:   e.AmountIn,
		AmountOut:  e.AmountOut,
		Status:     string(e.Status),
		OccurredAt: e.OccurredAt,
	}
}

func orderToResponse(o *domain.Order) orderResponse {
	return orderResponse{
		ID:        uint64(o.ID),
		Maker:     string(o.Maker),
		TokenIn:   string(o.TokenIn),
		TokenOut:  string(o.TokenOut),
		AmountIn:  o.AmountIn,
		AmountOut: o.AmountOut,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

//
// Handlers
//

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	maker, err := domain.ParseIdentity(req.Maker)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "maker: "+err.Error())
		return
	}
	tokenIn, err := domain.ParseAssetID(req.TokenIn)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "token_in: "+err.Error())
		return
	}
	tokenOut, err := domain.ParseAssetID(req.TokenOut)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "token_out: "+err.Error())
		return
	}

	id, err := s.engine.DepositAndCreateOrder(r.Context(), maker, tokenIn, tokenOut, req.AmountIn, req.AmountOut)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, createOrderResponse{ID: uint64(id)})
}

func (s *Server) handleFillOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := s.orderID(w, r)
	if !ok {
		return
	}

	var req fillOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	taker, err := domain.ParseIdentity(req.Taker)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "taker: "+err.Error())
		return
	}

	if err := s.engine.FillOrder(r.Context(), id, taker); err != nil {
		s.writeEngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := s.orderID(w, r)
	if !ok {
		return
	}

	var req cancelOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	caller, err := domain.ParseIdentity(req.Caller)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "caller: "+err.Error())
		return
	}

	if err := s.engine.CancelOrder(r.Context(), id, caller); err != nil {
		s.writeEngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := s.orderID(w, r)
	if !ok {
		return
	}

	order, err := s.engine.GetOrder(r.Context(), id)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, orderToResponse(order))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.StatusOpen
	}
	if !status.Valid() {
		s.writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	orders, err := s.engine.ListOrders(r.Context(), status)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderToResponse(o))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleEscrowBalance(w http.ResponseWriter, r *http.Request) {
	asset, err := domain.ParseAssetID(r.PathValue("asset"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "asset: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, escrowResponse{
		Asset:   string(asset),
		Holding: s.engine.EscrowBalance(asset),
	})
}

func (s *Server) handleOwner(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, ownerResponse{Owner: string(s.engine.Owner())})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

//
// Helpers
//

// orderID parses the {id} path value, writing a 400 on failure.
func (s *Server) orderID(w http.ResponseWriter, r *http.Request) (domain.OrderID, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		s.writeError(w, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return domain.OrderID(id), true
}

// writeEngineError maps engine error kinds to HTTP status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, settlement.ErrInvalidOrder):
		status = http.StatusBadRequest
	case errors.Is(err, settlement.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, settlement.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, settlement.ErrOrderNotOpen):
		status = http.StatusConflict
	case errors.Is(err, settlement.ErrTransferFailed):
		status = http.StatusUnprocessableEntity
	default:
		s.logger.Printf("internal error: %v", err)
		status = http.StatusInternalServerError
	}

	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

// instrument records request durations per route.
func (s *Server) instrument(route string, h http.HandlerFunc) http.HandlerFunc {
	if s.metrics == nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		s.metrics.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	}
}
