// Package httpserver is the serving harness over the engine: REST order
// intake, aggregated book snapshots, and a websocket trade stream. The
// engine's contract does not include any of this; it is glue for
// clients and tooling.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"hermes/domain/instrument"
	"hermes/domain/orderbook"
	"hermes/engine"
	"hermes/reporter"
)

type Server struct {
	eng    *engine.Engine
	hub    *Hub
	router *mux.Router
	scale  int32
	log    *zap.Logger
}

// NewServer serves the engine over hub. A nil hub gets a private one
// (no external trade stream wired).
func NewServer(eng *engine.Engine, hub *Hub, scale int32, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if hub == nil {
		hub = NewHub(log)
	}

	s := &Server{
		eng:    eng,
		hub:    hub,
		router: mux.NewRouter(),
		scale:  scale,
		log:    log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/instruments", s.handleInstruments).Methods(http.MethodGet)
	api.HandleFunc("/instruments/{symbol}/book", s.handleBook).Methods(http.MethodGet)
	api.HandleFunc("/orders", s.handleSubmitOrder).Methods(http.MethodPost)

	s.router.HandleFunc("/ws", s.hub.handleWS)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

// NewTradeStream returns a reporter that pushes every trade to the
// hub's websocket clients.
func NewTradeStream(hub *Hub, reg *instrument.Registry) engine.TradeReporter {
	return tradeStream{hub: hub, reg: reg}
}

type tradeStream struct {
	hub *Hub
	reg *instrument.Registry
}

func (ts tradeStream) OnTrade(t orderbook.Trade) {
	sym, ok := ts.reg.Symbol(t.Instrument)
	if !ok {
		return
	}
	b, err := json.Marshal(reporter.NewTradeEvent(t, sym))
	if err != nil {
		return
	}
	ts.hub.Broadcast(b)
}

// Run serves until ctx is cancelled, then drains with a short grace
// period.
func (s *Server) Run(ctx context.Context, addr string) error {
	go s.hub.run(ctx)

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.router)

	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// -------------------- Handlers --------------------

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"stats":  s.eng.Stats(),
	})
}

func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Registry().Symbols())
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	sym := mux.Vars(r)["symbol"]

	id, ok := s.eng.Registry().Lookup(sym)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown instrument "+sym)
		return
	}

	depth := 20
	if v := r.URL.Query().Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed depth "+v)
			return
		}
		depth = n
	}

	snap, err := s.eng.Depth(id, depth)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	view := BookView{
		Symbol: snap.Symbol,
		Bids:   make([]LevelView, 0, len(snap.Bids)),
		Asks:   make([]LevelView, 0, len(snap.Asks)),
	}
	for _, l := range snap.Bids {
		view.Bids = append(view.Bids, LevelView{Price: formatPrice(l.Price, s.scale), Qty: l.Qty, Orders: l.Orders})
	}
	for _, l := range snap.Asks {
		view.Asks = append(view.Asks, LevelView{Price: formatPrice(l.Price, s.scale), Qty: l.Qty, Orders: l.Orders})
	}

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body: "+err.Error())
		return
	}

	side, err := parseSide(req.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	price, err := parsePrice(req.Price, s.scale)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, ok := s.eng.Registry().Lookup(req.Symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown instrument "+req.Symbol)
		return
	}

	res, err := s.eng.Submit(side, id, req.Quantity, price)
	switch {
	case errors.Is(err, engine.ErrInvalidOrder):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, engine.ErrUnknownInstrument):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := SubmitOrderResponse{
		OrderID:        res.OrderID,
		RestingOrderID: res.RestingOrderID,
		Trades:         make([]TradeView, 0, len(res.Trades)),
	}
	for _, t := range res.Trades {
		resp.Trades = append(resp.Trades, tradeView(t, s.scale))
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg})
}
