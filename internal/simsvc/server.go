package simsvc

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"traderterm/internal/oms"
)

// Server exposes the simulated order service over HTTP.
type Server struct {
	manager *Manager
	log     *slog.Logger
}

// NewServer creates a server around the given manager.
func NewServer(manager *Manager, log *slog.Logger) *Server {
	return &Server{manager: manager, log: log}
}

// Handler returns the route table. The paths mirror the real order service,
// including the legacy URL-encoded form endpoint.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/orders", s.createOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders", s.listOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id:[0-9]+}", s.getOrder).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id:[0-9]+}", s.deleteOrder).Methods(http.MethodDelete)
	r.HandleFunc("/executions", s.listExecutions).Methods(http.MethodGet)
	r.HandleFunc("/executions/{id:[0-9]+}", s.getExecution).Methods(http.MethodGet)
	r.HandleFunc("/securitydefinitionrequest", s.createSecDef).Methods(http.MethodPost)
	r.HandleFunc("/order", s.createOrderForm).Methods(http.MethodPost)
	return r
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req oms.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	order := s.manager.CreateOrder(req)
	s.log.Info("order created", "id", order.ID, "symbol", order.Symbol)
	writeJSON(w, order)
}

func (s *Server) createOrderForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	maturityDay, _ := strconv.Atoi(r.PostFormValue("maturity_day"))
	putOrCall, _ := strconv.Atoi(r.PostFormValue("put_or_call"))
	req := oms.CreateOrderRequest{
		Side:              r.PostFormValue("side"),
		Quantity:          json.Number(r.PostFormValue("quantity")),
		Symbol:            r.PostFormValue("symbol"),
		SecurityType:      r.PostFormValue("security_type"),
		OrdType:           r.PostFormValue("ordType"),
		Price:             r.PostFormValue("price"),
		StopPrice:         r.PostFormValue("stopPrice"),
		Account:           r.PostFormValue("account"),
		TIF:               r.PostFormValue("tif"),
		Session:           r.PostFormValue("session"),
		MaturityMonthYear: r.PostFormValue("maturity_month_year"),
		MaturityDay:       maturityDay,
		PutOrCall:         putOrCall,
		StrikePrice:       r.PostFormValue("strike_price"),
	}
	order := s.manager.CreateOrder(req)
	s.log.Info("order created via form", "id", order.ID, "symbol", order.Symbol)
	writeJSON(w, order)
}

func (s *Server) listOrders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.manager.Orders())
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, ok := s.manager.Order(pathID(r))
	if !ok {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	writeJSON(w, order)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.CancelOrder(pathID(r)); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listExecutions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.manager.Executions())
}

func (s *Server) getExecution(w http.ResponseWriter, r *http.Request) {
	exec, ok := s.manager.Execution(pathID(r))
	if !ok {
		http.Error(w, "execution not found", http.StatusNotFound)
		return
	}
	writeJSON(w, exec)
}

func (s *Server) createSecDef(w http.ResponseWriter, r *http.Request) {
	var req oms.SecurityDefinitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Info("security-definition request received",
		"symbol", req.Symbol, "type", req.SecurityRequestType)
	w.WriteHeader(http.StatusOK)
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
