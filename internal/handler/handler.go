// Package handler exposes a circuit session over HTTP for a browser renderer.
// Every mutation answers with the full view so the client can redraw.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/edp1096/toy-circuit/internal/session"
	"github.com/edp1096/toy-circuit/pkg/circuit"
	"github.com/edp1096/toy-circuit/pkg/device"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

type TargetRequest struct {
	Series   int  `json:"series"`
	Parallel *int `json:"parallel,omitempty"`
}

type AddComponentRequest struct {
	Kind       string         `json:"kind"`
	Resistance float64        `json:"resistance"`
	Mode       string         `json:"mode"`
	Target     *TargetRequest `json:"target,omitempty"`
}

type MoveRequest struct {
	Series   int `json:"series"`
	Parallel int `json:"parallel"`
}

type VoltageRequest struct {
	Voltage float64 `json:"voltage"`
}

type SelectRequest struct {
	ID    int  `json:"id"`
	Multi bool `json:"multi"`
}

type CircuitHandler struct {
	sess    *session.Session
	started time.Time
}

func NewCircuitHandler(sess *session.Session) *CircuitHandler {
	return &CircuitHandler{sess: sess, started: time.Now()}
}

// Routes registers every endpoint on a new mux.
func (h *CircuitHandler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /circuit", h.GetCircuit)
	mux.HandleFunc("PUT /circuit/voltage", h.SetVoltage)
	mux.HandleFunc("POST /circuit/components", h.AddComponent)
	mux.HandleFunc("GET /circuit/components/{id}", h.GetComponent)
	mux.HandleFunc("DELETE /circuit/components/{id}", h.RemoveComponent)
	mux.HandleFunc("POST /circuit/components/{id}/move", h.MoveComponent)
	mux.HandleFunc("POST /circuit/selection", h.Select)
	mux.HandleFunc("DELETE /circuit/selection", h.ClearSelection)
	mux.HandleFunc("POST /circuit/reset", h.Reset)
	mux.HandleFunc("GET /circuit/netlist", h.GetNetlist)
	mux.HandleFunc("GET /circuit/sweep", h.Sweep)
	mux.HandleFunc("GET /circuit/check", h.Check)
	return mux
}

func (h *CircuitHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "toy-circuit",
		Uptime:    time.Since(h.started).String(),
		Details: map[string]string{
			"go_version": runtime.Version(),
		},
	}, http.StatusOK)
}

// GetCircuit returns the topology, totals and selection
func (h *CircuitHandler) GetCircuit(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.sess.View(), http.StatusOK)
}

func (h *CircuitHandler) SetVoltage(w http.ResponseWriter, r *http.Request) {
	var req VoltageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.sess.SetVoltage(req.Voltage); err != nil {
		h.writeSessionError(w, "Failed to set voltage", err)
		return
	}
	h.writeJSON(w, h.sess.View(), http.StatusOK)
}

// AddComponent places a component at an explicit target, or relative to the
// selection when no target is given
func (h *CircuitHandler) AddComponent(w http.ResponseWriter, r *http.Request) {
	var body AddComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	kind, err := device.ParseKind(body.Kind)
	if err != nil {
		h.writeError(w, "Invalid component kind", err.Error(), http.StatusBadRequest)
		return
	}
	mode, err := circuit.ParseMode(body.Mode)
	if err != nil {
		h.writeError(w, "Invalid placement mode", err.Error(), http.StatusBadRequest)
		return
	}

	req := session.AddRequest{Kind: kind, Resistance: body.Resistance, Mode: mode}
	if body.Target != nil {
		req.Target = circuit.AfterStage(body.Target.Series)
		if body.Target.Parallel != nil {
			req.Target.Parallel = *body.Target.Parallel
			req.Target.HasParallel = true
		}
	}

	comp, err := h.sess.Add(req)
	if err != nil {
		h.writeSessionError(w, "Failed to add component", err)
		return
	}
	h.writeJSON(w, comp, http.StatusCreated)
}

func (h *CircuitHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	comp, err := h.sess.Component(id)
	if err != nil {
		h.writeSessionError(w, "Failed to get component", err)
		return
	}
	h.writeJSON(w, comp, http.StatusOK)
}

func (h *CircuitHandler) RemoveComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sess.Remove(id); err != nil {
		h.writeSessionError(w, "Failed to remove component", err)
		return
	}
	h.writeJSON(w, h.sess.View(), http.StatusOK)
}

func (h *CircuitHandler) MoveComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := h.sess.Move(id, req.Series, req.Parallel); err != nil {
		h.writeSessionError(w, "Failed to move component", err)
		return
	}
	h.writeJSON(w, h.sess.View(), http.StatusOK)
}

func (h *CircuitHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.sess.Select(req.ID, req.Multi); err != nil {
		h.writeSessionError(w, "Failed to select component", err)
		return
	}
	h.writeJSON(w, h.sess.View(), http.StatusOK)
}

func (h *CircuitHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	h.sess.ClearSelection()
	h.writeJSON(w, h.sess.View(), http.StatusOK)
}

func (h *CircuitHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.sess.Reset()
	h.writeJSON(w, h.sess.View(), http.StatusOK)
}

// GetNetlist returns the circuit as a SPICE deck
func (h *CircuitHandler) GetNetlist(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(h.sess.Netlist())); err != nil {
		log.Printf("Failed to write netlist: %v", err)
	}
}

// Sweep runs a supply sweep: ?start=0&stop=12&step=1
func (h *CircuitHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err1 := queryFloat(q.Get("start"), 0)
	stop, err2 := queryFloat(q.Get("stop"), h.sess.View().Stats.Voltage)
	step, err3 := queryFloat(q.Get("step"), 1)
	if err := errors.Join(err1, err2, err3); err != nil {
		h.writeError(w, "Invalid sweep parameters", err.Error(), http.StatusBadRequest)
		return
	}

	results, err := h.sess.Sweep(start, stop, step)
	if err != nil {
		h.writeError(w, "Sweep failed", err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, results, http.StatusOK)
}

// Check compares the closed-form solution with a nodal solve
func (h *CircuitHandler) Check(w http.ResponseWriter, r *http.Request) {
	report, err := h.sess.Check()
	if err != nil {
		log.Printf("Nodal check failed: %v", err)
		h.writeError(w, "Check failed", err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, report, http.StatusOK)
}

// Helper methods

func queryFloat(raw string, fallback float64) (float64, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func (h *CircuitHandler) pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.writeError(w, "Invalid component ID", err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *CircuitHandler) writeSessionError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, session.ErrComponentNotFound):
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, session.ErrInvalidResistance),
		errors.Is(err, session.ErrInvalidVoltage),
		errors.Is(err, session.ErrUnknownKind),
		errors.Is(err, session.ErrUnknownMode):
		h.writeError(w, msg, err.Error(), http.StatusBadRequest)
	default:
		log.Printf("%s: %v", msg, err)
		h.writeError(w, msg, err.Error(), http.StatusInternalServerError)
	}
}

func (h *CircuitHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *CircuitHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
