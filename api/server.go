package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"liquidvars/engine"
	"liquidvars/model"
	"liquidvars/storage"
)

// Server exposes the variable registry and scan operations over HTTP.
type Server struct {
	engine *engine.Engine
	store  *storage.Store
	ws     *WSConnectionManager

	// onRescan runs after a successful API-triggered rescan, e.g. to
	// persist a snapshot.
	onRescan func(count int)
}

// NewServer creates an API server over the given engine and snapshot store.
func NewServer(eng *engine.Engine, store *storage.Store, onRescan func(count int)) *Server {
	return &Server{
		engine:   eng,
		store:    store,
		ws:       NewWSConnectionManager(),
		onRescan: onRescan,
	}
}

// Register wires all API routes onto the mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/variables", s.handleVariables)
	mux.HandleFunc("/api/variables/", s.handleVariableByName)
	mux.HandleFunc("/api/rescan", s.handleRescan)
	mux.HandleFunc("/api/convert", s.handleConvert)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/ws", s.handleWebsocket)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	writeJSON(w, http.StatusOK, resp)
}

type variablesResponse struct {
	Count     int                 `json:"count"`
	Variables []model.CSSVariable `json:"variables"`
}

func (s *Server) handleVariables(w http.ResponseWriter, r *http.Request) {
	vars := s.engine.Variables()
	writeJSON(w, http.StatusOK, variablesResponse{Count: len(vars), Variables: vars})
}

func (s *Server) handleVariableByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/variables/")
	if name == "" {
		http.NotFound(w, r)
		return
	}
	if !strings.HasPrefix(name, "--") {
		name = "--" + name
	}
	v, ok := s.engine.Lookup(name)
	if !ok {
		http.Error(w, "unknown variable", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRescan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	count, err := s.engine.Rescan()
	if err != nil {
		http.Error(w, "rescan failed", http.StatusInternalServerError)
		log.Printf("rescan: %v", err)
		return
	}
	if s.onRescan != nil {
		s.onRescan(count)
	}
	s.BroadcastScanComplete(count)

	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// handleConvert performs rem<->px conversion using the configured base font
// size: /api/convert?value=1.5rem&to=px
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value := q.Get("value")
	to := q.Get("to")

	base := s.engine.Config().BaseFontSize
	var out string
	var ok bool
	switch to {
	case "px":
		out, ok = model.RemToPx(value, base)
	case "rem":
		out, ok = model.PxToRem(value, base)
	default:
		http.Error(w, "to must be px or rem", http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "value is not numeric", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"value": out + to})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid from", http.StatusBadRequest)
			return
		}
		from = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid to", http.StatusBadRequest)
			return
		}
		to = t
	}

	snaps, err := s.store.ListSnapshots(from, to)
	if err != nil {
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, snaps)
}

// BroadcastScanComplete pushes a scan-complete event to all websocket
// clients, e.g. after a watch-triggered rescan.
func (s *Server) BroadcastScanComplete(count int) {
	s.ws.Broadcast(map[string]interface{}{
		"type":  "scan_complete",
		"count": count,
		"time":  time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}
