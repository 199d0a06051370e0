package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// NewAdminHTTPServer builds the read-only observability surface that runs
// alongside the binary TCP protocol server. It exposes /healthz for a
// liveness check and /stats for a snapshot of the engine's current
// generation and garbage counters — purely additive, never required by the
// TCP client.
func NewAdminHTTPServer(addr string, s *Server) *http.Server {
	admin := &adminHTTPServer{server: s}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", admin.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/stats", admin.handleStats).Methods(http.MethodGet)

	return &http.Server{Addr: addr, Handler: r}
}

// adminHTTPServer wraps the request server to expose read-only diagnostics
// over HTTP.
type adminHTTPServer struct {
	server *Server
}

// healthzResponse reports whether the process is alive and accepting
// connections.
type healthzResponse struct {
	Status string `json:"status"`
}

// statsResponse reports a point-in-time snapshot of engine bookkeeping.
type statsResponse struct {
	Generation uint64 `json:"generation"`
	Garbage    uint64 `json:"garbage"`
}

func (a *adminHTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	res := healthzResponse{Status: "ok"}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (a *adminHTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	res := statsResponse{
		Generation: a.server.instance.Generation(),
		Garbage:    a.server.instance.Garbage(),
	}
	if err := json.NewEncoder(w).Encode(res); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
