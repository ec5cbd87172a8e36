// Package httpserver implements the executor process's control plane
// (spec §4.8/§6): the REST surface the discovery process drives and
// the websocket feed that pushes execution events as they happen.
package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	executionApp "github.com/fulcrumlabs/flashrelay/business/execution/app"
	"github.com/fulcrumlabs/flashrelay/business/execution/domain"
	"github.com/fulcrumlabs/flashrelay/business/signal"
	"github.com/fulcrumlabs/flashrelay/internal/apperror"
	"github.com/fulcrumlabs/flashrelay/internal/logger"
)

// Server exposes the execution pipeline over HTTP and websocket.
type Server struct {
	pipeline  *executionApp.Pipeline
	hub       *Hub
	log       logger.LoggerInterface
	mode      domain.Mode
	startedAt time.Time

	httpServer *http.Server
}

// New builds a control-plane Server bound to addr (host:port).
func New(addr string, pipeline *executionApp.Pipeline, mode domain.Mode, log logger.LoggerInterface) *Server {
	s := &Server{
		pipeline:  pipeline,
		hub:       NewHub(log),
		log:       log,
		mode:      mode,
		startedAt: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/execute", s.handleExecute)
	mux.HandleFunc("/execute/batch", s.handleExecuteBatch)
	mux.HandleFunc("/simulate", s.handleSimulate)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/", s.hub.ServeHTTP)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start runs the HTTP listener until the context is cancelled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

type executeResponse struct {
	ID             string       `json:"id,omitempty"`
	Success        bool         `json:"success"`
	Mode           string       `json:"mode"`
	Stage          string       `json:"stage,omitempty"`
	TxHash         string       `json:"txHash,omitempty"`
	Simulation     *simResponse `json:"simulation,omitempty"`
	ExpectedProfit float64      `json:"expected_profit"`
	Timestamp      string       `json:"timestamp"`
	Error          string       `json:"error,omitempty"`
}

type simResponse struct {
	Success bool   `json:"success"`
	GasUsed uint64 `json:"gasUsed,omitempty"`
	Error   string `json:"error,omitempty"`
}

func toExecuteResponse(result *domain.Result, err error) executeResponse {
	var resp executeResponse
	if result != nil {
		resp.ID = result.ID
		resp.Success = result.Success
		resp.Mode = string(result.Mode)
		resp.Stage = result.Stage
		resp.TxHash = result.TxHash
		resp.ExpectedProfit = result.ExpectedProfit
		resp.Timestamp = result.Timestamp.Format(time.RFC3339)
		if result.SimulationGas > 0 || result.SimulationError != "" {
			resp.Simulation = &simResponse{Success: result.SimulationError == "", GasUsed: result.SimulationGas, Error: result.SimulationError}
		}
	}
	if err != nil {
		resp.Success = false
		resp.Error = err.Error()
	}
	return resp
}

// simulateResponse is the /simulate wire shape (spec §6): a top-level
// success flag for the call itself, a nested simulation outcome, and
// the signal's self-reported estimated profit (not the pipeline's
// post-hoc expected_profit field used by /execute).
type simulateResponse struct {
	Success         bool         `json:"success"`
	Stage           string       `json:"stage,omitempty"`
	Simulation      *simResponse `json:"simulation,omitempty"`
	EstimatedProfit float64      `json:"estimated_profit"`
	Error           string       `json:"error,omitempty"`
}

func toSimulateResponse(result *domain.Result, err error) simulateResponse {
	var resp simulateResponse
	if result != nil {
		resp.Success = result.Success
		resp.Stage = result.Stage
		resp.EstimatedProfit = result.ExpectedProfit
		resp.Simulation = &simResponse{Success: result.Success && result.SimulationError == "", GasUsed: result.SimulationGas, Error: result.SimulationError}
	}
	if err != nil {
		resp.Success = false
		resp.Error = err.Error()
		if resp.Simulation == nil {
			resp.Simulation = &simResponse{Success: false, Error: err.Error()}
		}
	}
	return resp
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body []byte
	var err error
	if body, err = readAll(r); err != nil {
		writeJSON(w, http.StatusBadRequest, executeResponse{Success: false, Error: err.Error()})
		return
	}

	sig, err := signal.UnmarshalFrom(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, executeResponse{Success: false, Error: err.Error()})
		return
	}

	result, execErr := s.pipeline.Execute(r.Context(), sig)
	resp := toExecuteResponse(result, execErr)

	status := http.StatusOK
	if execErr != nil {
		status = statusForError(execErr)
	}

	eventType := "paper_execution"
	if resp.Mode == string(domain.ModeLive) {
		eventType = "live_execution"
	}
	if execErr != nil {
		eventType = "error"
	}
	s.hub.Broadcast(eventType, resp)

	writeJSON(w, status, resp)
}

type batchRequest struct {
	Signals []json.RawMessage `json:"signals"`
}

type batchResponse struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []executeResponse `json:"results"`
}

func (s *Server) handleExecuteBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := readAll(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, batchResponse{})
		return
	}

	var req batchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, batchResponse{})
		return
	}

	resp := batchResponse{Total: len(req.Signals), Results: make([]executeResponse, 0, len(req.Signals))}
	for _, raw := range req.Signals {
		sig, err := signal.UnmarshalFrom(raw)
		if err != nil {
			resp.Failed++
			resp.Results = append(resp.Results, executeResponse{Success: false, Error: err.Error()})
			continue
		}
		result, execErr := s.pipeline.Execute(r.Context(), sig)
		item := toExecuteResponse(result, execErr)
		if item.Success {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := readAll(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, simulateResponse{Success: false, Error: err.Error()})
		return
	}

	sig, err := signal.UnmarshalFrom(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, simulateResponse{Success: false, Error: err.Error()})
		return
	}

	result, simErr := s.pipeline.Simulate(r.Context(), sig)
	resp := toSimulateResponse(result, simErr)

	status := http.StatusOK
	if simErr != nil {
		status = statusForError(simErr)
	}
	writeJSON(w, status, resp)
}

type healthResponse struct {
	Status string      `json:"status"`
	Mode   string      `json:"mode"`
	Uptime string      `json:"uptime"`
	Stats  domain.Stats `json:"stats"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Mode:   string(s.mode),
		Uptime: time.Since(s.startedAt).String(),
		Stats:  s.pipeline.Stats(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.pipeline.Stats())
}

func statusForError(err error) int {
	if appErr, ok := err.(*apperror.AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func readAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
