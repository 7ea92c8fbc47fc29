package restapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	sched "github.com/BAQIC/emulate-server"
	"github.com/BAQIC/emulate-server/agent"
	"github.com/BAQIC/emulate-server/config"
	"github.com/BAQIC/emulate-server/job"
)

// Server wires sched.Scheduler onto the REST routes.
type Server struct {
	sched   *sched.Scheduler
	metrics *sched.Metrics
}

// New builds a Server over sc. metrics may be nil, in which case
// per-agent gauges are simply never observed.
func New(sc *sched.Scheduler, metrics *sched.Metrics) *Server {
	return &Server{sched: sc, metrics: metrics}
}

func (s *Server) observeAgent(a *agent.Agent) {
	if s.metrics == nil || a == nil {
		return
	}
	s.metrics.ObserveAgent(a.Id.String(), a.QubitIdle)
}

// Routes returns the ServeMux with every route registered.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /submit", s.handleSubmit)
	mux.HandleFunc("GET /get_task", s.handleGetTaskQuery)
	mux.HandleFunc("GET /get_task/{id}", s.handleGetTaskPath)
	mux.HandleFunc("POST /add_agent", s.handleAddAgent)
	mux.HandleFunc("GET /get_agents", s.handleGetAgents)
	mux.HandleFunc("POST /update_agent", s.handleUpdateAgent)
	return mux
}

func isJSONRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"Error": err.Error()})
}

type submitRequest struct {
	Code   string `json:"code"`
	Qubits int    `json:"qubits"`
	Depth  int    `json:"depth"`
	Shots  int    `json:"shots"`
	Mode   string `json:"mode"`
}

func decodeSubmit(r *http.Request) (submitRequest, error) {
	var req submitRequest
	if isJSONRequest(r) {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Code = r.FormValue("code")
	req.Mode = r.FormValue("mode")
	var err error
	if req.Qubits, err = atoiOr0(r.FormValue("qubits")); err != nil {
		return req, err
	}
	if req.Depth, err = atoiOr0(r.FormValue("depth")); err != nil {
		return req, err
	}
	if req.Shots, err = atoiOr0(r.FormValue("shots")); err != nil {
		return req, err
	}
	return req, nil
}

func atoiOr0(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// handleSubmit implements POST /submit.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := decodeSubmit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	mode := job.Unset
	if req.Mode != "" {
		mode, err = job.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	j, err := s.sched.Submit(r.Context(), req.Code, req.Qubits, req.Depth, req.Shots, mode)
	if err != nil {
		if errors.Is(err, sched.ErrAdmissionRejected) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"task_id": j.Id.String(),
		"status":  j.Status.String(),
	})
}

// handleGetTaskQuery implements GET /get_task?task_id=<uuid>.
func (s *Server) handleGetTaskQuery(w http.ResponseWriter, r *http.Request) {
	idStr := r.URL.Query().Get("task_id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	j, err := s.sched.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// handleGetTaskPath implements GET /get_task/<uuid>.
func (s *Server) handleGetTaskPath(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	j, err := s.sched.GetJob(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, j)
}

type addAgentRequest struct {
	Ip           string `json:"ip"`
	Hostname     string `json:"hostname"`
	Port         int    `json:"port"`
	QubitCount   int    `json:"qubit_count"`
	CircuitDepth int    `json:"circuit_depth"`
}

func decodeAddAgent(r *http.Request) (addAgentRequest, error) {
	var req addAgentRequest
	if isJSONRequest(r) {
		err := json.NewDecoder(r.Body).Decode(&req)
		return req, err
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Ip = r.FormValue("ip")
	req.Hostname = r.FormValue("hostname")
	var err error
	if req.Port, err = atoiOr0(r.FormValue("port")); err != nil {
		return req, err
	}
	if req.QubitCount, err = atoiOr0(r.FormValue("qubit_count")); err != nil {
		return req, err
	}
	if req.CircuitDepth, err = atoiOr0(r.FormValue("circuit_depth")); err != nil {
		return req, err
	}
	return req, nil
}

// handleAddAgent implements POST /add_agent.
func (s *Server) handleAddAgent(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAddAgent(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ip, err := (config.AgentSpec{Ip: req.Ip, Hostname: req.Hostname}).ResolveIp()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := s.sched.AddAgent(r.Context(), ip, req.Port, req.QubitCount, req.CircuitDepth)
	if err != nil {
		if errors.Is(err, sched.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.observeAgent(a)
	writeJSON(w, http.StatusOK, a)
}

// handleGetAgents implements GET /get_agents?ip=<ip>[&port=<port>]
// (address lookup) and the administrative
// ?sort=idle_desc&qubits=<n>&depth=<n> form, which surfaces
// AgentRegistry.MostIdleEligible so an operator can see which agent
// currently has the most headroom for a given shape.
func (s *Server) handleGetAgents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("sort") == "idle_desc" {
		qubits, err := strconv.Atoi(q.Get("qubits"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		depth, err := strconv.Atoi(q.Get("depth"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		a, err := s.sched.MostIdleAgent(r.Context(), qubits, depth)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
		return
	}

	ip := q.Get("ip")
	portStr := q.Get("port")
	if ip == "" || portStr == "" {
		writeError(w, http.StatusBadRequest, errors.New("ip and port are required"))
		return
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := s.sched.GetAgentByAddress(r.Context(), ip, port)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type updateAgentRequest struct {
	Id           string  `json:"id"`
	Ip           *string `json:"ip"`
	Port         *int    `json:"port"`
	QubitCount   *int    `json:"qubit_count"`
	CircuitDepth *int    `json:"circuit_depth"`
	Status       *string `json:"status"`
}

// handleUpdateAgent implements POST /update_agent: a JSON-only
// drain-then-patch request, since the partial/optional-field shape
// does not map cleanly onto form encoding's all-strings model.
func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	var req updateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, err := uuid.Parse(req.Id)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	patch := sched.AgentPatch{
		Ip:           req.Ip,
		Port:         req.Port,
		QubitCount:   req.QubitCount,
		CircuitDepth: req.CircuitDepth,
	}
	if req.Status != nil {
		st, err := agent.ParseStatus(*req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		patch.Status = &st
	}
	if err := s.sched.UpdateAgent(r.Context(), id, patch); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if a, err := s.sched.GetAgent(r.Context(), id); err == nil {
		s.observeAgent(a)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
