// Package server exposes the agent over HTTP: start a run, poll its
// progress, read the persisted history and browse stored code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/petasbytes/go-builder/internal/codestore"
	"github.com/petasbytes/go-builder/internal/history"
	"github.com/petasbytes/go-builder/internal/progress"
)

// Starter launches a run in the background.
type Starter interface {
	Start(ctx context.Context, runID, request string) error
}

// Progress is the read side of the progress tracker.
type Progress interface {
	Snapshot() progress.State
}

// Codes is the read side of the code store.
type Codes interface {
	Retrieve(ctx context.Context, id string) (*codestore.Artifact, error)
	ListAll(ctx context.Context) ([]codestore.Summary, error)
}

// Server routes HTTP requests to the run controller and the stores.
type Server struct {
	runs        Starter
	progress    Progress
	codes       Codes
	historyPath string
	// base is the parent context of background runs; request contexts end
	// with the response.
	base context.Context
	mux  *http.ServeMux
}

// New returns a Server. Runs started through it inherit base.
func New(base context.Context, runs Starter, p Progress, codes Codes, historyPath string) *Server {
	s := &Server{runs: runs, progress: p, codes: codes, historyPath: historyPath, base: base, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /runs", s.startRun)
	s.mux.HandleFunc("GET /progress", s.getProgress)
	s.mux.HandleFunc("GET /history", s.getHistory)
	s.mux.HandleFunc("GET /artifacts", s.listArtifacts)
	s.mux.HandleFunc("GET /artifacts/{id}", s.getArtifact)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// apiResponse is the envelope of every response.
type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type acceptedRun struct {
	RunID string `json:"run_id"`
}

type artifactBody struct {
	ID          string `json:"code_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Content     string `json:"code_content"`
}

// encode writes JSON response with the unified structure.
func encode(w http.ResponseWriter, statusCode int, data any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		if statusCode == 0 {
			statusCode = http.StatusInternalServerError
		}
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(apiResponse{Status: "ERROR", Message: err.Error()})
		return
	}
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(apiResponse{Status: "OK", Data: data})
}

// readRequest accepts {"request": "..."} JSON or a user_input form field.
func readRequest(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Request string `json:"request"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", err
		}
		return body.Request, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostFormValue("user_input"), nil
}

func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	req, err := readRequest(r)
	if err != nil {
		encode(w, http.StatusBadRequest, nil, err)
		return
	}
	if strings.TrimSpace(req) == "" {
		encode(w, http.StatusBadRequest, nil, errors.New("request is required"))
		return
	}
	id := uuid.NewString()
	if err := s.runs.Start(s.base, id, req); err != nil {
		if errors.Is(err, progress.ErrRunActive) {
			encode(w, http.StatusConflict, nil, err)
			return
		}
		encode(w, http.StatusInternalServerError, nil, err)
		return
	}
	log.Printf("run %s started", id)
	encode(w, http.StatusAccepted, acceptedRun{RunID: id}, nil)
}

func (s *Server) getProgress(w http.ResponseWriter, _ *http.Request) {
	encode(w, http.StatusOK, s.progress.Snapshot(), nil)
}

func (s *Server) getHistory(w http.ResponseWriter, _ *http.Request) {
	h, err := history.Load(s.historyPath)
	if errors.Is(err, os.ErrNotExist) {
		encode(w, http.StatusOK, history.New(), nil)
		return
	}
	if err != nil {
		encode(w, http.StatusInternalServerError, nil, err)
		return
	}
	encode(w, http.StatusOK, h, nil)
}

func (s *Server) listArtifacts(w http.ResponseWriter, r *http.Request) {
	all, err := s.codes.ListAll(r.Context())
	if err != nil {
		encode(w, http.StatusInternalServerError, nil, err)
		return
	}
	encode(w, http.StatusOK, all, nil)
}

func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	a, err := s.codes.Retrieve(r.Context(), r.PathValue("id"))
	if errors.Is(err, codestore.ErrNotFound) {
		encode(w, http.StatusNotFound, nil, err)
		return
	}
	if err != nil {
		encode(w, http.StatusInternalServerError, nil, err)
		return
	}
	encode(w, http.StatusOK, artifactBody{ID: a.ID, Name: a.Name, Description: a.Description, Content: a.Content}, nil)
}
