// Package server wires validation, caching, prompt synthesis and streaming
// generation into the analysis HTTP handler.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gitpraise/gitpraise/pkg/cache/sqlite"
	"github.com/gitpraise/gitpraise/pkg/config"
	"github.com/gitpraise/gitpraise/pkg/llm"
	"github.com/gitpraise/gitpraise/pkg/models"
	"github.com/gitpraise/gitpraise/pkg/prompt"
)

// User-facing error messages, kept from the production deployment.
const (
	msgMissingConfig  = "Configuração do servidor incompleta. Entre em contato com o administrador."
	msgInvalidRequest = "Requisição inválida. Caso acredite que isso é um erro, avise na aba Issue do repositório no GitHub."
	msgOverloaded     = "O servidor encontra-se sobrecarregado :("
	msgInternal       = "Erro interno."
)

// Server is the gitpraise HTTP server. A nil cache disables caching: every
// lookup misses and write-back is skipped.
type Server struct {
	cfg   *config.Config
	cache *sqlite.Cache
	llm   *llm.Client
	mux   *http.ServeMux
}

// New creates a Server wired with all dependencies.
func New(cfg *config.Config, c *sqlite.Cache, l *llm.Client) *Server {
	s := &Server{
		cfg:   cfg,
		cache: c,
		llm:   l,
		mux:   http.NewServeMux(),
	}
	s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("gitpraise listening on %s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// handleAnalyze runs the full pipeline: configuration check, validation,
// cache lookup, prompt synthesis, streaming generation, cache write-back.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed", "request_error")
		return
	}

	reqID := r.Header.Get("X-Request-ID")
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", reqID)

	// Deployment settings are checked before the body is even read, so a
	// misconfigured server answers 500 for any request.
	if !s.cfg.LLM.Complete() {
		log.Printf("[%s] missing required llm configuration", reqID)
		writeJSONError(w, http.StatusInternalServerError, msgMissingConfig, "configuration_error")
		return
	}

	var profile models.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		log.Printf("[%s] decode request: %v", reqID, err)
		writeJSONError(w, http.StatusBadRequest, msgInvalidRequest, "validation_error")
		return
	}
	if err := profile.Validate(); err != nil {
		log.Printf("[%s] %v", reqID, err)
		writeJSONError(w, http.StatusBadRequest, msgInvalidRequest, "validation_error")
		return
	}

	key := profile.Key()

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("X-Cache", "hit")
			io.WriteString(w, cached)
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Printf("[%s] response writer does not support flushing", reqID)
		writeJSONError(w, http.StatusInternalServerError, msgInternal, "generation_error")
		return
	}

	instruction, content := prompt.Build(&profile)

	started := false
	full, err := s.llm.Stream(r.Context(), instruction, content, func(fragment string) error {
		if !started {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("X-Cache", "miss")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, werr := io.WriteString(w, fragment); werr != nil {
			return werr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		log.Printf("[%s] stream analysis for %q: %v", reqID, key, err)
		if started {
			// Fragments are already on the wire and cannot be recalled.
			// The response simply ends; the cache is left unpopulated.
			return
		}
		if errors.Is(err, llm.ErrCapacity) {
			writeJSONError(w, http.StatusInternalServerError, msgOverloaded, "capacity_error")
		} else {
			writeJSONError(w, http.StatusInternalServerError, msgInternal, "generation_error")
		}
		return
	}
	if !started {
		// Empty completion: still a valid, cacheable response.
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("X-Cache", "miss")
	}

	// Best-effort write-back: runs off the response path, errors are logged
	// and swallowed.
	if s.cache != nil {
		go func() {
			if err := s.cache.Put(key, full); err != nil {
				log.Printf("[%s] cache analysis for %q: %v", reqID, key, err)
			}
		}()
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, "ok")
}

func writeJSONError(w http.ResponseWriter, code int, message, kind string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"message":%q,"type":%q,"code":%d}}`, message, kind, code)
}
