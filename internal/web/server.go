package web

import (
	"astroduel/internal/back"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"golang.org/x/time/rate"
)

func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", noContent)

	// No pagination, the ladder is small enough to be sent whole.
	r.Get("/v1/players", s.getPlayers)
	r.Get("/v1/leaderboard", s.getLeaderboard)
	r.Get("/v1/player/{name}", s.getOnePlayer)
	r.Get("/v1/player/{name}/history", s.getPlayerHistory)
	r.Get("/v1/matches", s.getMatches)
	r.Get("/v1/match/{id}", s.getOneMatch)

	r.Group(func(r chi.Router) {
		r.Use(s.writeLimiter)
		r.Post("/v1/players", s.postPlayer)
		r.Delete("/v1/player/{name}", s.deletePlayer)
		r.Post("/v1/matches", s.postMatch)
		r.Delete("/v1/match/{id}", s.deleteMatch)
		r.Post("/v1/recalculate", s.postRecalculate)
	})

	return r
}

type Server struct {
	http    *http.Server
	back    *back.Back
	limiter *rate.Limiter
}

// NewServer creates the JSON API server, writeRate is the number of
// mutating requests per second it accepts before answering 429.
func NewServer(back *back.Back, addr string, writeRate float64) *Server {
	s := &Server{
		back:    back,
		limiter: rate.NewLimiter(rate.Limit(writeRate), 1),
	}

	s.http = &http.Server{
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  10 * time.Second,
		Handler:      s.setupRouter(),
	}

	return s
}

func noContent(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// Serve blocks until done is closed, the caller must wg.Add(1) first.
func (s *Server) Serve(wg *sync.WaitGroup, done <-chan struct{}) {
	log.Printf("info: starting HTTP server on %s", s.http.Addr)
	defer wg.Done()

	go func() {
		err := s.http.ListenAndServe()
		if err == http.ErrServerClosed {
			log.Println("info: HTTP server closed")
			return
		}

		log.Fatalf("webserver crashed: %s", err)
	}()

	<-done
	if err := s.http.Close(); err != nil {
		log.Printf("warning: unable to close webserver: %s", err)
	}
}

func (s *Server) writeLimiter(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.error(w, errors.New("too many write requests"), http.StatusTooManyRequests)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) response(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	response, err := json.Marshal(data)
	if err != nil {
		log.Printf("error: unable to marshal response: %s", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(code)

	if _, err := w.Write(response); err != nil {
		log.Printf("error: unable to send response: %s", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) error(w http.ResponseWriter, err error, code int) {
	if code >= http.StatusInternalServerError {
		log.Printf("error: %s", err)
		s.response(w, code, errorResponse{http.StatusText(code)})
		return
	}

	log.Printf("warning: %s", err)
	s.response(w, code, errorResponse{err.Error()})
}

// backError maps errors returned by the back to an HTTP status.
func (s *Server) backError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, back.ErrNotFound):
		s.error(w, err, http.StatusNotFound)
	case errors.Is(err, back.ErrInvalidInput):
		s.error(w, err, http.StatusBadRequest)
	default:
		s.error(w, err, http.StatusInternalServerError)
	}
}
