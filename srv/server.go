// Package srv serves the chat UI, the chat endpoint, and the availability
// API.
package srv

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"opencourt.dev/agent"
)

// historyLimit caps how many conversation turns a session keeps. Older
// turns fall off; chat history is in-memory only and not persisted.
const historyLimit = 40

const sessionCookie = "opencourt_session"

type session struct {
	history  []agent.Message
	lastUsed time.Time
}

// Server holds the request-facing dependencies. Sessions are in-memory and
// keyed by a uuid cookie.
type Server struct {
	Finder       agent.Finder
	Agent        *agent.Client
	TemplatesDir string

	mu       sync.Mutex
	sessions map[string]*session
}

func New(finder agent.Finder, ai *agent.Client) *Server {
	_, thisFile, _, _ := runtime.Caller(0)
	baseDir := filepath.Dir(thisFile)
	return &Server{
		Finder:       finder,
		Agent:        ai,
		TemplatesDir: filepath.Join(baseDir, "templates"),
		sessions:     make(map[string]*session),
	}
}

func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderTemplate(w, "index.html", nil); err != nil {
		slog.Warn("render template", "url", r.URL.Path, "error", err)
	}
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data any) error {
	path := filepath.Join(s.TemplatesDir, name)
	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, data)
}

// sessionFor returns the session for the request's cookie, creating the
// session and setting the cookie when absent.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		id = c.Value
	} else {
		id = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		slog.Info("new chat session", "session_id", id)
		sess = &session{}
		s.sessions[id] = sess
	}
	sess.lastUsed = time.Now()
	return sess
}

// Serve starts the HTTP server with the configured routes.
func (s *Server) Serve(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.HandleRoot)
	mux.HandleFunc("POST /chat", s.HandleChat)
	mux.HandleFunc("GET /api/availability", s.HandleAvailability)

	slog.Info("starting server", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
