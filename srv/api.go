package srv

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"opencourt.dev/agent"
	"opencourt.dev/availability"
	"opencourt.dev/timefmt"
)

func (s *Server) jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("json encode", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

// HandleChat answers one conversational message. History lives in the
// request's session; the agent decides when to call the availability tool.
func (s *Server) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !s.Agent.IsConfigured() {
		s.jsonError(w, "chat is not configured on this server", http.StatusServiceUnavailable)
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		s.jsonError(w, "please provide a message", http.StatusBadRequest)
		return
	}

	sess := s.sessionFor(w, r)

	s.mu.Lock()
	history := make([]agent.Message, len(sess.history))
	copy(history, sess.history)
	s.mu.Unlock()

	reply, err := s.Agent.Chat(r.Context(), req.Message, history)
	if err != nil {
		slog.Error("chat failed", "error", err)
		s.jsonError(w, "an error occurred while processing your request", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	sess.history = append(sess.history,
		agent.Message{Role: "user", Content: req.Message},
		agent.Message{Role: "assistant", Content: reply},
	)
	if len(sess.history) > historyLimit {
		sess.history = sess.history[len(sess.history)-historyLimit:]
	}
	s.mu.Unlock()

	s.jsonResponse(w, map[string]string{"response": reply})
}

// HandleAvailability runs the filter/merge pipeline directly from query
// parameters, bypassing the agent. Repeating the city parameter searches
// several cities at once.
func (s *Server) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria := availability.Criteria{
		Date:         q.Get("date"),
		CityNames:    q["city"],
		MinStartTime: q.Get("start"),
		MaxEndTime:   q.Get("end"),
		ParkName:     q.Get("park"),
		CourtName:    q.Get("court"),
	}
	if v := q.Get("min_minutes"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins < 0 {
			s.jsonError(w, "min_minutes must be a non-negative integer", http.StatusBadRequest)
			return
		}
		criteria.MinDurationMinutes = mins
	}

	slots, notices, err := s.Finder.FilterAvailability(r.Context(), criteria)
	if err != nil {
		if errors.Is(err, timefmt.ErrInvalidDateFormat) || errors.Is(err, timefmt.ErrInvalidTimeFormat) {
			s.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("availability query failed", "error", err)
		s.jsonError(w, "failed to load availability", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, availability.Report{Slots: slots, Notices: notices})
}
