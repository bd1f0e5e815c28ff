package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"stackpad/internal/page"
	"stackpad/internal/store"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, page.Home, nil)
}

func (s *Server) handleTodoPage(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todos.List(r.Context())
	if err != nil {
		s.logger.Error("todo list failed", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.renderPage(w, r, page.Todo, todos)
}

func (s *Server) handleFilmsPage(w http.ResponseWriter, r *http.Request) {
	films, err := s.films.Films(r.Context())
	if err != nil {
		s.logger.Error("film list fetch failed", zap.Error(err))
		http.Error(w, "upstream film API failed", http.StatusBadGateway)
		return
	}
	s.renderPage(w, r, page.Films, films)
}

func (s *Server) handleFilmDetailPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	film, err := s.films.Film(r.Context(), id)
	if err != nil {
		s.logger.Error("film fetch failed", zap.String("id", id), zap.Error(err))
		http.Error(w, "upstream film API failed", http.StatusBadGateway)
		return
	}
	s.renderPage(w, r, page.FilmDetail, film)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, p page.Page, data any) {
	doc, err := page.Render(p, data)
	if err != nil {
		s.logger.Error("render failed", zap.Stringer("page", p), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := s.todos.List(r.Context())
	if err != nil {
		s.logger.Error("todo list failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if todos == nil {
		todos = []store.Todo{} // encode an empty array, not null
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeJSONError(w, http.StatusBadRequest, "text must not be empty")
		return
	}

	todo, err := s.todos.Insert(r.Context(), body.Text)
	if err != nil {
		s.logger.Error("todo insert failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

func (s *Server) handleClientBundle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(s.bundle.Bytes())
}

// handleClientLog forwards browser console output into the server log.
// Dev mode only; always responds 204.
func (s *Server) handleClientLog(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level string   `json:"level"`
		Args  []string `json:"args"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
		client := s.logger.Named("client")
		msg := strings.Join(body.Args, " ")
		switch body.Level {
		case "error":
			client.Error(msg)
		case "warn":
			client.Warn(msg)
		default:
			client.Info(msg)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
