// Package fakeserver is an in-memory stand-in for the todo server, used by
// tests. It renders the same page shape and JSON bodies the real server does
// and keeps a snapshot history so /undo and /last-action behave.
package fakeserver

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Makepad-fr/tada-remote/internal/model"
)

var page = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Todo App</title></head>
<body>
  <form id="todo-form"><input id="todo-input" name="task"><button type="submit">Add</button></form>
  <ul id="todo-list">
  {{- range . }}
    <li data-id="{{ .ID }}" class="todo-item{{ if .Done }} done{{ end }}">
      <input type="checkbox" class="toggle" data-id="{{ .ID }}"{{ if .Done }} checked{{ end }}>
      <span class="task">{{ .Task }}</span>
      <button class="delete-btn" data-id="{{ .ID }}">Delete</button>
    </li>
  {{- else }}
    <li class="empty">Nothing to do</li>
  {{- end }}
  </ul>
  <button id="undo-btn">Undo</button>
  <button id="dark-mode-toggle">🌙</button>
</body>
</html>
`))

type snapshot struct {
	action string
	items  []model.Item
}

// Server holds the fake state. Use Handler with httptest.NewServer.
type Server struct {
	mu       sync.Mutex
	items    []model.Item
	history  []snapshot
	failures map[string]int
	exact    map[string]int
	requests []*http.Request

	// OmitUndoTodos drops the todos array from successful /undo answers.
	OmitUndoTodos bool
}

func New(seed ...model.Item) *Server {
	s := &Server{failures: map[string]int{}, exact: map[string]int{}}
	s.items = append(s.items, seed...)
	return s
}

// Handler returns the router serving the server endpoints.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/", s.index).Methods(http.MethodGet)
	r.HandleFunc("/add", s.add).Methods(http.MethodPost)
	r.HandleFunc("/update/{id}", s.update).Methods(http.MethodPost)
	r.HandleFunc("/delete/{id}", s.delete).Methods(http.MethodPost)
	r.HandleFunc("/clear", s.clear).Methods(http.MethodPost)
	r.HandleFunc("/undo", s.undo).Methods(http.MethodPost)
	r.HandleFunc("/last-action", s.lastAction).Methods(http.MethodGet)
	return r
}

// Fail makes every request whose path starts with prefix answer code.
// A zero code clears the failure.
func (s *Server) Fail(prefix string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == 0 {
		delete(s.failures, prefix)
		return
	}
	s.failures[prefix] = code
}

// FailExact is Fail for a single path; "/" fails only the page.
func (s *Server) FailExact(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == 0 {
		delete(s.exact, path)
		return
	}
	s.exact[path] = code
}

// Items returns a copy of the server-side list.
func (s *Server) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// Requests returns the requests seen so far, in order.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

// Count returns how many requests hit method+path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.URL.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		code := 0
		for prefix, c := range s.failures {
			if strings.HasPrefix(r.URL.Path, prefix) {
				code = c
			}
		}
		if c, ok := s.exact[r.URL.Path]; ok {
			code = c
		}
		s.mu.Unlock()
		if code != 0 {
			http.Error(w, http.StatusText(code), code)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// push saves the current list before a mutation. Callers hold mu.
func (s *Server) push(action string) {
	s.history = append(s.history, snapshot{action: action, items: append([]model.Item(nil), s.items...)})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	items := s.Items()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = page.Execute(w, items)
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	task := r.PostForm.Get("task")
	if task == "" {
		http.Error(w, "task is required", http.StatusUnprocessableEntity)
		return
	}
	done, _ := strconv.ParseBool(r.PostForm.Get("done"))

	s.mu.Lock()
	s.push("add")
	s.items = append(s.items, model.Item{ID: uuid.NewString(), Task: task, Done: done})
	s.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	done, err := strconv.ParseBool(r.PostForm.Get("done"))
	if err != nil {
		http.Error(w, "done must be a boolean", http.StatusUnprocessableEntity)
		return
	}
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	s.push("update")
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Done = done
			break
		}
	}
	s.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	s.push("delete")
	kept := s.items[:0:0]
	for _, it := range s.items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.mu.Unlock()

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.push("clear")
	s.items = nil
	s.mu.Unlock()

	writeJSON(w, map[string]any{"status": model.StatusSuccess})
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if len(s.history) == 0 {
		s.mu.Unlock()
		writeJSON(w, map[string]any{"status": model.StatusNoAction})
		return
	}
	last := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	s.items = last.items
	items := append([]model.Item(nil), s.items...)
	omit := s.OmitUndoTodos
	s.mu.Unlock()

	body := map[string]any{"status": model.StatusSuccess}
	if !omit {
		// Rows come back the way the CSV-backed server stores them.
		todos := make([]map[string]string, 0, len(items))
		for _, it := range items {
			todos = append(todos, map[string]string{
				"id":   it.ID,
				"task": it.Task,
				"done": strconv.FormatBool(it.Done),
			})
		}
		body["todos"] = todos
	}
	writeJSON(w, body)
}

func (s *Server) lastAction(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var typ any
	if n := len(s.history); n > 0 {
		typ = s.history[n-1].action
	}
	s.mu.Unlock()

	writeJSON(w, map[string]any{"last_action": map[string]any{"type": typ}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
