// Package httpapi exposes the dropdown services over HTTP. Every listing
// endpoint accepts query or form parameters as well as a JSON body and
// answers with JSON.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/alexanderramin/dropdown/internal/service"
	"github.com/alexanderramin/dropdown/internal/session"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SessionHeader carries the ID of the caller's session.
const SessionHeader = "X-Session-Token"

var errNoSession = errors.New("missing or unknown session")

type sessionKey struct{}

// Server routes HTTP requests to the services.
type Server struct {
	dropdown service.DropdownService
	imports  service.ImportService
	sessions service.SessionService
	lggr     *zap.Logger
	validate *validator.Validate
}

func NewServer(
	dropdown service.DropdownService,
	imports service.ImportService,
	sessions service.SessionService,
	lggr *zap.Logger,
) *Server {
	if lggr == nil {
		lggr = zap.NewNop()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Server{
		dropdown: dropdown,
		imports:  imports,
		sessions: sessions,
		lggr:     lggr.Named("http"),
		validate: v,
	}
}

// Routes returns the router serving the API.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", s.login).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", s.logout).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/tokens", s.pathSession(s.newToken)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/conditions", s.pathSession(s.storeCondition)).Methods(http.MethodPost)

	dropdown := api.PathPrefix("/dropdown").Subrouter()
	dropdown.Use(s.requireSession)
	dropdown.HandleFunc("/value", s.value).Methods(http.MethodGet, http.MethodPost)
	dropdown.HandleFunc("/connect", s.connect).Methods(http.MethodGet, http.MethodPost)
	dropdown.HandleFunc("/number", s.number).Methods(http.MethodGet, http.MethodPost)
	dropdown.HandleFunc("/users", s.users).Methods(http.MethodGet, http.MethodPost)
	dropdown.HandleFunc("/netpoint", s.netpoint).Methods(http.MethodGet, http.MethodPost)
	dropdown.HandleFunc("/name", s.name).Methods(http.MethodGet)
	dropdown.HandleFunc("/import", s.importItem).Methods(http.MethodPost)
	dropdown.HandleFunc("/translations", s.translate).Methods(http.MethodPost)
	dropdown.HandleFunc("/languages", s.languages).Methods(http.MethodGet)
	dropdown.HandleFunc("/unit", s.unit).Methods(http.MethodGet)

	items := api.PathPrefix("/items").Subrouter()
	items.Use(s.requireSession)
	items.HandleFunc("/{itemtype}", s.list).Methods(http.MethodGet)
	return s.logRequests(r)
}

// NewHTTPServer wraps the routes of s in an http.Server listening on addr.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.lggr.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// requireSession resolves the session named by SessionHeader.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(SessionHeader))
		if id == "" {
			s.fail(w, r, errNoSession)
			return
		}
		sess, err := s.sessions.Get(id)
		if err != nil {
			s.fail(w, r, errors.Join(errNoSession, err))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

// pathSession resolves the session named by the {id} route variable.
func (s *Server) pathSession(next func(http.ResponseWriter, *http.Request, *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Get(mux.Vars(r)["id"])
		if err != nil {
			s.fail(w, r, err)
			return
		}
		next(w, r, sess)
	}
}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	return sess
}
