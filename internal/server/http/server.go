package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"

	"github.com/sampsyo/loglet/internal/logstore"
	"github.com/sampsyo/loglet/internal/runtime"
	"github.com/sampsyo/loglet/pkg/id"
)

// Server exposes the loglet HTTP surface: log creation, message ingest,
// and the HTML/text/JSON/Atom views.
type Server struct {
	rt     *runtime.Runtime
	log    *logrus.Logger
	srv    *http.Server
	lis    net.Listener
	views  *views
	parser fastjson.ParserPool
}

// New builds a Server over rt. logger may not be nil.
func New(rt *runtime.Runtime, logger *logrus.Logger) (*Server, error) {
	v, err := newViews(rt.Config())
	if err != nil {
		return nil, err
	}
	s := &Server{rt: rt, log: logger, views: v}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /new", s.handleNewLog)
	mux.HandleFunc("GET /{id}", s.handleLogView)
	mux.HandleFunc("POST /{id}", s.handleAppend)
	mux.HandleFunc("GET /{id}/txt", s.handleText)
	mux.HandleFunc("GET /{id}/json", s.handleJSON)
	mux.HandleFunc("GET /{id}/feed", s.handleFeed)
	mux.HandleFunc("POST /{id}/meta", s.handleMeta)

	s.srv = &http.Server{Handler: s.requestLog(gzipResponses(mux))}
	return s, nil
}

// Handler returns the root handler; tests mount it on httptest servers.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// handleNewLog creates a log and redirects to its page.
func (s *Server) handleNewLog(w http.ResponseWriter, r *http.Request) {
	logID, err := s.rt.Store().CreateLog(r.Context())
	if err != nil {
		s.fault(w, r, err)
		return
	}
	s.log.WithField("log", logID).Debug("created log")
	http.Redirect(w, r, "/"+logID, http.StatusFound)
}

// handleAppend ingests one message. Bodies are form-encoded by default;
// application/json is accepted for clients that prefer it.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	logID, ok := s.pathLogID(w, r)
	if !ok {
		return
	}
	limits := s.rt.Store().Limits()

	body, level, err := s.parseIngest(r, limits)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := s.rt.Store().Append(r.Context(), logID, body, level)
	if err != nil {
		s.fault(w, r, err)
		return
	}

	s.notify(r.Context(), logID, msg)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"success": 1})
}

// parseIngest extracts the message body and severity level from a request.
// The level field may be a number or a string; anything unparsable stores
// the minimum level rather than failing the request.
func (s *Server) parseIngest(r *http.Request, limits logstore.Limits) (string, int, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		p := s.parser.Get()
		defer s.parser.Put(p)

		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return "", 0, fmt.Errorf("reading body: %w", err)
		}
		v, err := p.ParseBytes(raw)
		if err != nil {
			return "", 0, fmt.Errorf("malformed JSON body")
		}
		msgVal := v.Get("message")
		if msgVal == nil {
			return "", 0, fmt.Errorf("missing message field")
		}
		msg := string(msgVal.GetStringBytes())
		level := limits.MinLevel
		if lv := v.Get("level"); lv != nil {
			switch lv.Type() {
			case fastjson.TypeNumber:
				level = limits.ClampLevel(lv.GetInt())
			case fastjson.TypeString:
				level = limits.ParseLevel(string(lv.GetStringBytes()))
			}
		}
		return msg, level, nil
	}

	if err := r.ParseForm(); err != nil {
		return "", 0, fmt.Errorf("malformed form body")
	}
	if _, ok := r.PostForm["message"]; !ok {
		return "", 0, fmt.Errorf("missing message field")
	}
	return r.PostFormValue("message"), limits.ParseLevel(r.PostFormValue("level")), nil
}

// notify fires the external push notification when the stored level meets
// the threshold and the log has a subscriber handle. Failures are logged
// and never fail the append.
func (s *Server) notify(ctx context.Context, logID string, msg logstore.Message) {
	cfg := s.rt.Config()
	if msg.Level < cfg.NotificationThreshold {
		return
	}
	meta, err := s.rt.Store().Metadata(ctx, logID)
	if err != nil || meta.Notify == "" {
		return
	}
	title := meta.Title
	if title == "" {
		title = logID
	}
	logURL := s.logURL(logID)
	if err := s.rt.Notifier().Send(ctx, meta.Notify, title, msg.Body, logURL); err != nil {
		s.log.WithField("log", logID).WithError(err).Warn("notification failed")
	}
}

// handleText renders the plain-text dump: one "<time> <level> <message>"
// line per retained message, newest first.
func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	logID, ok := s.pathLogID(w, r)
	if !ok {
		return
	}
	msgs, ok := s.filteredMessages(w, r, logID)
	if !ok {
		return
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, fmt.Sprintf("%d %d %s", m.Time, m.Level, m.Body))
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, strings.Join(lines, "\n"))
}

type jsonMessage struct {
	Message string `json:"message"`
	Time    int64  `json:"time"`
	Level   int    `json:"level"`
	ID      uint64 `json:"id"`
}

type jsonLog struct {
	Log      string        `json:"log"`
	Title    string        `json:"title"`
	Messages []jsonMessage `json:"messages"`
}

// handleJSON renders the JSON dump.
func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	logID, ok := s.pathLogID(w, r)
	if !ok {
		return
	}
	meta, err := s.rt.Store().Metadata(r.Context(), logID)
	if err != nil {
		s.fault(w, r, err)
		return
	}
	msgs, ok := s.filteredMessages(w, r, logID)
	if !ok {
		return
	}
	out := jsonLog{Log: logID, Title: meta.Title, Messages: make([]jsonMessage, 0, len(msgs))}
	for _, m := range msgs {
		out.Messages = append(out.Messages, jsonMessage{Message: m.Body, Time: m.Time, Level: m.Level, ID: m.Seq})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// filteredMessages loads a log's messages and applies the optional CEL
// filter query parameter. On failure it writes the response itself and
// returns ok=false.
func (s *Server) filteredMessages(w http.ResponseWriter, r *http.Request, logID string) ([]logstore.Message, bool) {
	msgs, err := s.rt.Store().Messages(r.Context(), logID)
	if err != nil {
		s.fault(w, r, err)
		return nil, false
	}
	f, err := newMsgFilter(r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, fmt.Sprintf("bad filter expression: %v", err), http.StatusBadRequest)
		return nil, false
	}
	if !f.enabled {
		return msgs, true
	}
	kept := msgs[:0]
	for _, m := range msgs {
		if f.Eval(m) {
			kept = append(kept, m)
		}
	}
	return kept, true
}

// handleMeta updates a log's title and/or notification handle. A non-empty
// handle is verified with the provider first and cleared if that fails.
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	logID, ok := s.pathLogID(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form body", http.StatusBadRequest)
		return
	}

	var upd logstore.MetaUpdate
	if vals, ok := r.PostForm["title"]; ok && len(vals) > 0 {
		title := vals[0]
		upd.Title = &title
		s.log.WithField("log", logID).WithField("title", title).Debug("title change")
	}
	if vals, ok := r.PostForm["notifoname"]; ok && len(vals) > 0 {
		handle := strings.TrimSpace(vals[0])
		if handle != "" {
			if err := s.rt.Notifier().Subscribe(r.Context(), handle); err != nil {
				s.log.WithField("log", logID).WithError(err).Warn("subscriber verification failed; clearing handle")
				handle = ""
			}
		}
		upd.Notify = &handle
	}

	if upd.Title != nil || upd.Notify != nil {
		if err := s.rt.Store().UpdateMetadata(r.Context(), logID, upd); err != nil {
			s.fault(w, r, err)
			return
		}
	}
	http.Redirect(w, r, "/"+logID, http.StatusFound)
}

// logURL returns the absolute URL of a log's HTML view.
func (s *Server) logURL(logID string) string {
	return strings.TrimRight(s.rt.Config().BaseURL, "/") + "/" + logID
}

// pathLogID extracts the {id} path value and shape-checks it, so
// malformed identifiers get the not-found response without a store
// lookup. On failure it writes the response and returns ok=false.
func (s *Server) pathLogID(w http.ResponseWriter, r *http.Request) (string, bool) {
	logID := r.PathValue("id")
	if !id.Valid(logID) {
		s.fault(w, r, logstore.ErrNotFound)
		return "", false
	}
	return logID, true
}

// fault maps store errors onto the 404/500 pages.
func (s *Server) fault(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, logstore.ErrNotFound) {
		s.views.renderNotFound(w)
		return
	}
	s.log.WithField("path", r.URL.Path).WithError(err).Error("request failed")
	s.views.renderError(w)
}
