package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/rogerio-castellano/catalog-console/internal/catalog"
	"github.com/rogerio-castellano/catalog-console/internal/session"
)

type sessionKey struct{}

func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey{}).(*session.Session)
	if sess == nil {
		fresh := session.New()
		return &fresh
	}
	return sess
}

// withSession attaches the visitor's session to the request and persists
// it once the handler returns.
func (p *Pages) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const op = "Pages.withSession"
		log := slog.With("op", op)

		sess, err := session.Load(r.Context(), p.sessions, r)
		if err != nil {
			log.Error("failed to load session", "err", err)
			sess = session.New()
		}
		session.SetCookie(w, sess, p.sessionTTL)

		sw := &sessionWriter{ResponseWriter: w, save: func() {
			if err := p.sessions.Save(context.WithoutCancel(r.Context()), sess); err != nil {
				log.Error("failed to save session", "session", sess.ID, "err", err)
			}
		}}
		ctx := context.WithValue(r.Context(), sessionKey{}, &sess)
		ctx = catalog.WithClientAddr(ctx, remoteHost(r))
		next.ServeHTTP(sw, r.WithContext(ctx))
		sw.flush()
	})
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// sessionWriter saves the session right before the response goes out, so a
// redirected client always sees the updated state.
type sessionWriter struct {
	http.ResponseWriter
	save  func()
	saved bool
}

func (w *sessionWriter) flush() {
	if !w.saved {
		w.saved = true
		w.save()
	}
}

func (w *sessionWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
