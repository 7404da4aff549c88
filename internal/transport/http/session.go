package http

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const sessionCookie = "quiz_session"

type sessionKey struct{}

// requestSession is the session id bound to a request. fresh marks an id
// issued by this request because the browser presented no valid cookie.
type requestSession struct {
	id    string
	fresh bool
}

// cookieCodec signs the session id carried in the browser cookie.
type cookieCodec struct {
	codec  *securecookie.SecureCookie
	maxAge time.Duration
}

func newCookieCodec(secret string, maxAge time.Duration) *cookieCodec {
	codec := securecookie.New([]byte(secret), nil)
	codec.MaxAge(int(maxAge / time.Second))
	return &cookieCodec{codec: codec, maxAge: maxAge}
}

// withSession makes sure every request carries a session id, issuing a new
// signed cookie when the browser has none or presents a tampered one.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := requestSession{id: s.cookies.read(r)}
		if sess.id == "" {
			sess = requestSession{id: uuid.NewString(), fresh: true}
			if err := s.cookies.write(w, sess.id); err != nil {
				s.log.WithError(err).Error("encode session cookie")
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func (c *cookieCodec) read(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	var id string
	if err := c.codec.Decode(sessionCookie, cookie.Value, &id); err != nil {
		return ""
	}
	return id
}

func (c *cookieCodec) write(w http.ResponseWriter, id string) error {
	encoded, err := c.codec.Encode(sessionCookie, id)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(c.maxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func sessionID(r *http.Request) string {
	sess, _ := r.Context().Value(sessionKey{}).(requestSession)
	return sess.id
}

func freshSession(r *http.Request) bool {
	sess, _ := r.Context().Value(sessionKey{}).(requestSession)
	return sess.fresh
}

// rotateSession moves the browser to newID and rebinds r to it.
func (s *Server) rotateSession(w http.ResponseWriter, r *http.Request, newID string) *http.Request {
	if err := s.cookies.write(w, newID); err != nil {
		s.log.WithError(err).Error("encode session cookie")
	}
	return r.WithContext(context.WithValue(r.Context(), sessionKey{}, requestSession{id: newID}))
}
