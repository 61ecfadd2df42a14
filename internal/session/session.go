// Package session keeps per-browser-session flags, such as whether the intro
// sequence already played.
package session

import (
	"errors"
	"net/http"
	"regexp"
)

const (
	IntroPlayed  = "intro_played"
	cookiePrefix = "ftlnomad_"
)

var (
	ErrInvalidFlag = errors.New("invalid flag name")
	flagName       = regexp.MustCompile(`^[a-z0-9_-]{1,64}$`)
)

// FlagStore records boolean flags scoped to the client session.
type FlagStore interface {
	Get(r *http.Request, name string) (bool, error)
	Set(w http.ResponseWriter, name string) error
	Clear(w http.ResponseWriter, name string) error
}

// CookieStore keeps flags in session cookies. No expiry is set, so a flag
// lasts until the browser session ends.
type CookieStore struct {
	Secure bool
}

func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{Secure: secure}
}

func ValidFlag(name string) bool {
	return flagName.MatchString(name)
}

func (s *CookieStore) Get(r *http.Request, name string) (bool, error) {
	if !ValidFlag(name) {
		return false, ErrInvalidFlag
	}
	c, err := r.Cookie(cookiePrefix + name)
	if err != nil {
		return false, nil
	}
	return c.Value == "1", nil
}

func (s *CookieStore) Set(w http.ResponseWriter, name string) error {
	if !ValidFlag(name) {
		return ErrInvalidFlag
	}
	http.SetCookie(w, s.cookie(name, "1", 0))
	return nil
}

func (s *CookieStore) Clear(w http.ResponseWriter, name string) error {
	if !ValidFlag(name) {
		return ErrInvalidFlag
	}
	http.SetCookie(w, s.cookie(name, "", -1))
	return nil
}

func (s *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cookiePrefix + name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
