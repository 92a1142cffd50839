package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

func (api *API) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(api.cookie.Name)
	if err != nil {
		return ""
	}
	if decoded, err := url.QueryUnescape(cookie.Value); err == nil {
		return decoded
	}
	return cookie.Value
}

// setSessionCookie writes the attribute order clients and tests rely on.
func (api *API) setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	seconds := int64(maxAge / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	attributes := []string{
		api.cookie.Name + "=" + url.QueryEscape(token),
		"Path=/",
		"HttpOnly",
		"SameSite=Strict",
		"Max-Age=" + strconv.FormatInt(seconds, 10),
	}
	if api.cookie.Secure {
		attributes = append(attributes, "Secure")
	}
	w.Header().Set("Set-Cookie", strings.Join(attributes, "; "))
}

func (api *API) clearSessionCookie(w http.ResponseWriter) {
	attributes := []string{
		api.cookie.Name + "=",
		"Path=/",
		"HttpOnly",
		"SameSite=Strict",
		"Max-Age=0",
	}
	if api.cookie.Secure {
		attributes = append(attributes, "Secure")
	}
	w.Header().Set("Set-Cookie", strings.Join(attributes, "; "))
}
