package auth

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RefreshTokenCookieName is the cookie carrying the refresh token
const RefreshTokenCookieName = "refreshToken"

// CookieConfig holds cookie configuration settings
type CookieConfig struct {
	Domain   string // Empty string = current host only
	Secure   bool   // HTTPS only
	SameSite string // "strict", "lax", or "none"
}

// SetRefreshTokenCookie sets a refresh token in an httpOnly cookie
func SetRefreshTokenCookie(w http.ResponseWriter, r *http.Request, refreshToken string, maxAge time.Duration, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    refreshToken,
		Path:     "/",
		Domain:   cookieDomain(r, config.Domain),
		Expires:  time.Now().Add(maxAge),
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	}
	http.SetCookie(w, cookie)
}

// ClearRefreshTokenCookie clears the refresh token cookie. Domain must match
// the one used when setting it or the browser keeps the old cookie.
func ClearRefreshTokenCookie(w http.ResponseWriter, r *http.Request, config CookieConfig) {
	cookie := &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cookieDomain(r, config.Domain),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: parseSameSite(config.SameSite),
	}
	http.SetCookie(w, cookie)
}

// GetRefreshTokenCookie retrieves the refresh token from cookies
func GetRefreshTokenCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(RefreshTokenCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// cookieDomain returns the configured domain only when the request Origin is
// that domain or one of its subdomains. Otherwise the cookie is host-only.
func cookieDomain(r *http.Request, domain string) string {
	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	if domain == "" || r == nil {
		return ""
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return ""
	}

	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if host == domain || strings.HasSuffix(host, "."+domain) {
		return domain
	}
	return ""
}

// parseSameSite converts string to http.SameSite constant
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
