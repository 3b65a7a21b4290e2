package gateway

import (
	"net/http"
	"strconv"
	"strings"
)

// AuthorizationHeader is the HTTP header carrying the bearer token.
const AuthorizationHeader = "Authorization"

// hopByHopHeaders are meaningful only to the immediate connection and must
// never be forwarded by an intermediary. Forwarding Connection or
// Transfer-Encoding confuses most HTTP stacks.
var hopByHopHeaders = []string{
	"Connection",
	"Transfer-Encoding",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"TE",
	"Trailer",
	"Upgrade",
}

// StripHopByHop removes hop-by-hop headers from h in place.
func StripHopByHop(h http.Header) {
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}

// ExtractBearerToken extracts the token from an "Authorization: Bearer ..."
// header. It returns an empty string when the header is missing or not a
// bearer credential.
func ExtractBearerToken(r *http.Request) string {
	auth := r.Header.Get(AuthorizationHeader)
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ResolveSecret determines the API key forwarded upstream. When the route
// allows client-supplied keys an inbound bearer token takes precedence;
// otherwise the configured default secret is used. Both policies appear in
// real deployments, so the choice is configuration, never hardcoded.
//
// A MissingSecretError is returned when neither source yields a key.
func ResolveSecret(r *http.Request, allowClientKeys bool, defaultSecret string) (string, error) {
	if allowClientKeys {
		if token := ExtractBearerToken(r); token != "" {
			return token, nil
		}
	}
	if defaultSecret != "" {
		return defaultSecret, nil
	}
	return "", &MissingSecretError{}
}

// UpstreamHeaders builds the header set for the forwarded request. It copies
// the inbound headers, overwrites Authorization with the resolved secret,
// rewrites Host to the upstream authority, optionally forces a JSON
// Content-Type, and strips hop-by-hop headers.
func UpstreamHeaders(inbound http.Header, secret, upstreamHost string, forceJSON bool) http.Header {
	out := make(http.Header, len(inbound))
	for name, values := range inbound {
		out[name] = append([]string(nil), values...)
	}

	out.Set(AuthorizationHeader, "Bearer "+secret)
	out.Set("Host", upstreamHost)
	if forceJSON {
		out.Set("Content-Type", "application/json")
	}
	StripHopByHop(out)

	return out
}

// CORSPolicy describes the CORS headers applied to every response on a
// route, including denials and errors.
type CORSPolicy struct {
	// ReflectOrigin reflects the literal request Origin instead of "*".
	// It must be true whenever an origin allow-list is enforced or
	// credentials are allowed; a credentialed response must never carry
	// a wildcard origin.
	ReflectOrigin bool

	// AllowedMethods is the Access-Control-Allow-Methods value.
	AllowedMethods []string

	// AllowedHeaders is the Access-Control-Allow-Headers value.
	AllowedHeaders []string

	// AllowCredentials emits Access-Control-Allow-Credentials: true.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// Apply sets the CORS headers on h for a request with the given Origin.
// It is applied identically to success, denial, and error responses so
// browser clients can always read the body.
func (p *CORSPolicy) Apply(h http.Header, origin string) {
	if p.ReflectOrigin && origin != "" {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Vary", "Origin")
	} else {
		h.Set("Access-Control-Allow-Origin", "*")
	}
	if len(p.AllowedMethods) > 0 {
		h.Set("Access-Control-Allow-Methods", strings.Join(p.AllowedMethods, ", "))
	}
	if len(p.AllowedHeaders) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(p.AllowedHeaders, ", "))
	}
	if p.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	if p.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(p.MaxAge))
	}
}
