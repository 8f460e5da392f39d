package rate

import (
	"net"
	"net/http"

	"github.com/irsalhamdi/wholesale-storefront/core/claims"
)

// Key buckets signed-in callers by principal and everyone else by client IP.
func Key(r *http.Request) string {
	if id := claims.Lookup(r.Context()); id != nil {
		return "principal:" + id.Principal
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
