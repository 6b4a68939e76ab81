package middleware

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// DocsAccess restricts who may read the API documentation.
type DocsAccess struct {
	RequireAuth bool
	AllowedIPs  []string // addresses or CIDR prefixes; empty allows any client
}

// DocsGuard enforces access on the /swagger routes. The client IP is checked
// before authentication so a blocked network never reaches the JWT check.
func DocsGuard(access DocsAccess, authenticate gin.HandlerFunc) (gin.HandlerFunc, error) {
	prefixes, err := parseAllowList(access.AllowedIPs)
	if err != nil {
		return nil, err
	}
	if access.RequireAuth && authenticate == nil {
		return nil, fmt.Errorf("docs guard: authentication required but no middleware given")
	}

	return func(c *gin.Context) {
		if len(prefixes) > 0 && !clientAllowed(c.ClientIP(), prefixes) {
			abortWithError(c, http.StatusForbidden, "ERR_FORBIDDEN", "API documentation is not available from this network")
			return
		}
		if access.RequireAuth {
			authenticate(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}, nil
}

func parseAllowList(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("docs guard: invalid prefix %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("docs guard: invalid address %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func clientAllowed(ip string, prefixes []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
