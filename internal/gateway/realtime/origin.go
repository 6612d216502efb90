package realtime

import (
	"errors"
	"net/url"
	"strings"

	"github.com/syntrixbase/showroom/internal/gateway/config"
)

var errOriginNotAllowed = errors.New("origin not allowed")

// checkAllowedOrigin accepts an empty origin (non-browser clients), the request's
// own host on any port, localhost when dev origins are enabled, and any origin
// listed in cfg.AllowedOrigins.
func checkAllowedOrigin(origin, reqHost string, cfg config.RealtimeConfig) error {
	if origin == "" {
		return nil
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return errOriginNotAllowed
	}

	originHost := hostOnly(parsed.Host)
	if strings.EqualFold(originHost, hostOnly(reqHost)) {
		return nil
	}

	if cfg.AllowDevOrigin && (originHost == "localhost" || originHost == "127.0.0.1") {
		return nil
	}

	trimmed := strings.TrimRight(origin, "/")
	for _, allowed := range cfg.AllowedOrigins {
		if allowed == "*" || (allowed != "" && strings.EqualFold(strings.TrimRight(allowed, "/"), trimmed)) {
			return nil
		}
	}
	return errOriginNotAllowed
}

func hostOnly(hostport string) string {
	host, _, _ := strings.Cut(hostport, ":")
	return host
}
