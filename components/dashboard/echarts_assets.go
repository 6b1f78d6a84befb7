package dashboard

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultEChartsAssetsHost is the public go-echarts asset bucket.
const DefaultEChartsAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// NormalizeAssetsHost checks that host is an absolute http(s) URL or a root-relative
// path and returns it with a trailing slash. Empty input returns "".
func NormalizeAssetsHost(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", nil
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("dashboard: assets host %q: %w", host, err)
	}
	switch {
	case u.Scheme == "http" || u.Scheme == "https":
		if u.Host == "" {
			return "", fmt.Errorf("dashboard: assets host %q has no host", host)
		}
	case u.Scheme == "" && strings.HasPrefix(u.Path, "/"):
	default:
		return "", fmt.Errorf("dashboard: assets host %q must be http(s) or start with /", host)
	}
	if !strings.HasSuffix(host, "/") {
		host += "/"
	}
	return host, nil
}
