package permission

import "strings"

// RouteModule extracts the module identifier from an application route:
// the first path segment after appPrefix. It returns false when the path
// is not under the prefix or has no segment after it; such routes are not
// module-gated.
func RouteModule(path, appPrefix string) (string, bool) {
	appPrefix = strings.TrimSuffix(appPrefix, "/")
	if appPrefix == "" || !strings.HasPrefix(path, appPrefix) {
		return "", false
	}

	rest := strings.TrimPrefix(path, appPrefix)
	if rest == "" || rest[0] != '/' {
		return "", false
	}

	rest = strings.TrimPrefix(rest, "/")
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}
