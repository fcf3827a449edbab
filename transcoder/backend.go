package transcoder

import (
	"fmt"
	"strings"
)

// ServiceByName resolves a backend name: "auto" (or empty) for the
// platform default, "xtext", or "win32" where available.
func ServiceByName(name string) (Service, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "auto":
		return DefaultService(), nil
	case "xtext":
		return XTextService{}, nil
	default:
		if svc, ok := platformService(n); ok {
			return svc, nil
		}
		return nil, fmt.Errorf("unknown or unavailable transcoding backend %q", name)
	}
}
