//go:build !windows

package transcoder

// DefaultService returns the x/text backend.
func DefaultService() Service { return XTextService{} }

func platformService(string) (Service, bool) { return nil, false }
