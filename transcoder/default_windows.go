//go:build windows

package transcoder

// DefaultService returns the Win32 code page backend.
func DefaultService() Service { return Win32Service{} }

func platformService(name string) (Service, bool) {
	if name == "win32" {
		return Win32Service{}, true
	}
	return nil, false
}
