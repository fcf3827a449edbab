package transcoder

// Charset names one side of a transcoding pair.
type Charset int

const (
	CharsetNone Charset = iota
	CharsetUTF8
	CharsetGBK
)

func (c Charset) String() string {
	switch c {
	case CharsetUTF8:
		return "UTF-8"
	case CharsetGBK:
		return "GBK"
	default:
		return "none"
	}
}

// CodePage returns the Windows code page identifier of c.
func (c Charset) CodePage() uint32 {
	switch c {
	case CharsetUTF8:
		return 65001
	case CharsetGBK:
		return 936
	default:
		return 0
	}
}

// Service is a platform transcoding primitive. It knows nothing about
// detection; it converts whatever it is handed from one charset to another.
type Service interface {
	// Open acquires a handle for the (from, to) pair. The caller must Close it.
	Open(from, to Charset) (Handle, error)
}

// Handle is a single-use-at-a-time transcoding session.
type Handle interface {
	// Transcode converts the whole of src. Characters the target cannot
	// encode may be replaced silently; Substituted reports whether that
	// happened during the last call.
	Transcode(src []byte) ([]byte, error)
	Substituted() bool
	Close() error
}
