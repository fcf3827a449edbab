package transcoder

import "unicode/utf8"

// Converter converts between UTF-8 and GBK through a Service.
// It holds no mutable state and is safe for concurrent use.
type Converter struct {
	svc Service
}

// NewConverter returns a Converter backed by svc, or by DefaultService
// when svc is nil.
func NewConverter(svc Service) *Converter {
	if svc == nil {
		svc = DefaultService()
	}
	return &Converter{svc: svc}
}

var std = NewConverter(nil)

// GBKToUTF8 converts GBK data to UTF-8 without detecting the source encoding.
func (c *Converter) GBKToUTF8(data []byte) ([]byte, error) {
	return c.transcode("GBKToUTF8", data, CharsetGBK, CharsetUTF8)
}

// UTF8ToGBK converts UTF-8 data to GBK without detecting the source encoding.
// It fails with ErrUnrepresentable if any character has no GBK encoding.
func (c *Converter) UTF8ToGBK(data []byte) ([]byte, error) {
	return c.transcode("UTF8ToGBK", data, CharsetUTF8, CharsetGBK)
}

// ToUTF8 returns data as UTF-8. UTF-8 and ASCII input is copied unchanged,
// GBK input is converted and anything else fails with ErrUnrecognizedEncoding.
func (c *Converter) ToUTF8(data []byte) ([]byte, error) {
	switch DetectEncoding(data) {
	case EncodingUTF8, EncodingASCII:
		return clone(data), nil
	case EncodingGBK:
		return c.GBKToUTF8(data)
	default:
		return nil, &Error{Op: "ToUTF8", Kind: ErrUnrecognizedEncoding}
	}
}

// ToGBK returns data as GBK. GBK and ASCII input is copied unchanged,
// UTF-8 input is converted and anything else fails with ErrUnrecognizedEncoding.
func (c *Converter) ToGBK(data []byte) ([]byte, error) {
	switch DetectEncoding(data) {
	case EncodingGBK, EncodingASCII:
		return clone(data), nil
	case EncodingUTF8:
		return c.UTF8ToGBK(data)
	default:
		return nil, &Error{Op: "ToGBK", Kind: ErrUnrecognizedEncoding}
	}
}

// ToUTF8String is ToUTF8 returning a string that is guaranteed valid UTF-8.
func (c *Converter) ToUTF8String(data []byte) (string, error) {
	out, err := c.ToUTF8(data)
	if err != nil {
		return "", err
	}
	// The detector tolerates a few forms utf8.Valid rejects (surrogates,
	// overlongs); those are not text a string should carry.
	if !utf8.Valid(out) {
		return "", &Error{Op: "ToUTF8String", Kind: ErrMalformedInput}
	}
	return string(out), nil
}

func (c *Converter) transcode(op string, data []byte, from, to Charset) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}

	h, err := c.svc.Open(from, to)
	if err != nil {
		return nil, &Error{Op: op, From: from, To: to, Kind: ErrService, Err: err}
	}
	defer h.Close()

	out, err := h.Transcode(data)
	if err != nil {
		return nil, &Error{Op: op, From: from, To: to, Kind: classify(err), Err: err}
	}
	if h.Substituted() {
		kind := ErrMalformedInput
		if to == CharsetGBK {
			kind = ErrUnrepresentable
		}
		return nil, &Error{Op: op, From: from, To: to, Kind: kind}
	}
	return out, nil
}

func clone(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// GBKToUTF8 converts GBK data to UTF-8 with the default converter.
func GBKToUTF8(data []byte) ([]byte, error) { return std.GBKToUTF8(data) }

// UTF8ToGBK converts UTF-8 data to GBK with the default converter.
func UTF8ToGBK(data []byte) ([]byte, error) { return std.UTF8ToGBK(data) }

// ToUTF8 converts data to UTF-8 with the default converter.
func ToUTF8(data []byte) ([]byte, error) { return std.ToUTF8(data) }

// ToGBK converts data to GBK with the default converter.
func ToGBK(data []byte) ([]byte, error) { return std.ToGBK(data) }

// ToUTF8String converts data to a UTF-8 string with the default converter.
func ToUTF8String(data []byte) (string, error) { return std.ToUTF8String(data) }
