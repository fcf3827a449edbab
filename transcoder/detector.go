// Package transcoder detects whether bytes are ASCII, UTF-8 or GBK and
// converts strictly between UTF-8 and GBK.
package transcoder

// Encoding represents the detected encoding of a byte sequence.
type Encoding int

const (
	EncodingUnknown Encoding = iota
	EncodingASCII
	EncodingGBK
	EncodingUTF8
)

func (e Encoding) String() string {
	switch e {
	case EncodingASCII:
		return "ascii"
	case EncodingGBK:
		return "gbk"
	case EncodingUTF8:
		return "utf-8"
	default:
		return "unknown"
	}
}

// DetectEncoding classifies data as ASCII, UTF-8, GBK or unknown.
//
// UTF-8 is tried first because its grammar is much stricter than GBK's.
// Data that ends in the middle of a UTF-8 sequence is reported as unknown
// rather than GBK, since it is most likely a chunk cut at a buffer boundary.
func DetectEncoding(data []byte) Encoding {
	if len(data) == 0 {
		return EncodingASCII
	}

	switch status, allASCII := validateUTF8(data); status {
	case utf8Valid:
		if allASCII {
			return EncodingASCII
		}
		return EncodingUTF8
	case utf8Incomplete:
		return EncodingUnknown
	}

	if isValidGBK(data) {
		return EncodingGBK
	}
	return EncodingUnknown
}

// IsUTF8 reports whether data is UTF-8 (pure ASCII included).
func IsUTF8(data []byte) bool {
	enc := DetectEncoding(data)
	return enc == EncodingUTF8 || enc == EncodingASCII
}

// IsGBK reports whether data is GBK (pure ASCII included).
func IsGBK(data []byte) bool {
	enc := DetectEncoding(data)
	return enc == EncodingGBK || enc == EncodingASCII
}
