package transcoder

import "unicode/utf8"

type utf8Status int

const (
	utf8Valid utf8Status = iota
	utf8Invalid
	utf8Incomplete
)

// validateUTF8 checks data against a lead-byte-range UTF-8 grammar.
//
// Only the lead byte ranges are checked, so some overlong and surrogate
// forms (E0 80 80, ED A0 80, F4 90 80 80) pass. Classification of existing
// data depends on this, keep it as is.
func validateUTF8(data []byte) (status utf8Status, allASCII bool) {
	allASCII = true
	pending := 0
	for _, b := range data {
		if b >= utf8.RuneSelf {
			allASCII = false
		}
		if pending > 0 {
			if b&0xC0 != 0x80 {
				return utf8Invalid, allASCII
			}
			pending--
			continue
		}
		switch {
		case b < utf8.RuneSelf:
		case b >= 0xC2 && b <= 0xDF:
			pending = 1
		case b >= 0xE0 && b <= 0xEF:
			pending = 2
		case b >= 0xF0 && b <= 0xF4:
			pending = 3
		default:
			return utf8Invalid, allASCII
		}
	}
	if pending != 0 {
		return utf8Incomplete, allASCII
	}
	return utf8Valid, allASCII
}

// isValidGBK checks data against the GBK double-byte grammar:
// lead 0x81-0xFE followed by trail 0x40-0xFE other than 0x7F.
// A lead byte at the very end is invalid.
func isValidGBK(data []byte) bool {
	for i := 0; i < len(data); i++ {
		b := data[i]
		if b < utf8.RuneSelf {
			continue
		}
		if b < 0x81 || b > 0xFE {
			return false
		}
		if i+1 >= len(data) {
			return false
		}
		i++
		if t := data[i]; t < 0x40 || t > 0xFE || t == 0x7F {
			return false
		}
	}
	return true
}
