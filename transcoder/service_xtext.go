package transcoder

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var errHandleClosed = errors.New("handle is closed")

// XTextService transcodes with golang.org/x/text, pivoting through UTF-8.
// It is available on every platform.
type XTextService struct{}

// Open builds a transformer chain for the pair. GBK decoding and encoding
// substitute like the platform APIs do; the handle records when they did.
func (XTextService) Open(from, to Charset) (Handle, error) {
	h := &xtextHandle{}

	var links []transform.Transformer
	switch from {
	case CharsetUTF8:
		links = append(links, encoding.UTF8Validator)
	case CharsetGBK:
		dec := reversibleDecoder{dec: simplifiedchinese.GBK.NewDecoder(), enc: simplifiedchinese.GBK.NewEncoder()}
		links = append(links, replacementWatcher{t: dec, seen: &h.substituted})
	default:
		return nil, fmt.Errorf("xtext: unsupported source charset %s", from)
	}

	switch to {
	case CharsetUTF8:
	case CharsetGBK:
		links = append(links, fallbackEncoder{t: simplifiedchinese.GBK.NewEncoder(), used: &h.substituted})
	default:
		return nil, fmt.Errorf("xtext: unsupported target charset %s", to)
	}

	h.t = transform.Chain(links...)
	return h, nil
}

type xtextHandle struct {
	t           transform.Transformer
	substituted bool
}

func (h *xtextHandle) Transcode(src []byte) ([]byte, error) {
	if h.t == nil {
		return nil, serviceFailure(errHandleClosed)
	}
	h.substituted = false
	out, _, err := transform.Bytes(h.t, src)
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformedInput):
			return nil, err
		case errors.Is(err, encoding.ErrInvalidUTF8):
			return nil, malformed(err)
		}
		return nil, serviceFailure(err)
	}
	return out, nil
}

func (h *xtextHandle) Substituted() bool { return h.substituted }

func (h *xtextHandle) Close() error {
	h.t = nil
	return nil
}

var replacementChar = []byte(string(utf8.RuneError))

// replacementWatcher flags output containing U+FFFD. None of the legacy
// encodings handled here map anything to U+FFFD, so seeing it means the
// decoder replaced an undecodable byte.
type replacementWatcher struct {
	t    transform.Transformer
	seen *bool
}

func (w replacementWatcher) Reset() { w.t.Reset() }

func (w replacementWatcher) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	nDst, nSrc, err = w.t.Transform(dst, src, atEOF)
	if bytes.Contains(dst[:nDst], replacementChar) {
		*w.seen = true
	}
	return nDst, nSrc, err
}

var errNotReversible = errors.New("xtext: GBK input has no one-to-one Unicode mapping")

// reversibleDecoder rejects GBK that decodes to runes whose GBK encoding is
// different bytes. x/text maps a few pairs many-to-one: A2E3 decodes to
// U+20AC like 0x80 does, A3A0 to U+3000 like A1A1.
type reversibleDecoder struct {
	dec transform.Transformer
	enc transform.Transformer
}

func (d reversibleDecoder) Reset() { d.dec.Reset() }

func (d reversibleDecoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	nDst, nSrc, err = d.dec.Transform(dst, src, atEOF)
	out := dst[:nDst]
	// Undecodable bytes are reported through the replacement watcher.
	if bytes.Contains(out, replacementChar) {
		return nDst, nSrc, err
	}
	back, _, encErr := transform.Bytes(d.enc, out)
	if encErr != nil || !bytes.Equal(back, src[:nSrc]) {
		return 0, 0, malformed(errNotReversible)
	}
	return nDst, nSrc, err
}

// repertoireError is implemented by x/text encoder errors for runes the
// destination encoding cannot represent.
type repertoireError interface {
	Replacement() byte
}

// fallbackEncoder writes the encoding's replacement byte for each
// unsupported rune and records that it did so.
type fallbackEncoder struct {
	t    transform.Transformer
	used *bool
}

func (f fallbackEncoder) Reset() { f.t.Reset() }

func (f fallbackEncoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	nDst, nSrc, err = f.t.Transform(dst, src, atEOF)
	for err != nil {
		var rerr repertoireError
		if !errors.As(err, &rerr) {
			return nDst, nSrc, err
		}
		if nDst >= len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		dst[nDst] = rerr.Replacement()
		nDst++
		_, size := utf8.DecodeRune(src[nSrc:])
		nSrc += size
		*f.used = true

		d, s, e := f.t.Transform(dst[nDst:], src[nSrc:], atEOF)
		nDst += d
		nSrc += s
		err = e
	}
	return nDst, nSrc, nil
}
