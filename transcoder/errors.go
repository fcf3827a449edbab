package transcoder

import (
	"errors"
	"fmt"
)

// Failure kinds. Match them with errors.Is.
var (
	// ErrUnrecognizedEncoding: smart conversion of data that detects as unknown.
	ErrUnrecognizedEncoding = errors.New("unrecognized encoding")
	// ErrUnrepresentable: the source holds a character the target encoding cannot encode.
	ErrUnrepresentable = errors.New("character not representable in target encoding")
	// ErrMalformedInput: the source does not parse under the asserted encoding.
	ErrMalformedInput = errors.New("malformed input")
	// ErrService: the transcoding service failed independently of the content.
	ErrService = errors.New("transcoding service failure")
)

// Error is returned by every failing conversion.
type Error struct {
	Op   string  // ToUTF8, UTF8ToGBK, ...
	From Charset // zero for detection failures
	To   Charset
	Kind error // one of the Err* sentinels
	Err  error // backend cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.Error()
	if e.From != CharsetNone && e.To != CharsetNone {
		msg = fmt.Sprintf("%s (%s -> %s)", msg, e.From, e.To)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// kindError lets a backend tag its error with a failure kind.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string   { return e.err.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

func malformed(err error) error { return &kindError{kind: ErrMalformedInput, err: err} }

func serviceFailure(err error) error { return &kindError{kind: ErrService, err: err} }

// classify picks the failure kind a backend attached to err,
// defaulting to ErrService.
func classify(err error) error {
	for _, kind := range []error{ErrMalformedInput, ErrUnrepresentable, ErrService} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrService
}
