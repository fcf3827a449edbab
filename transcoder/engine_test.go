package transcoder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingService counts handles opened on the wrapped service.
type countingService struct {
	Service
	opens int
}

func (s *countingService) Open(from, to Charset) (Handle, error) {
	s.opens++
	return s.Service.Open(from, to)
}

// stubService hands out a stubHandle with canned results.
type stubService struct {
	openErr error
	handle  *stubHandle
}

func (s *stubService) Open(from, to Charset) (Handle, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.handle, nil
}

type stubHandle struct {
	out         []byte
	err         error
	substituted bool
	closed      bool
}

func (h *stubHandle) Transcode([]byte) ([]byte, error) { return h.out, h.err }
func (h *stubHandle) Substituted() bool                { return h.substituted }
func (h *stubHandle) Close() error {
	h.closed = true
	return nil
}

// ==============================================================================
// Low-level conversion
// ==============================================================================

func TestGBKToUTF8(t *testing.T) {
	conv := NewConverter(XTextService{})

	got, err := conv.GBKToUTF8(gbkHelloWorld)
	require.NoError(t, err)
	require.Equal(t, []byte{0xE4, 0xBD, 0xA0, 0xE5, 0xA5, 0xBD, 0xE4, 0xB8, 0x96, 0xE7, 0x95, 0x8C}, got)
	require.Equal(t, utf8HelloWorld, got)
}

func TestUTF8ToGBK(t *testing.T) {
	conv := NewConverter(XTextService{})

	got, err := conv.UTF8ToGBK(utf8HelloWorld)
	require.NoError(t, err)
	require.Equal(t, gbkHelloWorld, got)

	got, err = conv.UTF8ToGBK([]byte("你好，世界"))
	require.NoError(t, err)
	require.Equal(t, []byte{0xC4, 0xE3, 0xBA, 0xC3, 0xA3, 0xAC, 0xCA, 0xC0, 0xBD, 0xE7}, got)
}

func TestLowLevel_RoundTrip(t *testing.T) {
	conv := NewConverter(XTextService{})

	utf8Data, err := conv.GBKToUTF8(gbkHelloWorld)
	require.NoError(t, err)
	restored, err := conv.UTF8ToGBK(utf8Data)
	require.NoError(t, err)
	require.Equal(t, gbkHelloWorld, restored)
}

func TestLowLevel_RoundTripLevelOneHanzi(t *testing.T) {
	var gbk []byte
	for lead := 0xB0; lead <= 0xD6; lead++ {
		for trail := 0xA1; trail <= 0xFE; trail++ {
			gbk = append(gbk, byte(lead), byte(trail))
		}
	}
	require.Equal(t, EncodingGBK, DetectEncoding(gbk))

	conv := NewConverter(XTextService{})
	utf8Data, err := conv.GBKToUTF8(gbk)
	require.NoError(t, err)
	restored, err := conv.UTF8ToGBK(utf8Data)
	require.NoError(t, err)
	require.Equal(t, gbk, restored)
}

func TestLowLevel_RoundTripAllPairs(t *testing.T) {
	conv := NewConverter(XTextService{})

	converted := 0
	for lead := 0x81; lead <= 0xFE; lead++ {
		for trail := 0x40; trail <= 0xFE; trail++ {
			if trail == 0x7F {
				continue
			}
			pair := []byte{byte(lead), byte(trail)}
			if DetectEncoding(pair) != EncodingGBK {
				continue
			}

			utf8Data, err := conv.GBKToUTF8(pair)
			if err != nil {
				require.ErrorIs(t, err, ErrMalformedInput, "% X", pair)
				continue
			}
			restored, err := conv.UTF8ToGBK(utf8Data)
			require.NoError(t, err, "% X", pair)
			require.Equal(t, pair, restored, "% X -> % X", pair, utf8Data)
			converted++
		}
	}
	require.Greater(t, converted, 18000)
}

func TestGBKToUTF8_ManyToOnePairs(t *testing.T) {
	conv := NewConverter(XTextService{})

	// A2E3 and A3A0 decode to the same runes as 0x80 and A1A1.
	for _, pair := range [][]byte{{0xA2, 0xE3}, {0xA3, 0xA0}, {'x', 0xC4, 0xE3, 0xA3, 0xA0}} {
		got, err := conv.GBKToUTF8(pair)
		require.ErrorIs(t, err, ErrMalformedInput, "% X", pair)
		require.Nil(t, got)

		_, err = conv.ToUTF8(pair)
		require.ErrorIs(t, err, ErrMalformedInput, "% X", pair)
	}

	for _, canonical := range [][]byte{{0x80}, {0xA1, 0xA1}} {
		utf8Data, err := conv.GBKToUTF8(canonical)
		require.NoError(t, err)
		restored, err := conv.UTF8ToGBK(utf8Data)
		require.NoError(t, err)
		require.Equal(t, canonical, restored)
	}
}

func TestUTF8ToGBK_Unrepresentable(t *testing.T) {
	conv := NewConverter(XTextService{})

	got, err := conv.UTF8ToGBK(utf8WithEmoji)
	require.ErrorIs(t, err, ErrUnrepresentable)
	require.Nil(t, got)

	var convErr *Error
	require.ErrorAs(t, err, &convErr)
	require.Equal(t, "UTF8ToGBK", convErr.Op)
	require.Equal(t, CharsetUTF8, convErr.From)
	require.Equal(t, CharsetGBK, convErr.To)
}

func TestUTF8ToGBK_Malformed(t *testing.T) {
	conv := NewConverter(XTextService{})

	_, err := conv.UTF8ToGBK([]byte{'a', 0xFF, 'b'})
	require.ErrorIs(t, err, ErrMalformedInput)

	_, err = conv.UTF8ToGBK(truncatedUTF8)
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestGBKToUTF8_Malformed(t *testing.T) {
	conv := NewConverter(XTextService{})

	got, err := conv.GBKToUTF8(brokenGBK)
	require.ErrorIs(t, err, ErrMalformedInput)
	require.Nil(t, got)

	_, err = conv.GBKToUTF8(truncatedGBK)
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestLowLevel_EmptyInputSkipsService(t *testing.T) {
	svc := &countingService{Service: XTextService{}}
	conv := NewConverter(svc)

	got, err := conv.GBKToUTF8(nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	got, err = conv.UTF8ToGBK([]byte{})
	require.NoError(t, err)
	require.Empty(t, got)

	require.Zero(t, svc.opens)
}

func TestLowLevel_ASCIIPassesThrough(t *testing.T) {
	conv := NewConverter(XTextService{})

	got, err := conv.UTF8ToGBK(asciiText)
	require.NoError(t, err)
	require.Equal(t, asciiText, got)

	got, err = conv.GBKToUTF8(asciiText)
	require.NoError(t, err)
	require.Equal(t, asciiText, got)
}

// ==============================================================================
// Smart conversion
// ==============================================================================

func TestToUTF8(t *testing.T) {
	conv := NewConverter(XTextService{})

	got, err := conv.ToUTF8(gbkHelloWorld)
	require.NoError(t, err)
	require.Equal(t, utf8HelloWorld, got)

	got, err = conv.ToUTF8(utf8HelloWorld)
	require.NoError(t, err)
	require.Equal(t, utf8HelloWorld, got)

	got, err = conv.ToUTF8(asciiText)
	require.NoError(t, err)
	require.Equal(t, asciiText, got)

	_, err = conv.ToUTF8(brokenGBK)
	require.ErrorIs(t, err, ErrUnrecognizedEncoding)
}

func TestToGBK(t *testing.T) {
	conv := NewConverter(XTextService{})

	got, err := conv.ToGBK(utf8HelloWorld)
	require.NoError(t, err)
	require.Equal(t, gbkHelloWorld, got)

	got, err = conv.ToGBK(gbkHelloWorld)
	require.NoError(t, err)
	require.Equal(t, gbkHelloWorld, got)

	got, err = conv.ToGBK(asciiText)
	require.NoError(t, err)
	require.Equal(t, asciiText, got)

	_, err = conv.ToGBK(truncatedUTF8)
	require.ErrorIs(t, err, ErrUnrecognizedEncoding)

	_, err = conv.ToGBK(utf8WithEmoji)
	require.ErrorIs(t, err, ErrUnrepresentable)
}

func TestSmart_UnknownRejected(t *testing.T) {
	svc := &countingService{Service: XTextService{}}
	conv := NewConverter(svc)

	_, err := conv.ToGBK([]byte{0xFF, 0xFE})
	require.ErrorIs(t, err, ErrUnrecognizedEncoding)
	_, err = conv.ToUTF8([]byte{0xFF, 0xFE})
	require.ErrorIs(t, err, ErrUnrecognizedEncoding)
	require.Zero(t, svc.opens)
}

func TestSmart_NoOpSkipsService(t *testing.T) {
	svc := &countingService{Service: XTextService{}}
	conv := NewConverter(svc)

	got, err := conv.ToUTF8(utf8HelloWorld)
	require.NoError(t, err)
	require.Equal(t, utf8HelloWorld, got)

	_, err = conv.ToGBK(gbkHelloWorld)
	require.NoError(t, err)
	_, err = conv.ToUTF8(asciiText)
	require.NoError(t, err)
	_, err = conv.ToGBK(asciiText)
	require.NoError(t, err)

	require.Zero(t, svc.opens)

	_, err = conv.ToUTF8(gbkHelloWorld)
	require.NoError(t, err)
	require.Equal(t, 1, svc.opens)
}

func TestSmart_ResultIsCopy(t *testing.T) {
	conv := NewConverter(XTextService{})
	in := []byte("copy me")

	got, err := conv.ToUTF8(in)
	require.NoError(t, err)
	got[0] = 'C'
	require.Equal(t, []byte("copy me"), in)
}

func TestSmart_Idempotent(t *testing.T) {
	conv := NewConverter(XTextService{})
	for _, in := range [][]byte{gbkHelloWorld, utf8HelloWorld, asciiText, nil} {
		once, err := conv.ToUTF8(in)
		require.NoError(t, err)
		twice, err := conv.ToUTF8(once)
		require.NoError(t, err)
		require.Equal(t, once, twice)
	}
}

func TestToUTF8String(t *testing.T) {
	conv := NewConverter(XTextService{})

	s, err := conv.ToUTF8String(gbkHelloWorld)
	require.NoError(t, err)
	require.Equal(t, "你好世界", s)

	_, err = conv.ToUTF8String(brokenGBK)
	require.ErrorIs(t, err, ErrUnrecognizedEncoding)

	// Surrogate halves pass detection but are not valid text.
	_, err = conv.ToUTF8String([]byte{0xED, 0xA0, 0x80})
	require.ErrorIs(t, err, ErrMalformedInput)
}

func TestPackageLevelFunctions(t *testing.T) {
	got, err := ToUTF8(gbkHelloWorld)
	require.NoError(t, err)
	require.Equal(t, utf8HelloWorld, got)

	got, err = ToGBK(utf8HelloWorld)
	require.NoError(t, err)
	require.Equal(t, gbkHelloWorld, got)

	got, err = GBKToUTF8(gbkHelloWorld)
	require.NoError(t, err)
	require.Equal(t, utf8HelloWorld, got)

	_, err = UTF8ToGBK(utf8WithEmoji)
	require.ErrorIs(t, err, ErrUnrepresentable)

	s, err := ToUTF8String(asciiText)
	require.NoError(t, err)
	require.Equal(t, string(asciiText), s)
}

// ==============================================================================
// Service failures
// ==============================================================================

func TestTranscode_OpenFailure(t *testing.T) {
	conv := NewConverter(&stubService{openErr: errors.New("no descriptor")})

	_, err := conv.UTF8ToGBK(utf8HelloWorld)
	require.ErrorIs(t, err, ErrService)
	require.ErrorContains(t, err, "no descriptor")
}

func TestTranscode_HandleClosedOnEveryPath(t *testing.T) {
	tests := []struct {
		name   string
		handle *stubHandle
		to     Charset
		want   error
	}{
		{"success", &stubHandle{out: []byte("ok")}, CharsetGBK, nil},
		{"untagged error", &stubHandle{err: errors.New("E2BIG")}, CharsetGBK, ErrService},
		{"malformed", &stubHandle{err: malformed(errors.New("EILSEQ"))}, CharsetUTF8, ErrMalformedInput},
		{"substituted to gbk", &stubHandle{out: []byte("?"), substituted: true}, CharsetGBK, ErrUnrepresentable},
		{"substituted to utf-8", &stubHandle{out: []byte("\uFFFD"), substituted: true}, CharsetUTF8, ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv := NewConverter(&stubService{handle: tt.handle})

			var got []byte
			var err error
			if tt.to == CharsetGBK {
				got, err = conv.UTF8ToGBK([]byte("x"))
			} else {
				got, err = conv.GBKToUTF8([]byte("x"))
			}

			require.True(t, tt.handle.closed)
			if tt.want == nil {
				require.NoError(t, err)
				require.Equal(t, tt.handle.out, got)
				return
			}
			require.ErrorIs(t, err, tt.want)
			require.Nil(t, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Op: "UTF8ToGBK", From: CharsetUTF8, To: CharsetGBK, Kind: ErrUnrepresentable}
	assert.Equal(t, "UTF8ToGBK: character not representable in target encoding (UTF-8 -> GBK)", err.Error())

	err = &Error{Op: "ToGBK", Kind: ErrUnrecognizedEncoding}
	assert.Equal(t, "ToGBK: unrecognized encoding", err.Error())

	cause := errors.New("boom")
	err = &Error{Op: "GBKToUTF8", From: CharsetGBK, To: CharsetUTF8, Kind: ErrService, Err: cause}
	assert.Equal(t, "GBKToUTF8: transcoding service failure (GBK -> UTF-8): boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrService)
	assert.NotErrorIs(t, err, ErrMalformedInput)
}
