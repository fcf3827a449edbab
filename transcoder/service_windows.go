//go:build windows

package transcoder

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procMultiByteToWideChar = modkernel32.NewProc("MultiByteToWideChar")
	procWideCharToMultiByte = modkernel32.NewProc("WideCharToMultiByte")
)

const (
	mbErrInvalidChars = 0x00000008
	wcErrInvalidChars = 0x00000080
	wcNoBestFitChars  = 0x00000400
	codePageUTF8      = 65001
)

// Win32Service transcodes through the Win32 code page API, pivoting
// through UTF-16.
type Win32Service struct{}

func (Win32Service) Open(from, to Charset) (Handle, error) {
	if from.CodePage() == 0 || to.CodePage() == 0 {
		return nil, fmt.Errorf("win32: unsupported charset pair %s -> %s", from, to)
	}
	for _, proc := range []*windows.LazyProc{procMultiByteToWideChar, procWideCharToMultiByte} {
		if err := proc.Find(); err != nil {
			return nil, err
		}
	}
	return &win32Handle{from: from.CodePage(), to: to.CodePage()}, nil
}

type win32Handle struct {
	from, to    uint32
	usedDefault bool
	closed      bool
}

func (h *win32Handle) Transcode(src []byte) ([]byte, error) {
	if h.closed {
		return nil, serviceFailure(errHandleClosed)
	}
	h.usedDefault = false
	if len(src) == 0 {
		return []byte{}, nil
	}
	if len(src) > math.MaxInt32 {
		return nil, serviceFailure(fmt.Errorf("win32: input of %d bytes exceeds API limit", len(src)))
	}

	wide, err := h.toWide(src)
	if err != nil {
		return nil, err
	}
	if h.from != codePageUTF8 {
		if err := h.checkReversible(src, wide); err != nil {
			return nil, err
		}
	}
	return h.fromWide(wide)
}

func (h *win32Handle) toWide(src []byte) ([]uint16, error) {
	n, err := multiByteToWideChar(h.from, mbErrInvalidChars, src, nil)
	if err != nil {
		return nil, win32Error("MultiByteToWideChar", err)
	}
	wide := make([]uint16, n)
	if _, err := multiByteToWideChar(h.from, mbErrInvalidChars, src, wide); err != nil {
		return nil, win32Error("MultiByteToWideChar", err)
	}
	return wide, nil
}

// checkReversible rejects legacy input whose decoded text encodes back to
// different bytes. Code page 936 decodes some pairs many-to-one (A2E3 and
// 0x80 are both U+20AC), so converting such input would alter it.
func (h *win32Handle) checkReversible(src []byte, wide []uint16) error {
	n, err := wideCharToMultiByte(h.from, wcNoBestFitChars, wide, nil, nil)
	if err != nil {
		return win32Error("WideCharToMultiByte", err)
	}
	back := make([]byte, n)
	if _, err := wideCharToMultiByte(h.from, wcNoBestFitChars, wide, back, nil); err != nil {
		return win32Error("WideCharToMultiByte", err)
	}
	if !bytes.Equal(back, src) {
		return malformed(errors.New("win32: input has no one-to-one Unicode mapping"))
	}
	return nil
}

func (h *win32Handle) fromWide(wide []uint16) ([]byte, error) {
	// lpUsedDefaultChar must be NULL for UTF-8 targets, and
	// WC_ERR_INVALID_CHARS is only accepted for them.
	var flags uint32
	var used *int32
	var usedDefault int32
	if h.to == codePageUTF8 {
		flags = wcErrInvalidChars
	} else {
		flags = wcNoBestFitChars
		used = &usedDefault
	}

	n, err := wideCharToMultiByte(h.to, flags, wide, nil, used)
	if err != nil {
		return nil, win32Error("WideCharToMultiByte", err)
	}
	out := make([]byte, n)
	if _, err := wideCharToMultiByte(h.to, flags, wide, out, used); err != nil {
		return nil, win32Error("WideCharToMultiByte", err)
	}
	h.usedDefault = usedDefault != 0
	return out, nil
}

func (h *win32Handle) Substituted() bool { return h.usedDefault }

func (h *win32Handle) Close() error {
	h.closed = true
	return nil
}

func win32Error(op string, err error) error {
	err = fmt.Errorf("win32: %s: %w", op, err)
	if errors.Is(err, windows.ERROR_NO_UNICODE_TRANSLATION) {
		return malformed(err)
	}
	return serviceFailure(err)
}

func multiByteToWideChar(cp, flags uint32, src []byte, dst []uint16) (int, error) {
	var dstPtr unsafe.Pointer
	if len(dst) > 0 {
		dstPtr = unsafe.Pointer(&dst[0])
	}
	r1, _, e1 := procMultiByteToWideChar.Call(
		uintptr(cp),
		uintptr(flags),
		uintptr(unsafe.Pointer(&src[0])),
		uintptr(len(src)),
		uintptr(dstPtr),
		uintptr(len(dst)),
	)
	if r1 == 0 {
		return 0, e1
	}
	return int(r1), nil
}

func wideCharToMultiByte(cp, flags uint32, src []uint16, dst []byte, usedDefault *int32) (int, error) {
	var dstPtr unsafe.Pointer
	if len(dst) > 0 {
		dstPtr = unsafe.Pointer(&dst[0])
	}
	r1, _, e1 := procWideCharToMultiByte.Call(
		uintptr(cp),
		uintptr(flags),
		uintptr(unsafe.Pointer(&src[0])),
		uintptr(len(src)),
		uintptr(dstPtr),
		uintptr(len(dst)),
		0,
		uintptr(unsafe.Pointer(usedDefault)),
	)
	if r1 == 0 {
		return 0, e1
	}
	return int(r1), nil
}
