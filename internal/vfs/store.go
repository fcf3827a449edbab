package vfs

import (
	"github.com/greatbody/encoding-util/transcoder"
)

// Converter is the part of transcoder.Converter the proxy needs.
type Converter interface {
	ToUTF8(data []byte) ([]byte, error)
	UTF8ToGBK(data []byte) ([]byte, error)
}

// decodeStored turns raw file bytes into the UTF-8 view served to the
// client and reports the encoding found on disk.
func decodeStored(conv Converter, raw []byte) ([]byte, transcoder.Encoding, error) {
	enc := transcoder.DetectEncoding(raw)
	content, err := conv.ToUTF8(raw)
	if err != nil {
		return nil, enc, err
	}
	return content, enc, nil
}

// encodeForStore turns the client's UTF-8 view back into on-disk bytes.
// Files that were UTF-8 stay UTF-8; GBK, ASCII and new files are stored as
// GBK. Characters GBK cannot hold fail the write instead of being replaced.
func encodeForStore(conv Converter, stored transcoder.Encoding, content []byte) ([]byte, error) {
	if stored == transcoder.EncodingUTF8 {
		return content, nil
	}
	return conv.UTF8ToGBK(content)
}
