//go:build !noinflate

package flirt

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"errors"
	"io"
)

// inflateBody decompresses a signature body flagged FeatureCompressed.
// Versions 5 and 6 carry a raw deflate stream; version 7 and later wrap it
// in a zlib envelope.
func inflateBody(data []byte, version int) ([]byte, error) {
	var (
		rc  io.ReadCloser
		err error
	)
	if version <= 6 {
		rc = flate.NewReader(bytes.NewReader(data))
	} else {
		rc, err = zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.New("FLIRT decompression failed")
		}
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil || len(out) == 0 {
		return nil, errors.New("FLIRT decompression failed")
	}
	return out, nil
}

// IsGzip reports whether data starts with the gzip magic. Signature files
// are commonly shipped as .sig.gz; the decoder itself takes the raw blob.
func IsGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B
}

// UnwrapGzip decompresses a gzip-wrapped buffer. The result is suitable as
// input to Parse.
func UnwrapGzip(data []byte) ([]byte, error) {
	if !IsGzip(data) {
		return nil, errors.New("not a gzip stream")
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
