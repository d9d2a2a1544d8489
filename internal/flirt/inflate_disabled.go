//go:build noinflate

package flirt

import "errors"

// Inflate support compiled out. Compressed bodies and gzip envelopes are
// rejected with a stable diagnostic.

func inflateBody(data []byte, version int) ([]byte, error) {
	return nil, errors.New("Compressed .sig requires zlib")
}

func IsGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1F && data[1] == 0x8B
}

func UnwrapGzip(data []byte) ([]byte, error) {
	return nil, errors.New("Compressed .sig requires zlib")
}
