// Package sigstore loads FLIRT signature files from disk, handling the
// optional gzip file envelope in front of the decoder.
package sigstore

import (
	"fmt"
	"os"

	"github.com/samcharles93/sigscope/internal/flirt"
)

// Load reads the file at path, unwraps a gzip envelope when present, and
// decodes the signature.
func Load(path string) (*flirt.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// LoadBytes decodes an in-memory buffer, raw or gzip-wrapped. Decode
// failures carry the decoder's diagnostic message.
func LoadBytes(data []byte) (*flirt.Result, error) {
	if flirt.IsGzip(data) {
		raw, err := flirt.UnwrapGzip(data)
		if err != nil {
			return nil, fmt.Errorf("unwrap gzip envelope: %w", err)
		}
		data = raw
	}
	res := flirt.Parse(data)
	if !res.Success {
		return nil, fmt.Errorf("decode signature: %s", res.ErrorMessage)
	}
	return res, nil
}

// Sniff reports whether the file at path holds a FLIRT signature, looking
// through a gzip envelope if needed, and returns the version.
func Sniff(path string) (bool, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, 0, err
	}
	if flirt.IsGzip(data) {
		raw, err := flirt.UnwrapGzip(data)
		if err != nil {
			return false, 0, nil
		}
		data = raw
	}
	ok, version := flirt.Sniff(data)
	return ok, version, nil
}
