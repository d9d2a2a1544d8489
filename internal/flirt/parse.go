package flirt

import (
	"errors"
	"io"
)

type parser struct {
	r       reader
	version int
}

// Parse decodes a raw signature blob into a Result. It never panics on
// malformed input; any error aborts the whole parse and is surfaced in
// Result.ErrorMessage with an empty module list. Gzip-wrapped files must be
// unwrapped first (see UnwrapGzip).
func Parse(data []byte) *Result {
	res := &Result{}
	p := &parser{r: reader{data: data}}

	if err := p.parseHeader(res); err != nil {
		res.ErrorMessage = err.Error()
		return res
	}

	if res.Header.Features&FeatureCompressed != 0 {
		body, err := inflateBody(p.r.data[p.r.pos:], p.version)
		if err != nil {
			res.ErrorMessage = err.Error()
			return res
		}
		p.r = reader{data: body}
	}

	if err := p.parseTree(res, nil, 0); err != nil {
		msg := err.Error()
		if errors.Is(err, io.ErrUnexpectedEOF) {
			msg = "Unexpected EOF in tree"
		}
		if msg == "" {
			msg = "Parse error in signature tree"
		}
		res.ErrorMessage = msg
		res.Modules = nil
		return res
	}

	res.Success = true
	return res
}
