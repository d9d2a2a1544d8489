package flirt

// Shared builders for synthetic signature files. Tests compose raw byte
// streams with these helpers so each case states exactly what is on the
// wire.

func u16le(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }
func u32le(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
func u16be(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }
func u32be(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// encMax2 encodes a value <= 0x7FFF in the max-2-bytes scheme.
func encMax2(v uint16) []byte {
	if v < 0x80 {
		return []byte{byte(v)}
	}
	return []byte{0x80 | byte(v>>8), byte(v)}
}

// encMulti encodes a value in the shortest multiple-bytes form.
func encMulti(v uint32) []byte {
	switch {
	case v < 0x80:
		return []byte{byte(v)}
	case v < 0x4000:
		return []byte{0x80 | byte(v>>8), byte(v)}
	case v < 0x20000000:
		return []byte{0xC0 | byte(v>>24), byte(v >> 16), byte(v >> 8), byte(v)}
	default:
		return append([]byte{0xE0}, u32be(v)...)
	}
}

// encVar encodes an offset or length with the version-gated scheme used in
// module bodies.
func encVar(version int, v uint32) []byte {
	if version >= 9 {
		return encMulti(v)
	}
	return encMax2(uint16(v))
}

// encMask encodes a variant mask for the given node length.
func encMask(nodeLen int, mask uint64) []byte {
	switch {
	case nodeLen < 16:
		return encMax2(uint16(mask))
	case nodeLen <= 32:
		return encMulti(uint32(mask))
	default:
		return append(encMulti(uint32(mask>>32)), encMulti(uint32(mask))...)
	}
}

type headerOpts struct {
	arch      uint8
	fileTypes uint32
	osTypes   uint16
	appTypes  uint16
	features  uint16
	oldCount  uint16
	crc       uint16
	ctype     [12]byte
	ctypesCRC uint16
	funcCount uint32 // version >= 6
	patSize   uint16 // version >= 8
	reserved  uint16 // version >= 10
	libName   string
}

// buildHeader assembles magic, version byte, the v5 fixed block, the
// version-gated fields and the library name.
func buildHeader(version int, o headerOpts) []byte {
	b := []byte(Magic)
	b = append(b, byte(version))
	b = append(b, o.arch)
	b = append(b, u32le(o.fileTypes)...)
	b = append(b, u16le(o.osTypes)...)
	b = append(b, u16le(o.appTypes)...)
	b = append(b, u16le(o.features)...)
	b = append(b, u16le(o.oldCount)...)
	b = append(b, u16le(o.crc)...)
	b = append(b, o.ctype[:]...)
	b = append(b, byte(len(o.libName)))
	b = append(b, u16le(o.ctypesCRC)...)
	if version >= 6 {
		b = append(b, u32le(o.funcCount)...)
	}
	if version >= 8 {
		b = append(b, u16be(o.patSize)...)
	}
	if version >= 10 {
		b = append(b, u16be(o.reserved)...)
	}
	b = append(b, o.libName...)
	return b
}

// testFunc describes one public function for encFuncs.
type testFunc struct {
	delta uint32
	attr  byte // 0 = no attribute byte
	name  string
}

// encFuncs encodes a module's public function list. Every function except
// the last is terminated with the MORE_PUBLIC_NAMES bit; the last is
// terminated with flags.
func encFuncs(version int, funcs []testFunc, flags byte) []byte {
	var b []byte
	for i, f := range funcs {
		b = append(b, encVar(version, f.delta)...)
		if f.attr != 0 {
			b = append(b, f.attr)
		}
		b = append(b, f.name...)
		if i < len(funcs)-1 {
			b = append(b, flags|parseMorePublicNames)
		} else {
			b = append(b, flags)
		}
	}
	return b
}

// minimalV5 is scenario S1: an empty-root leaf with one module of length 1
// and a single public function "f" at offset 0.
func minimalV5() []byte {
	b := buildHeader(5, headerOpts{})
	b = append(b, 0x00)             // tree-nodes = 0: root is a leaf
	b = append(b, 0x00)             // crc-length
	b = append(b, u16be(0x0000)...) // crc16
	b = append(b, encVar(5, 1)...)  // module length
	b = append(b, encFuncs(5, []testFunc{{name: "f"}}, 0x00)...)
	return b
}
