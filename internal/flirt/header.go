package flirt

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// v5 fixed block after magic+version: arch(1) file_types(4) os_types(2)
// app_types(2) features(2) old_n_functions(2) crc16(2) ctype(12)
// library_name_len(1) ctypes_crc16(2).
const v5HeaderLen = 30

// Sniff reports whether data looks like a FLIRT signature file and returns
// the version byte. True iff the buffer is at least seven bytes, starts with
// the IDASGN magic, and carries a supported version.
func Sniff(data []byte) (bool, int) {
	if len(data) < 7 {
		return false, 0
	}
	if !bytes.Equal(data[:6], []byte(Magic)) {
		return false, 0
	}
	v := int(data[6])
	return v >= MinVersion && v <= MaxVersion, v
}

// parseHeader decodes the version-gated header and the library name into
// res. The fixed scalars are little-endian; the v8 pattern size and the v10
// reserved field are big-endian.
func (p *parser) parseHeader(res *Result) error {
	if len(p.r.data) < 7 {
		return errors.New("File too short")
	}
	if !bytes.Equal(p.r.data[:6], []byte(Magic)) {
		return errors.New("Invalid magic (not IDASGN)")
	}
	version := int(p.r.data[6])
	if version < MinVersion || version > MaxVersion {
		return fmt.Errorf("Unsupported FLIRT version %d", version)
	}
	p.version = version
	p.r.pos = 7

	block, err := p.r.readBytes(v5HeaderLen)
	if err != nil {
		return errors.New("Truncated v5 header")
	}
	h := &res.Header
	h.Version = version
	h.Arch = block[0]
	h.FileTypes = binary.LittleEndian.Uint32(block[1:5])
	h.OSTypes = binary.LittleEndian.Uint16(block[5:7])
	h.AppTypes = binary.LittleEndian.Uint16(block[7:9])
	h.Features = binary.LittleEndian.Uint16(block[9:11])
	h.OldFunctionCount = binary.LittleEndian.Uint16(block[11:13])
	h.CRC16 = binary.LittleEndian.Uint16(block[13:15])
	copy(h.CType[:], block[15:27])
	h.LibraryNameLen = block[27]
	h.CTypesCRC16 = binary.LittleEndian.Uint16(block[28:30])

	if version >= 6 {
		b, err := p.r.readBytes(4)
		if err != nil {
			return errors.New("Truncated v6/v7 header")
		}
		h.FunctionCount = binary.LittleEndian.Uint32(b)
	}
	if version >= 8 {
		b, err := p.r.readBytes(2)
		if err != nil {
			return errors.New("Truncated v8/v9 header")
		}
		h.PatternSize = binary.BigEndian.Uint16(b)
	}
	if version >= 10 {
		b, err := p.r.readBytes(2)
		if err != nil {
			return errors.New("Truncated v10 header")
		}
		h.ReservedV10 = binary.BigEndian.Uint16(b)
	}

	name, err := p.r.readBytes(int(h.LibraryNameLen))
	if err != nil {
		return errors.New("Truncated library name")
	}
	res.LibraryName = latin1String(name)
	return nil
}
