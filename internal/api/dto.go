package api

import "github.com/samcharles93/sigscope/internal/flirt"

// SignatureSummary is the wire shape for a stored signature. Bitfields are
// returned raw alongside their rendered names.
type SignatureSummary struct {
	ID            string `json:"id"`
	Library       string `json:"library"`
	Version       int    `json:"version"`
	Arch          uint8  `json:"arch"`
	ArchName      string `json:"arch_name"`
	FileTypes     uint32 `json:"file_types"`
	FileTypesName string `json:"file_types_name"`
	OSTypes       uint16 `json:"os_types"`
	OSTypesName   string `json:"os_types_name"`
	AppTypes      uint16 `json:"app_types"`
	AppTypesName  string `json:"app_types_name"`
	Features      uint16 `json:"features"`
	FeaturesName  string `json:"features_name"`
	ModuleCount   int    `json:"module_count"`
	FunctionCount int    `json:"function_count"`
	CreatedAt     int64  `json:"created_at"`
}

type SignatureList struct {
	Signatures []SignatureSummary `json:"signatures"`
}

type ModuleDTO struct {
	Index     int           `json:"index"`
	Pattern   string        `json:"pattern"`
	CRCLength uint8         `json:"crc_length"`
	CRC16     uint16        `json:"crc16"`
	Length    uint32        `json:"length"`
	Functions []FunctionDTO `json:"functions"`
	TailBytes []TailByteDTO `json:"tail_bytes,omitempty"`
	RefFuncs  []RefFuncDTO  `json:"referenced_functions,omitempty"`
}

type FunctionDTO struct {
	Name      string `json:"name"`
	Offset    uint32 `json:"offset"`
	Local     bool   `json:"local,omitempty"`
	Collision bool   `json:"collision,omitempty"`
}

type TailByteDTO struct {
	Offset uint32 `json:"offset"`
	Value  uint8  `json:"value"`
}

type RefFuncDTO struct {
	Name           string `json:"name"`
	Offset         uint32 `json:"offset"`
	NegativeOffset bool   `json:"negative_offset,omitempty"`
}

type ModuleList struct {
	Total   int         `json:"total"`
	Offset  int         `json:"offset"`
	Modules []ModuleDTO `json:"modules"`
}

type FunctionEntryDTO struct {
	ModuleIndex int    `json:"module_index"`
	Name        string `json:"name"`
	Offset      uint32 `json:"offset"`
	Local       bool   `json:"local,omitempty"`
	Collision   bool   `json:"collision,omitempty"`
}

type FunctionList struct {
	Total     int                `json:"total"`
	Functions []FunctionEntryDTO `json:"functions"`
}

type DeleteResp struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func moduleDTO(index int, m *flirt.Module) ModuleDTO {
	dto := ModuleDTO{
		Index:     index,
		Pattern:   m.PatternHex(),
		CRCLength: m.CRCLength,
		CRC16:     m.CRC16,
		Length:    m.Length,
	}
	dto.Functions = make([]FunctionDTO, len(m.PublicFunctions))
	for i, f := range m.PublicFunctions {
		dto.Functions[i] = FunctionDTO{
			Name:      f.Name,
			Offset:    f.Offset,
			Local:     f.Local,
			Collision: f.Collision,
		}
	}
	for _, tb := range m.TailBytes {
		dto.TailBytes = append(dto.TailBytes, TailByteDTO{Offset: tb.Offset, Value: tb.Value})
	}
	for _, rf := range m.ReferencedFunctions {
		dto.RefFuncs = append(dto.RefFuncs, RefFuncDTO{
			Name:           rf.Name,
			Offset:         rf.Offset,
			NegativeOffset: rf.NegativeOffset,
		})
	}
	return dto
}
