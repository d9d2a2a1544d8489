package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sigscope/internal/flirt"
	"github.com/samcharles93/sigscope/internal/sigstore"
)

// exportModel is the JSON shape of a fully decoded signature.
type exportModel struct {
	Library   string         `json:"library"`
	Version   int            `json:"version"`
	Arch      uint8          `json:"arch"`
	ArchName  string         `json:"arch_name"`
	FileTypes uint32         `json:"file_types"`
	OSTypes   uint16         `json:"os_types"`
	AppTypes  uint16         `json:"app_types"`
	Features  uint16         `json:"features"`
	Modules   []exportModule `json:"modules"`
}

type exportModule struct {
	Pattern   string           `json:"pattern"`
	CRCLength uint8            `json:"crc_length"`
	CRC16     uint16           `json:"crc16"`
	Length    uint32           `json:"length"`
	Functions []exportFunction `json:"functions"`
	TailBytes []exportTailByte `json:"tail_bytes,omitempty"`
	RefFuncs  []exportRefFunc  `json:"referenced_functions,omitempty"`
}

type exportFunction struct {
	Name      string `json:"name"`
	Offset    uint32 `json:"offset"`
	Local     bool   `json:"local,omitempty"`
	Collision bool   `json:"collision,omitempty"`
}

type exportTailByte struct {
	Offset uint32 `json:"offset"`
	Value  uint8  `json:"value"`
}

type exportRefFunc struct {
	Name           string `json:"name"`
	Offset         uint32 `json:"offset"`
	NegativeOffset bool   `json:"negative_offset,omitempty"`
}

func exportCmd() *cli.Command {
	var (
		pretty  bool
		outPath string
	)

	return &cli.Command{
		Name:      "export",
		Usage:     "Export a decoded signature as JSON",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "pretty", Usage: "indent the JSON output", Destination: &pretty},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to a file instead of stdout", Destination: &outPath},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			if c.Args().Len() < 1 {
				return cli.Exit("usage: sigscope export <file.sig[.gz]>", 2)
			}
			res, err := sigstore.Load(c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			model := buildExportModel(res)
			var out []byte
			if pretty {
				out, err = json.MarshalIndent(model, "", "  ")
			} else {
				out, err = json.Marshal(model)
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: encode: %v", err), 1)
			}
			out = append(out, '\n')

			if outPath != "" {
				if err := os.WriteFile(outPath, out, 0o644); err != nil {
					return cli.Exit(fmt.Sprintf("error: write %s: %v", outPath, err), 1)
				}
				return nil
			}
			_, err = os.Stdout.Write(out)
			return err
		},
	}
}

func buildExportModel(res *flirt.Result) exportModel {
	h := res.Header
	model := exportModel{
		Library:   res.LibraryName,
		Version:   h.Version,
		Arch:      h.Arch,
		ArchName:  flirt.ArchName(h.Arch),
		FileTypes: h.FileTypes,
		OSTypes:   h.OSTypes,
		AppTypes:  h.AppTypes,
		Features:  h.Features,
	}
	model.Modules = make([]exportModule, len(res.Modules))
	for i := range res.Modules {
		m := &res.Modules[i]
		em := exportModule{
			Pattern:   m.PatternHex(),
			CRCLength: m.CRCLength,
			CRC16:     m.CRC16,
			Length:    m.Length,
		}
		em.Functions = make([]exportFunction, len(m.PublicFunctions))
		for j, f := range m.PublicFunctions {
			em.Functions[j] = exportFunction{
				Name:      f.Name,
				Offset:    f.Offset,
				Local:     f.Local,
				Collision: f.Collision,
			}
		}
		for _, tb := range m.TailBytes {
			em.TailBytes = append(em.TailBytes, exportTailByte{Offset: tb.Offset, Value: tb.Value})
		}
		for _, rf := range m.ReferencedFunctions {
			em.RefFuncs = append(em.RefFuncs, exportRefFunc{
				Name:           rf.Name,
				Offset:         rf.Offset,
				NegativeOffset: rf.NegativeOffset,
			})
		}
		model.Modules[i] = em
	}
	return model
}
