package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sigscope/internal/flirt"
	"github.com/samcharles93/sigscope/internal/sigstore"
)

func inspectCmd() *cli.Command {
	var (
		showAll     bool
		showFuncs   bool
		moduleLimit int
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Inspect the contents of a .sig or .sig.gz signature file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "show every module and the function listing", Destination: &showAll},
			&cli.BoolFlag{Name: "functions", Usage: "show the flattened function listing", Destination: &showFuncs},
			&cli.IntFlag{Name: "modules", Usage: "limit module listing (0 = no limit)", Value: 50, Destination: &moduleLimit},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			if c.Args().Len() < 1 {
				return cli.Exit("usage: sigscope inspect <file.sig[.gz]>", 2)
			}
			path := c.Args().First()

			if showAll {
				showFuncs = true
				if moduleLimit == 50 {
					moduleLimit = 0
				}
			}

			res, err := sigstore.Load(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			fmt.Printf("Signature: %s\n", path)
			printHeader(res)
			printModules(res, moduleLimit)
			if showFuncs {
				printFunctions(res)
			}
			return nil
		},
	}
}

func printHeader(res *flirt.Result) {
	h := res.Header
	section("Header")
	row("library", res.LibraryName)
	row("version", fmt.Sprintf("%d", h.Version))
	row("arch", fmt.Sprintf("%s (%d)", flirt.ArchName(h.Arch), h.Arch))
	row("file_types", fmt.Sprintf("%s (0x%08x)", flirt.FileTypesName(h.FileTypes), h.FileTypes))
	row("os_types", fmt.Sprintf("%s (0x%04x)", flirt.OSTypesName(h.OSTypes), h.OSTypes))
	row("app_types", fmt.Sprintf("%s (0x%04x)", flirt.AppTypesName(h.AppTypes), h.AppTypes))
	row("features", fmt.Sprintf("%s (0x%04x)", flirt.FeaturesName(h.Features), h.Features))
	row("old_n_functions", fmt.Sprintf("%d", h.OldFunctionCount))
	if h.Version >= 6 {
		row("n_functions", fmt.Sprintf("%d", h.FunctionCount))
	}
	if h.Version >= 8 {
		row("pattern_size", fmt.Sprintf("%d", h.PatternSize))
	}
	row("crc16", fmt.Sprintf("0x%04x", h.CRC16))
	row("ctypes_crc16", fmt.Sprintf("0x%04x", h.CTypesCRC16))
	rowInt("modules", len(res.Modules))
	rowInt("functions", len(res.AllFunctions()))
}

func printModules(res *flirt.Result, limit int) {
	section("Modules")
	printed := 0
	for i := range res.Modules {
		m := &res.Modules[i]
		pattern := m.PatternHex()
		if pattern == "" {
			pattern = "(empty)"
		}
		fmt.Printf("%4d  %s\n", i, pattern)
		fmt.Printf("      crc(len=%d val=0x%04x) length=%d\n", m.CRCLength, m.CRC16, m.Length)
		for _, f := range m.PublicFunctions {
			fmt.Printf("      %08x  %s%s\n", f.Offset, f.Name, functionMarks(f))
		}
		if len(m.TailBytes) > 0 {
			parts := make([]string, len(m.TailBytes))
			for j, tb := range m.TailBytes {
				parts[j] = fmt.Sprintf("(%04x: %02x)", tb.Offset, tb.Value)
			}
			fmt.Printf("      tail %s\n", strings.Join(parts, " "))
		}
		for _, rf := range m.ReferencedFunctions {
			sign := ""
			if rf.NegativeOffset {
				sign = "-"
			}
			fmt.Printf("      ref %s%04x: %s\n", sign, rf.Offset, rf.Name)
		}
		printed++
		if limit > 0 && printed >= limit {
			break
		}
	}
	if limit > 0 && printed < len(res.Modules) {
		fmt.Printf("... (%d shown of %d)\n", printed, len(res.Modules))
	}
}

func printFunctions(res *flirt.Result) {
	section("Functions")
	for _, e := range res.AllFunctions() {
		fmt.Printf("%4d  %08x  %s%s\n", e.ModuleIndex, e.Function.Offset, e.Function.Name, functionMarks(e.Function))
	}
}

func functionMarks(f flirt.Function) string {
	var marks string
	if f.Local {
		marks += " [local]"
	}
	if f.Collision {
		marks += " [collision]"
	}
	return marks
}

func section(title string) {
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)
}

func row(label, value string) {
	if value == "" {
		return
	}
	fmt.Printf("%-20s %s\n", label+":", value)
}

func rowInt(label string, v int) {
	if v == 0 {
		return
	}
	row(label, fmt.Sprintf("%d", v))
}
