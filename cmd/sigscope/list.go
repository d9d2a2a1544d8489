package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sigscope/internal/sigstore"
)

func listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List FLIRT signature files in a directory",
		ArgsUsage: "[dir]",
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			dir := resolveSigsDir(c.Args().First(), LoadConfig())

			sigs, err := discoverSignatures(dir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if len(sigs) == 0 {
				fmt.Printf("no signature files in %s\n", dir)
				return nil
			}

			for _, path := range sigs {
				name := sigDisplayName(dir, path)
				ok, version, err := sigstore.Sniff(path)
				if err != nil || !ok {
					fmt.Printf("%-40s (not a FLIRT signature)\n", name)
					continue
				}
				library := ""
				if res, err := sigstore.Load(path); err == nil {
					library = res.LibraryName
				}
				fmt.Printf("%-40s v%-2d %s\n", name, version, library)
			}
			return nil
		},
	}
}
