package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/sigscope/internal/sigstore"
)

func sniffCmd() *cli.Command {
	return &cli.Command{
		Name:      "sniff",
		Usage:     "Check whether files are FLIRT signatures and report their versions",
		ArgsUsage: "<file...>",
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			if c.Args().Len() < 1 {
				return cli.Exit("usage: sigscope sniff <file...>", 2)
			}
			exit := 0
			for _, path := range c.Args().Slice() {
				ok, version, err := sigstore.Sniff(path)
				switch {
				case err != nil:
					fmt.Printf("%s: error: %v\n", path, err)
					exit = 1
				case ok:
					fmt.Printf("%s: FLIRT v%d\n", path, version)
				default:
					fmt.Printf("%s: not a FLIRT signature\n", path)
					exit = 1
				}
			}
			if exit != 0 {
				return cli.Exit("", exit)
			}
			return nil
		},
	}
}
