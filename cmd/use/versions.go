package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bymeisam/use/internal/config"
	"github.com/bymeisam/use/internal/publish"
)

func versionsCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "versions [module]",
		Short: "List published versions of a module",
		Long: `List the versions of a module already in the registry, oldest first.

Without an argument, the module path comes from go.mod in the module
directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modPath := ""
			if len(args) > 0 {
				modPath = args[0]
			}
			return runVersions(dir, modPath)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Module directory")

	return cmd
}

func runVersions(dir, modPath string) error {
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	if modPath == "" {
		modPath, err = publish.ModulePath(dir)
		if err != nil {
			return err
		}
	}

	reg, err := newRegistry(cfg, nil)
	if err != nil {
		return err
	}
	pub := publish.New(reg, cfg.Registry.Prefix, newLogger())

	ctx, cancel := signalContext()
	defer cancel()

	versions, err := pub.Versions(ctx, modPath)
	if err != nil {
		return err
	}

	if len(versions) == 0 {
		info("no published versions of %s", modPath)
		return nil
	}
	for _, v := range versions {
		fmt.Println(v)
	}
	return nil
}
