package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bymeisam/use/internal/config"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a use.json in the current directory",
		Long: `Create a use.json configuration file.

The file records the project name, the registry to publish to, and the
commit message rules. The name defaults to the directory name.

Examples:
  use init
  use init widgets
  use init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runInit(name, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing use.json")

	return cmd
}

func runInit(name string, force bool) error {
	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	if config.Exists(dir) && !force {
		warn("%s already exists (use --force to overwrite)", config.ConfigFileName)
		return nil
	}

	if name == "" {
		name = filepath.Base(dir)
	}

	cfg := config.New()
	cfg.Name = name
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return err
	}

	success("created %s", config.ConfigFileName)
	info("set registry.bucket before publishing")
	return nil
}
