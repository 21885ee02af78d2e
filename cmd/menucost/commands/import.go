package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menucost/engine/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <files...>",
	Short: "Import one or more declarative entity files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, files []string) error {
	a := current

	pipeline := importer.New(importer.Options{
		ProjectRoot: a.cfg.App.ProjectRoot,
		Processors:  a.svcs.Processors(),
	}, a.log)

	result, err := pipeline.Run(cmd.Context(), files)
	if err != nil {
		return withCode(ExitInputInvalid, err)
	}

	for _, fe := range result.Errors {
		fmt.Printf("%s: %s: %s\n", fe.File, fe.Kind, fe.Message)
	}

	fmt.Printf("created=%d upserted=%d ignored=%d failed=%d\n",
		result.Stats.Created, result.Stats.Upserted, result.Stats.Ignored, result.Stats.Failed)

	if len(result.Errors) > 0 {
		return withCode(ExitInputInvalid, fmt.Errorf("%d file(s) failed to import", len(result.Errors)))
	}

	return nil
}
