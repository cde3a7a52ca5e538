package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracewire/schemsync/internal/schema"
	"github.com/tracewire/schemsync/pkg/hierarchy"
)

// NewScopesCommand creates the scopes command: resolve net scopes for a
// project's sheet tree without reconciling anything.
func (a *App) NewScopesCommand() *cobra.Command {
	var (
		projectFile string
		outFile     string
	)

	cmd := &cobra.Command{
		Use:   "scopes",
		Short: "Resolve net scopes for a sheet hierarchy",
		Long: `Scopes computes, for every net in a project, the minimal sheet at which
it must be declared: local to one sheet, shared at the lowest common
ancestor of its referencing sheets, or passed through the sheets in
between.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if projectFile == "" {
				return fmt.Errorf("--project is required")
			}

			project, err := schema.LoadProject(projectFile)
			if err != nil {
				return err
			}

			scopes, structuralErr := hierarchy.ResolveScopes(project.Root, project.DeclaredNets())

			data, err := schema.MarshalScopes(scopes)
			if err != nil {
				return err
			}

			if outFile != "" {
				if err := writeFile(outFile, data); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), string(data))
			}

			return structuralErr
		},
	}

	cmd.Flags().StringVarP(&projectFile, "project", "p", "", "project file")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write scopes to this file instead of stdout")

	return cmd
}
