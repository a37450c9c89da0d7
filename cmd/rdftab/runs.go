package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/rdf-tabular/rdf"
	"github.com/geoknoesis/rdf-tabular/runstore"
)

func runsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored runs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.engine.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CREATED\tFILENAME\tGRAPH\tID")
			for _, run := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					run.CreatedAt.Format(time.RFC3339), run.Filename, run.GraphIRI, runstore.Key(run.GraphIRI))
			}
			return tw.Flush()
		},
	})

	var format string
	show := &cobra.Command{
		Use:   "show GRAPH|ID",
		Short: "Render a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := resolveGraph(args[0])
			if err != nil {
				return err
			}
			f, ok := rdf.ParseFormat(format)
			if !ok {
				return fmt.Errorf("%w: %q", rdf.ErrUnsupportedFormat, format)
			}
			a, err := setup(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			text, err := a.engine.Render(cmd.Context(), graph, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
	show.Flags().StringVarP(&format, "format", "f", string(rdf.FormatTurtle), "Output format")
	cmd.AddCommand(show)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete GRAPH|ID",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := resolveGraph(args[0])
			if err != nil {
				return err
			}
			a, err := setup(cmd.Context(), cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.engine.Delete(cmd.Context(), graph); err != nil {
				return err
			}
			a.logger.Info("Deleted run", "graph", graph)
			return nil
		},
	})

	return cmd
}

// resolveGraph accepts either a graph IRI or its run id.
func resolveGraph(arg string) (string, error) {
	if strings.Contains(arg, ":") {
		return arg, nil
	}
	graph, err := runstore.ParseKey(arg)
	if err != nil {
		return "", fmt.Errorf("%q is neither a graph IRI nor a run id", arg)
	}
	return graph, nil
}
