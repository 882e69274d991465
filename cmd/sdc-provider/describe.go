package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdc-protocol/sdc-go/internal/logging"
	"github.com/sdc-protocol/sdc-go/pkg/api"
	"github.com/sdc-protocol/sdc-go/pkg/inspect"
	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
)

var describeCmd = &cobra.Command{
	Use:   "describe [path]",
	Short: "Print the descriptor tree or one node",
	Long: `Prints the descriptor tree of a device description (--description) or of a
running provider (--api). With a path only the addressed descriptor, state
or field is printed.

Path format: handle[/state[/contextHandle]][/Field...]`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)

	f := describeCmd.Flags()
	f.StringP("description", "d", "", "YAML device description")
	f.String("api", "", "Base URL of a running provider API")
	f.Bool("operations", false, "List operations instead of the tree")
	f.Bool("versions", false, "Show descriptor and state versions")
	f.Bool("states", true, "Show state summaries")
	describeCmd.MarkFlagsMutuallyExclusive("description", "api")
	describeCmd.MarkFlagsOneRequired("description", "api")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	descPath, _ := f.GetString("description")
	base, _ := f.GetString("api")

	var insp *inspect.Inspector
	if base != "" {
		remote := inspect.NewRemoteInspector(api.NewClient(base, nil), model.NewRegistry())
		var err error
		if insp, err = remote.Refresh(cmd.Context()); err != nil {
			return err
		}
	} else {
		m, err := mdib.LoadDescriptionFile(model.NewRegistry(), descPath, mdib.Config{Logger: logging.NewNop()})
		if err != nil {
			return err
		}
		insp = inspect.NewInspector(m)
	}

	formatter := inspect.NewFormatter()
	formatter.ShowVersions, _ = f.GetBool("versions")
	formatter.ShowStates, _ = f.GetBool("states")
	out := cmd.OutOrStdout()

	if ops, _ := f.GetBool("operations"); ops {
		fmt.Fprint(out, formatter.FormatOperations(insp.Operations()))
		return nil
	}

	if len(args) == 1 {
		p, err := inspect.ParsePath(args[0])
		if err != nil {
			return err
		}
		n, err := insp.Read(p)
		if err != nil {
			return err
		}
		fmt.Fprint(out, formatter.FormatNode(n))
		return nil
	}

	tree, err := insp.Tree()
	if err != nil {
		return err
	}
	m := insp.Mdib()
	fmt.Fprintf(out, "SequenceID: %s  MdibVersion: %d\n", m.SequenceID(), m.MdibVersion())
	fmt.Fprint(out, formatter.FormatTree(tree))
	return nil
}
