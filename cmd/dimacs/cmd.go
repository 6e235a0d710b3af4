package dimacs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/searchtree/internal/cnf"
	"github.com/operator-framework/searchtree/internal/config"
	"github.com/operator-framework/searchtree/internal/driver"
	"github.com/operator-framework/searchtree/pkg/search"
)

func NewDimacsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <path>",
		Short: "Solves a sat problem given in dimacs format",
		Long: `Solves a sat problem given in dimacs format by branching on one variable
per level of the search tree, with unit propagation by gini. For instance:
c
c this is a comment
c header: p cnf <number of variable> <number of clauses>
p cnf 2 2
c clauses end in zero, negative means 'not'
c 0 (zero) is not a valid literal
1 2 0
1 -2 0
c cnf: (1 or 2) and (1 and not 2)
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := config.FromFlags(cmd)
			if err != nil {
				return err
			}
			return solve(cmd, profile, args[0])
		},
	}
	config.AddFlags(cmd)
	return cmd
}

func solve(cmd *cobra.Command, profile config.Profile, path string) error {
	dimacsFile, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening dimacs file (%s): %w", path, err)
	}
	defer dimacsFile.Close()

	problem, err := cnf.ParseDimacs(dimacsFile)
	if err != nil {
		return fmt.Errorf("error parsing dimacs file (%s): %w", path, err)
	}

	logger := logrus.NewEntry(logrus.StandardLogger()).WithField("command", "solve")
	store := cnf.NewStore(problem)
	tree, err := driver.NewTree(profile, store.Decide(), store, logger)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	d := driver.New(tree,
		driver.WithLogger(logger),
		driver.WithLimit(profile.Limit),
		driver.WithMaxSolutions(profile.MaxSolutions),
		driver.WithSolutionHandler(func(search.Tree) error {
			printModel(out, store.Model())
			return nil
		}),
	)
	res, err := d.Run(cmd.Context())
	if err != nil {
		return err
	}
	if res.Solutions == 0 {
		if res.LimitReached {
			fmt.Fprintf(out, "no solution found within %d activations\n", profile.Limit)
		} else {
			fmt.Fprintln(out, "no solution found: problem is unsatisfiable")
		}
	}
	return nil
}

func printModel(out io.Writer, model []int) {
	lits := make([]string, len(model))
	for i, lit := range model {
		lits[i] = strconv.Itoa(lit)
	}
	fmt.Fprintln(out, "solution found:")
	fmt.Fprintf(out, "v %s 0\n", strings.Join(lits, " "))
}
