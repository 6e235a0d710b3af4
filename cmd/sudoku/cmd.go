package sudoku

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/searchtree/internal/config"
	"github.com/operator-framework/searchtree/internal/driver"
	"github.com/operator-framework/searchtree/pkg/search"
)

func NewSudokuCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sudoku",
		Short: "Returns a solved sudoku board",
		Long: `Fills a sudoku board by depth first search. Without --puzzle an empty
board is filled, trying digits in random order so that every run prints a new
board. A puzzle is given as 81 cells read row by row, '.' or '0' marking an
empty cell.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := config.FromFlags(cmd)
			if err != nil {
				return err
			}
			opts, err := optionsFromFlags(cmd)
			if err != nil {
				return err
			}
			return solve(cmd, profile, opts)
		},
	}
	config.AddFlags(cmd)
	cmd.Flags().String(flagPuzzle, "", "puzzle to solve, empty for a random board")
	cmd.Flags().Int64(flagSeed, 0, "seed for the digit order of an empty board, 0 for the current time")
	cmd.Flags().Bool(flagTrace, false, "print every tree move to stderr")
	return cmd
}

const (
	flagPuzzle = "puzzle"
	flagSeed   = "seed"
	flagTrace  = "trace"
)

type options struct {
	puzzle string
	seed   int64
	trace  bool
}

func optionsFromFlags(cmd *cobra.Command) (options, error) {
	var (
		opts options
		err  error
	)
	flags := cmd.Flags()
	if opts.puzzle, err = flags.GetString(flagPuzzle); err != nil {
		return opts, err
	}
	if opts.seed, err = flags.GetInt64(flagSeed); err != nil {
		return opts, err
	}
	if opts.trace, err = flags.GetBool(flagTrace); err != nil {
		return opts, err
	}
	return opts, nil
}

func solve(cmd *cobra.Command, profile config.Profile, opts options) error {
	var rng *rand.Rand
	if opts.puzzle == "" {
		seed := opts.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	sudoku, err := NewSudoku(opts.puzzle, rng)
	if err != nil {
		return err
	}

	logger := logrus.NewEntry(logrus.StandardLogger()).WithField("command", "sudoku")
	var options []search.TreeOption
	if opts.trace {
		options = append(options, search.WithTracer(search.LoggingTracer{Writer: os.Stderr}))
	}
	tree, err := driver.NewTree(profile, sudoku.Fill(), sudoku.Store(), logger, options...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	d := driver.New(tree,
		driver.WithLogger(logger),
		driver.WithLimit(profile.Limit),
		driver.WithMaxSolutions(profile.MaxSolutions),
		driver.WithSolutionHandler(func(search.Tree) error {
			if sudoku.Solved() {
				fmt.Fprintln(out, sudoku)
			}
			return nil
		}),
	)
	res, err := d.Run(cmd.Context())
	if err != nil {
		return err
	}
	if res.Solutions == 0 {
		fmt.Fprintln(out, "no solution found")
	}
	return nil
}
