package cmd

import (
	"fmt"
	"os"

	"github.com/crytic/solir/cmd/exitcodes"
	"github.com/crytic/solir/gateway"
	"github.com/spf13/cobra"
)

// solveCmd represents the command that runs one SMT query file through the external solver gateway.
var solveCmd = &cobra.Command{
	Use:               "solve <query>",
	Short:             "Run an SMT query file through the external solver",
	Long:              "Run an SMT query file through the configured external solver and print its verdict.",
	Args:              cmdValidateInputFileArg,
	ValidArgsFunction: cmdValidArgs,
	RunE:              cmdRunSolve,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	solveCmd.Flags().String("solver", gateway.DefaultSolverCommand, "solver binary to invoke")
	solveCmd.Flags().StringSlice("solver-args", nil, "arguments passed to the solver before the query file path")
	rootCmd.AddCommand(solveCmd)
}

// cmdRunSolve reads the query file and dispatches it through the gateway, printing the solver's verdict.
func cmdRunSolve(cmd *cobra.Command, args []string) error {
	query, err := os.ReadFile(args[0])
	if err != nil {
		cmdLogger.Error("Failed to read the query file", err)
		return err
	}

	solver := gateway.NewSolverCommand()
	solverPath, err := cmd.Flags().GetString("solver")
	if err != nil {
		return err
	}
	solverArgs, err := cmd.Flags().GetStringSlice("solver-args")
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("solver") || cmd.Flags().Changed("solver-args") {
		solver.SetCommand(solverPath, solverArgs...)
	}

	callback := gateway.NewUniversalCallback(nil, solver)
	result := callback.Handle(cmd.Context(), gateway.KindSMTQuery, string(query))
	if !result.Success {
		err = fmt.Errorf("%s", result.Content)
		cmdLogger.Error("The solver query failed", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	fmt.Println(result.Content)
	return nil
}
