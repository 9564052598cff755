package cmd

import (
	"os"

	"github.com/crytic/solir/asm"
	"github.com/crytic/solir/cmd/exitcodes"
	"github.com/spf13/cobra"
)

// assembleCmd represents the command that assembles an assembly interchange document into its artifact bundle.
var assembleCmd = &cobra.Command{
	Use:               "assemble <document>",
	Short:             "Assemble an assembly interchange document",
	Long:              "Import an assembly interchange document, lay it out, and emit the contract artifact bundle: bytecode, runtime bytecode, position maps, opcode listing, and the re-exported assembly tree.",
	Args:              cmdValidateInputFileArg,
	ValidArgsFunction: cmdValidArgs,
	RunE:              cmdRunAssemble,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	assembleCmd.Flags().String("out", "", "output file path (defaults to standard output)")
	assembleCmd.Flags().Int("indent", 2, "indentation width, 0 for compact output")
	rootCmd.AddCommand(assembleCmd)
}

// cmdRunAssemble imports the given assembly document, assembles it, and writes the artifact bundle.
func cmdRunAssemble(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		cmdLogger.Error("Failed to read the input document", err)
		return err
	}

	block, err := asm.ImportDocument(data)
	if err != nil {
		cmdLogger.Error("Failed to import the assembly document", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeImportFailed)
	}

	artifacts, err := asm.ExportContract(block)
	if err != nil {
		cmdLogger.Error("Failed to assemble the document", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}
	if artifacts == nil {
		cmdLogger.Warn("The document contains no assembly, nothing to do")
		return nil
	}

	indent, err := cmd.Flags().GetInt("indent")
	if err != nil {
		return err
	}
	encoded, err := artifacts.Encode(indent)
	if err != nil {
		cmdLogger.Error("Failed to encode the artifact bundle", err)
		return err
	}
	return writeOutput(cmd, encoded)
}
