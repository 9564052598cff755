package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crytic/solir/ast"
	"github.com/crytic/solir/cmd/exitcodes"
	"github.com/crytic/solir/utils"
	"github.com/spf13/cobra"
)

// canonicalizeCmd represents the command that re-encodes a tree interchange document in canonical form.
var canonicalizeCmd = &cobra.Command{
	Use:               "canonicalize <document>",
	Short:             "Import a tree interchange document and re-export it canonically",
	Long:              "Import a tree interchange document, validate it, and re-export it in canonical form. Two documents describing the same tree canonicalize to byte-identical output.",
	Args:              cmdValidateInputFileArg,
	ValidArgsFunction: cmdValidArgs,
	RunE:              cmdRunCanonicalize,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	canonicalizeCmd.Flags().String("out", "", "output file path (defaults to standard output)")
	canonicalizeCmd.Flags().Int("indent", 2, "indentation width, 0 for compact output")
	rootCmd.AddCommand(canonicalizeCmd)
}

// cmdValidateInputFileArg requires exactly one positional argument, the input document path.
func cmdValidateInputFileArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		err = fmt.Errorf("%s takes exactly one positional argument, the input document path", cmd.Name())
		cmdLogger.Error("Failed to validate args to the "+cmd.Name()+" command", err)
		return err
	}
	return nil
}

// cmdRunCanonicalize imports the given tree document and writes its canonical re-encoding.
func cmdRunCanonicalize(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		cmdLogger.Error("Failed to read the input document", err)
		return err
	}

	document, err := ast.ImportDocument(data)
	if err != nil {
		cmdLogger.Error("Failed to import the tree document", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeImportFailed)
	}

	indent, err := cmd.Flags().GetInt("indent")
	if err != nil {
		return err
	}
	encoded, err := document.Encode(indent)
	if err != nil {
		cmdLogger.Error("Failed to encode the tree document", err)
		return err
	}
	return writeOutput(cmd, encoded)
}

// writeOutput writes encoded output to the --out path, or to standard output when no path was given.
func writeOutput(cmd *cobra.Command, encoded []byte) error {
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	if outPath == "" {
		fmt.Println(string(encoded))
		return nil
	}

	directory, fileName := filepath.Split(outPath)
	file, err := utils.CreateFile(directory, fileName)
	if err != nil {
		cmdLogger.Error("Failed to create the output document", err)
		return err
	}
	defer file.Close()
	if _, err = file.Write(append(encoded, '\n')); err != nil {
		cmdLogger.Error("Failed to write the output document", err)
		return err
	}
	return nil
}
