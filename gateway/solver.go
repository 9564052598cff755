package gateway

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/crytic/solir/logging"
	"github.com/google/uuid"
)

// DefaultSolverCommand is the solver binary queried when no explicit command is configured.
const DefaultSolverCommand = "eld"

// defaultSolverArguments request an SMT-LIB compatible proof search with counterexample output.
var defaultSolverArguments = []string{"-ssol", "-scex"}

// SolverCommand services SMT queries by shelling out to an external solver. The query is written to a temporary
// file whose path is appended to the configured arguments, and the solver's standard output becomes the result
// content.
type SolverCommand struct {
	command   string
	arguments []string
	logger    *logging.Logger
}

// NewSolverCommand constructs a solver handler invoking the default solver.
func NewSolverCommand() *SolverCommand {
	return &SolverCommand{
		command:   DefaultSolverCommand,
		arguments: defaultSolverArguments,
		logger:    logging.GlobalLogger.NewSubLogger("module", "gateway"),
	}
}

// SetCommand overrides the solver binary and its arguments. The query file path is always appended as the final
// argument at invocation time.
func (s *SolverCommand) SetCommand(command string, arguments ...string) {
	s.command = command
	s.arguments = arguments
}

// Solve runs one SMT query through the solver and returns its verdict. The query has no default deadline, as
// solver runtimes vary by orders of magnitude between queries; callers bound execution through the context.
// Any failure, including an internal panic while servicing the query, is converted into a failed Result so a
// single bad query cannot abort the compilation driving it.
func (s *SolverCommand) Solve(ctx context.Context, query string) (result Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = Result{Success: false, Content: fmt.Sprintf("Uncaught exception while running solver: %v", recovered)}
		}
	}()

	if s.command == "" {
		return Result{Success: false, Content: "No solver set."}
	}
	if _, err := exec.LookPath(s.command); err != nil {
		return Result{Success: false, Content: s.command + " binary not found."}
	}

	// The solver reads its query from a file rather than stdin. A uuid keeps concurrent queries from colliding
	// in the shared temp directory.
	queryFile := filepath.Join(os.TempDir(), fmt.Sprintf("query-%s.smt2", uuid.New().String()))
	if err := os.WriteFile(queryFile, []byte(query), 0600); err != nil {
		return Result{Success: false, Content: fmt.Sprintf("Error writing solver query: %v", err)}
	}
	defer os.Remove(queryFile)

	arguments := append(append([]string{}, s.arguments...), queryFile)
	s.logger.Debug("Running solver query", logging.StructuredLogInfo{"command": s.command, "queryFile": queryFile})
	command := exec.CommandContext(ctx, s.command, arguments...)
	var stderr bytes.Buffer
	command.Stderr = &stderr
	stdout, err := command.StdoutPipe()
	if err != nil {
		return Result{Success: false, Content: fmt.Sprintf("Error running solver: %v", err)}
	}
	if err = command.Start(); err != nil {
		return Result{Success: false, Content: fmt.Sprintf("Error running solver: %v", err)}
	}

	// Drain line by line so the content is newline-normalized regardless of platform. Blank lines are dropped, so
	// the joined content carries only the solver's verdict lines.
	var lines []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			lines = append(lines, line)
		}
	}
	scanErr := scanner.Err()

	if err = command.Wait(); err != nil {
		message := strings.TrimSpace(stderr.String())
		if message == "" {
			message = err.Error()
		}
		return Result{Success: false, Content: "Solver failed: " + message}
	}
	if scanErr != nil {
		return Result{Success: false, Content: fmt.Sprintf("Error reading solver output: %v", scanErr)}
	}
	return Result{Success: true, Content: strings.Join(lines, "\n")}
}
