package gateway

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSolverMissingBinary ensures a solver binary that cannot be found yields the fixed diagnostic rather than an
// execution attempt.
func TestSolverMissingBinary(t *testing.T) {
	solver := NewSolverCommand()
	solver.SetCommand("solir-test-no-such-solver")

	result := solver.Solve(context.Background(), "(check-sat)")
	assert.False(t, result.Success)
	assert.Equal(t, "solir-test-no-such-solver binary not found.", result.Content)
}

// TestSolverNoCommand ensures an explicitly cleared solver command is reported as unconfigured.
func TestSolverNoCommand(t *testing.T) {
	solver := NewSolverCommand()
	solver.SetCommand("")

	result := solver.Solve(context.Background(), "(check-sat)")
	assert.False(t, result.Success)
	assert.Equal(t, "No solver set.", result.Content)
}

// TestSolverRunsCommand uses cat as a stand-in solver: it echoes the query file back, so the result content must
// equal the query text with normalized line endings.
func TestSolverRunsCommand(t *testing.T) {
	solver := NewSolverCommand()
	solver.SetCommand("cat")

	query := "(declare-const x Int)\n(check-sat)"
	result := solver.Solve(context.Background(), query)
	require.True(t, result.Success, result.Content)
	assert.Equal(t, query, result.Content)
}

// TestSolverDropsBlankLines ensures blank output lines are dropped so the result carries only verdict lines.
func TestSolverDropsBlankLines(t *testing.T) {
	solver := NewSolverCommand()
	solver.SetCommand("cat")

	result := solver.Solve(context.Background(), "sat\n\n\n((x 1))\n")
	require.True(t, result.Success, result.Content)
	assert.Equal(t, "sat\n((x 1))", result.Content)
}

// TestSolverReportsFailure ensures a non-zero solver exit is a failed result carrying a diagnostic.
func TestSolverReportsFailure(t *testing.T) {
	solver := NewSolverCommand()
	solver.SetCommand("false")

	result := solver.Solve(context.Background(), "(check-sat)")
	assert.False(t, result.Success)
	assert.Contains(t, result.Content, "Solver failed")
}

// TestFileReaderReadsAllowedFiles ensures reads inside an allowed directory succeed and reads outside it are
// refused without touching the filesystem target.
func TestFileReaderReadsAllowedFiles(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "Token.sol")
	require.NoError(t, os.WriteFile(path, []byte("contract Token {}"), 0644))

	reader, err := NewFileReader(directory)
	require.NoError(t, err)

	result := reader.ReadFile(path)
	require.True(t, result.Success)
	assert.Equal(t, "contract Token {}", result.Content)

	// A missing file inside the allowed directory reports a fixed message.
	result = reader.ReadFile(filepath.Join(directory, "Missing.sol"))
	assert.False(t, result.Success)
	assert.Equal(t, "File not found.", result.Content)

	// A file outside the allowed directories is refused.
	outside := t.TempDir()
	outsidePath := filepath.Join(outside, "Secret.sol")
	require.NoError(t, os.WriteFile(outsidePath, []byte("secret"), 0644))
	result = reader.ReadFile(outsidePath)
	assert.False(t, result.Success)
	assert.Equal(t, "File outside of allowed directories.", result.Content)
}

// TestFileReaderUnrestricted ensures an empty allow list permits any readable path.
func TestFileReaderUnrestricted(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "Token.sol")
	require.NoError(t, os.WriteFile(path, []byte("contract Token {}"), 0644))

	reader, err := NewFileReader()
	require.NoError(t, err)

	result := reader.ReadFile(path)
	assert.True(t, result.Success)
}

// TestUniversalCallbackRouting ensures queries route by kind and unknown kinds panic.
func TestUniversalCallbackRouting(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "Token.sol")
	require.NoError(t, os.WriteFile(path, []byte("contract Token {}"), 0644))

	reader, err := NewFileReader(directory)
	require.NoError(t, err)
	solver := NewSolverCommand()
	solver.SetCommand("cat")
	callback := NewUniversalCallback(reader, solver)

	result := callback.Handle(context.Background(), KindReadFile, path)
	assert.True(t, result.Success)
	assert.Equal(t, "contract Token {}", result.Content)

	result = callback.Handle(context.Background(), KindSMTQuery, "(check-sat)")
	assert.True(t, result.Success)
	assert.Equal(t, "(check-sat)", result.Content)

	assert.Panics(t, func() {
		callback.Handle(context.Background(), "unknown-kind", "payload")
	})
}
