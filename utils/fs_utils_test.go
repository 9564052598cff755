package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateFile ensures file creation works in the working directory and creates missing parent directories.
func TestCreateFile(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "nested", "output")

	file, err := CreateFile(directory, "document.json")
	require.NoError(t, err)
	defer file.Close()

	_, err = os.Stat(filepath.Join(directory, "document.json"))
	assert.NoError(t, err)
}

// TestMakeDirectoryRejectsFileCollision ensures a file with the target directory's name is reported as an error.
func TestMakeDirectoryRejectsFileCollision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collision")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := MakeDirectory(path)
	assert.Error(t, err)
}

// TestGetFileNameWithoutExtension checks extension stripping across plain and dotted names.
func TestGetFileNameWithoutExtension(t *testing.T) {
	assert.Equal(t, "Token", GetFileNameWithoutExtension("contracts/Token.sol"))
	assert.Equal(t, "Token.sol", GetFileNameWithoutExtension("contracts/Token.sol.json"))
	assert.Equal(t, "Token", GetFileNameWithoutExtension("Token"))
}
