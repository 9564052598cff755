package gateway

import (
	"os"
	"path/filepath"
	"strings"
)

// FileReader services source file read queries. When constructed with an allow list, reads outside the allowed
// directories are refused; an empty allow list permits any readable path.
type FileReader struct {
	allowedDirectories []string
}

// NewFileReader constructs a file reader restricted to the given directories. Each directory is cleaned and made
// absolute so the containment check is not fooled by relative path segments.
func NewFileReader(allowedDirectories ...string) (*FileReader, error) {
	reader := new(FileReader)
	for _, directory := range allowedDirectories {
		absolute, err := filepath.Abs(directory)
		if err != nil {
			return nil, err
		}
		reader.allowedDirectories = append(reader.allowedDirectories, absolute)
	}
	return reader, nil
}

// ReadFile reads one source file. Refused or failed reads yield a failed Result whose content describes the
// problem.
func (r *FileReader) ReadFile(path string) Result {
	absolute, err := filepath.Abs(path)
	if err != nil {
		return Result{Success: false, Content: err.Error()}
	}
	if !r.allowed(absolute) {
		return Result{Success: false, Content: "File outside of allowed directories."}
	}

	contents, err := os.ReadFile(absolute)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Success: false, Content: "File not found."}
		}
		return Result{Success: false, Content: err.Error()}
	}
	return Result{Success: true, Content: string(contents)}
}

// allowed reports whether the absolute path falls under one of the allowed directories. An empty allow list
// permits everything.
func (r *FileReader) allowed(absolute string) bool {
	if len(r.allowedDirectories) == 0 {
		return true
	}
	for _, directory := range r.allowedDirectories {
		if absolute == directory || strings.HasPrefix(absolute, directory+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
