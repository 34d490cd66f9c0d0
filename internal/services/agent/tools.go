// -----------------------------------------------------------------------
// Workspace Tools - Local tool execution over a cloned repository
// -----------------------------------------------------------------------

package agent

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	maxListedFiles    = 500
	maxReadFileBytes  = 64 * 1024
	maxSearchResults  = 50
	maxSearchFileSize = 512 * 1024
)

// toolUse is one tool invocation parsed from the model's response
type toolUse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// workspaceTools executes read-only tools against one cloned repository.
// All paths are resolved inside the workspace root; traversal outside it
// is rejected.
type workspaceTools struct {
	root string
}

func newWorkspaceTools(root string) *workspaceTools {
	return &workspaceTools{root: root}
}

// Execute runs one tool call and returns its textual result. Tool errors
// are returned as result text so the model can recover; only the
// propose_fix payload is echoed verbatim for downstream extraction.
func (w *workspaceTools) Execute(call *toolUse) string {
	switch call.Name {
	case "list_files":
		return w.listFiles(call.Input)
	case "read_file":
		return w.readFile(call.Input)
	case "search_code":
		return w.searchCode(call.Input)
	case "propose_fix":
		return proposeFix(call.Input)
	default:
		return fmt.Sprintf("error: unknown tool %q", call.Name)
	}
}

func (w *workspaceTools) listFiles(input json.RawMessage) string {
	var args struct {
		Path string `json:"path"`
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return fmt.Sprintf("error: invalid list_files input: %v", err)
		}
	}

	dir, err := w.resolve(args.Path)
	if err != nil {
		return "error: " + err.Error()
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return relErr
		}
		files = append(files, filepath.ToSlash(rel))
		if len(files) >= maxListedFiles {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Sprintf("error: failed to list files: %v", err)
	}
	if len(files) == 0 {
		return "no files found"
	}
	return strings.Join(files, "\n")
}

func (w *workspaceTools) readFile(input json.RawMessage) string {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return fmt.Sprintf("error: invalid read_file input: %v", err)
	}
	if args.Path == "" {
		return "error: read_file requires a path"
	}

	path, err := w.resolve(args.Path)
	if err != nil {
		return "error: " + err.Error()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	if len(data) > maxReadFileBytes {
		return string(data[:maxReadFileBytes]) + "\n... (truncated)"
	}
	return string(data)
}

func (w *workspaceTools) searchCode(input json.RawMessage) string {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(input, &args); err != nil {
		return fmt.Sprintf("error: invalid search_code input: %v", err)
	}
	if args.Query == "" {
		return "error: search_code requires a query"
	}

	query := strings.ToLower(args.Query)
	var matches []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil || info.Size() > maxSearchFileSize {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		if !strings.Contains(strings.ToLower(string(data)), query) {
			return nil
		}
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			return relErr
		}
		matches = append(matches, filepath.ToSlash(rel))
		if len(matches) >= maxSearchResults {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return fmt.Sprintf("error: search failed: %v", err)
	}
	if len(matches) == 0 {
		return fmt.Sprintf("no files contain %q", args.Query)
	}
	return strings.Join(matches, "\n")
}

// proposeFix validates the proposal JSON and echoes it back as the tool
// result, which is where fix extraction later finds it.
func proposeFix(input json.RawMessage) string {
	var probe map[string]interface{}
	if err := json.Unmarshal(input, &probe); err != nil {
		return fmt.Sprintf("error: invalid propose_fix input: %v", err)
	}
	return string(input)
}

// resolve joins a relative path onto the workspace root, rejecting
// escapes.
func (w *workspaceTools) resolve(rel string) (string, error) {
	if rel == "" || rel == "." {
		return w.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("path %q is outside the workspace", rel)
	}
	return filepath.Join(w.root, cleaned), nil
}
