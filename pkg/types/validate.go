package types

import (
	"fmt"
	"path"
	"strings"

	"github.com/cuemby/kiln/pkg/config"
)

// ValidationError reports a request field that failed boundary validation
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalize lowercases the language and fills unset limits from configured
// defaults. It must run before Validate.
func (r *ExecRequest) Normalize(cfg *config.Config) {
	r.Language = strings.ToLower(r.Language)
	if r.TimeLimit == 0 {
		r.TimeLimit = cfg.DefaultTimeLimit
	}
	if r.MemoryLimit == 0 {
		r.MemoryLimit = cfg.DefaultMemoryLimit
	}
}

// Validate checks the request against configured limits and the supported
// language set. It returns a *ValidationError describing the first violation.
func (r *ExecRequest) Validate(cfg *config.Config, supported []string) error {
	if !containsString(supported, r.Language) {
		return &ValidationError{
			Field: "language",
			Message: fmt.Sprintf("language '%s' not supported. Supported: %s",
				r.Language, strings.Join(supported, ", ")),
		}
	}
	if r.Version == "" {
		return &ValidationError{Field: "version", Message: "version must not be empty"}
	}

	if len(r.Files) == 0 {
		return &ValidationError{Field: "files", Message: "at least one file is required"}
	}
	if len(r.Files) > cfg.MaxFilesCount {
		return &ValidationError{
			Field:   "files",
			Message: fmt.Sprintf("too many files: %d. Maximum allowed: %d", len(r.Files), cfg.MaxFilesCount),
		}
	}

	total := 0
	for i, f := range r.Files {
		field := fmt.Sprintf("files[%d]", i)
		if err := validateFileName(field, f.Name); err != nil {
			return err
		}
		size := len(f.Content)
		if size > cfg.MaxFileSize {
			return &ValidationError{
				Field: field + ".content",
				Message: fmt.Sprintf("file content too large: %d bytes. Maximum allowed: %d bytes (%d KB)",
					size, cfg.MaxFileSize, cfg.MaxFileSize/1024),
			}
		}
		total += size
	}
	if total > cfg.MaxTotalFilesSize {
		return &ValidationError{
			Field: "files",
			Message: fmt.Sprintf("total files size too large: %d bytes. Maximum allowed: %d bytes (%d KB)",
				total, cfg.MaxTotalFilesSize, cfg.MaxTotalFilesSize/1024),
		}
	}

	if r.TimeLimit < config.MinTimeLimit || r.TimeLimit > cfg.MaxTimeLimit {
		return &ValidationError{
			Field:   "time_limit",
			Message: fmt.Sprintf("time_limit %v outside [%v, %v] seconds", r.TimeLimit, config.MinTimeLimit, cfg.MaxTimeLimit),
		}
	}
	if r.MemoryLimit < config.MinMemoryLimit || r.MemoryLimit > cfg.MaxMemoryLimit {
		return &ValidationError{
			Field:   "memory_limit",
			Message: fmt.Sprintf("memory_limit %d outside [%d, %d] MB", r.MemoryLimit, config.MinMemoryLimit, cfg.MaxMemoryLimit),
		}
	}
	return nil
}

// validateFileName enforces the boundary rules for request file names:
// relative POSIX paths, nonempty after trimming, no traversal outside the
// workspace. The jail is the real containment boundary, but in direct mode a
// ".." segment would escape the workspace, so it is rejected here.
func validateFileName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: field + ".name", Message: "file name cannot be empty"}
	}
	if strings.HasPrefix(name, "/") {
		return &ValidationError{Field: field + ".name", Message: "file name cannot be an absolute path"}
	}
	if strings.Contains(name, "\x00") {
		return &ValidationError{Field: field + ".name", Message: "file name contains NUL byte"}
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return &ValidationError{Field: field + ".name", Message: "file name escapes the workspace"}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
