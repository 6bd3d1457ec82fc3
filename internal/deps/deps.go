package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency subfuse relies on.
type Requirement struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
// A Requirement with Path set is checked as a file on disk; one with Command
// set is resolved from PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if path := strings.TrimSpace(req.Path); path != "" {
			status.Command = path
			if info, err := os.Stat(path); err != nil || info.IsDir() {
				status.Available = false
				status.Detail = fmt.Sprintf("file %q not found", path)
			} else {
				status.Available = true
			}
			results = append(results, status)
			continue
		}
		cmd := strings.TrimSpace(req.Command)
		status.Command = cmd
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if resolved, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		} else {
			status.Command = resolved
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}
