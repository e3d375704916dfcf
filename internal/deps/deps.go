package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external program pagesmith invokes.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement. Path is the resolved
// executable when Available is set.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries resolves each requirement against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, CheckBinary(req))
	}
	return results
}

// CheckBinary resolves one requirement against PATH. Commands containing a
// path separator are checked as given.
func CheckBinary(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	resolved, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Path = resolved
	status.Available = true
	return status
}
