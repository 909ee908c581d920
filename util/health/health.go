package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

type Check struct {
	Name  string
	Check func(context.Context, bool) (int, string, error)
}

type dependency struct {
	Resource     string            `json:"resource"`
	Status       string            `json:"status"`
	Error        string            `json:"error,omitempty"`
	Message      string            `json:"message,omitempty"`
	Dependencies []json.RawMessage `json:"dependencies,omitempty"`
}

type report struct {
	Status       string       `json:"status"`
	Dependencies []dependency `json:"dependencies"`
}

// CheckAll runs every check in order and reports 503 if any of them fails.
// A check message that is itself a JSON object is nested under dependencies.
func CheckAll(ctx context.Context, checkLiveness bool, checks []Check) (int, string, error) {
	overallStatus := http.StatusOK
	deps := make([]dependency, 0, len(checks))

	for _, check := range checks {
		status, message, err := check.Check(ctx, checkLiveness)
		if err != nil || status != http.StatusOK {
			overallStatus = http.StatusServiceUnavailable
		}

		dep := dependency{
			Resource: check.Name,
			Status:   strconv.Itoa(status),
		}

		if err != nil {
			dep.Error = err.Error()
		}

		if len(message) > 0 && message[0] == '{' && message[len(message)-1] == '}' && json.Valid([]byte(message)) {
			dep.Dependencies = []json.RawMessage{json.RawMessage(message)}
		} else {
			dep.Message = message
		}

		deps = append(deps, dep)
	}

	body, err := json.Marshal(report{Status: strconv.Itoa(overallStatus), Dependencies: deps})
	if err != nil {
		return http.StatusInternalServerError, "", err
	}

	return overallStatus, string(body), nil
}
