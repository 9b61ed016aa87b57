package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"mytodo/internal/service"
	"mytodo/internal/tasklist"
)

// ErrTaskRefRequired indicates no task number was provided.
var ErrTaskRefRequired = errors.New("task number required")

// ParseTaskRef parses the leading task number from args and returns the
// remaining args. Numbers are 1-based positions in the unfiltered list,
// as printed by `mytodo list`.
func ParseTaskRef(args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, ErrTaskRefRequired
	}
	ref := strings.TrimPrefix(args[0], "#")
	num, err := strconv.Atoi(ref)
	if err != nil || ref == "" || ref[0] == '+' || ref[0] == '-' {
		return 0, nil, fmt.Errorf("invalid task number: %s", args[0])
	}
	return num, args[1:], nil
}

// taskAt returns the task at the 1-based position num in m's load order.
func taskAt(m tasklist.Model, num int) (service.Task, error) {
	if num < 1 || num > len(m.Tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	return m.Tasks[num-1], nil
}
