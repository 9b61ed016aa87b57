package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"mytodo/internal/app"
	"mytodo/internal/exitcode"
	"mytodo/internal/output"
	"mytodo/internal/service"
)

// startRunner signs in to svc and loads the collection.
func startRunner(ctx context.Context, svc service.Service, errOut io.Writer) (*app.Runner, int) {
	r := app.NewRunner(svc, slog.Default())
	if err := r.Start(ctx); err != nil {
		return nil, fail(errOut, err)
	}
	return r, exitcode.Success
}

// fail prints err and returns the matching exit code.
func fail(errOut io.Writer, err error) int {
	code := exitcode.FromError(err)
	if code == exitcode.BackendError {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	} else {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return code
}

// printReport writes celebrations and praise produced by a dispatch.
func printReport(out io.Writer, rep app.Report) {
	for _, c := range rep.Celebrations {
		output.FormatCelebration(out, c.TaskText, c.Status, c.LeveledUp)
	}
	for _, p := range rep.Praise {
		fmt.Fprintln(out, p)
	}
}
