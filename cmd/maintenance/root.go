package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

type env struct {
	out    io.Writer
	errOut io.Writer
	open   func(ctx context.Context) (*backend, error)
}

// exitError carries the process exit code out of a RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }
func userError(err error) error { return &exitError{code: exitUserError, err: err} }

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "maintenance",
		Short:         "Operator tasks for the marketplace document store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(e.out)
	root.SetErr(e.errOut)
	root.AddCommand(newRepairCmd(e))
	root.AddCommand(newPromoteCmd(e))
	return root
}

// execute runs the CLI and maps the outcome to an exit code. Errors that do
// not carry a code are cobra usage errors.
func execute(args []string, e *env) int {
	root := newRootCmd(e)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(e.errOut, "error:", err)
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

func withBackend(cmd *cobra.Command, e *env, fn func(ctx context.Context, b *backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, err := e.open(ctx)
	if err != nil {
		return sysError(fmt.Errorf("open store: %w", err))
	}
	if b.close != nil {
		defer b.close()
	}
	return fn(ctx, b)
}
