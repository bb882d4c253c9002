// Package console exposes controllers as CLI subcommands. It is the
// command-line Registrar: every operation attached through AddRoute becomes a
// cobra subcommand whose positional args are handed to the operation as its
// request value.
package console

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/km-arc/go-ioc/controller"
	"github.com/km-arc/go-ioc/intercept"
)

// Kernel wraps the root cobra command.
type Kernel struct {
	root *cobra.Command
}

// NewKernel builds a console kernel with the given binary name.
func NewKernel(name string) *Kernel {
	root := &cobra.Command{
		Use:           name,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	return &Kernel{root: root}
}

// AddRoute registers an operation as a subcommand. The operation receives the
// command's positional arguments ([]string) as its request value; a non-nil
// result is printed as indented JSON.
func (k *Kernel) AddRoute(name string, op intercept.Operation, meta controller.Metadata) {
	cmd := &cobra.Command{
		Use:   name,
		Short: meta.Summary,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := op(cmd.Context(), args)
			if err != nil {
				return err
			}
			if out == nil {
				return nil
			}
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return fmt.Errorf("console: encoding output of [%s]: %w", name, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	k.root.AddCommand(cmd)
}

// Execute parses os.Args and runs the matched subcommand.
func (k *Kernel) Execute(ctx context.Context) error {
	return k.root.ExecuteContext(ctx)
}

// Root exposes the underlying cobra command for flags and tests.
func (k *Kernel) Root() *cobra.Command { return k.root }
