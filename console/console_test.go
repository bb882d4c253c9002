package console_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/apperr"
	"github.com/km-arc/go-ioc/console"
	"github.com/km-arc/go-ioc/controller"
)

func run(t *testing.T, k *console.Kernel, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	k.Root().SetOut(&out)
	k.Root().SetErr(&out)
	k.Root().SetArgs(args)
	err := k.Execute(context.Background())
	return out.String(), err
}

func TestAddRoute_CommandPrintsJSONResult(t *testing.T) {
	k := console.NewKernel("app")
	k.AddRoute("users:list", func(ctx context.Context, in any) (any, error) {
		return []string{"alice", "bob"}, nil
	}, controller.Metadata{Summary: "List all users"})

	out, err := run(t, k, "users:list")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")
}

func TestAddRoute_ArgsReachOperation(t *testing.T) {
	k := console.NewKernel("app")

	var seen []string
	k.AddRoute("greet", func(ctx context.Context, in any) (any, error) {
		seen = in.([]string)
		return nil, nil
	}, controller.Metadata{})

	_, err := run(t, k, "greet", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, seen)
}

func TestAddRoute_NilResultPrintsNothing(t *testing.T) {
	k := console.NewKernel("app")
	k.AddRoute("migrate", func(ctx context.Context, in any) (any, error) {
		return nil, nil
	}, controller.Metadata{Summary: "Run migrations"})

	out, err := run(t, k, "migrate")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExecute_EscapedErrorSurfaces(t *testing.T) {
	k := console.NewKernel("app")
	k.AddRoute("broken", func(ctx context.Context, in any) (any, error) {
		return nil, apperr.Internal("boom")
	}, controller.Metadata{})

	_, err := run(t, k, "broken")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestExecute_SummaryShowsInHelp(t *testing.T) {
	k := console.NewKernel("app")
	k.AddRoute("users:list", func(ctx context.Context, in any) (any, error) {
		return nil, nil
	}, controller.Metadata{Summary: "List all users"})

	out, err := run(t, k, "help")
	require.NoError(t, err)
	assert.Contains(t, out, "List all users")
}
