package inflight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStartSupersedesPreviousRequest(t *testing.T) {
	var r Registry

	first, _ := r.Start(context.Background(), "daily")
	second, _ := r.Start(context.Background(), "daily")

	require.ErrorIs(t, first.Err(), context.Canceled)
	require.NoError(t, second.Err())
}

func TestSlotsAreIndependent(t *testing.T) {
	var r Registry

	daily, _ := r.Start(context.Background(), "daily")
	module, _ := r.Start(context.Background(), "module:1")

	r.Cancel("daily")
	require.ErrorIs(t, daily.Err(), context.Canceled)
	require.NoError(t, module.Err())
}

func TestDoneReleasesSlot(t *testing.T) {
	var r Registry

	ctx, done := r.Start(context.Background(), "daily")
	done()
	require.ErrorIs(t, ctx.Err(), context.Canceled)

	// The slot is free again; a new request starts cleanly.
	next, _ := r.Start(context.Background(), "daily")
	require.NoError(t, next.Err())
}

func TestDoneAfterSupersedeLeavesNewRequestAlone(t *testing.T) {
	var r Registry

	_, firstDone := r.Start(context.Background(), "daily")
	second, _ := r.Start(context.Background(), "daily")

	// The superseded request settles late; its cleanup must not touch the
	// request that replaced it.
	firstDone()
	require.NoError(t, second.Err())
}

func TestCancelUnknownKeyIsNoop(t *testing.T) {
	var r Registry
	r.Cancel("nothing-here")
}

func TestCancelAll(t *testing.T) {
	var r Registry

	a, _ := r.Start(context.Background(), "a")
	b, _ := r.Start(context.Background(), "b")

	r.CancelAll()
	require.ErrorIs(t, a.Err(), context.Canceled)
	require.ErrorIs(t, b.Err(), context.Canceled)
}
