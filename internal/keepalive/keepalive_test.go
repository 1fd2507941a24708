package keepalive

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"command-plugins/internal/command/commandtest"
	"command-plugins/internal/plugin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	calls []Source
	vals  []any
}

func (r *recorder) fallback(src Source, v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, src)
	r.vals = append(r.vals, v)
}

func (r *recorder) sources() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Source(nil), r.calls...)
}

func TestGuard_ArmIsExclusive(t *testing.T) {
	g := New()
	assert.True(t, g.Arm(0))
	assert.False(t, g.Arm(0))
	assert.True(t, g.IsArmed())

	g.Disarm()
	assert.False(t, g.IsArmed())
	assert.True(t, g.Arm(0))
}

func TestGuard_ArmExpires(t *testing.T) {
	g := New()
	require.True(t, g.Arm(20*time.Millisecond))
	assert.Eventually(t, func() bool { return !g.IsArmed() }, time.Second, 5*time.Millisecond)
	assert.True(t, g.Arm(time.Hour))
}

func TestGuard_StaleExpiryIgnored(t *testing.T) {
	g := New()
	var expire func()
	g.afterFunc = func(_ time.Duration, f func()) *time.Timer {
		expire = f
		return time.NewTimer(time.Hour)
	}
	require.True(t, g.Arm(time.Minute))
	first := expire
	g.Disarm()
	require.True(t, g.Arm(time.Minute))

	first()
	assert.True(t, g.IsArmed())
	expire()
	assert.False(t, g.IsArmed())
}

func TestGuard_DispatchWithoutFallback(t *testing.T) {
	g := New()
	assert.False(t, g.Dispatch(SourcePanic, "boom"))
}

func TestGuard_RecoverRoutesPanic(t *testing.T) {
	g := New()
	rec := &recorder{}
	g.Install(rec.fallback)

	func() {
		defer g.Recover()
		panic("boom")
	}()
	assert.Equal(t, []Source{SourcePanic}, rec.sources())
	assert.Equal(t, "boom", rec.vals[0])
}

func TestGuard_RecoverRepanicsWhenUnhandled(t *testing.T) {
	g := New()
	assert.PanicsWithValue(t, "boom", func() {
		defer g.Recover()
		panic("boom")
	})
}

func TestGuard_FallbackPanicIsContained(t *testing.T) {
	g := New()
	g.Install(func(Source, any) { panic("fallback broke") })
	assert.NotPanics(t, func() {
		assert.True(t, g.Dispatch(SourcePanic, "boom"))
	})
}

func TestGuard_Go(t *testing.T) {
	g := New()
	rec := &recorder{}
	g.Install(rec.fallback)

	g.Go(func() error { return errors.New("lost") })
	g.Go(func() error { panic("crashed") })

	assert.Eventually(t, func() bool { return len(rec.sources()) == 2 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []Source{SourceGoroutine, SourcePanic}, rec.sources())
}

func TestPlugin_InstallsOncePerWindow(t *testing.T) {
	g := New()
	first, second := &recorder{}, &recorder{}
	ev := &commandtest.Context{}

	_, err := plugin.Run(context.Background(), ev, []plugin.Plugin{Plugin(g, 0, first.fallback)}, nil)
	require.NoError(t, err)
	_, err = plugin.Run(context.Background(), ev, []plugin.Plugin{Plugin(g, 0, second.fallback)}, nil)
	require.NoError(t, err)

	require.True(t, g.Dispatch(SourceGoroutine, "x"))
	assert.Len(t, first.sources(), 1)
	assert.Empty(t, second.sources())
}

func TestPlugin_CommandPanicIsSurvived(t *testing.T) {
	g := New()
	rec := &recorder{}
	ev := &commandtest.Context{}

	var err error
	assert.NotPanics(t, func() {
		_, err = plugin.Run(context.Background(), ev, []plugin.Plugin{Plugin(g, 0, rec.fallback)},
			func(context.Context) error { panic("command crashed") })
	})
	assert.Error(t, err)
	assert.Equal(t, []Source{SourcePanic}, rec.sources())
}
