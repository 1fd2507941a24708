package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubCommand struct {
	name string
	runs int
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) Description() string { return "stub " + s.name }
func (s *stubCommand) Run(context.Context, *Invocation) error {
	s.runs++
	return nil
}

func TestRegistry_GetIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCommand{name: "Ping"})

	require.NotNil(t, r.Get("ping"))
	require.NotNil(t, r.Get("PING"))
	require.Nil(t, r.Get("pong"))
}

func TestRegistry_GetAllSorted(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCommand{name: "roll"})
	r.Register(&stubCommand{name: "history"})
	r.Register(&stubCommand{name: "ping"})

	var names []string
	for _, c := range r.GetAll() {
		names = append(names, c.Name())
	}
	require.Equal(t, []string{"history", "ping", "roll"}, names)
}

func TestApply_OrderAndRoot(t *testing.T) {
	base := &stubCommand{name: "ping"}
	var trace []string
	mw := func(tag string) Middleware {
		return func(c Command) Command {
			return Wrap(c, func(ctx context.Context, inv *Invocation) error {
				trace = append(trace, tag)
				return c.Run(ctx, inv)
			})
		}
	}

	c := Apply(base, mw("inner"), nil, mw("outer"))
	require.NoError(t, c.Run(context.Background(), &Invocation{}))

	require.Equal(t, []string{"outer", "inner"}, trace)
	require.Equal(t, 1, base.runs)
	require.Same(t, base, Root(c))
	require.Equal(t, "ping", c.Name())
}
