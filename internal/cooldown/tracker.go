package cooldown

import (
	"errors"
	"fmt"
	"sync"

	"command-plugins/internal/command"
)

var (
	// ErrNoMember is returned when a user-scoped rule runs outside a guild member context.
	ErrNoMember = errors.New("cooldown: user scope requires a guild member")
	// ErrNoGuild is returned when a guild-scoped rule runs in a DM.
	ErrNoGuild = errors.New("cooldown: guild scope requires a guild")
)

// Trip describes the rule that stopped an invocation.
type Trip struct {
	Location   Location
	Actions    int // actions counted in the window so far
	MaxActions int
	Seconds    int
}

// Outcome is the result of recording one action.
type Outcome struct {
	Tripped bool
	Trip    Trip
}

// Resolver maps a location to the scope id of the current invocation.
type Resolver func(Location) (string, error)

// Tracker counts actions per scope. One tracker is shared by every command
// that should share cooldown state.
type Tracker struct {
	mu      sync.Mutex
	entries *ExpiryMap[string, int]
}

// Option configures a Tracker.
type Option func(*trackerConfig)

type trackerConfig struct {
	afterFunc AfterFunc
}

// WithAfterFunc replaces the timer scheduler, for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(c *trackerConfig) { c.afterFunc = fn }
}

// NewTracker returns an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	var cfg trackerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Tracker{entries: NewExpiryMap[string, int](cfg.afterFunc)}
}

func entryKey(r Rule, id string) string {
	return fmt.Sprintf("%s:%d/%d:%s", r.Location, r.Actions, r.Seconds, id)
}

// Record counts one action against every rule in order. The first rule whose
// count already reached its threshold trips and later rules are not touched.
// A resolver error aborts the whole record.
func (t *Tracker) Record(rules []Rule, resolve Resolver) (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, r := range rules {
		id, err := resolve(r.Location)
		if err != nil {
			return Outcome{}, err
		}
		key := entryKey(r, id)

		count, ok := t.entries.Get(key)
		if !ok {
			t.entries.Set(key, 1, r.Window())
			continue
		}

		if count >= r.Actions {
			return Outcome{
				Tripped: true,
				Trip: Trip{
					Location:   r.Location,
					Actions:    count,
					MaxActions: r.Actions,
					Seconds:    r.Seconds,
				},
			}, nil
		}

		t.entries.Update(key, count+1)
	}

	return Outcome{}, nil
}

// Count returns the actions recorded for rule r in scope id; 0 when absent.
func (t *Tracker) Count(r Rule, id string) int {
	count, _ := t.entries.Get(entryKey(r, id))
	return count
}

// Reset forgets the count of rule r in scope id.
func (t *Tracker) Reset(r Rule, id string) {
	t.entries.Delete(entryKey(r, id))
}

// Close stops every pending expiry timer.
func (t *Tracker) Close() {
	t.entries.Close()
}

// Resolve maps a location to the scope id of an invocation.
func Resolve(ev command.Context, loc Location) (string, error) {
	switch loc {
	case LocationChannel:
		return ev.ChannelID(), nil
	case LocationUser:
		m := ev.Member()
		if ev.GuildID() == "" || m == nil || m.User == nil {
			return "", ErrNoMember
		}
		return m.User.ID, nil
	case LocationGuild:
		if ev.GuildID() == "" {
			return "", ErrNoGuild
		}
		return ev.GuildID(), nil
	default:
		return "", fmt.Errorf("unknown cooldown location: %q", loc)
	}
}
