// Package cooldown limits how often commands run per channel, user or guild.
// A Tracker counts actions per scope key in an expiring map; a rule such as
// "1/4" trips once the count reaches its threshold inside the window.
package cooldown

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Location is the scope a rule counts against.
type Location string

const (
	LocationChannel Location = "channel"
	LocationUser    Location = "user"
	LocationGuild   Location = "guild"
)

// ErrInvalidCooldown is wrapped by every rule parsing failure.
var ErrInvalidCooldown = errors.New("invalid cooldown string")

const maxSafeInteger = 1<<53 - 1

// maxSeconds keeps the window representable as a time.Duration.
const maxSeconds = math.MaxInt64 / int64(time.Second)

// ParseLocation validates a location name.
func ParseLocation(s string) (Location, error) {
	switch l := Location(strings.ToLower(strings.TrimSpace(s))); l {
	case LocationChannel, LocationUser, LocationGuild:
		return l, nil
	default:
		return "", fmt.Errorf("unknown cooldown location: %q", s)
	}
}

// Rule allows Actions actions per Seconds seconds in one Location.
type Rule struct {
	Location Location
	Actions  int
	Seconds  int
}

// Window is the rule's expiry as a duration.
func (r Rule) Window() time.Duration {
	return time.Duration(r.Seconds) * time.Second
}

func (r Rule) String() string {
	return fmt.Sprintf("%s:%d/%d", r.Location, r.Actions, r.Seconds)
}

// Parse reads "<actions>/<seconds>". An empty location defaults to guild.
// Both numbers must be positive integers.
func Parse(loc Location, s string) (Rule, error) {
	if loc == "" {
		loc = LocationGuild
	}
	if _, err := ParseLocation(string(loc)); err != nil {
		return Rule{}, err
	}

	actionsRaw, secondsRaw, ok := strings.Cut(s, "/")
	if !ok || strings.Contains(secondsRaw, "/") {
		return Rule{}, fmt.Errorf("%w: %s", ErrInvalidCooldown, s)
	}

	actions, err := parsePositive(actionsRaw, maxSafeInteger)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %s: actions: %v", ErrInvalidCooldown, s, err)
	}
	seconds, err := parsePositive(secondsRaw, maxSeconds)
	if err != nil {
		return Rule{}, fmt.Errorf("%w: %s: seconds: %v", ErrInvalidCooldown, s, err)
	}

	return Rule{Location: loc, Actions: int(actions), Seconds: int(seconds)}, nil
}

// MustParse is Parse for package-level rule tables; it panics on bad input.
func MustParse(loc Location, s string) Rule {
	r, err := Parse(loc, s)
	if err != nil {
		panic(err)
	}
	return r
}

func parsePositive(raw string, limit int64) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errors.New("not an integer")
	}
	if n <= 0 {
		return 0, errors.New("must be positive")
	}
	if n > limit {
		return 0, errors.New("too large")
	}
	return n, nil
}
