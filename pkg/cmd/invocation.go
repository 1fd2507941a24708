// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (Discord slash, text prefix) is defined by adapters that wrap this.
package cmd

import "context"

// Invocation carries the minimal input any command runner can pass: arguments
// and an opaque payload. Adapters set Data to their context (for Discord, a
// command.Context implementation).
type Invocation struct {
	Args []string
	Data interface{}

	// Halted is the name of the plugin that stopped the chain. Empty when the
	// command itself ran.
	Halted string
}

// Command is the universal contract: identity plus execution. Permissions,
// plugins, and transport-specific registration stay in adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
