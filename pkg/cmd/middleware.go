package cmd

// Middleware wraps a command (logging, plugin chains, guild checks).
type Middleware func(Command) Command

// Apply applies middlewares in order; the last in the list is the outermost.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		if mw == nil {
			continue
		}
		c = mw(c)
	}
	return c
}
