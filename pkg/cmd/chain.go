package cmd

import "context"

// Middleware decorates a command. The result still satisfies Command, so
// registries and adapters never see the difference.
type Middleware func(Command) Command

// Apply decorates c with mws in order. Each middleware wraps everything applied
// before it, so the last one listed is entered first at run time.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}

// RunFunc is the signature of Command.Run.
type RunFunc func(ctx context.Context, inv *Invocation) error

// decorated keeps the identity of the command it wraps and swaps its Run.
type decorated struct {
	inner Command
	run   RunFunc
}

func (d *decorated) Name() string        { return d.inner.Name() }
func (d *decorated) Description() string { return d.inner.Description() }
func (d *decorated) Unwrap() Command     { return d.inner }

func (d *decorated) Run(ctx context.Context, inv *Invocation) error {
	return d.run(ctx, inv)
}

// Wrap returns c with run in place of its Run. run reaches the original through
// the command it closed over. A nil run leaves c unchanged.
func Wrap(c Command, run RunFunc) Command {
	if run == nil {
		return c
	}
	return &decorated{inner: c, run: run}
}

// Root peels decorations off c and returns the command that was registered.
// Adapters use it to type-assert metadata interfaces.
func Root(c Command) Command {
	for {
		u, ok := c.(interface{ Unwrap() Command })
		if !ok {
			return c
		}
		c = u.Unwrap()
	}
}
