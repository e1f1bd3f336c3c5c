// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (Discord prefix messages, CLI) is defined by adapters that wrap this.
package cmd

import (
	"context"
	"strings"
)

// Invocation carries what any command runner can pass: the command name, its
// positional arguments and an opaque payload. Adapters set Data to their context
// (e.g. the Discord session and the triggering message).
type Invocation struct {
	Name string
	Args []string
	Data interface{}
}

// Command is the universal contract: identity plus execution. Permissions and
// transport-specific registration stay in adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Parse turns prefixed text into an Invocation. It reports false when the text
// does not start with prefix or holds nothing after it. The name is the first
// whitespace-separated token, lowercased; the remaining tokens are the arguments.
// There is no quoting: a value with spaces can only be the joined tail of Args.
func Parse(prefix, text string) (*Invocation, bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return nil, false
	}
	return &Invocation{
		Name: strings.ToLower(fields[0]),
		Args: fields[1:],
	}, true
}

// Rest joins the arguments from index i on, or returns "" when there are none.
func (inv *Invocation) Rest(i int) string {
	if i >= len(inv.Args) {
		return ""
	}
	return strings.Join(inv.Args[i:], " ")
}
