package notify

import "context"

// Noop discards every notification. Used in tests and when the bot cannot
// be reached at startup.
type Noop struct{}

// JoinRequest does nothing.
func (Noop) JoinRequest(context.Context, string, string, string, string) error {
	return nil
}
