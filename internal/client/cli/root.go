package cli

import (
	"bufio"
	"context"
	"os"
)

func (a *App) getStatus() string {
	if a.isSignedIn() {
		return "(signed in)"
	}
	if a.drafts.HasData(context.Background()) {
		return "(draft)"
	}
	return ""
}

// Root runs the REPL on stdin. A token left from an earlier run counts as
// a fresh session, so a pending migration is resumed before the first
// prompt.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to brandkit CLI (type 'help' for commands)")

	if token := a.sessions.Token(ctx); token != "" {
		a.migration.OnAuthenticated(ctx, token)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
