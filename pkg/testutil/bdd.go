package testutil

import "testing"

// Given, When and Then name subtests so a scenario reads top to bottom in
// `go test -v` output. Each step runs as its own subtest sharing the parent's
// fixtures, so steps must run in order and a failed step does not stop later ones.
func Given(t *testing.T, precondition string, step func(t *testing.T)) bool {
	t.Helper()
	return t.Run("given "+precondition, step)
}

func When(t *testing.T, action string, step func(t *testing.T)) bool {
	t.Helper()
	return t.Run("when "+action, step)
}

func Then(t *testing.T, outcome string, step func(t *testing.T)) bool {
	t.Helper()
	return t.Run("then "+outcome, step)
}
