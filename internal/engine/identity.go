package engine

// WithActingUser sets the acting user on the gateway for the duration of fn
// and clears it on every exit path, including panics. No gateway call that
// must be attributed to a user may happen outside this scope; clearing on
// exit prevents attribution from leaking into unrelated subsequent calls.
func WithActingUser(g Gateway, userID string, fn func() error) error {
	g.SetActingUser(userID)
	defer g.SetActingUser("")
	return fn()
}
