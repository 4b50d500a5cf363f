package router

// Route is one entry of the static route table.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

// Decision is the outcome of the navigation guard. Redirect is a route
// name and is empty when the transition is allowed.
type Decision struct {
	Redirect string
}

// Allowed reports whether the transition may proceed unchanged.
func (d Decision) Allowed() bool {
	return d.Redirect == ""
}

// Guard decides a transition from `from` to `to`. It is a pure function of
// the target's metadata and the authentication flag; `from` is accepted for
// parity with the navigation hook and not consulted.
func Guard(to, from Route, authenticated bool) Decision {
	switch {
	case to.RequiresAuth && !authenticated:
		return Decision{Redirect: NameLogin}
	case to.Name == NameLogin && authenticated:
		return Decision{Redirect: NameDashboard}
	default:
		return Decision{}
	}
}
