package client

// RouteKind classifies a route for the guard.
type RouteKind int

const (
	// RoutePublic renders for everyone.
	RoutePublic RouteKind = iota
	// RouteProtected requires an authenticated session.
	RouteProtected
	// RouteAuthEntry is a login or registration screen: pointless, and
	// confusing, for someone already signed in.
	RouteAuthEntry
)

// Action is what the guard tells the navigation layer to do.
type Action int

const (
	Allow Action = iota
	ShowLoading
	Redirect
)

// Decision pairs an Action with its redirect target when applicable.
type Decision struct {
	Action Action
	Target string
}

const (
	// LandingRoute is where anonymous visitors land.
	LandingRoute = "/"
	// DashboardRoute is where signed-in users land.
	DashboardRoute = "/panel"
)

// Guard turns session state plus route kind into a navigation decision.
type Guard struct {
	Landing   string
	Dashboard string
}

func NewGuard() *Guard {
	return &Guard{
		Landing:   LandingRoute,
		Dashboard: DashboardRoute,
	}
}

// Decide never routes off an unresolved session: as long as the store is
// Uninitialized the only answer is ShowLoading, so a slow verify can not
// bounce a logged-in user to the landing page.
func (g *Guard) Decide(state State, route RouteKind) Decision {
	if state.Kind == Uninitialized {
		return Decision{Action: ShowLoading}
	}

	switch route {
	case RouteProtected:
		if state.Kind != Authenticated {
			return Decision{Action: Redirect, Target: g.Landing}
		}
	case RouteAuthEntry:
		if state.Kind == Authenticated {
			return Decision{Action: Redirect, Target: g.Dashboard}
		}
	}

	return Decision{Action: Allow}
}
