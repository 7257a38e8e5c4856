// Package nav names the application's routes and the capability used to
// move between them.
package nav

import (
	"fmt"
	"sync"
)

type Route string

const (
	Landing   Route = "/"
	SignIn    Route = "/signin"
	SignUp    Route = "/signup"
	Home      Route = "/home"
	MyGroups  Route = "/my-sports-groups"
	AllGroups Route = "/sports"
	Profile   Route = "/profile"
)

// GroupDetail is the public detail route of a sport group
func GroupDetail(id string) Route {
	return Route(fmt.Sprintf("/sports/groups/%s", id))
}

// MyGroupDetail is the member-facing detail route of a sport group
func MyGroupDetail(id string) Route {
	return Route(fmt.Sprintf("/my-sports-groups/%s", id))
}

// GroupMembers is the admin members route of a sport group
func GroupMembers(id string) Route {
	return Route(fmt.Sprintf("/my-sports-groups/%s/members", id))
}

// GroupInvite is the admin invite route of a sport group
func GroupInvite(id string) Route {
	return Route(fmt.Sprintf("/my-sports-groups/%s/invite", id))
}

// GroupJoin is where an invite link lands
func GroupJoin(id string) Route {
	return Route(fmt.Sprintf("/my-sports-groups/%s/join", id))
}

// GameDay is the game day route of a sport group
func GameDay(id string) Route {
	return Route(fmt.Sprintf("/my-sports-groups/%s/game-day", id))
}

type Navigator interface {
	Navigate(to Route)
}

// NavigatorFunc adapts a plain function to Navigator
type NavigatorFunc func(to Route)

func (f NavigatorFunc) Navigate(to Route) { f(to) }

// Recorder remembers every navigation, in order
type Recorder struct {
	mu     sync.Mutex
	routes []Route
}

func (r *Recorder) Navigate(to Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, to)
}

// Routes returns a copy of the recorded navigations
func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

// Last returns the most recent navigation or "" if none happened
func (r *Recorder) Last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}
