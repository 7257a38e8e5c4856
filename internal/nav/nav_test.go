package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupRoutes(t *testing.T) {
	assert.Equal(t, Route("/sports/groups/7"), GroupDetail("7"))
	assert.Equal(t, Route("/my-sports-groups/7"), MyGroupDetail("7"))
	assert.Equal(t, Route("/my-sports-groups/7/members"), GroupMembers("7"))
	assert.Equal(t, Route("/my-sports-groups/7/game-day"), GameDay("7"))
	assert.Equal(t, Route("/my-sports-groups/7/invite"), GroupInvite("7"))
	assert.Equal(t, Route("/my-sports-groups/7/join"), GroupJoin("7"))
}

func TestRecorder(t *testing.T) {
	var r Recorder
	assert.Equal(t, Route(""), r.Last())

	var n Navigator = &r
	n.Navigate(SignIn)
	n.Navigate(Home)

	routes := r.Routes()
	assert.Equal(t, []Route{SignIn, Home}, routes)
	routes[0] = Landing
	assert.Equal(t, SignIn, r.Routes()[0], "Routes returns a copy")
	assert.Equal(t, Home, r.Last())
}

func TestNavigatorFunc(t *testing.T) {
	var got Route
	NavigatorFunc(func(to Route) { got = to }).Navigate(Profile)
	assert.Equal(t, Profile, got)
}
