package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPath is the prefix of the JSON API.
	APIPath = RootPath + "api"

	// RouterRootPath is the root of a route group.
	RouterRootPath = ""

	// DefaultCookieName is used when the config does not name the session cookie.
	DefaultCookieName = "session"
)
