package session

// LoginRoute is where a torn down session sends the user.
const LoginRoute = "/login"

// Navigator moves the user interface to another route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// NopNavigator ignores navigation requests.
var NopNavigator Navigator = NavigatorFunc(func(string) {})
