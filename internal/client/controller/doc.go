// Package controller holds the application state machine that sits between
// the user interface and the services.
//
// The controller has two modes. Unauthenticated shows either the login or the
// signup view; Authenticated shows the task list, with at most one task in
// edit mode. Login and Signup move to Authenticated only after both the
// session token and the user have been written to the store. Logout removes
// the token, the user and the task collection and resets all transient state.
//
// The task list held here is a cache of the repository: after every mutating
// call it is updated from what the repository returned, never from what the
// controller expected. A failed call sets a single user-facing message and
// leaves the list as it was.
package controller
