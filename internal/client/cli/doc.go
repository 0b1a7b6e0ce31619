// Package cli provides the interactive taskgate command-line client.
//
// The App wraps a controller.Controller and drives it either from an
// interactive REPL (App.Run) or from one-shot methods used by the cobra
// subcommands in cmd/taskgate. Typical flow: restore a stored session, prompt
// for credentials if there is none, then execute task commands until the user
// exits.
//
// Key features:
//   - Login / Signup / Logout against the demo auth service
//   - Add, edit, toggle and delete tasks
//   - List tasks with a pending/completed summary
//
// Passwords are read without echo when stdin is a terminal and wiped after
// use.
package cli
