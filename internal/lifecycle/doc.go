// Package lifecycle guards the process between startup and exit.
//
// The Guard is a two-state machine. While Running, failures that escape
// every other handler are logged and the process carries on. A termination
// signal (SIGINT, SIGTERM or SIGHUP) moves it to Terminating, which runs
// the shutdown hooks within a bounded drain timeout and exits with status 0.
package lifecycle
