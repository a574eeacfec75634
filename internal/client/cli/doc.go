// Package cli implements the user service command-line client.
//
// Run executes a single command given on the command line (register, login,
// profile, logout, status, ping) or, without one, starts an interactive loop
// accepting the same commands. The token from the last login is kept in a
// local SQLite session database and sent with protected calls.
package cli
