// Package internal holds token helpers private to goPass: minting random
// UUID tokens, parsing presented tokens and the blank-input check shared by
// every Engine operation.
//
// # Sub-packages
//
//   - command: the gopass command-line tool
//   - confloader: koanf configuration loading for the binaries
//   - logging: logrus logger construction
package internal
