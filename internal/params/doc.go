// Package params extracts letter-keyed parameters from a configuration command line.
//
// A command payload is a sequence of whitespace-separated tokens. Each token starts
// with a one-character key, optionally followed by '=', and then a value in one of two
// grammars:
//
//   - Quoted: S"My Network" or S="My Network". The value is everything between the
//     opening quote and the next quote, spaces included.
//   - Bare: I192.168.1.5 or I=192.168.1.5. The value runs to the next whitespace or
//     the end of the line.
//
// A key only matches at the start of a token, so a letter embedded inside another
// token is never taken for a key. Absent keys and keys with no value both yield the
// empty string; callers decide per field whether that difference matters.
//
// # Usage Example
//
//	args := params.Parse(`S="My Net" P="secret" I192.168.1.5`)
//	ssid := args.Quoted('S')   // "My Net"
//	ip := args.Bare('I')       // "192.168.1.5"
//
// The package-level Quoted and Bare functions perform a single lookup without
// building the full Args value.
package params
