// Package commands implements the configuration commands and routes command lines
// to them.
//
// Every command has two forms. Without a payload it reports persisted and live state.
// With a payload it validates every field, persists them in one write, and then
// either applies the change or tells the operator which command applies it:
//
//	SET-HOSTNAME [<name>]
//	CONFIGURE-PROTOCOL P=<id> [S=<0|1>] [R=<port>]
//	SET-STATION [S="<ssid>" P="<passphrase>" [I=<ip>] [J=<gateway>] [K=<netmask>]]
//	SET-MODE [S=<mode> [P=<0|1>]]
//	SET-ACCESS-POINT [S="<ssid>" P="<passphrase>" I=<ip> [C=<channel>]]
//
// Replies are status lines of the form "echo:<Title>#<Value>". A rejected payload
// produces "echo:<Field> '<value>' is not valid" and persists nothing.
package commands
