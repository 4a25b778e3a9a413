// Package tor routes fetches through a SOCKS5 proxy.
//
// A Client wraps any SOCKS5 endpoint, for example a system Tor daemon on
// 127.0.0.1:9050 or an SSH dynamic forward. Daemon starts a private Tor
// process through tornago so that --tor works without a local install.
//
// .onion hosts are only reachable through Tor; ValidateOnionHost checks a
// v3 address before any request is made.
package tor
