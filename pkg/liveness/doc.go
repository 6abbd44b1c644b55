/*
Package liveness keeps the coordinator awake while a UI is visible.

The UI side runs a Keeper: it holds one named port open, pings it
periodically and, after an unexpected disconnect, reconnects exactly once
after a short delay while still visible. The coordinator side runs an
Acceptor that answers every ping with a pong and never probes on its own.
*/
package liveness
