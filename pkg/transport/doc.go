/*
Package transport is the one-shot request/response primitive and the duplex
port primitive every Skury context talks through.

A Bus routes messages between Endpoints by Address. Each request is resolved
exactly once through a Reply sink; sending to an address nobody listens on
fails with domain.ErrNoReceiver, and sending from a closed endpoint fails with
domain.ErrContextTornDown. Neither is retried here: callers decide how to
degrade.

Ports are long-lived duplex channels opened by a UI surface towards the
coordinator (see package liveness).
*/
package transport
