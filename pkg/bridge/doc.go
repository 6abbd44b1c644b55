/*
Package bridge lets a script without privileged APIs reach the coordinator.

A Proxy and a Listener share an untyped same-document Channel. The Proxy
wraps each call into a request envelope carrying a fresh correlation id and
waits for the response with the same id; the Listener, which holds a real
ports.Runtime, performs the call and posts the response back.

Traffic on the channel that does not carry the bridge source tag is ignored,
as are responses for ids that are unknown or already resolved.
*/
package bridge
