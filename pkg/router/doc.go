/*
Package router is the coordinator's dispatcher.

A Router listens at the coordinator address and answers every request
exactly once. Page-bound messages are forwarded to the sender's surface, or
to the active surface when the sender is not a page; when nothing listens
there yet the router injects the content script once and retries once.
Model calls and screen captures are served locally.

Lifecycle hooks report dispatches, model calls and remediations, which is
how metrics are attached.
*/
package router
