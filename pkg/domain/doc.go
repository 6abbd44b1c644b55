/*
Package domain contains the message model shared by every Skury execution context.

It defines the closed set of message kinds exchanged between the coordinator,
the page sessions and the panel, the single reply envelope every request
resolves with, and the error taxonomy those replies carry. The package is pure:
no I/O, no transport, no persistence.

# Key Entities

  - Kind: the discriminator of a message (e.g. "remote-call").
  - Message: a sealed union with one struct per Kind.
  - Response: the reply envelope, success or error payload.
  - Question / Option: a multiple-choice question extracted from a page.
*/
package domain
