// Package ws carries transport ports over websockets, so a keeper in another
// process can hold the coordinator's keepalive port.
package ws
