/*
Package observability exports the coordinator's metrics.

Metrics are attached to the router through its lifecycle hooks and to the
liveness side through gauge functions, then served by the HTTP adapter on
/metrics.
*/
package observability
