/*
Package skury is an AI study assistant for web pages, built as a set of
isolated contexts that only talk through messages.

# Concept

A Coordinator owns the message bus. Each open surface (a browser tab) runs a
page session that reads and annotates its document, and may embed a chat
panel. Panels and pages never call the model or each other directly: every
request goes to the coordinator's router, which either answers it (model
calls, screenshots) or relays it to the right page, injecting the page
session first when nothing is listening there yet.

# Usage

	c, err := skury.New(skury.WithStore(store))
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	id, _ := c.OpenSurface(ctx, surface.Surface{URL: url, HTML: html})
	p, _ := c.OpenPanel(id)
	entry := p.ReadPage(ctx)
	fmt.Println(entry.Text)

# Packages

  - pkg/domain: message kinds, the reply envelope and the error taxonomy.
  - pkg/transport: the bus, request/reply and long-lived ports.
  - pkg/router: the coordinator's dispatch and relay rules.
  - pkg/page, pkg/panel: the two UI contexts.
  - pkg/liveness: the keepalive port between panels and the coordinator.
  - pkg/bridge: the relay for scripts without direct runtime access.
  - pkg/adapters: preference stores, HTTP, websocket and MCP surfaces.
*/
package skury
