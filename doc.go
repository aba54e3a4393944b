/*
Package designbridge lets a tool-calling agent drive a live design-editor document.

The agent issues high-level commands (create a wireframe, add or style an element,
arrange a layout, export, query the selection or the current page). The Bridge assigns
each command an id, fills in the ids the agent left out from the session context, hands
the command to an execution strategy and folds the response back into that context.

# Execution strategies

Two strategies implement ports.Executor:

  - Simulated: responses are synthesized locally, shaped like a host's. Useful for
    developing agents without an editor at hand.
  - Host: commands are written to a live host, one JSON object per line, and responses
    are paired with their commands by id. If the host cannot be found or fails to start,
    the executor degrades to placeholder responses and says so on the diagnostic log.

Hosts are reached through a ports.HostLauncher: a child process (pkg/adapters/process),
a Redis channel (pkg/adapters/redis) or a plugin dialing in over WebSocket
(pkg/adapters/websocket).

# Usage

	bridge := designbridge.New()
	if err := bridge.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer bridge.Close()

	resp, err := bridge.Execute(ctx, domain.CreateWireframe{
		Description: "Landing",
		Pages:       []string{"Home", "About"},
	})
	if err != nil {
		log.Fatal(err)
	}

	// Parent is filled in with the active page of the wireframe just created.
	_, err = bridge.Execute(ctx, domain.AddElement{ElementType: "rectangle"})

A response with success=false is returned together with a *domain.MutationError
carrying the host's message verbatim.
*/
package designbridge
