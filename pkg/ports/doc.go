/*
Package ports defines the driven ports (interfaces) of the design bridge.

These interfaces decouple the Bridge from the way commands are executed and from the
transport that reaches the host, so the same facade can run against synthesized
responses, a subprocess, a redis channel or a plugin WebSocket.

# Key Interfaces

  - Executor: An execution strategy (simulated or host) with a one-shot lifecycle.
  - HostLauncher: Locates and starts the host, returning a Link.
  - Link: A duplex byte stream carrying newline-delimited JSON.
*/
package ports
