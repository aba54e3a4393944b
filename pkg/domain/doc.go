/*
Package domain contains the wire model of the design bridge.

It defines the closed set of command kinds, the typed payload carried by each kind,
the command and response envelopes exchanged with the host, and the session context
that lets short commands omit an explicit target. The package has no I/O and no
dependencies on adapters.

# Key Entities

  - Command: a tagged payload plus a correlation id.
  - Response: the host's answer, echoing the command kind and id.
  - SessionContext: the active wireframe/page and the known wireframes.
  - State: the execution strategy lifecycle (simulated or host).
*/
package domain
