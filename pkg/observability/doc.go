/*
Package observability exposes bridge activity as Prometheus metrics.

Metrics are fed by domain.LifecycleHooks, so any Bridge can be instrumented by passing
Metrics.Hooks to designbridge.WithLifecycleHooks. Each Metrics owns its registry;
Handler serves it in the Prometheus text format.
*/
package observability
