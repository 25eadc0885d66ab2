// Package agentmap is the public facade over the AgentMap core: bundle
// compilation and caching, fail-closed container assembly, checkpoint
// persistence, and the interrupt/resume thread lifecycle. The default
// runtime wires in-memory components and is suitable for local usage and
// tests; hosts swap in the sqlite or postgres adapters for durability.
package agentmap
