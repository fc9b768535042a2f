// Package pipeline compiles repository descriptors into CI/CD pipeline graphs.
//
// A graph is the ordered list of actions a pipeline runs: a source action, a build stage that also
// stamps a semantic version, a test stage, and one deploy stage per target environment, each
// optionally preceded by a manual approval gate. Every deploy consumes the tested artifact.
// Alongside the actions a graph declares the side channels the provisioning layer has to set up:
// the commit hook, an optional cron schedule, the version registry key and the notification topic.
//
// Compilation is pure. The same descriptor, prefix and policy always give the same graph, which is
// what lets the provisioning layer diff successive graphs. Nothing is provisioned or executed here.
//
// A descriptor that cannot be compiled yields a *ConfigError. The Compiler compiles batches in
// parallel and reports such errors per descriptor, without aborting the rest of the batch.
package pipeline
