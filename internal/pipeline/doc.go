// Package pipeline holds the candidate status set and the transition table
// that the pipeline service enforces.
//
// The table is data, not behaviour: side effects (slot locking, interview
// creation, outbox rows) are applied by services.PipelineService after a
// transition has been checked here.
package pipeline
