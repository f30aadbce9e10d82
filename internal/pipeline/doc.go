// Package pipeline runs a pipeline definition against a job. Stages execute
// strictly in declaration order and the run stops at the first failure; the
// stages after it are recorded as not run. The state of the last run is
// persisted to out/<job>/.state/run.json after every stage so an interrupted
// run can still be inspected.
package pipeline
