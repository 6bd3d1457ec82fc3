// Package services defines shared error utilities consumed by the pipeline
// stages and external integrations.
//
// It provides the closed set of sentinel failure markers (validation,
// external tool, translation, delivery, transport, configuration) plus the
// Wrap helper that stamps stage and operation context onto failures. The
// orchestrator classifies wrapped errors with errors.Is at its boundary and
// converts each into a single user-facing message, so stage code never
// formats user-visible text itself.
package services
