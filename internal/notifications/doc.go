// Package notifications sends optional ntfy push notifications when a
// pipeline run reaches a terminal state. Delivery is best-effort and never
// influences processing.
package notifications
