// Package notify turns domain events into durable in-app notification
// records and best-effort outbound emails. Its core policy is per-recipient
// isolation: one bad address or one failed lookup must never keep the other
// recipients of an event from being notified, so failures are collected into
// a result instead of aborting the batch.
package notify
