// Package qstash is a small client for the Upstash QStash REST API: delayed
// publish, cancellation by message id, and verification of the signature
// QStash attaches to the callbacks it delivers.
package qstash
