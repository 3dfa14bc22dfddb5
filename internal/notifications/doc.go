// Package notifications delivers revoked-standard alerts.
//
// NewService inspects configuration and fans messages out to every enabled
// channel: SMTP email (implicit TLS on port 465, STARTTLS elsewhere) and ntfy
// push. It degrades to a no-op when nothing is configured, and an empty
// alert list never sends anything. Delivery failures on one channel do not
// stop the others; the joined error is returned for the caller to log.
//
// Message text is Indonesian and matches the wording recipients already know.
package notifications
