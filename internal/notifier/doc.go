// Package notifier delivers the weekly digest of curated picks.
//
// A Digest carries the general picks, the full pool of upcoming events
// for per-subscriber personalization, and the derived weather condition.
// Implementations cover dry-run previews, Twitter posts, and Brevo
// email delivery.
package notifier
