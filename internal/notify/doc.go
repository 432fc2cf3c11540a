// Package notify fans transition alerts out to delivery channels.
//
// Channels:
//   - email:    SMTP
//   - sms:      Twilio Messages
//   - voice:    Twilio Calls with a TwiML callback URL
//   - telegram: bot sendMessage to chat IDs
//   - log:      structured log lines (dry runs)
//
// Channel clients are built once at startup and reused. Every enabled channel
// is attempted concurrently; subscribers within a channel are sent to with
// bounded concurrency. A failure of one channel or subscriber never stops the
// others and never surfaces as an error from Notify.
package notify
