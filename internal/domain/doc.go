// Package domain models citizen hazard reports submitted over SMS and WhatsApp.
//
// # Inbound Messages
//
// Reports arrive as Twilio-style webhook payloads: a sender address, a free-text
// body, an upstream message SID, and an optional media attachment. The sender
// address encodes the channel:
//
//	"whatsapp:+15551234567"  →  WhatsApp (chat-app) origin
//	"+15551234567"           →  plain SMS telephony
//
// The "whatsapp:" prefix is stripped for classification and re-applied when
// replying on that channel. See [DetectChannel].
//
// # Hazard Classification
//
// Free text is classified against ordered keyword tables; the first category
// with any substring match wins:
//
//	flood    — flood, flooding, water
//	tsunami  — tsunami, tidal, surge
//	storm    — storm, cyclone, hurricane, rain
//	waves    — wave, waves, swell
//
// Text matching no table entry is classified "other". Urgency resolves the same
// way (urgent > medium > low triggers) and defaults to "medium" when nothing
// matches — an intentional triage policy: an unclassifiable report is treated
// as actionable rather than ignorable.
//
// # Location Grammar
//
// A location phrase is the text following "at", "in", or "near", terminated at
// a comma, period, or newline:
//
//	"Flooding near Marina Beach, urgent" → "Marina Beach"
//
// Messages without a recognizable phrase carry the sentinel [UnknownLocation],
// which downstream geocoding skips entirely.
//
// # Report IDs
//
// IDs derive from the creation timestamp (Unix milliseconds) with a monotonic
// guard, so IDs are unique and sortable within a process. Collision across
// process restarts within the same millisecond is accepted as negligible.
// Assignment happens exactly once, in the store's Create.
package domain
