package domain

import "strings"

// Channel tags for Report.Source and outbound address formatting.
const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
)

// WhatsAppPrefix is the gateway's address prefix for chat-app senders.
const WhatsAppPrefix = "whatsapp:"

// ChannelInfo is the result of classifying an inbound sender address.
type ChannelInfo struct {
	IsChatApp   bool
	CleanNumber string // sender address with any channel prefix stripped
	Channel     string // ChannelWhatsApp or ChannelSMS
}

// DetectChannel classifies a sender address as WhatsApp or plain SMS and
// strips the channel prefix. An empty address is treated as SMS with an
// empty clean number.
func DetectChannel(from string) ChannelInfo {
	if strings.HasPrefix(from, WhatsAppPrefix) {
		return ChannelInfo{
			IsChatApp:   true,
			CleanNumber: strings.TrimPrefix(from, WhatsAppPrefix),
			Channel:     ChannelWhatsApp,
		}
	}
	return ChannelInfo{
		IsChatApp:   false,
		CleanNumber: from,
		Channel:     ChannelSMS,
	}
}
