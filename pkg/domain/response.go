package domain

// Response is a plain text message sent back to a chat.
type Response struct {
	ChatID           int64
	ReplyToMessageID int
	Text             string
}
