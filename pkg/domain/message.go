package domain

// IncomingMessage is the transport-neutral view of an inbound chat text message.
type IncomingMessage struct {
	UpdateID  int
	ChatID    int64
	MessageID int
	UserID    int64
	Text      string
}

func (m IncomingMessage) Reply(text string) Response {
	return Response{
		ChatID:           m.ChatID,
		ReplyToMessageID: m.MessageID,
		Text:             text,
	}
}
