package domain

// ReplyKind discriminates the shapes a query service response can take.
type ReplyKind int

const (
	ReplyUnrecognized ReplyKind = iota
	ReplyAnswer
	ReplyResult
	ReplyServiceError
)

func (k ReplyKind) String() string {
	switch k {
	case ReplyAnswer:
		return "answer"
	case ReplyResult:
		return "result"
	case ReplyServiceError:
		return "service_error"
	case ReplyUnrecognized:
		return "unrecognized"
	}
	return "unknown"
}

// Reply is a decoded query service response.
//
// For ReplyAnswer and ReplyResult, Text holds the field value. For
// ReplyServiceError it holds the service's message. For ReplyUnrecognized it
// holds the whole response body as compact JSON.
type Reply struct {
	Kind ReplyKind
	Text string
}

func AnswerReply(text string) Reply      { return Reply{Kind: ReplyAnswer, Text: text} }
func ResultReply(text string) Reply      { return Reply{Kind: ReplyResult, Text: text} }
func ServiceErrorReply(msg string) Reply { return Reply{Kind: ReplyServiceError, Text: msg} }
func UnrecognizedReply(raw string) Reply { return Reply{Kind: ReplyUnrecognized, Text: raw} }

// AgentText returns the transcript text for the reply.
func (r Reply) AgentText() string {
	switch r.Kind {
	case ReplyAnswer, ReplyResult:
		return r.Text
	case ReplyServiceError:
		return "Error: " + r.Text
	case ReplyUnrecognized:
		return r.Text
	}
	return r.Text
}
