package domain

// Sender identifies who produced a transcript message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

const (
	// Greeting seeds every new transcript.
	Greeting = "Hello! How can I help you today?"

	// ConnectFailureText is the only failure text a user ever sees.
	ConnectFailureText = "Error: Could not connect to the server."

	// DefaultMode is the mode value sent with every query.
	DefaultMode = 1
)

// Message is a single transcript entry. Messages are values and are never
// modified once appended.
type Message struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

func UserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

func AgentMessage(text string) Message {
	return Message{Text: text, Sender: SenderAgent}
}

// QueryRequest is the wire payload for the query service.
type QueryRequest struct {
	Query string `json:"query"`
	Mode  int    `json:"mode"`
}

// NewQueryRequest builds the request sent for a submitted draft.
func NewQueryRequest(query string) QueryRequest {
	return QueryRequest{Query: query, Mode: DefaultMode}
}
