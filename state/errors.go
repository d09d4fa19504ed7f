package state

// NoStatementText is kept as the statement of an error until a STATEMENT line arrives
const NoStatementText = "NO STATEMENT"

// ErrorRecord - An ERROR/WARNING/FATAL/PANIC event with its follow-on lines
type ErrorRecord struct {
	Message   string `json:"message"`
	Statement string `json:"statement"`
	Hint      string `json:"hint,omitempty"`
	Detail    string `json:"detail,omitempty"`

	Database string `json:"database"`
	Username string `json:"username,omitempty"`
}

func NewErrorRecord(message string) *ErrorRecord {
	return &ErrorRecord{Message: message, Statement: NoStatementText}
}

// ParseError - A line that was recognized but could not be classified or accumulated
type ParseError struct {
	RawLine     string `json:"line"`
	Description string `json:"description"`
}
