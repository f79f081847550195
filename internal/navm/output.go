package navm

// OutputType tags an output.
type OutputType string

const (
	OutIn         OutputType = "IN"
	OutOut        OutputType = "OUT"
	OutAnswer     OutputType = "ANSWER"
	OutInfo       OutputType = "INFO"
	OutComment    OutputType = "COMMENT"
	OutError      OutputType = "ERROR"
	OutTerminated OutputType = "TERMINATED"
)

// OutputTypes lists every tag.
var OutputTypes = []OutputType{OutIn, OutOut, OutAnswer, OutInfo, OutComment, OutError, OutTerminated}

// Output is one reported message. Narsese is set for outputs that carry a
// sentence.
type Output struct {
	Type    OutputType `json:"type"`
	Content string     `json:"content"`
	Narsese string     `json:"narsese,omitempty"`
}

// String renders "[TYPE] content".
func (o Output) String() string {
	return "[" + string(o.Type) + "] " + o.Content
}

func Info(msg string) Output    { return Output{Type: OutInfo, Content: msg} }
func Comment(msg string) Output { return Output{Type: OutComment, Content: msg} }
func Error(msg string) Output   { return Output{Type: OutError, Content: msg} }
