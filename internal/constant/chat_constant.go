package constant

const (
	// FallbackAnswer is persisted verbatim as the assistant turn whenever a
	// query fails after the user turn was already accepted. The transcript
	// must stay a complete replayable record, so failures become messages
	// instead of errors.
	FallbackAnswer = "Sorry, something went wrong while processing your query."

	// TranscriptFileName is the attachment name for transcript downloads.
	TranscriptFileName = "hybrid_rag_transcript.md"
)

// ExampleQueries are the canned prompts offered to new sessions. They cover
// both arms of the hybrid pipeline: structured city data and document search.
var ExampleQueries = []string{
	"Which city has the highest population?",
	"What state is Houston located in?",
	"Where is the Space Needle located?",
	"List places to visit in Miami.",
	"How do people in Chicago get around?",
	"What is the historical name of Los Angeles?",
}
