package gemini

import (
	"fmt"
	"strings"
)

// SystemInstruction frames Gemini as a single-label sexism classifier.
const SystemInstruction = `You are a content moderation classifier for online messages.
Decide whether a message is misogynistic or sexist: it demeans, stereotypes,
threatens or blames women because of their gender.

Answer ONLY with a JSON object of the form
{"probabilities": {"<label>": <number between 0 and 1>, ...}}
containing every label you are given and nothing else. The probabilities
must sum to 1.`

// labelDescriptions explains the conventional binary labels to the model.
var labelDescriptions = map[string]string{
	"0": "not misogynistic",
	"1": "misogynistic or sexist",
}

// BuildPrompt creates the classification prompt for one message.
func BuildPrompt(text string, labels []string) string {
	var b strings.Builder
	b.WriteString("Labels:\n")
	for _, l := range labels {
		if d, ok := labelDescriptions[l]; ok {
			fmt.Fprintf(&b, "- %q: %s\n", l, d)
		} else {
			fmt.Fprintf(&b, "- %q\n", l)
		}
	}
	b.WriteString("\nMessage:\n")
	b.WriteString(text)
	return b.String()
}
