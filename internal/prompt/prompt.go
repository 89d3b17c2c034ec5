// Package prompt builds the instruction payload sent to the completion service.
package prompt

import "strings"

// DefaultInstruction is the formatting directive a fresh session starts with.
const DefaultInstruction = "Summarize in bullet points for executives."

const userPreamble = "Please summarize this meeting transcript:"

const systemTemplate = `You are an assistant that summarizes meeting transcripts into clear, structured notes.

Guidelines:
- Create well-formatted, professional summaries
- Include meeting date and attendee information when available
- Use bullet points and clear sections for readability
- Highlight key decisions, action items, and next steps
- Use markdown formatting for better presentation
- Keep the tone professional yet accessible

Structure your summary with:
- **Meeting Overview** (date, attendees)
- **Key Discussion Points**
- **Decisions Made**
- **Action Items** (with responsible parties if mentioned)
- **Next Steps**

Make the summary visually appealing and easy to scan.`

// Prompt is the pair of messages for a single completion call.
type Prompt struct {
	System string
	User   string
}

// Compose returns the system and user prompts for transcript. The
// "Additional Instructions" clause is appended only when instruction is not
// blank. The transcript is passed through untouched.
func Compose(transcript, instruction string) Prompt {
	return Prompt{
		System: System(instruction),
		User:   userPreamble + "\n\n" + transcript,
	}
}

// System returns the structured-summary directive with the optional
// instruction appended.
func System(instruction string) string {
	if strings.TrimSpace(instruction) == "" {
		return systemTemplate
	}
	return systemTemplate + "\n\nAdditional Instructions: " + instruction
}
