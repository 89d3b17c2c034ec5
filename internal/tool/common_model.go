package tool

type SummarizeTranscriptRequest struct {
	Transcript string `json:"transcript" jsonschema:"the raw meeting transcript"`
	Prompt     string `json:"prompt,omitempty" jsonschema:"optional extra instruction for the summary"`
}

type SummarizeTranscriptResponse struct {
	Summary string `json:"summary" jsonschema:"the structured meeting summary"`
}

type SendSummaryEmailRequest struct {
	To      string `json:"to" jsonschema:"comma-separated recipient addresses"`
	Subject string `json:"subject,omitempty" jsonschema:"email subject, defaults to Meeting Summary"`
	Body    string `json:"body" jsonschema:"the summary text to send"`
}

type SendSummaryEmailResponse struct {
	Success bool `json:"success" jsonschema:"true when the email was accepted by the provider"`
}
