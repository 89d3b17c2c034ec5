// Package console is a line-oriented front end for the workflow controller.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hal9000y/meetnotes/internal/apiclient"
	"github.com/hal9000y/meetnotes/internal/recipient"
	"github.com/hal9000y/meetnotes/internal/summarize"
	"github.com/hal9000y/meetnotes/internal/transcript"
	"github.com/hal9000y/meetnotes/internal/workflow"
)

// endOfText terminates multi-line input for paste and edit.
const endOfText = "."

const help = `Commands:
  load <file>          read a transcript (.txt .md .html .srt .vtt)
  paste                type or paste a transcript, end with a line holding "."
  instruction [text]   show or set the custom instruction
  generate             summarize the transcript (input step)
  regenerate           summarize again (review step)
  edit                 replace the summary, end with a line holding "."
  continue             go on to sharing (review step)
  back                 return to the previous step
  goto <1|2|3>         jump to a reachable step
  recipients <list>    comma-separated addresses
  subject <text>       email subject
  send                 email the summary (share step)
  reset                start over
  show                 print the current state
  help                 this text
  quit                 leave`

// New creates a console driving c and writing to out.
func New(c *workflow.Controller, out io.Writer) *Console {
	return &Console{
		c:    c,
		out:  out,
		load: transcript.Load,
	}
}

type Console struct {
	c    *workflow.Controller
	out  io.Writer
	load func(path string) (string, error)
}

// Run reads commands from in until quit, end of input or ctx is done.
func (cs *Console) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 10<<20)

	cs.printf("Meeting notes summarizer. Type \"help\" for commands.\n")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		cs.printf("%s> ", cs.progress())
		if !sc.Scan() {
			cs.printf("\n")
			return sc.Err()
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch strings.ToLower(cmd) {
		case "":
		case "quit", "exit":
			return nil
		case "help":
			cs.printf("%s\n", help)
		case "load":
			cs.loadFile(arg)
		case "paste":
			cs.printf("Paste the transcript, finish with a line holding %q:\n", endOfText)
			cs.c.SetTranscript(readBlock(sc))
			cs.printf("Transcript set (%d characters).\n", len(cs.c.State().Transcript))
		case "instruction":
			if arg != "" {
				cs.c.SetInstruction(arg)
			}
			cs.printf("Instruction: %s\n", cs.c.State().Instruction)
		case "generate":
			cs.generate(ctx, cs.c.Generate)
		case "regenerate":
			cs.generate(ctx, cs.c.Regenerate)
		case "edit":
			cs.printf("Type the new summary, finish with a line holding %q:\n", endOfText)
			cs.c.SetSummary(readBlock(sc))
			cs.printf("Summary updated.\n")
		case "continue":
			cs.report(cs.c.Continue())
		case "back":
			cs.report(cs.c.Back())
		case "goto":
			cs.goTo(arg)
		case "recipients":
			cs.c.SetRecipients(arg)
		case "subject":
			cs.c.SetSubject(arg)
		case "send":
			cs.send(ctx)
		case "reset":
			cs.c.Reset()
			cs.printf("Started over.\n")
		case "show":
			cs.show()
		default:
			cs.printf("Unknown command %q, type \"help\".\n", cmd)
		}
	}
}

func (cs *Console) loadFile(path string) {
	if path == "" {
		cs.printf("Usage: load <file>\n")
		return
	}

	text, err := cs.load(path)
	if err != nil {
		cs.printf("Error: %v\n", err)
		return
	}

	cs.c.SetTranscript(text)
	cs.printf("Loaded %s (%d characters).\n", path, len(text))
}

func (cs *Console) generate(ctx context.Context, fire func(context.Context) error) {
	cs.printf("Generating...\n")
	if err := fire(ctx); err != nil {
		cs.report(err)
		return
	}
	cs.printf("Summary:\n%s\n", cs.c.State().Summary)
}

func (cs *Console) send(ctx context.Context) {
	cs.printf("Sending...\n")
	if err := cs.c.Send(ctx); err != nil {
		cs.report(err)
		return
	}
	cs.printf("Email sent.\n")
}

func (cs *Console) goTo(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		cs.printf("Usage: goto <1|2|3>\n")
		return
	}
	cs.report(cs.c.GoTo(workflow.Step(n)))
}

func (cs *Console) show() {
	st := cs.c.State()

	cs.printf("Step: %d/3 %s\n", int(st.Step), st.Step)
	cs.printf("Instruction: %s\n", st.Instruction)
	cs.printf("Transcript: %d characters\n", len(st.Transcript))
	cs.printf("Summary:\n%s\n", st.Summary)
	cs.printf("Recipients: %s\n", st.Recipients)
	if st.Subject != "" {
		cs.printf("Subject: %s\n", st.Subject)
	}
	if st.ValidationError != nil {
		cs.printf("Recipients error: %s\n", Message(st.ValidationError))
	}
	if st.Sent {
		cs.printf("Sent: yes\n")
	}
}

// progress renders the step indicator, reachable steps in brackets and the
// active one marked with '*'.
func (cs *Console) progress() string {
	current := cs.c.Step()
	reachable := map[workflow.Step]bool{}
	for _, s := range cs.c.Reachable() {
		reachable[s] = true
	}

	parts := make([]string, 0, 3)
	for _, s := range []workflow.Step{workflow.StepInput, workflow.StepReview, workflow.StepShare} {
		label := fmt.Sprintf("%d %s", int(s), s)
		if s == current {
			label = "*" + label
		}
		if reachable[s] {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}

	return strings.Join(parts, " ")
}

func (cs *Console) report(err error) {
	if err != nil {
		cs.printf("Error: %s\n", Message(err))
	}
}

func (cs *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(cs.out, format, args...)
}

// Message turns a workflow error into the text shown to the user.
func Message(err error) string {
	var malformed *recipient.MalformedAddressError
	var respErr *apiclient.ResponseError
	var netErr *apiclient.NetworkError
	var protoErr *apiclient.ProtocolError
	var trErr *workflow.TransitionError

	switch {
	case errors.Is(err, summarize.ErrEmptyTranscript):
		return "Please upload or paste a transcript."
	case errors.Is(err, workflow.ErrEmptySummary):
		return "No summary to send."
	case errors.Is(err, recipient.ErrEmptyInput):
		return "Please enter at least one email address"
	case errors.As(err, &malformed):
		return "Invalid email format: " + malformed.Address
	case errors.As(err, &respErr):
		return respErr.Message
	case errors.As(err, &netErr):
		return netErr.Error()
	case errors.As(err, &protoErr):
		return protoErr.Error()
	case errors.As(err, &trErr):
		return trErr.Error()
	default:
		return err.Error()
	}
}

func readBlock(sc *bufio.Scanner) string {
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == endOfText {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
