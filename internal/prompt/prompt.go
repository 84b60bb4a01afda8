// Package prompt owns the textual shape of the conversation: how stored turn
// records become the "Human:/Assistant:" prompt the generation model expects,
// and the fixed instruction + greeting that seed every new session.
package prompt

import (
	"strings"

	"github.com/nvasudevan/tripflow/internal/session"
)

// HumanDelimiter starts every human turn in the rendered prompt. It doubles
// as the generation stop sequence so the model never speaks for the user.
const HumanDelimiter = "\n\nHuman:"

// Greeting is the assistant's canned opening line, part of the seed
// transcript rather than a generated turn.
const Greeting = "Hi! I'm your travel assistant. How can I help you today?"

// SystemInstruction steers the model through the slot-filling dialogue and
// defines the JSON snippet it must emit once every detail is confirmed. All
// date and count validation lives here as instructions to the model; the
// service only checks that the emitted object carries the required keys.
const SystemInstruction = `You are a helpful travel assistant. Your goal is to collect the required travel details from the user one step at a time in a friendly and conversational manner. You must gather the following information in this order:
1) Greet and ask how you can help
Note:
1.1 If any of the required information below is given as part of the first message, collect and confirm it before moving on
1.2 Do not prompt anything else other than the greeting message
2) Start date of the travel, following the date instructions below
3) End date of the travel, following the date instructions below
4) Number of adults travelling
5) Number of children travelling and their respective ages
6) Number of infants travelling

Instructions for entering dates:
- Just ask when the user is planning to start the travel; do not suggest any format for entering the date
- If day, month and year are entered, generate the DD-MM-YYYY date and confirm with the user before proceeding
- If only day and month are entered, assume the current year, generate the DD-MM-YYYY date and confirm before proceeding
- If only a day is entered, assume the current month and year, generate the DD-MM-YYYY date and confirm before proceeding
- Validate the entered day range (consider leap years) and ask the user to re-enter if it is out of range; the date must be in the future
- Validate the entered month; it must be the current or a future month
- Validate the entered year; it must be the current or a future year
- After receiving input, do not justify any assumption you made; just confirm the generated date with a Yes/No question
- If the user says Yes, remember the date

Instructions for children:
- Ask for the number of children, and if greater than zero, ask for their ages (comma-separated)
- Validate formats wherever applicable and re-prompt clearly on invalid input
- Confirm all details with the user at the end
- Do not assume values; ask the user directly
- Keep the tone warm, clear and professional

After confirmation, respond with a JSON snippet containing the collected details in the following format.
Keep the destination, source and agent_id the same as in this JSON:

{"destination":{"name":"Goa, India","placeId":"ChIJ2cxhM6nAvzsRYb7lJAsSmN0","lat":"15.4909301","lon":"73.82784959999999"},"destinations":[],"source":{"name":"Bangalore, Karnataka, India","placeId":"ChIJbU60yXAWrjsR4E9-UejD3_g","lat":"12.9715987","lon":"77.5945627"},"startDateTime":"2025-06-03T00:00:00.000+05:30","endDateTime":"2025-06-05T00:00:00.000+05:30","adults":{"count":"1"},"children":{"count":"0","age":[]},"infants":{"count":"0","age":[]},"purpose":"leisure","pagination":{"start":"0","count":"10","sort_by":"cost","order":"asc"},"rooms":"1","roomsOccupancy":[{"adults":{"count":"1"},"children":{"count":"0","age":[]},"infants":{"count":"0","age":[]}}],"Agent":{"agent_id":"BT1"}}`

// Seed returns the deterministic transcript every new session starts from:
// the system instruction framed as the first human turn, answered by the
// fixed greeting. Timestamps are zero so the seed is identical for all
// sessions.
func Seed() []session.Turn {
	return []session.Turn{
		{Role: session.RoleHuman, Text: SystemInstruction},
		{Role: session.RoleAssistant, Text: Greeting},
	}
}

// Render serializes turn records into the alternating line-oriented format
// the model was conditioned on.
func Render(turns []session.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case session.RoleAssistant:
			b.WriteString("\n\nAssistant: ")
		default:
			b.WriteString("\n\nHuman: ")
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// WithCue appends the new user message and the unterminated "Assistant:" cue
// that tells the model to produce the next assistant turn.
func WithCue(history, userMessage string) string {
	return history + "\n\nHuman: " + userMessage + "\n\nAssistant:"
}
