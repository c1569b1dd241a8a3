// Package dialog implements the multi-step conversation flows as explicit
// state machines. Each state carries the data accumulated so far, so the
// current step and the draft can never drift apart. Transition functions
// are pure: they never touch storage or Telegram.
package dialog

import (
	"strings"

	"github.com/garajhub/garajhub-bot/validate"
)

// BackText is the distinguished input that aborts any flow at any step.
const BackText = "🔙 Back"

// Input is one user-supplied value: message text and/or a photo file id.
type Input struct {
	Text    string
	PhotoID string
}

func (in Input) IsBack() bool {
	return strings.TrimSpace(in.Text) == BackText
}

// Outcome classifies a transition.
type Outcome int

const (
	// Reprompt: input rejected, state unchanged, ask again.
	Reprompt Outcome = iota
	// Advanced: input accepted, flow moved to the next step.
	Advanced
	// Done: terminal step accepted, flow finished.
	Done
	// Aborted: the user backed out, session must be cleared.
	Aborted
)

// State is the per-user dialog position held in the session store.
type State interface {
	dialogState()
}

// CreationStep enumerates the startup-creation sequence.
type CreationStep int

const (
	AwaitingName CreationStep = iota
	AwaitingDescription
	AwaitingLogo
	AwaitingLink
)

// StartupDraft is the partially-built startup accumulated across steps.
type StartupDraft struct {
	Name        string
	Description string
	Logo        string
	GroupLink   string
}

// CreationState drives the startup-creation flow.
type CreationState struct {
	Step  CreationStep
	Draft StartupDraft
}

func (CreationState) dialogState() {}

// NextCreation advances the creation flow by one input. On Done the
// returned state carries the complete draft.
func NextCreation(st CreationState, in Input) (CreationState, Outcome) {
	if in.IsBack() {
		return st, Aborted
	}

	switch st.Step {
	case AwaitingName:
		if !validate.Text(in.Text) {
			return st, Reprompt
		}
		st.Draft.Name = strings.TrimSpace(in.Text)
		st.Step = AwaitingDescription
		return st, Advanced

	case AwaitingDescription:
		if !validate.Text(in.Text) {
			return st, Reprompt
		}
		st.Draft.Description = strings.TrimSpace(in.Text)
		st.Step = AwaitingLogo
		return st, Advanced

	case AwaitingLogo:
		if in.PhotoID == "" {
			return st, Reprompt
		}
		st.Draft.Logo = in.PhotoID
		st.Step = AwaitingLink
		return st, Advanced

	case AwaitingLink:
		if !validate.GroupLink(in.Text) {
			return st, Reprompt
		}
		st.Draft.GroupLink = strings.TrimSpace(in.Text)
		return st, Done
	}

	return st, Reprompt
}

// ProfileField names the single User column a profile edit touches. The
// values double as storage column names.
type ProfileField string

const (
	FieldFirstName ProfileField = "first_name"
	FieldLastName  ProfileField = "last_name"
	FieldGender    ProfileField = "gender"
	FieldPhone     ProfileField = "phone"
	FieldBirthDate ProfileField = "birth_date"
	FieldBio       ProfileField = "bio"
)

// ProfileEditState is the single-step flow behind every "edit <field>"
// button.
type ProfileEditState struct {
	Field ProfileField
}

func (ProfileEditState) dialogState() {}

// NextProfile validates one profile value. On Done the returned string is
// the accepted value for the state's field.
func NextProfile(st ProfileEditState, in Input) (string, Outcome) {
	if in.IsBack() {
		return "", Aborted
	}

	value := strings.TrimSpace(in.Text)
	switch st.Field {
	case FieldPhone:
		if !validate.Phone(value) {
			return "", Reprompt
		}
	case FieldBirthDate:
		if !validate.BirthDate(value) {
			return "", Reprompt
		}
	default:
		if !validate.Text(value) {
			return "", Reprompt
		}
	}
	return value, Done
}

// CompletionStep enumerates the startup-completion sequence.
type CompletionStep int

const (
	AwaitingResults CompletionStep = iota
	AwaitingResultsPhoto
)

// CompletionState drives the owner's "finish startup" flow. Results holds
// the text accepted at the first step.
type CompletionState struct {
	StartupID uint
	Step      CompletionStep
	Results   string
}

func (CompletionState) dialogState() {}

// NextCompletion advances the completion flow. On Done the state carries
// the results text and the input carries the photo file id.
func NextCompletion(st CompletionState, in Input) (CompletionState, Outcome) {
	if in.IsBack() {
		return st, Aborted
	}

	switch st.Step {
	case AwaitingResults:
		if !validate.Text(in.Text) {
			return st, Reprompt
		}
		st.Results = strings.TrimSpace(in.Text)
		st.Step = AwaitingResultsPhoto
		return st, Advanced

	case AwaitingResultsPhoto:
		if in.PhotoID == "" {
			return st, Reprompt
		}
		return st, Done
	}

	return st, Reprompt
}
