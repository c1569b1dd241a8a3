package dialog

import "testing"

func TestNextCreation_FullFlow(t *testing.T) {
	st := CreationState{Step: AwaitingName}

	st, outcome := NextCreation(st, Input{Text: "GarajCharge"})
	if outcome != Advanced || st.Step != AwaitingDescription {
		t.Fatalf("after name: outcome=%v step=%v", outcome, st.Step)
	}

	st, outcome = NextCreation(st, Input{Text: "Charging stations for e-scooters"})
	if outcome != Advanced || st.Step != AwaitingLogo {
		t.Fatalf("after description: outcome=%v step=%v", outcome, st.Step)
	}

	st, outcome = NextCreation(st, Input{PhotoID: "file-abc"})
	if outcome != Advanced || st.Step != AwaitingLink {
		t.Fatalf("after logo: outcome=%v step=%v", outcome, st.Step)
	}

	st, outcome = NextCreation(st, Input{Text: "https://t.me/garajcharge"})
	if outcome != Done {
		t.Fatalf("after link: outcome=%v", outcome)
	}

	want := StartupDraft{
		Name:        "GarajCharge",
		Description: "Charging stations for e-scooters",
		Logo:        "file-abc",
		GroupLink:   "https://t.me/garajcharge",
	}
	if st.Draft != want {
		t.Errorf("draft = %+v, want %+v", st.Draft, want)
	}
}

func TestNextCreation_RepromptKeepsDraft(t *testing.T) {
	st := CreationState{
		Step:  AwaitingLogo,
		Draft: StartupDraft{Name: "X", Description: "Y"},
	}

	got, outcome := NextCreation(st, Input{Text: "not a photo"})
	if outcome != Reprompt {
		t.Fatalf("outcome = %v, want Reprompt", outcome)
	}
	if got != st {
		t.Errorf("state changed on reprompt: %+v", got)
	}
}

func TestNextCreation_BackAbortsEveryStep(t *testing.T) {
	for _, step := range []CreationStep{AwaitingName, AwaitingDescription, AwaitingLogo, AwaitingLink} {
		_, outcome := NextCreation(CreationState{Step: step}, Input{Text: BackText})
		if outcome != Aborted {
			t.Errorf("step %v: outcome = %v, want Aborted", step, outcome)
		}
	}
}

func TestNextCreation_InvalidLink(t *testing.T) {
	st := CreationState{Step: AwaitingLink}
	_, outcome := NextCreation(st, Input{Text: "https://example.com/nope"})
	if outcome != Reprompt {
		t.Errorf("outcome = %v, want Reprompt", outcome)
	}
}

func TestNextProfile(t *testing.T) {
	tests := []struct {
		name  string
		field ProfileField
		input string
		want  Outcome
		value string
	}{
		{"valid phone", FieldPhone, "+998901234567", Done, "+998901234567"},
		{"phone trimmed", FieldPhone, " +998901234567 ", Done, "+998901234567"},
		{"bad phone", FieldPhone, "12345", Reprompt, ""},
		{"valid date", FieldBirthDate, "15-06-1995", Done, "15-06-1995"},
		{"bad date", FieldBirthDate, "15.06.1995", Reprompt, ""},
		{"free text field", FieldBio, "I build things", Done, "I build things"},
		{"empty text field", FieldFirstName, "   ", Reprompt, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, outcome := NextProfile(ProfileEditState{Field: tt.field}, Input{Text: tt.input})
			if outcome != tt.want {
				t.Fatalf("outcome = %v, want %v", outcome, tt.want)
			}
			if value != tt.value {
				t.Errorf("value = %q, want %q", value, tt.value)
			}
		})
	}
}

func TestNextProfile_Back(t *testing.T) {
	_, outcome := NextProfile(ProfileEditState{Field: FieldPhone}, Input{Text: BackText})
	if outcome != Aborted {
		t.Errorf("outcome = %v, want Aborted", outcome)
	}
}

func TestNextCompletion(t *testing.T) {
	st := CompletionState{StartupID: 7, Step: AwaitingResults}

	st, outcome := NextCompletion(st, Input{Text: "Shipped v1, 300 users"})
	if outcome != Advanced || st.Step != AwaitingResultsPhoto {
		t.Fatalf("after results: outcome=%v step=%v", outcome, st.Step)
	}
	if st.Results != "Shipped v1, 300 users" {
		t.Errorf("results = %q", st.Results)
	}

	got, outcome := NextCompletion(st, Input{Text: "no photo here"})
	if outcome != Reprompt || got != st {
		t.Fatalf("text at photo step: outcome=%v", outcome)
	}

	_, outcome = NextCompletion(st, Input{PhotoID: "file-xyz"})
	if outcome != Done {
		t.Fatalf("after photo: outcome=%v", outcome)
	}

	_, outcome = NextCompletion(st, Input{Text: BackText})
	if outcome != Aborted {
		t.Errorf("back: outcome=%v, want Aborted", outcome)
	}
}
