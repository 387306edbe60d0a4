package engine

import (
	"errors"
	"testing"
)

func TestValidateDraftCreation(t *testing.T) {
	cases := []struct {
		name      string
		id        string
		blue, red string
		wantErr   error
		wantCode  string
	}{
		{name: "valid", id: "d1", blue: "Alpha", red: "Beta"},
		{name: "blank id", id: "  ", blue: "Alpha", red: "Beta", wantErr: ErrInvalidDraftID, wantCode: "INVALID_DRAFT_ID"},
		{name: "blank blue", id: "d1", blue: "", red: "Beta", wantErr: ErrInvalidBlueTeamName, wantCode: "INVALID_BLUE_TEAM_NAME"},
		{name: "blank red", id: "d1", blue: "Alpha", red: " ", wantErr: ErrInvalidRedTeamName, wantCode: "INVALID_RED_TEAM_NAME"},
		{name: "same names after trim", id: "d1", blue: "Alpha ", red: " Alpha", wantErr: ErrDuplicateTeamNames, wantCode: "DUPLICATE_TEAM_NAMES"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateDraftCreation(tc.id, tc.blue, tc.red)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected err: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want %v, got %v", tc.wantErr, err)
			}
			if CodeOf(err) != tc.wantCode {
				t.Fatalf("want code %s, got %s", tc.wantCode, CodeOf(err))
			}
		})
	}
}

func TestValidatePhaseTransition(t *testing.T) {
	cases := []struct {
		cur, next int
		want      bool
	}{
		{0, 1, true},
		{18, 19, true},
		{19, 20, true},
		{0, 2, false},
		{3, 3, false},
		{5, 4, false},
		{20, 21, false},
	}
	for _, tc := range cases {
		if got := ValidatePhaseTransition(tc.cur, tc.next); got != tc.want {
			t.Fatalf("ValidatePhaseTransition(%d, %d) = %v, want %v", tc.cur, tc.next, got, tc.want)
		}
	}
}

func TestResolveTeamSide(t *testing.T) {
	s := newTestSession()
	cases := []struct {
		input string
		want  Team
	}{
		{"BLUE", TeamBlue},
		{"RED", TeamRed},
		{"SPECTATOR", TeamSpectator},
		{"BROADCAST", TeamBroadcast},
		{"Alpha", TeamBlue},
		{"Beta", TeamRed},
		{"alpha", ""},
		{"blue", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ResolveTeamSide(tc.input, s); got != tc.want {
			t.Fatalf("ResolveTeamSide(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if got := ResolveTeamSide("Alpha", nil); got != "" {
		t.Fatalf("names cannot resolve without a session, got %q", got)
	}
}

func TestIsRoleName(t *testing.T) {
	for _, in := range []string{"blue", "Red", "SPECTATOR", "broadcast"} {
		if !IsRoleName(in) {
			t.Fatalf("%q should be a role name", in)
		}
	}
	if IsRoleName("Cloud9") {
		t.Fatalf("custom name treated as role")
	}
}

func TestCodeOf_NonValidationError(t *testing.T) {
	if CodeOf(errors.New("boom")) != "" {
		t.Fatalf("plain errors carry no code")
	}
	err := Invalid(ErrWrongTurn, "nope")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != "nope" || err.Error() != "nope" {
		t.Fatalf("unexpected validation error %#v", err)
	}
}
