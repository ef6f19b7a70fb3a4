package domain

import (
	"encoding/json"
	"testing"
)

func TestRights_ParseRoundTrip(t *testing.T) {
	for _, r := range []Rights{NoRights, Chat, Admin} {
		got, err := ParseRights(r.String())
		if err != nil {
			t.Fatalf("ParseRights(%s) returned error: %v", r, err)
		}
		if got != r {
			t.Errorf("ParseRights(%s) = %v, want %v", r, got, r)
		}
	}

	if _, err := ParseRights("SuperUser"); err == nil {
		t.Error("ParseRights should reject unknown levels")
	}
}

func TestRights_AtLeast(t *testing.T) {
	tests := []struct {
		r    Rights
		min  Rights
		want bool
	}{
		{Admin, Chat, true},
		{Admin, Admin, true},
		{Chat, Chat, true},
		{Chat, Admin, false},
		{NoRights, Chat, false},
	}
	for _, tt := range tests {
		if got := tt.r.AtLeast(tt.min); got != tt.want {
			t.Errorf("%s.AtLeast(%s) = %v, want %v", tt.r, tt.min, got, tt.want)
		}
	}
}

func TestRights_JSON(t *testing.T) {
	raw, err := json.Marshal(Admin)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"Admin"` {
		t.Errorf("marshalled rights = %s, want \"Admin\"", raw)
	}

	var r Rights
	if err := json.Unmarshal([]byte(`"Chat"`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if r != Chat {
		t.Errorf("unmarshalled rights = %v, want Chat", r)
	}

	if err := json.Unmarshal([]byte(`"Wizard"`), &r); err == nil {
		t.Error("unmarshal should reject unknown levels")
	}
}
