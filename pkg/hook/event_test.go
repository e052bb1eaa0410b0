package hook

import (
	"testing"

	"github.com/matryer/is"
)

const (
	zeroID = "0000000000000000000000000000000000000000"
	oldID  = "1111111111111111111111111111111111111111"
	newID  = "2222222222222222222222222222222222222222"
)

func TestParseEvent(t *testing.T) {
	is := is.New(t)
	e, err := ParseEvent(oldID + " " + newID + " refs/heads/main")
	is.NoErr(err)
	is.Equal(e.OldID, oldID)
	is.Equal(e.NewID, newID)
	is.Equal(e.RefName, "refs/heads/main")

	_, err = ParseEvent("not enough fields")
	is.True(err != nil)
	_, err = ParseEvent("")
	is.True(err != nil)
}

func TestChangeType(t *testing.T) {
	tests := []struct {
		name      string
		old, new  string
		want      ChangeType
		surviving string
	}{
		{
			name:      "Create",
			old:       zeroID,
			new:       newID,
			want:      ChangeCreate,
			surviving: newID,
		},
		{
			name:      "Delete",
			old:       oldID,
			new:       zeroID,
			want:      ChangeDelete,
			surviving: oldID,
		},
		{
			name:      "Update",
			old:       oldID,
			new:       newID,
			want:      ChangeUpdate,
			surviving: newID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{OldID: tt.old, NewID: tt.new, RefName: "refs/heads/main"}
			if got := e.ChangeType(); got != tt.want {
				t.Errorf("ChangeType() = %v, want %v", got, tt.want)
			}
			if got := e.SurvivingID(); got != tt.surviving {
				t.Errorf("SurvivingID() = %v, want %v", got, tt.surviving)
			}
		})
	}
}

func TestShortRef(t *testing.T) {
	is := is.New(t)
	is.Equal(Event{RefName: "refs/heads/feature/x"}.ShortRef(), "feature/x")
	is.Equal(Event{RefName: "refs/tags/v1"}.ShortRef(), "v1")
}
