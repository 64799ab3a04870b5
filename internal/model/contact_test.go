package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeContact(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Contact
		wantErr bool
	}{
		{name: "bare digits", input: "12223334455", want: "12223334455"},
		{name: "leading plus stripped", input: "+12223334455", want: "12223334455"},
		{name: "empty", input: "", wantErr: true},
		{name: "too short", input: "2223334455", wantErr: true},
		{name: "too long", input: "112223334455", wantErr: true},
		{name: "letters", input: "1222333abcd", wantErr: true},
		{name: "double plus", input: "++12223334455", wantErr: true},
		{name: "plus in middle", input: "12223+334455", wantErr: true},
		{name: "spaces", input: "1 222 333 4455", wantErr: true},
		{name: "dashes", input: "1-222-333-4455", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeContact(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var invalid *InvalidContactError
				assert.ErrorAs(t, err, &invalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueuePosition(t *testing.T) {
	q := Queue{Entries: []QueueEntry{
		{Contact: "12223334455"},
		{Contact: "12223334456"},
	}}

	pos, ok := q.Position("12223334455")
	assert.True(t, ok)
	assert.Equal(t, 1, pos)

	pos, ok = q.Position("12223334456")
	assert.True(t, ok)
	assert.Equal(t, 2, pos)

	_, ok = q.Position("12223334457")
	assert.False(t, ok)
}

func TestGameParticipants(t *testing.T) {
	g := Game{King: "12223334455", Challenger: "12223334456"}

	assert.True(t, g.HasParticipant("12223334455"))
	assert.True(t, g.HasParticipant("12223334456"))
	assert.False(t, g.HasParticipant("12223334457"))

	assert.Equal(t, Contact("12223334456"), g.Opponent("12223334455"))
	assert.Equal(t, Contact("12223334455"), g.Opponent("12223334456"))
}
