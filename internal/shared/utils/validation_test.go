package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "timestamp id", id: "tab_1700000000000_42"},
		{name: "ulid id", id: "node_01HF8Z2J3K4M5N6P7Q8R9S0T1V"},
		{name: "hyphenated", id: "card-1"},
		{name: "empty", id: "", wantErr: true},
		{name: "path traversal", id: "../etc", wantErr: true},
		{name: "space", id: "tab 1", wantErr: true},
		{name: "too long", id: strings.Repeat("a", MaxIDLength+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id, "id")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, ValidateText(""))
	assert.NoError(t, ValidateText("héllo\nworld"))
	assert.ErrorIs(t, ValidateText("a\x00b"), ErrInvalid)
	assert.ErrorIs(t, ValidateText(string([]byte{0xff, 0xfe})), ErrInvalid)
	assert.ErrorIs(t, ValidateText(strings.Repeat("x", MaxTextLength+1)), ErrInvalid)
}
