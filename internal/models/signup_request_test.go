package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignupRequestReadsExactEmailKey(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"exact key", `{"email":"user@example.com"}`, "user@example.com", false},
		{"upper case key", `{"EMAIL":"user@example.com"}`, "", false},
		{"title case key", `{"Email":"user@example.com"}`, "", false},
		{"other keys do not overwrite", `{"email":"a@b","EMAIL":"nope","Email":"x"}`, "a@b", false},
		{"last duplicate wins", `{"email":"first@x","email":"second@x"}`, "second@x", false},
		{"null value", `{"email":null}`, "", false},
		{"number value", `{"email":123}`, "", true},
		{"not an object", `["user@example.com"]`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req SignupRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, req.Email)
		})
	}
}
