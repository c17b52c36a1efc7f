// internal/common/validation/schema_test.go
package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAskRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]interface{}
		wantErr bool
	}{
		{
			name: "valid question",
			body: map[string]interface{}{"question": "tampilkan deal terbaru"},
		},
		{
			name: "empty question is valid shape",
			body: map[string]interface{}{"question": ""},
		},
		{
			name:    "missing question",
			body:    map[string]interface{}{},
			wantErr: true,
		},
		{
			name:    "wrong type",
			body:    map[string]interface{}{"question": 42},
			wantErr: true,
		},
		{
			name:    "extra field",
			body:    map[string]interface{}{"question": "halo", "debug": true},
			wantErr: true,
		},
		{
			name:    "over length limit",
			body:    map[string]interface{}{"question": strings.Repeat("a", 2001)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAskRequest(tt.body)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
