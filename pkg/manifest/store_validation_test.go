//go:build !integration

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStore(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
		rule    Rule
	}{
		{name: "simple id", id: "my-store"},
		{name: "single word", id: "sparkles"},
		{name: "uppercase and underscore", id: "My_Store", wantErr: true, rule: RulePattern},
		{name: "digits", id: "store2", wantErr: true, rule: RulePattern},
		{name: "trailing dash", id: "store-", wantErr: true, rule: RulePattern},
		{name: "reserved prefix", id: "umbrel-app-store", wantErr: true, rule: RuleReservedPrefix},
		{name: "reserved prefix with suffix", id: "umbrel-app-store-extra", wantErr: true, rule: RuleReservedPrefix},
		{name: "reserved prefix uppercase", id: "UMBREL-APP-STORE-x", wantErr: true, rule: RulePattern},
		{name: "empty", id: `""`, wantErr: true, rule: RuleLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, errs := ValidateStore(parse(t, "id: "+tt.id+"\nname: My Store\n"))
			if !tt.wantErr {
				require.Empty(t, errs)
				assert.Equal(t, tt.id, m.ID)
				return
			}
			assert.Nil(t, m)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.rule, errs[0].Rule)
			assert.Equal(t, "id", errs[0].Field)
		})
	}
}

func TestValidateStoreMissingName(t *testing.T) {
	_, errs := ValidateStore(parse(t, "id: my-store\n"))
	require.Len(t, errs, 1)
	assert.Equal(t, RuleRequired, errs[0].Rule)
	assert.Equal(t, `Missing required field "name"`, errs[0].Title())
}
