package confcrypt

import (
	"testing"

	"github.com/hengadev/errsx"
	"github.com/stretchr/testify/assert"
)

func TestArgon2Params_Validate(t *testing.T) {
	tests := []struct {
		name     string
		params   Argon2Params
		wantErr  bool
		errCount int
		errKeys  []string // expected error fields
	}{
		{
			name:   "valid parameters",
			params: Argon2Params{Memory: 19456, Iterations: 2, Parallelism: 1},
		},
		{
			name:     "all parameters too low",
			params:   Argon2Params{Memory: 1000},
			wantErr:  true,
			errCount: 3,
			errKeys:  []string{"memory", "iterations", "parallelism"},
		},
		{
			name:     "memory too low",
			params:   Argon2Params{Memory: 8191, Iterations: 2, Parallelism: 1},
			wantErr:  true,
			errCount: 1,
			errKeys:  []string{"memory"},
		},
		{
			name:     "parallelism too low",
			params:   Argon2Params{Memory: 19456, Iterations: 2},
			wantErr:  true,
			errCount: 1,
			errKeys:  []string{"parallelism"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			errs, ok := err.(errsx.Map)
			if !ok {
				t.Fatal("expected error to be of type errsx.Map")
			}
			assert.Equal(t, tt.errCount, len(errs))
			for _, key := range tt.errKeys {
				if _, ok := errs[key]; !ok {
					t.Errorf("expected key '%s' in errsx.Map", key)
				}
			}
		})
	}
}

func TestDefaultArgon2Params(t *testing.T) {
	p := DefaultArgon2Params()
	assert.NoError(t, p.Validate())
	assert.Equal(t, uint32(64*1024), p.Memory)

	// each call returns a fresh value
	p.Memory = 1
	assert.Equal(t, uint32(64*1024), DefaultArgon2Params().Memory)
}
