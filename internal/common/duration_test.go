package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{
			name:     "milliseconds",
			input:    "250ms",
			expected: 250 * time.Millisecond,
		},
		{
			name:     "seconds",
			input:    "30s",
			expected: 30 * time.Second,
		},
		{
			name:     "minutes",
			input:    "5m",
			expected: 5 * time.Minute,
		},
		{
			name:     "hours",
			input:    "2h",
			expected: 2 * time.Hour,
		},
		{
			name:     "complex duration",
			input:    "1h30m45s",
			expected: 1*time.Hour + 30*time.Minute + 45*time.Second,
		},
		{
			name:     "zero duration",
			input:    "0s",
			expected: 0,
		},
		{
			name:    "missing unit",
			input:   "100",
			wantErr: true,
		},
		{
			name:    "invalid unit",
			input:   "100x",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, d.Duration)
			}
		})
	}
}

func TestNewDuration(t *testing.T) {
	for _, d := range []time.Duration{0, time.Second, 5 * time.Minute, time.Hour} {
		assert.Equal(t, d, NewDuration(d).Duration)
	}
}

func TestDuration_JSONUnmarshal(t *testing.T) {
	var config struct {
		Timeout Duration `json:"timeout"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"timeout":"1h30m"}`), &config))
	assert.Equal(t, 90*time.Minute, config.Timeout.Duration)

	require.Error(t, json.Unmarshal([]byte(`{"timeout":"invalid"}`), &config))
}

func TestDuration_YAMLUnmarshal(t *testing.T) {
	var config struct {
		Timeout Duration `yaml:"timeout"`
	}

	require.NoError(t, yaml.Unmarshal([]byte("timeout: 1h30m45s\n"), &config))
	assert.Equal(t, 1*time.Hour+30*time.Minute+45*time.Second, config.Timeout.Duration)

	require.Error(t, yaml.Unmarshal([]byte("timeout: invalid\n"), &config))
}

func TestDuration_JSONSchema(t *testing.T) {
	schema := Duration{}.JSONSchema()

	require.NotNil(t, schema)
	assert.Equal(t, "string", schema.Type)
	assert.Equal(t, "Duration", schema.Title)
	assert.Contains(t, schema.Description, "Duration expressed in units")
	assert.Contains(t, schema.Examples, "1m")
	assert.Contains(t, schema.Examples, "300ms")
}

func TestDuration_Roundtrip(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		original := struct {
			Timeout Duration `json:"timeout"`
		}{
			Timeout: NewDuration(5 * time.Minute),
		}

		data, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded struct {
			Timeout Duration `json:"timeout"`
		}
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, original.Timeout.Duration, decoded.Timeout.Duration)
	})

	t.Run("YAML", func(t *testing.T) {
		original := struct {
			Timeout Duration `yaml:"timeout"`
		}{
			Timeout: NewDuration(10 * time.Second),
		}

		data, err := yaml.Marshal(original)
		require.NoError(t, err)

		var decoded struct {
			Timeout Duration `yaml:"timeout"`
		}
		require.NoError(t, yaml.Unmarshal(data, &decoded))
		assert.Equal(t, original.Timeout.Duration, decoded.Timeout.Duration)
	})
}

func TestToLowerWithTrim(t *testing.T) {
	assert.Equal(t, "debug", ToLowerWithTrim("  DEBUG "))
	assert.Equal(t, "info", ToLowerWithTrim("info"))
	assert.Equal(t, "", ToLowerWithTrim("   "))
}
