//nolint:funlen // ok for tests
package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel).Named("laps")
	l.Debug("suppressed")
	l.Info("derived", Int("laps", 5), Ints("pitLaps", []int{3}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	entry := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "derived", entry["msg"])
	assert.Equal(t, "laps", entry["logger"])
	assert.InDelta(t, 5, entry["laps"], 0)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    Level
		wantErr bool
	}{
		{name: "debug", arg: "debug", want: DebugLevel},
		{name: "warn", arg: "warn", want: WarnLevel},
		{name: "unknown", arg: "chatty", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLevel(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithFilter(t *testing.T) {
	opt, err := WithFilter("telemetry*")
	require.NoError(t, err)
	var buf bytes.Buffer
	l := DevLogger(&buf, DebugLevel, opt)
	l.Named("telemetry").Info("kept")
	l.Named("render").Info("dropped")
	assert.Contains(t, buf.String(), "kept")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestContext(t *testing.T) {
	assert.Same(t, Default(), GetFromContext(context.Background()))

	l := New(&bytes.Buffer{}, WarnLevel)
	ctx := AddToContext(context.Background(), l)
	assert.Same(t, l, GetFromContext(ctx))
}

func TestResetDefault(t *testing.T) {
	orig := Default()
	defer ResetDefault(orig)

	var buf bytes.Buffer
	ResetDefault(New(&buf, InfoLevel))
	Info("via package func")
	assert.Contains(t, buf.String(), "via package func")
}
