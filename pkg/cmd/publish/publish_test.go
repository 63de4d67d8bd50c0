package publish

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	watchCmd "github.com/mpapenbr/iracelog-lapanalysis/pkg/cmd/watch"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/config"
)

type fakeConn struct {
	subjects []string
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func TestPublishLaps(t *testing.T) {
	config.Input = filepath.Join(t.TempDir(), "laps.json")
	config.SubjectPrefix = "test"
	t.Cleanup(func() { config.Input, config.SubjectPrefix = "", "" })
	require.NoError(t, os.WriteFile(config.Input, []byte(`{
"season":2023,"event":"Monza","session":"R","driver":"VER",
"laps":[{"lapNumber":1,"stint":1,"lapTime":91.2}]}`), 0o600))

	conn := &fakeConn{}
	require.NoError(t, publishLaps(context.Background(), conn))
	assert.Equal(t, []string{"test.laps.2023.monza.r.ver"}, conn.subjects)
}

func TestPublishCmd_DefaultNatsURL(t *testing.T) {
	errStop := errors.New("stop before connecting")
	var gotURL string
	var gotWait time.Duration
	connect = func(_ context.Context, natsURL string, wait time.Duration) (*nats.Conn, error) {
		gotURL, gotWait = natsURL, wait
		return nil, errStop
	}
	t.Cleanup(func() { connect = defaultConnect })

	// the watch command has a --nats-url flag with another default
	cmd := NewPublishCmd()
	_ = watchCmd.NewWatchCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.ErrorIs(t, cmd.Execute(), errStop)
	assert.Equal(t, "nats://localhost:4222", gotURL)
	assert.Equal(t, 15*time.Second, gotWait)
}
