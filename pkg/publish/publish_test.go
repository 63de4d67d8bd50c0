package publish

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry"
	bd "github.com/mpapenbr/iracelog-lapanalysis/testsupport/basedata"
)

type recordingConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (c *recordingConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

var monza = telemetry.Selection{
	Season: 2023, Event: "Monza", Session: telemetry.SessionRace, Driver: "VER",
}

func TestPublisher_Subject(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		sel    telemetry.Selection
		want   string
	}{
		{"default prefix", DefaultSubjectPrefix, monza, "ila.laps.2023.monza.r.ver"},
		{
			"unsafe chars", "f1",
			telemetry.Selection{Season: 2024, Event: "São Paulo GP", Session: telemetry.SessionSprint, Driver: "NOR"},
			"f1.laps.2024.s_o_paulo_gp.s.nor",
		},
		{"empty driver", "x", telemetry.Selection{Season: 2023, Event: "Spa"}, "x.laps.2023.spa._._"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&recordingConn{}, WithSubjectPrefix(tt.prefix))
			assert.Equal(t, tt.want, p.Subject(tt.sel))
		})
	}
}

func TestPublisher_Publish(t *testing.T) {
	conn := &recordingConn{}
	now := time.Date(2023, 9, 3, 15, 0, 0, 0, time.UTC)
	p := New(conn, WithClock(func() time.Time { return now }))
	res, err := laps.Derive(bd.SampleLaps())
	require.NoError(t, err)

	msg, err := p.Publish(monza, res)
	require.NoError(t, err)
	_, err = uuid.Parse(msg.ID)
	assert.NoError(t, err)

	require.Len(t, conn.payloads, 1)
	assert.Equal(t, "ila.laps.2023.monza.r.ver", conn.subjects[0])
	var got Message
	require.NoError(t, json.Unmarshal(conn.payloads[0], &got))
	assert.Equal(t, msg.ID, got.ID)
	assert.True(t, now.Equal(got.CreatedAt))
	assert.Equal(t, "R", got.Selection.Session)
	assert.Equal(t, []int{3}, got.PitLaps)
	require.Len(t, got.Laps, 5)
	assert.Equal(t, 1, got.Laps[4].TireAge)
}

func TestPublisher_PublishError(t *testing.T) {
	connErr := errors.New("connection closed")
	p := New(&recordingConn{err: connErr})
	res, err := laps.Derive(bd.SampleLaps())
	require.NoError(t, err)
	_, err = p.Publish(monza, res)
	assert.ErrorIs(t, err, connErr)
}
