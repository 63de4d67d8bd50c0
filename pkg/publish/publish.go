// Package publish sends derived laps to nats subscribers.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/render/export"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/utils"
)

const DefaultSubjectPrefix = "ila"

var unsafeToken = regexp.MustCompile(`[^a-z0-9_-]+`)

type (
	// Conn is the part of *nats.Conn we need
	Conn interface {
		Publish(subject string, data []byte) error
	}
	Option    func(*Publisher)
	Publisher struct {
		conn   Conn
		prefix string
		now    func() time.Time
		l      *log.Logger
	}
	Selection struct {
		Season  int    `json:"season"`
		Event   string `json:"event"`
		Session string `json:"session"`
		Driver  string `json:"driver"`
	}
	Message struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"createdAt"`
		Selection Selection `json:"selection"`
		*export.Result
	}
)

func WithSubjectPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.l = l
	}
}

func New(conn Conn, opts ...Option) *Publisher {
	p := &Publisher{
		conn:   conn,
		prefix: DefaultSubjectPrefix,
		now:    time.Now,
		l:      log.Default().Named("publish"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Connect waits for the nats server to be reachable and connects to it.
func Connect(ctx context.Context, natsURL string, wait time.Duration) (*nats.Conn, error) {
	if addr := utils.ExtractFromNatsURL(natsURL); addr != "" && wait > 0 {
		if err := utils.WaitForTCP(ctx, addr, wait); err != nil {
			return nil, err
		}
	}
	return nats.Connect(natsURL, nats.Name("ila"))
}

// Subject returns <prefix>.laps.<season>.<event>.<session>.<driver>
func (p *Publisher) Subject(sel telemetry.Selection) string {
	return strings.Join([]string{
		p.prefix,
		"laps",
		fmt.Sprint(sel.Season),
		token(sel.Event),
		token(string(sel.Session)),
		token(sel.Driver),
	}, ".")
}

func (p *Publisher) NewMessage(sel telemetry.Selection, res *laps.Result) *Message {
	return &Message{
		ID:        uuid.NewString(),
		CreatedAt: p.now().UTC(),
		Selection: Selection{
			Season:  sel.Season,
			Event:   sel.Event,
			Session: string(sel.Session),
			Driver:  sel.Driver,
		},
		Result: export.NewResult(res),
	}
}

func (p *Publisher) Publish(sel telemetry.Selection, res *laps.Result) (*Message, error) {
	msg := p.NewMessage(sel, res)
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	subject := p.Subject(sel)
	if err := p.conn.Publish(subject, data); err != nil {
		return nil, fmt.Errorf("publish to %s: %w", subject, err)
	}
	p.l.Debug("published",
		log.String("subject", subject),
		log.String("id", msg.ID),
		log.Int("laps", len(res.Laps)))
	return msg, nil
}

func token(arg string) string {
	ret := unsafeToken.ReplaceAllString(strings.ToLower(strings.TrimSpace(arg)), "_")
	if ret == "" {
		return "_"
	}
	return ret
}
