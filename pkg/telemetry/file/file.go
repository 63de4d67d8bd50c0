// Package file reads lap data from json documents on disk.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/samber/lo"

	"github.com/mpapenbr/iracelog-lapanalysis/log"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/telemetry"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/utils/cache"
	"github.com/mpapenbr/iracelog-lapanalysis/pkg/utils/cache/loadercache"
)

const DefaultLapsPath = "$.laps[*]"

var headerKeys = []string{"schemaVersion", "season", "event", "session", "driver"}

type (
	Option func(*Source)
	Source struct {
		path     string
		lapsPath string
		expr     jp.Expr
		docs     cache.Cache[string, parsedFile]
		l        *log.Logger
	}
	parsedFile struct {
		header telemetry.Document
		laps   []telemetry.LapDoc
	}
)

var _ telemetry.Source = (*Source)(nil)

// WithLapsPath sets the json path that selects the lap objects within the document.
func WithLapsPath(arg string) Option {
	return func(s *Source) {
		s.lapsPath = arg
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		s.l = l
	}
}

func New(path string, opts ...Option) (*Source, error) {
	s := &Source{
		path:     path,
		lapsPath: DefaultLapsPath,
		l:        log.Default().Named("telemetry.file"),
	}
	for _, opt := range opts {
		opt(s)
	}
	var err error
	if s.expr, err = jp.ParseString(s.lapsPath); err != nil {
		return nil, fmt.Errorf("invalid laps path %q: %w", s.lapsPath, err)
	}
	// parsed documents are kept until the file changes (see Invalidate)
	s.docs = loadercache.New(
		loadercache.WithLoader[string, parsedFile](s.load),
		loadercache.WithExpiration[string, parsedFile](0),
		loadercache.WithLogger[string, parsedFile](s.l),
	)
	return s, nil
}

func (s *Source) Path() string {
	return s.path
}

// Invalidate drops the parsed document. The next call of Laps reads the file again.
func (s *Source) Invalidate(ctx context.Context) {
	s.docs.Invalidate(ctx, s.path)
}

func (s *Source) Laps(ctx context.Context, sel telemetry.Selection) (
	[]laps.LapRecord, error,
) {
	doc, err := s.docs.Get(ctx, s.path)
	if err != nil {
		return nil, err
	}
	if err := doc.header.Matches(sel); err != nil {
		return nil, err
	}
	ret := make([]laps.LapRecord, 0, len(doc.laps))
	for i := range doc.laps {
		ret = append(ret, doc.laps[i].Record())
	}
	s.l.Debug("laps read",
		log.String("file", s.path),
		log.String("selection", sel.Key()),
		log.Int("laps", len(ret)))
	return ret, nil
}

// Complete fills the empty fields of sel from the document header.
func (s *Source) Complete(ctx context.Context, sel telemetry.Selection) (
	telemetry.Selection, error,
) {
	doc, err := s.docs.Get(ctx, s.path)
	if err != nil {
		return sel, err
	}
	h := &doc.header
	if sel.Season == 0 {
		sel.Season = h.Season
	}
	if sel.Event == "" {
		sel.Event = h.Event
	}
	if sel.Session == "" && h.Session != "" {
		if st, err := telemetry.ParseSessionType(h.Session); err == nil {
			sel.Session = st
		}
	}
	if sel.Driver == "" {
		sel.Driver = h.Driver
	}
	return sel, nil
}

func (s *Source) load(ctx context.Context, path string) (*parsedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return s.parse(data)
}

func (s *Source) parse(data []byte) (*parsedFile, error) {
	obj, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", telemetry.ErrInvalidDocument, err)
	}
	ret := &parsedFile{}
	if root, ok := obj.(map[string]any); ok {
		if err := s.parseHeader(root, &ret.header); err != nil {
			return nil, err
		}
	}
	items := s.expr.Get(obj)
	if len(items) == 0 {
		s.l.Warn("no laps found", log.String("file", s.path),
			log.String("lapsPath", s.lapsPath))
	}
	ret.laps = make([]telemetry.LapDoc, 0, len(items))
	for i, item := range items {
		if _, ok := item.(map[string]any); !ok {
			return nil, fmt.Errorf("%w: lap entry %d is not an object",
				telemetry.ErrInvalidDocument, i)
		}
		var lap telemetry.LapDoc
		if err := json.Unmarshal([]byte(oj.JSON(item)), &lap); err != nil {
			return nil, fmt.Errorf("%w: lap entry %d: %w", telemetry.ErrInvalidDocument, i, err)
		}
		ret.laps = append(ret.laps, lap)
	}
	return ret, nil
}

// parseHeader reads the top level selection attributes. They are optional
// for files, but if a schema version is present it has to be supported.
func (s *Source) parseHeader(root map[string]any, header *telemetry.Document) error {
	fields := lo.PickByKeys(root, headerKeys)
	if err := json.Unmarshal([]byte(oj.JSON(fields)), header); err != nil {
		return fmt.Errorf("%w: header: %w", telemetry.ErrInvalidDocument, err)
	}
	if header.SchemaVersion == "" {
		s.l.Debug("document without schema version", log.String("file", s.path))
		return nil
	}
	return telemetry.CheckSchemaVersion(header.SchemaVersion)
}
