package telemetry

import (
	"fmt"
	"strings"
)

type SessionType string

const (
	SessionPractice1  SessionType = "FP1"
	SessionPractice2  SessionType = "FP2"
	SessionPractice3  SessionType = "FP3"
	SessionQualifying SessionType = "Q"
	SessionSprintQual SessionType = "SQ"
	SessionSprint     SessionType = "S"
	SessionRace       SessionType = "R"
)

var sessionAliases = map[string]SessionType{
	"fp1":               SessionPractice1,
	"practice 1":        SessionPractice1,
	"fp2":               SessionPractice2,
	"practice 2":        SessionPractice2,
	"fp3":               SessionPractice3,
	"practice 3":        SessionPractice3,
	"q":                 SessionQualifying,
	"qualifying":        SessionQualifying,
	"sq":                SessionSprintQual,
	"sprint qualifying": SessionSprintQual,
	"sprint shootout":   SessionSprintQual,
	"s":                 SessionSprint,
	"sprint":            SessionSprint,
	"r":                 SessionRace,
	"race":              SessionRace,
}

// ParseSessionType accepts session codes (R, Q, FP1, ...) as well as
// session names (race, qualifying, practice 1, ...).
func ParseSessionType(arg string) (SessionType, error) {
	if st, ok := sessionAliases[strings.ToLower(strings.TrimSpace(arg))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown session %q", ErrInvalidSelection, arg)
}

// Selection identifies the laps of one driver in one session.
type Selection struct {
	Season  int
	Event   string
	Session SessionType
	Driver  string // three letter code, e.g. VER
}

const firstSeason = 1950

func (s Selection) Validate() error {
	switch {
	case s.Season < firstSeason:
		return fmt.Errorf("%w: season %d", ErrInvalidSelection, s.Season)
	case strings.TrimSpace(s.Event) == "":
		return fmt.Errorf("%w: event missing", ErrInvalidSelection)
	case s.Session == "":
		return fmt.Errorf("%w: session missing", ErrInvalidSelection)
	case strings.TrimSpace(s.Driver) == "":
		return fmt.Errorf("%w: driver missing", ErrInvalidSelection)
	}
	return nil
}

// Key returns a stable identifier, e.g. 2023/monza/R/VER
func (s Selection) Key() string {
	return fmt.Sprintf("%d/%s/%s/%s",
		s.Season, eventSlug(s.Event), s.Session, strings.ToUpper(s.Driver))
}

func (s Selection) String() string {
	return fmt.Sprintf("%s %d %s (%s)", s.Event, s.Season, s.Session, s.Driver)
}

func eventSlug(event string) string {
	return strings.Join(strings.Fields(strings.ToLower(event)), "-")
}
