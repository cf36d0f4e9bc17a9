package models

import (
	"fmt"
	"strconv"
	"time"
)

type Status string

const (
	StatusOpen           Status = "open"
	StatusAccepted       Status = "accepted"
	StatusResultProposed Status = "result_proposed"
	StatusFinished       Status = "finished"
	StatusCancelled      Status = "cancelled"
)

// LiveStatuses are the statuses a scrim can still move out of.
var LiveStatuses = []Status{StatusOpen, StatusAccepted, StatusResultProposed}

// EngagedStatuses are the statuses of a scrim that has an opponent and is not over.
var EngagedStatuses = []Status{StatusAccepted, StatusResultProposed}

var AllStatuses = []Status{StatusOpen, StatusAccepted, StatusResultProposed, StatusFinished, StatusCancelled}

// Phase is one of Open, Accepted, ResultProposed, Finished or Cancelled.
type Phase interface {
	Status() Status
	isPhase()
}

type Open struct{}

type Accepted struct{}

type ResultProposed struct {
	Proposal Proposal
}

type Finished struct {
	Result Result
}

type Cancelled struct{}

func (Open) Status() Status           { return StatusOpen }
func (Accepted) Status() Status       { return StatusAccepted }
func (ResultProposed) Status() Status { return StatusResultProposed }
func (Finished) Status() Status       { return StatusFinished }
func (Cancelled) Status() Status      { return StatusCancelled }

func (Open) isPhase()           {}
func (Accepted) isPhase()       {}
func (ResultProposed) isPhase() {}
func (Finished) isPhase()       {}
func (Cancelled) isPhase()      {}

type Outcome int

const (
	Draw Outcome = iota
	Team1Win
	Team2Win
)

func OutcomeOf(team1Wins, team2Wins int) Outcome {
	switch {
	case team1Wins > team2Wins:
		return Team1Win
	case team2Wins > team1Wins:
		return Team2Win
	default:
		return Draw
	}
}

// Proposal is a result awaiting confirmation by the other team.
// Seq increases with every proposal made on the same scrim.
type Proposal struct {
	Seq              int
	Team1Wins        int
	Team2Wins        int
	InitiatingUserID string
	InitiatingTeam   string
	ProposedAt       time.Time
}

func (p Proposal) Outcome() Outcome {
	return OutcomeOf(p.Team1Wins, p.Team2Wins)
}

// Recorded is false for a 0-0 proposal.
func (p Proposal) Recorded() bool {
	return p.Team1Wins > 0 || p.Team2Wins > 0
}

type Result struct {
	Team1Wins  int
	Team2Wins  int
	FinishedAt time.Time
}

func (r Result) Outcome() Outcome {
	return OutcomeOf(r.Team1Wins, r.Team2Wins)
}

type Side int

const (
	NoSide Side = iota
	Team1
	Team2
)

type Scrim struct {
	ScrimID             string
	GuildID             string
	TeamName            string
	TeamLeader          string
	TeamMembers         []string
	OpposingTeamName    string
	OpposingTeamLeader  string
	OpposingTeamMembers []string
	Date                string
	Time                string
	TimeNormalized      string
	Games               string
	OtherInfo           string
	Phase               Phase
	ProposalSeq         int
	MessageID           string
	PostChannelID       string
	ChannelID           string
	ReminderSent        bool
	CreatedAt           time.Time
}

func (s *Scrim) Status() Status {
	if s.Phase == nil {
		return StatusOpen
	}
	return s.Phase.Status()
}

// GameCount is the number of games agreed at creation. Rows written before
// games had to be numeric report false.
func (s *Scrim) GameCount() (int, bool) {
	n, err := strconv.Atoi(s.Games)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (s *Scrim) IsLive() bool {
	switch s.Status() {
	case StatusOpen, StatusAccepted, StatusResultProposed:
		return true
	}
	return false
}

// HasOpponent is true once the scrim has been accepted, even if it was later finished or cancelled.
func (s *Scrim) HasOpponent() bool {
	return s.OpposingTeamName != ""
}

func (s *Scrim) SideOf(teamName string) Side {
	switch teamName {
	case "":
		return NoSide
	case s.TeamName:
		return Team1
	case s.OpposingTeamName:
		return Team2
	}
	return NoSide
}

func (s *Scrim) Involves(teamName string) bool {
	return s.SideOf(teamName) != NoSide
}

// Participants lists both rosters without duplicates.
func (s *Scrim) Participants() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	add(s.TeamLeader)
	for _, id := range s.TeamMembers {
		add(id)
	}
	add(s.OpposingTeamLeader)
	for _, id := range s.OpposingTeamMembers {
		add(id)
	}
	return ids
}

// StartsAt reads the scrim's date and normalized time in loc.
func (s *Scrim) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", s.Date+" "+s.TimeNormalized, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing start of scrim %s: %w", s.ScrimID, err)
	}
	return t, nil
}
