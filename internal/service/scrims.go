package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/omarshaarawi/scrimbot/internal/models"
	"github.com/omarshaarawi/scrimbot/internal/repository"
	"github.com/omarshaarawi/scrimbot/internal/telemetry"
)

const (
	maxIDAttempts  = 64
	findNearLimit  = 3
	openListLimit  = 25
	clearBatchSize = 500
)

type ScrimService struct {
	store              repository.Store
	platform           Platform
	notifier           Notifier
	deferrer           Deferrer
	resolver           *Resolver
	settings           *SettingsService
	stats              *StatsService
	loc                *time.Location
	channelDeleteDelay time.Duration
	nextID             func() string
	now                func() time.Time
}

type CreateScrimInput struct {
	Date      string `validate:"required,datetime=2006-01-02"`
	Time      string `validate:"required,scrimtime"`
	Games     string `validate:"required,gamecount"`
	OtherInfo string `validate:"max=500"`
}

type ScrimResult struct {
	Scrim    *models.Scrim
	Warnings []string
}

type CancelResult struct {
	Scrim          *models.Scrim
	ChannelDeleted bool
	Warnings       []string
}

type ProposalResult struct {
	Scrim    *models.Scrim
	Proposal models.Proposal
	Prompt   Message
}

type FinishResult struct {
	Scrim         *models.Scrim
	Result        models.Result
	ChannelClosed bool
	Warnings      []string
}

type ClearResult struct {
	Deleted    int64
	StatsReset bool
	Warnings   []string
}

func randomScrimID() string {
	return strconv.Itoa(100000 + rand.IntN(900000))
}

func (s *ScrimService) findScrim(ctx context.Context, guildID, scrimID string) (*models.Scrim, error) {
	if !validScrimID(scrimID) {
		return nil, ErrInvalidScrimID
	}
	scrim, err := s.store.FindScrim(ctx, guildID, scrimID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrScrimNotFound
	}
	if err != nil {
		return nil, err
	}
	return scrim, nil
}

// transition applies a guarded phase change and reports a lost race as the
// domain error matching whatever phase the scrim is in now.
func (s *ScrimService) transition(ctx context.Context, store repository.Store, scrim *models.Scrim, guard repository.Guard, to models.Phase, opp *repository.Opponent) error {
	err := store.TransitionScrim(ctx, scrim.GuildID, scrim.ScrimID, guard, to, opp)
	if err == nil {
		telemetry.ScrimTransitionsTotal.WithLabelValues(string(to.Status())).Inc()
		return nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return err
	}

	telemetry.TransitionConflictsTotal.WithLabelValues(string(to.Status())).Inc()
	current, ferr := store.FindScrim(ctx, scrim.GuildID, scrim.ScrimID)
	if ferr != nil {
		return ErrScrimNotFound
	}
	return phaseConflict(current, to)
}

func phaseConflict(current *models.Scrim, wanted models.Phase) error {
	switch current.Phase.(type) {
	case models.Cancelled:
		return ErrAlreadyCancelled
	case models.Finished:
		return ErrAlreadyFinished
	}

	_, open := current.Phase.(models.Open)
	switch wanted.(type) {
	case models.ResultProposed:
		if open {
			return ErrNotAccepted
		}
		return ErrResultPending
	case models.Finished:
		if open {
			return ErrNotAccepted
		}
		return ErrNoPendingResult
	}
	return ErrAlreadyAccepted
}

func (s *ScrimService) CreateScrim(ctx context.Context, guildID, actorID string, in CreateScrimInput) (*ScrimResult, error) {
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Games = strings.TrimSpace(in.Games)
	in.OtherInfo = strings.TrimSpace(in.OtherInfo)
	if err := checkInput(in); err != nil {
		return nil, err
	}
	normalized, err := NormalizeTime(in.Time)
	if err != nil {
		return nil, err
	}

	team, err := s.resolver.ResolveTeam(ctx, guildID, actorID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if settings.ScrimChannelID == "" {
		return nil, ErrNoPostingChannel
	}

	scrim := &models.Scrim{
		GuildID:        guildID,
		TeamName:       team.Name,
		TeamLeader:     team.LeaderID,
		TeamMembers:    team.MemberIDs(),
		Date:           in.Date,
		Time:           in.Time,
		TimeNormalized: normalized,
		Games:          in.Games,
		OtherInfo:      in.OtherInfo,
		Phase:          models.Open{},
	}
	if err := s.insertWithFreshID(ctx, scrim); err != nil {
		return nil, err
	}
	telemetry.ScrimTransitionsTotal.WithLabelValues(string(models.StatusOpen)).Inc()

	var w warnings
	post := Message{
		Content: FormatChallenge(scrim),
		Buttons: []Button{{
			Label:  "Accept Scrim",
			Style:  ButtonSuccess,
			Action: models.ActionRequest{Kind: models.ActionScrimAccept, Ref: scrim.ScrimID},
		}},
	}
	msgID, err := s.platform.PostMessage(ctx, settings.ScrimChannelID, post)
	if err != nil {
		w.add("post_challenge", "The scrim was created but could not be posted to the scrim channel.", err, "scrim_id", scrim.ScrimID)
	} else {
		scrim.MessageID = msgID
		scrim.PostChannelID = settings.ScrimChannelID
		refs := repository.ScrimRefs{MessageID: msgID, PostChannelID: settings.ScrimChannelID}
		if err := s.store.SetScrimRefs(ctx, guildID, scrim.ScrimID, refs); err != nil {
			logOnly("save_refs", err, "scrim_id", scrim.ScrimID)
		}
	}

	s.notifier.Announce(fmt.Sprintf("New scrim %s: %s on %s at %s (%s games)",
		scrim.ScrimID, scrim.TeamName, scrim.Date, scrim.Time, scrim.Games))
	return &ScrimResult{Scrim: scrim, Warnings: w}, nil
}

// insertWithFreshID draws random ids until one is free, giving up after maxIDAttempts.
func (s *ScrimService) insertWithFreshID(ctx context.Context, scrim *models.Scrim) error {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.nextID()
		exists, err := s.store.ScrimIDExists(ctx, id)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		scrim.ScrimID = id
		err = s.store.CreateScrim(ctx, scrim)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return fmt.Errorf("error saving scrim: %w", err)
		}
		return nil
	}
	scrim.ScrimID = ""
	return ErrNoIdsAvailable
}

func (s *ScrimService) AcceptScrim(ctx context.Context, guildID, actorID, scrimID string) (*ScrimResult, error) {
	if !validScrimID(scrimID) {
		return nil, ErrInvalidScrimID
	}
	team, err := s.resolver.ResolveTeam(ctx, guildID, actorID)
	if err != nil {
		return nil, err
	}
	if !team.IsLeader(actorID) {
		return nil, ErrNotLeader
	}

	scrim, err := s.findScrim(ctx, guildID, scrimID)
	if err != nil {
		return nil, err
	}
	if scrim.TeamName == team.Name {
		return nil, ErrSelfAccept
	}
	if _, ok := scrim.Phase.(models.Open); !ok {
		return nil, phaseConflict(scrim, models.Accepted{})
	}

	opp := &repository.Opponent{TeamName: team.Name, LeaderID: team.LeaderID, Members: team.MemberIDs()}
	if err := s.transition(ctx, s.store, scrim, repository.Guard{From: []models.Status{models.StatusOpen}}, models.Accepted{}, opp); err != nil {
		return nil, err
	}
	scrim.Phase = models.Accepted{}
	scrim.OpposingTeamName = opp.TeamName
	scrim.OpposingTeamLeader = opp.LeaderID
	scrim.OpposingTeamMembers = opp.Members

	var w warnings
	s.openScrimChannel(ctx, scrim, team, &w)

	if scrim.MessageID != "" && scrim.PostChannelID != "" {
		if err := s.platform.EditMessage(ctx, scrim.PostChannelID, scrim.MessageID, Message{Content: FormatAcceptedPost(scrim)}); err != nil {
			logOnly("edit_challenge", err, "scrim_id", scrim.ScrimID)
		}
	}

	s.notifier.Notify(ctx, Notification{
		UserID: scrim.TeamLeader,
		Message: Message{Content: fmt.Sprintf("⚔️ **%s** accepted your scrim `%s` on %s at %s.",
			scrim.OpposingTeamName, scrim.ScrimID, scrim.Date, scrim.Time)},
	})
	s.notifier.Announce(fmt.Sprintf("Scrim %s accepted: %s vs %s on %s at %s",
		scrim.ScrimID, scrim.TeamName, scrim.OpposingTeamName, scrim.Date, scrim.Time))
	return &ScrimResult{Scrim: scrim, Warnings: w}, nil
}

// openScrimChannel creates the private coordination channel for both rosters
// and any temp subs already booked for the scrim.
func (s *ScrimService) openScrimChannel(ctx context.Context, scrim *models.Scrim, accepter *models.Team, w *warnings) {
	members := scrim.Participants()
	for _, sub := range accepter.TempSubsFor(scrim.ScrimID) {
		members = append(members, sub.UserID)
	}
	if challenger, err := s.store.FindTeamByName(ctx, scrim.GuildID, scrim.TeamName); err == nil {
		for _, sub := range challenger.TempSubsFor(scrim.ScrimID) {
			members = append(members, sub.UserID)
		}
	}

	channelID, err := s.platform.CreatePrivateChannel(ctx, scrim.GuildID, ChannelName(scrim), members)
	if err != nil {
		w.add("create_channel", "The scrim was accepted but its private channel could not be created.", err, "scrim_id", scrim.ScrimID)
		return
	}
	scrim.ChannelID = channelID
	if err := s.store.SetScrimRefs(ctx, scrim.GuildID, scrim.ScrimID, repository.ScrimRefs{ChannelID: channelID}); err != nil {
		logOnly("save_refs", err, "scrim_id", scrim.ScrimID)
	}

	welcome := Message{
		Content: FormatWelcome(scrim),
		Buttons: []Button{{
			Label:  "Cancel Scrim",
			Style:  ButtonDanger,
			Action: models.ActionRequest{Kind: models.ActionScrimCancel, Ref: scrim.ScrimID},
		}},
	}
	if _, err := s.platform.PostMessage(ctx, channelID, welcome); err != nil {
		logOnly("post_welcome", err, "scrim_id", scrim.ScrimID)
	}
}

// ChannelName is "<team1>-vs-<team2>-<id>" reduced to a channel-safe slug.
func ChannelName(scrim *models.Scrim) string {
	return slug.Make(fmt.Sprintf("%s vs %s %s", scrim.TeamName, scrim.OpposingTeamName, scrim.ScrimID))
}

type CancelInput struct {
	GuildID   string
	ActorID   string
	ScrimID   string
	ChannelID string
	IsAdmin   bool
}

func (s *ScrimService) CancelScrim(ctx context.Context, in CancelInput) (*CancelResult, error) {
	scrim, err := s.findScrim(ctx, in.GuildID, in.ScrimID)
	if err != nil {
		return nil, err
	}
	if !scrim.IsLive() {
		return nil, phaseConflict(scrim, models.Cancelled{})
	}
	if !in.IsAdmin {
		if err := s.requireParticipant(ctx, scrim, in.ActorID); err != nil {
			return nil, err
		}
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := s.transition(ctx, tx, scrim, repository.Guard{From: models.LiveStatuses}, models.Cancelled{}, nil); err != nil {
			return err
		}
		_, err := tx.PurgeTempSubs(ctx, scrim.GuildID, scrim.ScrimID)
		return err
	})
	if err != nil {
		return nil, err
	}
	scrim.Phase = models.Cancelled{}

	res := &CancelResult{Scrim: scrim}
	var w warnings
	notice := Message{Content: FormatCancelled(scrim, in.ActorID)}

	if scrim.ChannelID != "" && in.ChannelID == scrim.ChannelID {
		s.notifier.Notify(ctx, directTo(scrim.Participants(), notice)...)
		if err := s.platform.DeleteChannel(ctx, scrim.ChannelID); err != nil {
			w.add("delete_channel", "The scrim channel could not be deleted.", err, "scrim_id", scrim.ScrimID)
		} else {
			res.ChannelDeleted = true
		}
	} else {
		if scrim.MessageID != "" && scrim.PostChannelID != "" {
			if err := s.platform.DeleteMessage(ctx, scrim.PostChannelID, scrim.MessageID); err != nil {
				w.add("delete_post", "The scrim post could not be removed.", err, "scrim_id", scrim.ScrimID)
			}
		}
		if scrim.ChannelID != "" {
			s.notifier.Notify(ctx, Notification{ChannelID: scrim.ChannelID, Message: notice})
			s.scheduleChannelDeletion(scrim, &w)
		}
		s.notifyOtherSide(ctx, scrim, in.ActorID, notice)
	}

	s.notifier.Announce(fmt.Sprintf("Scrim %s cancelled", scrim.ScrimID))
	res.Warnings = w
	return res, nil
}

// notifyOtherSide DMs the leaders of the scrim other than the actor.
func (s *ScrimService) notifyOtherSide(ctx context.Context, scrim *models.Scrim, actorID string, msg Message) {
	var notes []Notification
	for _, id := range []string{scrim.TeamLeader, scrim.OpposingTeamLeader} {
		if id != "" && id != actorID {
			notes = append(notes, Notification{UserID: id, Message: msg})
		}
	}
	s.notifier.Notify(ctx, notes...)
}

func (s *ScrimService) requireParticipant(ctx context.Context, scrim *models.Scrim, actorID string) error {
	_, err := s.participantTeam(ctx, scrim, actorID)
	return err
}

func (s *ScrimService) participantTeam(ctx context.Context, scrim *models.Scrim, actorID string) (*models.Team, error) {
	team, err := s.resolver.ResolveTeam(ctx, scrim.GuildID, actorID)
	if errors.Is(err, ErrNotInTeam) {
		return nil, ErrNotParticipant
	}
	if err != nil {
		return nil, err
	}
	if !scrim.Involves(team.Name) {
		return nil, ErrNotParticipant
	}
	return team, nil
}

type SubmitInput struct {
	GuildID      string
	ActorID      string
	ScrimID      string
	OwnWins      int
	OpponentWins int
}

// SubmitResult records the actor's team's view of the score and asks the other team to confirm it.
func (s *ScrimService) SubmitResult(ctx context.Context, in SubmitInput) (*ProposalResult, error) {
	if in.OwnWins < 0 || in.OpponentWins < 0 {
		return nil, ErrInvalidScore
	}
	scrim, err := s.findScrim(ctx, in.GuildID, in.ScrimID)
	if err != nil {
		return nil, err
	}
	if _, ok := scrim.Phase.(models.Accepted); !ok {
		return nil, phaseConflict(scrim, models.ResultProposed{})
	}
	if games, ok := scrim.GameCount(); ok && in.OwnWins+in.OpponentWins > games {
		return nil, ErrTooManyGames.withMessage(fmt.Sprintf(
			"Scrim `%s` was set up for %d games, but the scores add up to %d.", scrim.ScrimID, games, in.OwnWins+in.OpponentWins))
	}

	team, err := s.participantTeam(ctx, scrim, in.ActorID)
	if err != nil {
		return nil, err
	}

	t1, t2 := in.OwnWins, in.OpponentWins
	if scrim.SideOf(team.Name) == models.Team2 {
		t1, t2 = t2, t1
	}
	p := models.Proposal{
		Seq:              scrim.ProposalSeq + 1,
		Team1Wins:        t1,
		Team2Wins:        t2,
		InitiatingUserID: in.ActorID,
		InitiatingTeam:   team.Name,
		ProposedAt:       s.now(),
	}

	to := models.ResultProposed{Proposal: p}
	if err := s.transition(ctx, s.store, scrim, repository.Guard{From: []models.Status{models.StatusAccepted}}, to, nil); err != nil {
		return nil, err
	}
	scrim.Phase = to
	scrim.ProposalSeq = p.Seq

	ref := ProposalRef(scrim.ScrimID, p.Seq)
	prompt := Message{
		Content: FormatProposal(scrim, p),
		Buttons: []Button{
			{Label: "Confirm", Style: ButtonSuccess, Action: models.ActionRequest{Kind: models.ActionResultConfirm, Ref: ref}},
			{Label: "Reject", Style: ButtonDanger, Action: models.ActionRequest{Kind: models.ActionResultReject, Ref: ref}},
		},
	}
	return &ProposalResult{Scrim: scrim, Proposal: p, Prompt: prompt}, nil
}

// ProposalRef ties a confirm/reject button to one proposal of one scrim.
func ProposalRef(scrimID string, seq int) string {
	return fmt.Sprintf("%s-%d", scrimID, seq)
}

// ParseProposalRef accepts "<scrimID>-<seq>" or a bare scrim id (seq 0).
func ParseProposalRef(ref string) (string, int, error) {
	id, seqStr, found := strings.Cut(ref, "-")
	if !found {
		return id, 0, nil
	}
	seq, err := strconv.Atoi(seqStr)
	if err != nil || seq < 1 {
		return "", 0, ErrInvalidScrimID
	}
	return id, seq, nil
}

// ConfirmResult finishes the scrim with the pending proposal. Finishing,
// the statistics update and the temp-sub purge commit together or not at all.
// A non-zero seq must match the pending proposal.
func (s *ScrimService) ConfirmResult(ctx context.Context, guildID, actorID, scrimID string, seq int) (*FinishResult, error) {
	scrim, err := s.findScrim(ctx, guildID, scrimID)
	if err != nil {
		return nil, err
	}
	rp, ok := scrim.Phase.(models.ResultProposed)
	if !ok {
		return nil, phaseConflict(scrim, models.Finished{})
	}
	if seq != 0 && seq != rp.Proposal.Seq {
		return nil, ErrNoPendingResult
	}

	team, err := s.participantTeam(ctx, scrim, actorID)
	if err != nil {
		return nil, err
	}
	if team.Name == rp.Proposal.InitiatingTeam {
		return nil, ErrSameTeamCannotConfirm
	}

	result := models.Result{
		Team1Wins:  rp.Proposal.Team1Wins,
		Team2Wins:  rp.Proposal.Team2Wins,
		FinishedAt: s.now(),
	}
	guard := repository.Guard{From: []models.Status{models.StatusResultProposed}, ProposalSeq: rp.Proposal.Seq}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := s.transition(ctx, tx, scrim, guard, models.Finished{Result: result}, nil); err != nil {
			return err
		}
		if err := s.stats.ApplyResult(ctx, tx, scrim, result); err != nil {
			return err
		}
		_, err := tx.PurgeTempSubs(ctx, scrim.GuildID, scrim.ScrimID)
		return err
	})
	if err != nil {
		return nil, err
	}
	scrim.Phase = models.Finished{Result: result}

	res := &FinishResult{Scrim: scrim, Result: result}
	var w warnings
	if scrim.ChannelID != "" {
		res.ChannelClosed = s.scheduleChannelDeletion(scrim, &w)
	}
	res.Warnings = w

	s.notifier.Announce(FormatResultLine(scrim, result))
	return res, nil
}

func (s *ScrimService) scheduleChannelDeletion(scrim *models.Scrim, w *warnings) bool {
	channelID, scrimID := scrim.ChannelID, scrim.ScrimID
	err := s.deferrer.After(s.channelDeleteDelay, "delete-channel-"+scrimID, func() {
		if err := s.platform.DeleteChannel(context.Background(), channelID); err != nil {
			logOnly("delete_channel", err, "scrim_id", scrimID, "channel_id", channelID)
		}
	})
	if err != nil {
		w.add("delete_channel", "The scrim channel could not be scheduled for deletion.", err, "scrim_id", scrimID)
		return false
	}
	return true
}

// RejectConfirmation drops the pending proposal so a new result can be submitted.
func (s *ScrimService) RejectConfirmation(ctx context.Context, guildID, actorID, scrimID string, seq int, isAdmin bool) (*ScrimResult, error) {
	scrim, err := s.findScrim(ctx, guildID, scrimID)
	if err != nil {
		return nil, err
	}
	rp, ok := scrim.Phase.(models.ResultProposed)
	if !ok {
		return nil, phaseConflict(scrim, models.Finished{})
	}
	if seq != 0 && seq != rp.Proposal.Seq {
		return nil, ErrNoPendingResult
	}
	if !isAdmin {
		if err := s.requireParticipant(ctx, scrim, actorID); err != nil {
			return nil, err
		}
	}

	guard := repository.Guard{From: []models.Status{models.StatusResultProposed}, ProposalSeq: rp.Proposal.Seq}
	if err := s.transition(ctx, s.store, scrim, guard, models.Accepted{}, nil); err != nil {
		if errors.Is(err, ErrAlreadyAccepted) {
			return nil, ErrNoPendingResult
		}
		return nil, err
	}
	scrim.Phase = models.Accepted{}
	return &ScrimResult{Scrim: scrim}, nil
}

// ResetScrim is the administrator override that puts a scrim back to
// accepted. Only scrims that were accepted at some point have an opponent to
// go back to.
func (s *ScrimService) ResetScrim(ctx context.Context, guildID, scrimID string, isAdmin bool) (*ScrimResult, error) {
	if !isAdmin {
		return nil, ErrAdminRequired
	}
	scrim, err := s.findScrim(ctx, guildID, scrimID)
	if err != nil {
		return nil, err
	}
	if !scrim.HasOpponent() {
		return nil, ErrNotAccepted
	}
	if err := s.transition(ctx, s.store, scrim, repository.Guard{From: models.AllStatuses}, models.Accepted{}, nil); err != nil {
		return nil, err
	}
	scrim.Phase = models.Accepted{}
	return &ScrimResult{Scrim: scrim}, nil
}

func (s *ScrimService) ScrimStatus(ctx context.Context, guildID, scrimID string) (*models.Scrim, error) {
	return s.findScrim(ctx, guildID, scrimID)
}

func (s *ScrimService) ListOpen(ctx context.Context, guildID string) ([]models.Scrim, error) {
	return s.store.FindScrims(ctx, repository.ScrimFilter{
		GuildID:     guildID,
		Statuses:    []models.Status{models.StatusOpen},
		NewestFirst: true,
		Limit:       openListLimit,
	})
}

// FindNear returns the open scrims starting closest to the given date and time.
func (s *ScrimService) FindNear(ctx context.Context, guildID, date, timeStr string) ([]models.Scrim, error) {
	date, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	normalized, err := NormalizeTime(timeStr)
	if err != nil {
		return nil, err
	}
	target, err := time.ParseInLocation("2006-01-02 15:04", date+" "+normalized, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	open, err := s.store.FindScrims(ctx, repository.ScrimFilter{
		GuildID:  guildID,
		Statuses: []models.Status{models.StatusOpen},
	})
	if err != nil {
		return nil, err
	}

	type candidate struct {
		scrim models.Scrim
		diff  time.Duration
	}
	var candidates []candidate
	for _, sc := range open {
		start, err := sc.StartsAt(s.loc)
		if err != nil {
			continue
		}
		diff := start.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		candidates = append(candidates, candidate{scrim: sc, diff: diff})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].diff < candidates[j].diff })

	var out []models.Scrim
	for i := 0; i < len(candidates) && i < findNearLimit; i++ {
		out = append(out, candidates[i].scrim)
	}
	return out, nil
}

// Calendar lists the actor's team's scrims that are not over yet.
func (s *ScrimService) Calendar(ctx context.Context, guildID, actorID string) (*models.Team, []models.Scrim, error) {
	team, err := s.resolver.ResolveTeam(ctx, guildID, actorID)
	if err != nil {
		return nil, nil, err
	}
	scrims, err := s.store.FindScrims(ctx, repository.ScrimFilter{
		GuildID:  guildID,
		TeamName: team.Name,
		Statuses: models.LiveStatuses,
	})
	if err != nil {
		return nil, nil, err
	}
	return team, scrims, nil
}

var clearFilters = map[string][]models.Status{
	"all":       nil,
	"open":      {models.StatusOpen},
	"accepted":  models.EngagedStatuses,
	"finished":  {models.StatusFinished},
	"cancelled": {models.StatusCancelled},
}

func clearFilter(guildID, name string) (repository.ScrimFilter, error) {
	statuses, ok := clearFilters[name]
	if !ok {
		return repository.ScrimFilter{}, ErrInvalidFilter
	}
	return repository.ScrimFilter{GuildID: guildID, Statuses: statuses}, nil
}

// PrepareClear counts what ConfirmClear would delete.
func (s *ScrimService) PrepareClear(ctx context.Context, guildID string, isAdmin bool, filterName string) (int64, error) {
	if !isAdmin {
		return 0, ErrAdminRequired
	}
	filter, err := clearFilter(guildID, filterName)
	if err != nil {
		return 0, err
	}
	n, err := s.store.CountScrims(ctx, filter)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNothingToClear
	}
	return n, nil
}

// ConfirmClear deletes the matching scrims with their posts and channels.
// Statistics are reset when finished scrims are among those cleared.
func (s *ScrimService) ConfirmClear(ctx context.Context, guildID string, isAdmin bool, filterName string) (*ClearResult, error) {
	if !isAdmin {
		return nil, ErrAdminRequired
	}
	filter, err := clearFilter(guildID, filterName)
	if err != nil {
		return nil, err
	}

	scrims, err := s.store.FindScrims(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(scrims) == 0 {
		return nil, ErrNothingToClear
	}

	res := &ClearResult{StatsReset: filterName == "all" || filterName == "finished"}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		for start := 0; start < len(scrims); start += clearBatchSize {
			end := min(start+clearBatchSize, len(scrims))
			ids := make([]string, 0, end-start)
			for _, sc := range scrims[start:end] {
				ids = append(ids, sc.ScrimID)
				if _, err := tx.PurgeTempSubs(ctx, guildID, sc.ScrimID); err != nil {
					return err
				}
			}
			n, err := tx.DeleteScrims(ctx, repository.ScrimFilter{GuildID: guildID, ScrimIDs: ids})
			if err != nil {
				return err
			}
			res.Deleted += n
		}
		if res.StatsReset {
			return tx.ResetStats(ctx, guildID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var failed int
	for _, sc := range scrims {
		if sc.MessageID != "" && sc.PostChannelID != "" {
			if err := s.platform.DeleteMessage(ctx, sc.PostChannelID, sc.MessageID); err != nil {
				failed++
				logOnly("delete_post", err, "scrim_id", sc.ScrimID)
			}
		}
		if sc.ChannelID != "" {
			if err := s.platform.DeleteChannel(ctx, sc.ChannelID); err != nil {
				failed++
				logOnly("delete_channel", err, "scrim_id", sc.ScrimID)
			}
		}
	}
	if failed > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d posts or channels could not be removed.", failed))
	}
	return res, nil
}
