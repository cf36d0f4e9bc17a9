package service

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindStateConflict
	KindCapacity
	KindNotFound
	KindExternalSideEffect
	KindIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindStateConflict:
		return "state_conflict"
	case KindCapacity:
		return "capacity"
	case KindNotFound:
		return "not_found"
	case KindExternalSideEffect:
		return "external_side_effect"
	case KindIntegrity:
		return "integrity"
	}
	return "internal"
}

type Code string

// Error is a domain failure. Message is safe to show to the user.
type Error struct {
	Code    Code
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches on Code so errors carrying extra detail still compare equal to the sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) withMessage(msg string) *Error {
	return &Error{Code: e.Code, Kind: e.Kind, Message: msg}
}

func newError(code Code, kind Kind, msg string) *Error {
	return &Error{Code: code, Kind: kind, Message: msg}
}

var (
	ErrInvalidTeamName = newError("INVALID_TEAM_NAME", KindValidation, "Team names must be between 1 and 50 characters.")
	ErrInvalidDate     = newError("INVALID_DATE", KindValidation, "Invalid date format. Please use YYYY-MM-DD.")
	ErrInvalidTime     = newError("INVALID_TIME", KindValidation, "Invalid time format. Please use a format like '7pm', '7:30pm' or '19:30'.")
	ErrInvalidGames    = newError("INVALID_GAMES", KindValidation, "The number of games must be a whole number from 1 to 99.")
	ErrInvalidInfo     = newError("INVALID_INFO", KindValidation, "Extra info can be at most 500 characters.")
	ErrInvalidScrimID  = newError("INVALID_SCRIM_ID", KindValidation, "Scrim ids are 6 digits.")
	ErrInvalidScore    = newError("INVALID_SCORE", KindValidation, "Scores must be whole numbers of 0 or more.")
	ErrTooManyGames    = newError("TOO_MANY_GAMES", KindValidation, "The scores add up to more games than the scrim was set up for.")
	ErrInvalidFilter   = newError("INVALID_FILTER", KindValidation, "Unknown filter. Use all, open, accepted, finished or cancelled.")
	ErrSelfInvite      = newError("SELF_INVITE", KindValidation, "You cannot invite yourself.")
	ErrSelfKick        = newError("SELF_KICK", KindValidation, "You cannot kick yourself. Use /team_leave or /team_disband instead.")
	ErrSelfAccept      = newError("SELF_ACCEPT", KindValidation, "You cannot accept your own scrim.")

	ErrNotLeader             = newError("NOT_LEADER", KindAuthorization, "Only the team leader can do this.")
	ErrNotRecipient          = newError("NOT_RECIPIENT", KindAuthorization, "This invite is not for you.")
	ErrNotParticipant        = newError("NOT_PARTICIPANT", KindAuthorization, "Only members of the teams in this scrim can do this.")
	ErrSameTeamCannotConfirm = newError("SAME_TEAM_CANNOT_CONFIRM", KindAuthorization, "The other team has to confirm this result.")
	ErrAdminRequired         = newError("ADMIN_REQUIRED", KindAuthorization, "Only administrators can do this.")
	ErrModeratorRequired     = newError("MODERATOR_REQUIRED", KindAuthorization, "Only moderators can view other teams' statistics.")

	ErrAlreadyInTeam       = newError("ALREADY_IN_TEAM", KindStateConflict, "You are already in a team.")
	ErrNameTaken           = newError("NAME_TAKEN", KindStateConflict, "A team with that name already exists.")
	ErrTargetAlreadyTeamed = newError("TARGET_ALREADY_TEAMED", KindStateConflict, "That user is already in a team.")
	ErrAlreadyOnRoster     = newError("ALREADY_ON_ROSTER", KindStateConflict, "That user is already on your roster.")
	ErrAlreadyTempSub      = newError("ALREADY_TEMP_SUB", KindStateConflict, "That user is already a temp sub for this scrim.")
	ErrNotAMember          = newError("NOT_A_MEMBER", KindStateConflict, "That user is not a member of your team.")
	ErrOpenScrimsExist     = newError("OPEN_SCRIMS_EXIST", KindStateConflict, "Your team has scrims that are still open or in progress. Cancel or finish them first.")
	ErrAlreadyAccepted     = newError("SCRIM_ALREADY_ACCEPTED", KindStateConflict, "This scrim has already been accepted.")
	ErrAlreadyFinished     = newError("SCRIM_ALREADY_FINISHED", KindStateConflict, "This scrim has already finished.")
	ErrAlreadyCancelled    = newError("SCRIM_ALREADY_CANCELLED", KindStateConflict, "This scrim has already been cancelled.")
	ErrNotAccepted         = newError("SCRIM_NOT_ACCEPTED", KindStateConflict, "This scrim has not been accepted yet.")
	ErrResultPending       = newError("RESULT_PENDING", KindStateConflict, "A result is already waiting for confirmation.")
	ErrNoPendingResult     = newError("NO_PENDING_RESULT", KindStateConflict, "There is no result waiting for confirmation.")
	ErrScrimNotLive        = newError("SCRIM_NOT_LIVE", KindStateConflict, "This scrim is already over.")
	ErrNothingToClear      = newError("NOTHING_TO_CLEAR", KindStateConflict, "There are no scrims matching that filter.")

	ErrTeamFull        = newError("TEAM_FULL", KindCapacity, "The team is full.")
	ErrTooManyTempSubs = newError("TOO_MANY_TEMP_SUBS", KindCapacity, "Your team already has 3 temp subs for this scrim.")
	ErrNoIdsAvailable  = newError("NO_IDS_AVAILABLE", KindCapacity, "Could not allocate a scrim id. Try again later.")

	ErrNotInTeam        = newError("NOT_IN_TEAM", KindNotFound, "You are not in a team.")
	ErrTeamNotFound     = newError("TEAM_NOT_FOUND", KindNotFound, "Team not found.")
	ErrScrimNotFound    = newError("SCRIM_NOT_FOUND", KindNotFound, "Scrim not found.")
	ErrInviteNotFound   = newError("INVITE_NOT_FOUND", KindNotFound, "This invite is no longer valid.")
	ErrNoPostingChannel = newError("NO_POSTING_CHANNEL", KindNotFound, "No scrim channel is configured. An administrator can set one with /scrim_channel.")
	ErrNoVerifiedRole   = newError("NO_VERIFIED_ROLE", KindNotFound, "No verified role is configured. An administrator can set one with /set_verified_role.")

	ErrRoleCreation        = newError("ROLE_CREATION_FAILED", KindExternalSideEffect, "Could not create the team role.")
	ErrInviteUndeliverable = newError("INVITE_UNDELIVERABLE", KindExternalSideEffect, "Could not send the invite. The user may have DMs disabled.")

	ErrIntegrity = newError("INTEGRITY", KindIntegrity, "Your membership data is inconsistent. Please contact an administrator.")
)

// KindOf reports the taxonomy of err, KindInternal for anything that is not a domain Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
