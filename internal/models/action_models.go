package models

type ActionKind string

const (
	ActionScrimAccept     ActionKind = "scrim_accept"
	ActionScrimCancel     ActionKind = "scrim_cancel"
	ActionResultConfirm   ActionKind = "result_confirm"
	ActionResultReject    ActionKind = "result_reject"
	ActionInviteAccept    ActionKind = "invite_accept"
	ActionInviteDecline   ActionKind = "invite_decline"
	ActionTempSubAccept   ActionKind = "tempsub_accept"
	ActionTempSubDecline  ActionKind = "tempsub_decline"
	ActionDissolveConfirm ActionKind = "dissolve_confirm"
	ActionDissolveCancel  ActionKind = "dissolve_cancel"
	ActionClearConfirm    ActionKind = "clear_confirm"
	ActionClearCancel     ActionKind = "clear_cancel"
)

var actionKinds = map[ActionKind]bool{
	ActionScrimAccept:     true,
	ActionScrimCancel:     true,
	ActionResultConfirm:   true,
	ActionResultReject:    true,
	ActionInviteAccept:    true,
	ActionInviteDecline:   true,
	ActionTempSubAccept:   true,
	ActionTempSubDecline:  true,
	ActionDissolveConfirm: true,
	ActionDissolveCancel:  true,
	ActionClearConfirm:    true,
	ActionClearCancel:     true,
}

func (k ActionKind) Valid() bool {
	return actionKinds[k]
}

// ActionRequest is what a button press asks for: a kind plus the id it applies to
// (scrim id, invite id, team id or clear filter).
type ActionRequest struct {
	Kind ActionKind
	Ref  string
}
