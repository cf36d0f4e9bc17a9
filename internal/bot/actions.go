package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/omarshaarawi/scrimbot/internal/models"
)

// Discord caps component custom ids at 100 characters.
const maxCustomIDLength = 100

var ErrUnknownAction = errors.New("unknown action")

// EncodeAction renders an action as a button custom id, "<kind>:<ref>".
func EncodeAction(a models.ActionRequest) (string, error) {
	if !a.Kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	id := string(a.Kind) + ":" + a.Ref
	if len(id) > maxCustomIDLength {
		return "", fmt.Errorf("custom id for %s is %d characters long", a.Kind, len(id))
	}
	return id, nil
}

// DecodeAction parses a custom id produced by EncodeAction. Unknown kinds and
// empty references are rejected here so routing only ever sees valid actions.
func DecodeAction(customID string) (models.ActionRequest, error) {
	kind, ref, found := strings.Cut(customID, ":")
	if !found || ref == "" {
		return models.ActionRequest{}, fmt.Errorf("%w: %q", ErrUnknownAction, customID)
	}
	a := models.ActionRequest{Kind: models.ActionKind(kind), Ref: ref}
	if !a.Kind.Valid() {
		return models.ActionRequest{}, fmt.Errorf("%w: %q", ErrUnknownAction, customID)
	}
	return a, nil
}
