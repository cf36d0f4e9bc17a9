package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/omarshaarawi/scrimbot/internal/models"
	"github.com/omarshaarawi/scrimbot/internal/repository"
)

const nameSimilarityThreshold = 0.6

// Resolver answers "which team is this user on" and "which team has this name".
type Resolver struct {
	store repository.Store
}

func NewResolver(store repository.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveTeam returns the single team in the guild the user leads or belongs to.
func (r *Resolver) ResolveTeam(ctx context.Context, guildID, userID string) (*models.Team, error) {
	return resolveTeam(ctx, r.store, guildID, userID)
}

func resolveTeam(ctx context.Context, store repository.Store, guildID, userID string) (*models.Team, error) {
	teams, err := store.FindTeamsByMember(ctx, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("error resolving team: %w", err)
	}

	switch len(teams) {
	case 0:
		return nil, ErrNotInTeam
	case 1:
		return &teams[0], nil
	}

	names := make([]string, len(teams))
	for i, t := range teams {
		names[i] = t.Name
	}
	slog.Error("User belongs to more than one team", "guild_id", guildID, "user_id", userID, "teams", names)
	return nil, ErrIntegrity
}

// TeamByName looks a team up by exact name, then case-insensitively, and
// otherwise fails with a suggestion for the closest existing name.
func (r *Resolver) TeamByName(ctx context.Context, guildID, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	team, err := r.store.FindTeamByName(ctx, guildID, name)
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("error finding team %q: %w", name, err)
	}

	names, err := r.store.ListTeamNames(ctx, guildID)
	if err != nil {
		return nil, err
	}

	for _, n := range names {
		if strings.EqualFold(n, name) {
			return r.store.FindTeamByName(ctx, guildID, n)
		}
	}

	if best, ok := closestName(name, names); ok {
		return nil, ErrTeamNotFound.withMessage(fmt.Sprintf("Team %q not found. Did you mean %q?", name, best))
	}
	return nil, ErrTeamNotFound.withMessage(fmt.Sprintf("Team %q not found.", name))
}

func closestName(query string, names []string) (string, bool) {
	var bestMatch string
	var bestSimilarity float64

	q := strings.ToLower(query)
	for _, name := range names {
		n := strings.ToLower(name)
		distance := fuzzy.LevenshteinDistance(q, n)
		maxLen := math.Max(float64(len(q)), float64(len(n)))
		if maxLen == 0 {
			continue
		}
		similarity := 1 - float64(distance)/maxLen

		if similarity > bestSimilarity {
			bestSimilarity = similarity
			bestMatch = name
		}
	}

	return bestMatch, bestSimilarity >= nameSimilarityThreshold
}
