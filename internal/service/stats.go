package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/omarshaarawi/scrimbot/internal/models"
	"github.com/omarshaarawi/scrimbot/internal/repository"
)

const historyLimit = 10

type StatsService struct {
	store    repository.Store
	resolver *Resolver
}

func NewStatsService(store repository.Store, resolver *Resolver) *StatsService {
	return &StatsService{store: store, resolver: resolver}
}

// ApplyResult records a finished scrim for both teams. It runs on tx so the
// counters move together with the scrim's transition to finished.
func (s *StatsService) ApplyResult(ctx context.Context, tx repository.Store, scrim *models.Scrim, result models.Result) error {
	team1 := deltaFor(result.Team1Wins, result.Team2Wins)
	team2 := deltaFor(result.Team2Wins, result.Team1Wins)

	if err := tx.IncrementStats(ctx, scrim.GuildID, scrim.TeamName, team1); err != nil {
		return err
	}
	return tx.IncrementStats(ctx, scrim.GuildID, scrim.OpposingTeamName, team2)
}

func deltaFor(won, lost int) repository.StatsDelta {
	d := repository.StatsDelta{GamesWon: won, GamesLost: lost}
	switch models.OutcomeOf(won, lost) {
	case models.Team1Win:
		d.Wins = 1
	case models.Team2Win:
		d.Losses = 1
	default:
		d.Draws = 1
	}
	return d
}

// Stats returns zeroed counters for a team that has never finished a scrim.
func (s *StatsService) Stats(ctx context.Context, guildID, teamName string) (models.TeamStats, error) {
	stats, err := s.store.FindStats(ctx, guildID, teamName)
	if errors.Is(err, repository.ErrNotFound) {
		return models.TeamStats{GuildID: guildID, TeamName: teamName}, nil
	}
	if err != nil {
		return models.TeamStats{}, fmt.Errorf("error fetching stats for %s: %w", teamName, err)
	}
	return *stats, nil
}

func (s *StatsService) Standings(ctx context.Context, guildID string) ([]models.TeamStats, error) {
	return s.store.ListStats(ctx, guildID)
}

// TeamStatistics shows the actor's own team, or another team when the actor is a moderator.
func (s *StatsService) TeamStatistics(ctx context.Context, guildID, actorID, name string, isModerator bool) (models.TeamStats, error) {
	var teamName string
	if name == "" {
		team, err := s.resolver.ResolveTeam(ctx, guildID, actorID)
		if err != nil {
			return models.TeamStats{}, err
		}
		teamName = team.Name
	} else {
		team, err := s.resolver.TeamByName(ctx, guildID, name)
		if err != nil {
			return models.TeamStats{}, err
		}
		if !isModerator && !team.Includes(actorID) {
			return models.TeamStats{}, ErrModeratorRequired
		}
		teamName = team.Name
	}
	return s.Stats(ctx, guildID, teamName)
}

type History struct {
	Stats  models.TeamStats
	Recent []models.Scrim
}

func (s *StatsService) TeamHistory(ctx context.Context, guildID, actorID, name string) (*History, error) {
	var team *models.Team
	var err error
	if name == "" {
		team, err = s.resolver.ResolveTeam(ctx, guildID, actorID)
	} else {
		team, err = s.resolver.TeamByName(ctx, guildID, name)
	}
	if err != nil {
		return nil, err
	}

	stats, err := s.Stats(ctx, guildID, team.Name)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.FindScrims(ctx, repository.ScrimFilter{
		GuildID:     guildID,
		TeamName:    team.Name,
		Statuses:    []models.Status{models.StatusFinished},
		NewestFirst: true,
		Limit:       historyLimit,
	})
	if err != nil {
		return nil, err
	}
	return &History{Stats: stats, Recent: recent}, nil
}
