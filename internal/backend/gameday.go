package backend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/turnupspot/turnupspot-client/internal/api"
	"github.com/turnupspot/turnupspot-client/internal/domain"
)

type GameDayService struct {
	client *api.Client
}

func NewGameDayService(client *api.Client) *GameDayService {
	return &GameDayService{client: client}
}

func gameDayPath(groupID string) string {
	return "/games/game-day/" + url.PathEscape(groupID)
}

func (s *GameDayService) Info(ctx context.Context, groupID string) (*domain.GameDayInfo, error) {
	var info domain.GameDayInfo
	if _, err := s.client.Get(ctx, gameDayPath(groupID), &info); err != nil {
		return nil, fmt.Errorf("get game day %s: %w", groupID, err)
	}
	return &info, nil
}

func (s *GameDayService) Players(ctx context.Context, groupID string) ([]domain.Player, error) {
	var players []domain.Player
	if _, err := s.client.Get(ctx, gameDayPath(groupID)+"/players", &players); err != nil {
		return nil, fmt.Errorf("get game day players %s: %w", groupID, err)
	}
	return players, nil
}

func (s *GameDayService) CheckIn(ctx context.Context, groupID string) error {
	if _, err := s.client.Post(ctx, gameDayPath(groupID)+"/check-in", nil, nil); err != nil {
		return fmt.Errorf("check in to %s: %w", groupID, err)
	}
	return nil
}
