package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/iklasky/tactic-trainer/internal/db"
	"github.com/iklasky/tactic-trainer/internal/models"
	"github.com/iklasky/tactic-trainer/internal/repository"
	"github.com/iklasky/tactic-trainer/internal/repository/sqlite"
	"github.com/iklasky/tactic-trainer/internal/testutil"
)

type GameRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.GameRepository
}

func (s *GameRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewGameRepository(s.db.DB)
}

func sampleGame(url string, opportunities int) models.GameSummary {
	return models.GameSummary{
		Username:      "hero",
		GameURL:       url,
		GameIndex:     0,
		WhitePlayer:   "hero",
		BlackPlayer:   "villain",
		PlayerColor:   "white",
		Opponent:      "villain",
		TimeControl:   "600",
		GameResult:    "1-0",
		EndTime:       "2024.05.01 12:00:00",
		Opportunities: opportunities,
	}
}

func (s *GameRepositorySuite) TestUpsertAndList() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Upsert(ctx, sampleGame("url-1", 2)))
	s.Require().NoError(s.repo.Upsert(ctx, sampleGame("url-2", 0)))

	games, err := s.repo.List(ctx, "hero", 0, 0)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Assert().Equal("villain", games[0].Opponent)

	count, err := s.repo.Count(ctx, "hero")
	s.Require().NoError(err)
	s.Assert().Equal(2, count)
}

func (s *GameRepositorySuite) TestUpsert_RefreshesCounters() {
	ctx := context.Background()

	s.Require().NoError(s.repo.Upsert(ctx, sampleGame("url-1", 0)))

	updated := sampleGame("url-1", 3)
	updated.GameIndex = 7
	s.Require().NoError(s.repo.Upsert(ctx, updated))

	games, err := s.repo.List(ctx, "hero", 0, 0)
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Assert().Equal(3, games[0].Opportunities)
	s.Assert().Equal(7, games[0].GameIndex)
}

func (s *GameRepositorySuite) TestList_UnknownUser() {
	games, err := s.repo.List(context.Background(), "nobody", 0, 0)
	s.Require().NoError(err)
	s.Assert().Empty(games)
}

func TestGameRepositorySuite(t *testing.T) {
	suite.Run(t, new(GameRepositorySuite))
}
