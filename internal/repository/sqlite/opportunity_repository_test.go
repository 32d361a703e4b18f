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

type OpportunityRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.OpportunityRepository
}

func (s *OpportunityRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewOpportunityRepository(s.db.DB)
}

func intPtr(v int) *int { return &v }

func sampleRecord(eventIndex int) models.OpportunityRecord {
	return models.OpportunityRecord{
		Username:        "hero",
		GameURL:         "https://www.chess.com/game/live/1",
		GameIndex:       0,
		EventIndex:      eventIndex,
		Kind:            models.KindCP,
		OpportunityCP:   intPtr(250),
		TargetPawns:     2,
		EnginePly:       3,
		ConvertedActual: true,
		ActualPly:       intPtr(5),
		OpponentMovePly: 12,
		OpponentMoveSAN: "Qxb7??",
		OpponentMoveUCI: "d5b7",
		BestReplySAN:    "Rb8",
		BestReplyUCI:    "a8b8",
		FENBefore:       "fen-before",
		FENAfter:        "fen-after",
		PVMoves:         []string{"a8b8", "b7a6", "b8b2"},
		PVEvals:         []int{240, -250, 260},
		EvalBefore:      30,
		WhitePlayer:     "hero",
		BlackPlayer:     "villain",
		PlayerColor:     "white",
		TimeControl:     "600",
		GameResult:      "1-0",
		EndTime:         "2024.05.01 12:00:00",
	}
}

func (s *OpportunityRepositorySuite) TestUpsertBatch_RoundTrip() {
	ctx := context.Background()

	inserted, err := s.repo.UpsertBatch(ctx, []models.OpportunityRecord{sampleRecord(0), sampleRecord(1)})
	s.Require().NoError(err)
	s.Assert().Equal(2, inserted)

	records, err := s.repo.List(ctx, models.RecordFilter{Username: "hero"})
	s.Require().NoError(err)
	s.Require().Len(records, 2)

	rec := records[0]
	s.Assert().Equal("cp", rec.Kind)
	s.Require().NotNil(rec.OpportunityCP)
	s.Assert().Equal(250, *rec.OpportunityCP)
	s.Assert().Nil(rec.MateIn)
	s.Assert().Equal([]string{"a8b8", "b7a6", "b8b2"}, rec.PVMoves)
	s.Assert().Equal([]int{240, -250, 260}, rec.PVEvals)
	s.Assert().True(rec.ConvertedActual)
	s.Require().NotNil(rec.ActualPly)
	s.Assert().Equal(5, *rec.ActualPly)
}

func (s *OpportunityRepositorySuite) TestUpsertBatch_Idempotent() {
	ctx := context.Background()

	inserted, err := s.repo.UpsertBatch(ctx, []models.OpportunityRecord{sampleRecord(0)})
	s.Require().NoError(err)
	s.Assert().Equal(1, inserted)

	// Re-running the same game must not duplicate rows.
	inserted, err = s.repo.UpsertBatch(ctx, []models.OpportunityRecord{sampleRecord(0), sampleRecord(1)})
	s.Require().NoError(err)
	s.Assert().Equal(1, inserted)

	count, err := s.repo.Count(ctx, models.RecordFilter{Username: "hero"})
	s.Require().NoError(err)
	s.Assert().Equal(2, count)
}

func (s *OpportunityRepositorySuite) TestList_Filters() {
	ctx := context.Background()

	mate := sampleRecord(2)
	mate.Kind = models.KindMate
	mate.OpportunityCP = nil
	mate.MateIn = intPtr(2)
	mate.TargetPawns = 0
	mate.ConvertedActual = false
	mate.ActualPly = nil

	small := sampleRecord(3)
	small.OpportunityCP = intPtr(120)

	_, err := s.repo.UpsertBatch(ctx, []models.OpportunityRecord{sampleRecord(0), mate, small})
	s.Require().NoError(err)

	byKind, err := s.repo.List(ctx, models.RecordFilter{Kind: models.KindMate})
	s.Require().NoError(err)
	s.Require().Len(byKind, 1)
	s.Require().NotNil(byKind[0].MateIn)
	s.Assert().Equal(2, *byKind[0].MateIn)

	byCP, err := s.repo.List(ctx, models.RecordFilter{MinCP: 200})
	s.Require().NoError(err)
	s.Require().Len(byCP, 1)
	s.Assert().Equal(250, *byCP[0].OpportunityCP)

	missed := false
	byConverted, err := s.repo.List(ctx, models.RecordFilter{Converted: &missed})
	s.Require().NoError(err)
	s.Require().Len(byConverted, 1)
	s.Assert().Equal(models.KindMate, byConverted[0].Kind)

	none, err := s.repo.List(ctx, models.RecordFilter{Username: "nobody"})
	s.Require().NoError(err)
	s.Assert().Empty(none)
}

func (s *OpportunityRepositorySuite) TestPlayers() {
	ctx := context.Background()

	other := sampleRecord(0)
	other.Username = "other"
	other.GameURL = "https://www.chess.com/game/live/2"
	other.ConvertedActual = false
	other.ActualPly = nil

	_, err := s.repo.UpsertBatch(ctx, []models.OpportunityRecord{sampleRecord(0), sampleRecord(1), other})
	s.Require().NoError(err)

	players, err := s.repo.Players(ctx)
	s.Require().NoError(err)
	s.Require().Len(players, 2)

	s.Assert().Equal("hero", players[0].Username)
	s.Assert().Equal(1, players[0].Games)
	s.Assert().Equal(2, players[0].Records)
	s.Assert().Equal(0, players[0].Missed)

	s.Assert().Equal("other", players[1].Username)
	s.Assert().Equal(1, players[1].Missed)
}

func TestOpportunityRepositorySuite(t *testing.T) {
	suite.Run(t, new(OpportunityRepositorySuite))
}
