//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"caplock/internal/roles/models"
	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
	"caplock/pkg/platform/sentinel"
	"caplock/pkg/testutil/containers"
)

type PostgresRegistrySuite struct {
	suite.Suite

	ctx      context.Context
	pg       *containers.PostgresContainer
	store    *Postgres
	registry models.Registry
}

func TestPostgresRegistrySuite(t *testing.T) {
	suite.Run(t, new(PostgresRegistrySuite))
}

func (s *PostgresRegistrySuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T(), Schema)
	s.store = NewPostgres(s.pg.DB)
	s.registry = models.Registry{
		PrimaryAdmin:        domain.MustParseAddress("0x1000000000000000000000000000000000000001"),
		MintingAdmin:        domain.MustParseAddress("0x1000000000000000000000000000000000000002"),
		GovernanceAuthority: domain.MustParseAddress("0x1000000000000000000000000000000000000003"),
	}
}

func (s *PostgresRegistrySuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "role_registry"))
	s.Require().NoError(s.store.Init(s.ctx, s.registry))
}

func (s *PostgresRegistrySuite) TestInitOnce() {
	err := s.store.Init(s.ctx, s.registry)
	s.Require().ErrorIs(err, sentinel.ErrInvalidState)

	got, err := s.store.Get(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.registry, got)
}

func (s *PostgresRegistrySuite) TestExecuteAppliesMutation() {
	replacement := domain.MustParseAddress("0x1000000000000000000000000000000000000009")

	err := s.store.Execute(s.ctx,
		func(*models.Registry) error { return nil },
		func(r *models.Registry) { r.MintingAdmin = replacement },
	)
	s.Require().NoError(err)

	got, err := s.store.Get(s.ctx)
	s.Require().NoError(err)
	s.Equal(replacement, got.MintingAdmin)
}

func (s *PostgresRegistrySuite) TestExecuteRollsBackOnValidateFailure() {
	boom := dErrors.New(dErrors.CodeUnauthorized, "not the authority")

	err := s.store.Execute(s.ctx,
		func(*models.Registry) error { return boom },
		func(r *models.Registry) { r.PrimaryAdmin = domain.ZeroAddress },
	)
	s.Require().ErrorIs(err, boom)

	got, err := s.store.Get(s.ctx)
	s.Require().NoError(err)
	s.Equal(s.registry, got)
}

func (s *PostgresRegistrySuite) TestUninitializedReads() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "role_registry"))

	_, err := s.store.Get(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
