package governance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"caplock/internal/denylist"
	"caplock/internal/governance/models"
	rolesmodels "caplock/internal/roles/models"
	rolesservice "caplock/internal/roles/service"
	rolesstore "caplock/internal/roles/store"
	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
)

var (
	primaryAdmin = domain.MustParseAddress("0x1000000000000000000000000000000000000001")
	mintingAdmin = domain.MustParseAddress("0x1000000000000000000000000000000000000002")
	authority    = domain.MustParseAddress("0x1000000000000000000000000000000000000003")
	newcomer     = domain.MustParseAddress("0x1000000000000000000000000000000000000004")
	initialLogic = domain.MustParseAddress("0x2000000000000000000000000000000000000001")
	nextLogic    = domain.MustParseAddress("0x2000000000000000000000000000000000000002")
)

type GateSuite struct {
	suite.Suite

	ctx   context.Context
	roles *rolesservice.Service
	gate  *Gate
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.ctx = context.Background()
	s.roles = rolesservice.New(rolesstore.NewInMemory(), denylist.NewInMemory())
	s.Require().NoError(s.roles.Init(s.ctx, rolesmodels.Registry{
		PrimaryAdmin:        primaryAdmin,
		MintingAdmin:        mintingAdmin,
		GovernanceAuthority: authority,
	}))
	s.gate = NewGate(s.roles, initialLogic)
}

func (s *GateSuite) TestAuthorizeControlChange() {
	s.Require().NoError(s.gate.AuthorizeControlChange(s.ctx, authority))

	for _, caller := range []domain.Address{primaryAdmin, mintingAdmin, newcomer, domain.ZeroAddress} {
		err := s.gate.AuthorizeControlChange(s.ctx, caller)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	}
}

func (s *GateSuite) TestApplyRoleChanges() {
	s.Run("reassigns the primary admin", func() {
		err := s.gate.Apply(s.ctx, authority, models.Action{
			Kind:   models.KindSetPrimaryAdmin,
			Target: newcomer,
		})
		s.Require().NoError(err)

		registry, rerr := s.roles.Registry(s.ctx)
		s.Require().NoError(rerr)
		s.Equal(newcomer, registry.PrimaryAdmin)
	})

	s.Run("reassigns the minting admin", func() {
		err := s.gate.Apply(s.ctx, authority, models.Action{
			Kind:   models.KindSetMintingAdmin,
			Target: newcomer,
		})
		s.Require().NoError(err)

		registry, rerr := s.roles.Registry(s.ctx)
		s.Require().NoError(rerr)
		s.Equal(newcomer, registry.MintingAdmin)
	})

	s.Run("non-authority callers never reach the registry", func() {
		err := s.gate.Apply(s.ctx, primaryAdmin, models.Action{
			Kind:   models.KindSetPrimaryAdmin,
			Target: primaryAdmin,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown kind is rejected", func() {
		err := s.gate.Apply(s.ctx, authority, models.Action{Kind: "destroy", Target: newcomer})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func (s *GateSuite) TestApplyLogicPointer() {
	s.Equal(initialLogic, s.gate.LogicPointer())

	err := s.gate.Apply(s.ctx, authority, models.Action{
		Kind:   models.KindSetLogicPointer,
		Target: nextLogic,
	})
	s.Require().NoError(err)
	s.Equal(nextLogic, s.gate.LogicPointer())

	s.Run("null pointer is rejected", func() {
		err := s.gate.Apply(s.ctx, authority, models.Action{Kind: models.KindSetLogicPointer})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidAddress))
		s.Equal(nextLogic, s.gate.LogicPointer())
	})

	s.Run("non-authority cannot repoint", func() {
		err := s.gate.Apply(s.ctx, newcomer, models.Action{
			Kind:   models.KindSetLogicPointer,
			Target: initialLogic,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal(nextLogic, s.gate.LogicPointer())
	})
}
