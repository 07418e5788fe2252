package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	govmodels "caplock/internal/governance/models"
	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/domain"
	"caplock/pkg/testutil"
)

func (s *HandlerSuite) schedule(kind string, target domain.Address, offset time.Duration) string {
	req := s.authed(http.MethodPost, "/governance/schedule",
		map[string]string{"kind": kind, "target": target.String()}, primaryAdmin)
	req = testutil.WithTime(req, s.base.Add(offset))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusAccepted)
	resp := testutil.UnmarshalResponse[operationResponse](s.T(), rr)
	return resp.OperationID
}

func (s *HandlerSuite) TestScheduleEndpoint() {
	s.Run("returns the queued operation", func() {
		req := s.authed(http.MethodPost, "/governance/schedule",
			map[string]string{"kind": "set_minting_admin", "target": bob.String()}, primaryAdmin)
		req = testutil.WithTime(req, s.base)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusAccepted)

		resp := testutil.UnmarshalResponse[operationResponse](s.T(), rr)
		s.Equal("set_minting_admin", resp.Kind)
		s.Equal(bob.String(), resp.Target)
		s.Equal("proposed", resp.State)
		s.Equal(s.base.Format(timeLayout), resp.ScheduledAt)
		s.Equal(s.base.Add(10*time.Minute).Format(timeLayout), resp.ReadyAt)
	})

	s.Run("duplicate payload maps to 409", func() {
		req := s.authed(http.MethodPost, "/governance/schedule",
			map[string]string{"kind": "set_minting_admin", "target": bob.String()}, primaryAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeConflict))
	})

	s.Run("non-proposer is rejected", func() {
		req := s.authed(http.MethodPost, "/governance/schedule",
			map[string]string{"kind": "set_primary_admin", "target": bob.String()}, alice)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	})

	s.Run("unknown kind is rejected", func() {
		req := s.authed(http.MethodPost, "/governance/schedule",
			map[string]string{"kind": "shutdown", "target": bob.String()}, primaryAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestExecuteEndpoint() {
	id := s.schedule("set_minting_admin", bob, 0)

	s.Run("before the delay maps to 409", func() {
		req := s.authed(http.MethodPost, "/governance/execute",
			map[string]string{"operation_id": id}, primaryAdmin)
		req = testutil.WithTime(req, s.base.Add(10*time.Minute-time.Second))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeInvalidState))
	})

	s.Run("after the delay the change lands", func() {
		req := s.authed(http.MethodPost, "/governance/execute",
			map[string]string{"operation_id": id}, primaryAdmin)
		req = testutil.WithTime(req, s.base.Add(10*time.Minute))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/roles"))
		roles := testutil.UnmarshalResponse[rolesResponse](s.T(), rr)
		s.Equal(bob.String(), roles.MintingAdmin)
	})

	s.Run("replay maps to 409", func() {
		req := s.authed(http.MethodPost, "/governance/execute",
			map[string]string{"operation_id": id}, primaryAdmin)
		req = testutil.WithTime(req, s.base.Add(time.Hour))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	})

	s.Run("unknown operation maps to 404", func() {
		req := s.authed(http.MethodPost, "/governance/execute",
			map[string]string{"operation_id": govmodels.OperationID{1}.String()}, primaryAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})

	s.Run("malformed id maps to 400", func() {
		req := s.authed(http.MethodPost, "/governance/execute",
			map[string]string{"operation_id": "zzzz"}, primaryAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestCancelEndpoint() {
	id := s.schedule("set_primary_admin", bob, 0)

	req := s.authed(http.MethodPost, "/governance/cancel",
		map[string]string{"operation_id": id}, primaryAdmin)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	s.Run("cancelled operation shows its state", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(),
			http.MethodGet, "/governance/operations/"+id))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		op := testutil.UnmarshalResponse[operationResponse](s.T(), rr)
		s.Equal("cancelled", op.State)
	})

	s.Run("executing a cancelled operation maps to 409", func() {
		req := s.authed(http.MethodPost, "/governance/execute",
			map[string]string{"operation_id": id}, primaryAdmin)
		req = testutil.WithTime(req, s.base.Add(time.Hour))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	})
}

func (s *HandlerSuite) TestLogicPointerEndpoint() {
	target := domain.MustParseAddress("0x2000000000000000000000000000000000000007")
	id := s.schedule("set_logic_pointer", target, 0)

	req := s.authed(http.MethodPost, "/governance/execute",
		map[string]string{"operation_id": id}, primaryAdmin)
	req = testutil.WithTime(req, s.base.Add(10*time.Minute))
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(),
		http.MethodGet, "/governance/logic-pointer"))
	var resp struct {
		LogicPointer string `json:"logic_pointer"`
	}
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &resp))
	s.Equal(target.String(), resp.LogicPointer)
}

func (s *HandlerSuite) TestOperationQuery() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(),
		http.MethodGet, "/governance/operations/"+govmodels.OperationID{2}.String()))
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(),
		http.MethodGet, "/governance/operations/nope"))
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}
