package httptransport

import (
	"encoding/json"
	"fmt"
	"net/http"

	dErrors "caplock/pkg/domain-errors"
	"caplock/pkg/testutil"
)

func (s *HandlerSuite) TestMintEndpoint() {
	s.Run("minting admin mints", func() {
		req := s.authed(http.MethodPost, "/ledger/mint",
			map[string]string{"to": alice.String(), "amount": "250"}, mintingAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(),
			http.MethodGet, "/ledger/balance/"+alice.String()))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[balanceResponse](s.T(), rr)
		s.Equal("250", resp.Balance)
	})

	s.Run("non-minter gets 403 with a stable code", func() {
		req := s.authed(http.MethodPost, "/ledger/mint",
			map[string]string{"to": alice.String(), "amount": "1"}, alice)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeUnauthorized))
	})

	s.Run("malformed address", func() {
		req := s.authed(http.MethodPost, "/ledger/mint",
			map[string]string{"to": "0x123", "amount": "1"}, mintingAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeInvalidAddress))
	})

	s.Run("non-decimal amount", func() {
		req := s.authed(http.MethodPost, "/ledger/mint",
			map[string]string{"to": alice.String(), "amount": "ten"}, mintingAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeBadRequest))
	})

	s.Run("cap violation maps to 422", func() {
		req := s.authed(http.MethodPost, "/ledger/mint",
			map[string]string{"to": alice.String(), "amount": "999999999"}, mintingAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeCapExceeded))
	})
}

func (s *HandlerSuite) TestTransferEndpoint() {
	s.mintTo(alice, 100)

	s.Run("caller identity comes from the token, not the body", func() {
		req := s.authed(http.MethodPost, "/ledger/transfer",
			map[string]string{"to": bob.String(), "amount": "30"}, alice)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(),
			http.MethodGet, "/ledger/balance/"+bob.String()))
		resp := testutil.UnmarshalResponse[balanceResponse](s.T(), rr)
		s.Equal("30", resp.Balance)
	})

	s.Run("insufficient balance maps to 422", func() {
		req := s.authed(http.MethodPost, "/ledger/transfer",
			map[string]string{"to": bob.String(), "amount": "1000"}, alice)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeInsufficientBalance))
	})
}

func (s *HandlerSuite) TestApproveAndTransferFromEndpoints() {
	s.mintTo(alice, 100)

	req := s.authed(http.MethodPost, "/ledger/approve",
		map[string]string{"spender": bob.String(), "amount": "60"}, alice)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	path := fmt.Sprintf("/ledger/allowance/%s/%s", alice, bob)
	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
	allowance := testutil.UnmarshalResponse[allowanceResponse](s.T(), rr)
	s.Equal("60", allowance.Allowance)

	req = s.authed(http.MethodPost, "/ledger/transfer-from",
		map[string]string{"from": alice.String(), "to": bob.String(), "amount": "40"}, bob)
	rr = testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, path))
	allowance = testutil.UnmarshalResponse[allowanceResponse](s.T(), rr)
	s.Equal("20", allowance.Allowance)

	s.Run("over-allowance spend maps to 422", func() {
		req := s.authed(http.MethodPost, "/ledger/transfer-from",
			map[string]string{"from": alice.String(), "to": bob.String(), "amount": "21"}, bob)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeInsufficientAllowance))
	})
}

func (s *HandlerSuite) TestSupplyEndpoint() {
	s.mintTo(alice, 777)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/ledger/supply"))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[supplyResponse](s.T(), rr)
	s.Equal("777", resp.TotalSupply)
	s.Equal("1000000", resp.Cap)
}

func (s *HandlerSuite) TestDenylistEndpoints() {
	s.mintTo(alice, 100)

	s.Run("primary admin blocks an address", func() {
		req := s.authed(http.MethodPost, "/admin/denylist",
			map[string]any{"address": bob.String(), "blocked": true}, primaryAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(),
			http.MethodGet, "/denylist/"+bob.String()))
		var status struct {
			Blocked bool `json:"blocked"`
		}
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &status))
		s.True(status.Blocked)
	})

	s.Run("blocked recipient rejects transfers with 403", func() {
		req := s.authed(http.MethodPost, "/ledger/transfer",
			map[string]string{"to": bob.String(), "amount": "1"}, alice)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeBlacklisted))
	})

	s.Run("non-admin cannot manage the denylist", func() {
		req := s.authed(http.MethodPost, "/admin/denylist",
			map[string]any{"address": bob.String(), "blocked": false}, alice)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
	})
}

func (s *HandlerSuite) TestRolesEndpoint() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/roles"))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[rolesResponse](s.T(), rr)
	s.Equal(primaryAdmin.String(), resp.PrimaryAdmin)
	s.Equal(mintingAdmin.String(), resp.MintingAdmin)
	s.Equal(authority.String(), resp.GovernanceAuthority)
}

func (s *HandlerSuite) TestSetGovernanceAuthorityEndpoint() {
	s.Run("primary admin repoints the gate", func() {
		req := s.authed(http.MethodPost, "/admin/governance-authority",
			map[string]string{"address": bob.String()}, primaryAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("anyone else is rejected", func() {
		req := s.authed(http.MethodPost, "/admin/governance-authority",
			map[string]string{"address": alice.String()}, mintingAdmin)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusForbidden)
		testutil.AssertErrorCode(s.T(), rr, string(dErrors.CodeUnauthorized))
	})
}
