package api

import (
	"encoding/json"
	"net/http"

	"swapchain/internal/domain"
)

// Minter mints asset balances into accounts. The in-memory bank
// implements it; real asset backends do not expose minting.
type Minter interface {
	Mint(asset domain.AssetID, to domain.Identity, amount uint64) error
}

type faucetRequest struct {
	Asset  string `json:"asset"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

// RegisterFaucet adds POST /faucet backed by the given minter. Only
// wired in in-memory mode, for local development and demos.
func (s *Server) RegisterFaucet(m Minter) {
	s.mux.HandleFunc("POST /faucet", s.instrument("/faucet", func(w http.ResponseWriter, r *http.Request) {
		var req faucetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		asset, err := domain.ParseAssetID(req.Asset)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "asset: "+err.Error())
			return
		}
		to, err := domain.ParseIdentity(req.To)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "to: "+err.Error())
			return
		}
		if req.Amount == 0 {
			s.writeError(w, http.StatusBadRequest, "amount must be positive")
			return
		}

		if err := m.Mint(asset, to, req.Amount); err != nil {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}
