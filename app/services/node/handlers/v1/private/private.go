// Package private maintains the group of handlers for miner to node access.
package private

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of block submission endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// MinePayload performs the proof of work for a payload built by the caller
// and returns the mined block without appending it.
func (h Handlers) MinePayload(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req payload
	if err := web.Decode(r, &req); err != nil {
		return errs.FromDecode(err)
	}

	mr, err := h.State.MinePayload(ctx, req.toPayload())
	if err != nil {
		return errs.FromChain(err)
	}

	return web.Respond(ctx, w, mr, http.StatusOK)
}

// VerifyBlock checks a block against the current tip without appending it.
func (h Handlers) VerifyBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req block
	if err := web.Decode(r, &req); err != nil {
		return errs.FromDecode(err)
	}

	resp := verification{
		Valid: true,
	}

	if err := h.State.ValidateBlock(req.toBlock()); err != nil {
		resp = verification{
			Valid: false,
			Kind:  kind(err),
			Error: err.Error(),
		}
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SubmitBlock validates a block mined elsewhere and if that passes, appends
// it to the chain.
func (h Handlers) SubmitBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req block
	if err := web.Decode(r, &req); err != nil {
		return errs.FromDecode(err)
	}

	blk := req.toBlock()

	h.Log.Infow("submit block", "traceid", v.TraceID, "sequence", blk.Payload.Sequence, "hash", database.ShortHash(blk.Header.BlockHash), "nonce", blk.Header.Nonce)

	if err := h.State.SubmitBlock(blk); err != nil {
		metrics.AddRejected(ctx)
		return errs.FromChain(err)
	}
	metrics.AddMined(ctx)

	return web.Respond(ctx, w, blk, http.StatusCreated)
}

// =============================================================================

// kind names the failure mode of a validation error.
func kind(err error) string {
	switch {
	case errors.Is(err, chain.ErrChainLinkage):
		return "linkage"
	case errors.Is(err, database.ErrOutOfOrder):
		return "sequence"
	case errors.Is(err, chain.ErrProofInvalid):
		return "proof"
	case errors.Is(err, chain.ErrHeaderHashMismatch):
		return "header_hash"
	case errors.Is(err, chain.ErrEmptyChain):
		return "empty_chain"
	}

	return "unknown"
}
