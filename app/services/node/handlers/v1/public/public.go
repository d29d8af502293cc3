// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/sys/metrics"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Status returns a summary of the chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	status, err := h.State.RetrieveStatus()
	if err != nil {
		return errs.FromChain(err)
	}

	return web.Respond(ctx, w, status, http.StatusOK)
}

// Chain returns the blocks from genesis to the tip. The optional from and
// to query parameters limit the response to an inclusive sequence range.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	qFrom := r.URL.Query().Get("from")
	qTo := r.URL.Query().Get("to")

	if qFrom == "" && qTo == "" {
		return web.Respond(ctx, w, h.State.RetrieveBlocks(), http.StatusOK)
	}

	var from uint64
	if qFrom != "" {
		var err error
		if from, err = strconv.ParseUint(qFrom, 10, 64); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	to := uint64(math.MaxUint64)
	if qTo != "" && qTo != "latest" {
		var err error
		if to, err = strconv.ParseUint(qTo, 10, 64); err != nil {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
	}

	if from > to {
		return errs.NewTrusted(errors.New("from greater than to"), http.StatusBadRequest)
	}

	blocks := h.State.RetrieveBlocksByRange(from, to)
	if blocks == nil {
		blocks = []state.Block{}
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// Tip returns the most recent block.
func (h Handlers) Tip(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	tip, err := h.State.RetrieveTip()
	if err != nil {
		return errs.FromChain(err)
	}

	return web.Respond(ctx, w, tip, http.StatusOK)
}

// BlockBySequence returns the block at the specified sequence.
func (h Handlers) BlockBySequence(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	seq, err := strconv.ParseUint(web.Param(r, "seq"), 10, 64)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	block, err := h.State.RetrieveBlock(seq)
	if err != nil {
		return errs.FromChain(err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// Audit checks the entire chain.
func (h Handlers) Audit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
	}{
		Valid: true,
	}

	if err := h.State.Audit(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ConstructPayload returns the payload for the next block without changing
// the chain.
func (h Handlers) ConstructPayload(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req dataRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.FromDecode(err)
	}

	payload, err := h.State.ConstructPayload(req.Data)
	if err != nil {
		return errs.FromChain(err)
	}

	return web.Respond(ctx, w, payload, http.StatusOK)
}

// Mine mines the data into the next block and appends it. The request
// blocks until the block is mined or the mining timeout is reached.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req dataRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.FromDecode(err)
	}

	mr, err := h.State.MineData(ctx, req.Data)
	if err != nil {
		metrics.AddRejected(ctx)
		return errs.FromChain(err)
	}
	metrics.AddMined(ctx)

	h.Log.Infow("mined block", "traceid", v.TraceID, "sequence", mr.Block.Payload.Sequence, "hash", mr.ShortHash, "attempts", mr.Attempts, "mine_time", mr.MineTime)

	return web.Respond(ctx, w, mr, http.StatusCreated)
}

// SubmitData places the data in the mempool for the mining worker.
func (h Handlers) SubmitData(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req dataRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.FromDecode(err)
	}

	e := h.State.SubmitData(req.Data)

	resp := entry{
		ID:        e.ID,
		TimeStamp: e.TimeStamp.Format(time.RFC3339Nano),
		Data:      e.Data,
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Mempool returns the data waiting to be mined.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	mp := h.State.RetrieveMempool()

	entries := make([]entry, len(mp))
	for i, e := range mp {
		entries[i] = entry{
			ID:        e.ID,
			TimeStamp: e.TimeStamp.Format(time.RFC3339Nano),
			Data:      e.Data,
		}
	}

	return web.Respond(ctx, w, entries, http.StatusOK)
}

// SignalMining signals to start a mining operation for the pending data.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.SignalMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// CancelMining signals the worker to stop the current mining operation.
func (h Handlers) CancelMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.CancelMining()

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "mining cancel signalled",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
