package public

import (
	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
)

// dataRequest is the data to be placed into the next block.
type dataRequest struct {
	Data state.Data `json:"data" validate:"required"`
}

// Validate checks the request is complete.
func (dr dataRequest) Validate() error {
	return validate.Check(dr)
}

// entry is the response for data placed in the mempool.
type entry struct {
	ID        string     `json:"id"`
	TimeStamp string     `json:"timestamp"`
	Data      state.Data `json:"data"`
}
