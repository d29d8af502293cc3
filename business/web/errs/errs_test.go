package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestFromChain(t *testing.T) {
	type table struct {
		name   string
		err    error
		status int
	}

	tt := []table{
		{name: "linkage", err: fmt.Errorf("%w: detail", chain.ErrChainLinkage), status: http.StatusConflict},
		{name: "order", err: database.ErrOutOfOrder, status: http.StatusConflict},
		{name: "proof", err: chain.ErrProofInvalid, status: http.StatusBadRequest},
		{name: "header", err: chain.ErrHeaderHashMismatch, status: http.StatusBadRequest},
		{name: "cancel", err: chain.ErrMiningCancelled, status: http.StatusRequestTimeout},
		{name: "missing", err: database.ErrBlockNotFound, status: http.StatusNotFound},
		{name: "empty", err: chain.ErrEmptyChain, status: http.StatusServiceUnavailable},
	}

	t.Log("Given the need to map chain errors to HTTP statuses.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen mapping the %s error.", testID, tst.name)
			{
				f := func(t *testing.T) {
					err := errs.FromChain(tst.err)

					trusted := errs.GetTrusted(err)
					if trusted == nil {
						t.Fatalf("\t%s\tTest %d:\tShould get a trusted error.", failed, testID)
					}
					if trusted.Status != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould get status %d, got %d.", failed, testID, tst.status, trusted.Status)
					}
					t.Logf("\t%s\tTest %d:\tShould get status %d.", success, testID, tst.status)

					if !errors.Is(err, tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould keep the original error.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould keep the original error.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}

		testID := len(tt)
		t.Logf("\tTest %d:\tWhen mapping an unknown error.", testID)
		{
			if errs.IsTrusted(errs.FromChain(errors.New("boom"))) {
				t.Fatalf("\t%s\tTest %d:\tShould not get a trusted error.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould not get a trusted error.", success, testID)
		}
	}
}
