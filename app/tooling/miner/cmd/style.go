package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
)

// resultsTable returns the table data describing each mined block.
func resultsTable(results []chain.MineResult[string]) pterm.TableData {
	data := pterm.TableData{
		{"Seq", "Nonce", "Block Hash", "Proof Hash", "Attempts", "Seconds"},
	}

	for _, mr := range results {
		data = append(data, []string{
			fmt.Sprint(mr.Block.Payload.Sequence),
			fmt.Sprint(mr.Block.Header.Nonce),
			database.ShortHash(mr.Block.Header.BlockHash),
			mr.ShortHash,
			fmt.Sprint(mr.Attempts),
			fmt.Sprintf("%.3f", mr.MineTime),
		})
	}

	return data
}

// blocksTable returns the table data describing each block of a chain.
func blocksTable[T any](blocks []database.Block[T]) pterm.TableData {
	data := pterm.TableData{
		{"Seq", "Time", "Nonce", "Previous", "Block Hash", "Data"},
	}

	for _, b := range blocks {
		prev := database.ShortHash(b.Payload.PreviousHash)
		if prev == "" {
			prev = "-"
		}

		data = append(data, []string{
			fmt.Sprint(b.Payload.Sequence),
			time.UnixMilli(b.Payload.TimeStamp).UTC().Format(time.RFC3339),
			fmt.Sprint(b.Header.Nonce),
			prev,
			database.ShortHash(b.Header.BlockHash),
			dataString(b.Payload.Data),
		})
	}

	return data
}

// chainBox renders the links between blocks.
func chainBox[T any](blocks []database.Block[T]) string {
	links := make([]string, len(blocks))
	for i, b := range blocks {
		links[i] = pterm.LightCyan(fmt.Sprintf("#%d %s", b.Payload.Sequence, database.ShortHash(b.Header.BlockHash)))
	}

	pbox := pterm.DefaultBox.WithLeftPadding(2).WithRightPadding(2).WithTopPadding(1).WithBottomPadding(1)
	return pbox.WithTitle(pterm.LightYellow("|CHAIN|")).WithTitleTopCenter().Sprint(strings.Join(links, " <- "))
}

func dataString(data any) string {
	switch v := data.(type) {
	case json.RawMessage:
		return string(v)
	case string:
		return v
	}
	return fmt.Sprint(data)
}
