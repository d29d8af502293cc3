package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ardanlabs/powledger/foundation/blockchain/chain"
	"github.com/ardanlabs/powledger/foundation/blockchain/digest"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	blocks     int
	difficulty uint
	hasherName string
	workers    int
	dataPrefix string
	strict     bool
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine blocks into a local in memory chain.",
	RunE:  mineRun,
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().IntVarP(&blocks, "blocks", "n", 5, "Number of blocks to mine.")
	mineCmd.Flags().UintVarP(&difficulty, "difficulty", "d", 4, "Number of leading zeros required in the proof hash.")
	mineCmd.Flags().StringVar(&hasherName, "hasher", "sha256", "Hash function to use (sha256, keccak256).")
	mineCmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of goroutines searching for a nonce.")
	mineCmd.Flags().StringVar(&dataPrefix, "data", "Block", "Prefix for the data placed in each block.")
	mineCmd.Flags().BoolVar(&strict, "strict", false, "Require the header hash to match the payload.")
}

func mineRun(cmd *cobra.Command, args []string) error {
	hasher, err := digest.New(hasherName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := startPrinter
	if term.IsTerminal(int(os.Stdout.Fd())) {
		start = startSpinner
	}

	return mineLocal(ctx, start, chain.Config[string]{
		Difficulty:       difficulty,
		GenesisData:      chain.GenesisData,
		Hasher:           hasher,
		Workers:          workers,
		StrictHeaderHash: strict,
	}, blocks, dataPrefix)
}

// reporter shows the outcome of mining a single block.
type reporter interface {
	Success(message ...any)
	Fail(message ...any)
}

// startFunc begins reporting on a block being mined.
type startFunc func(text string) (reporter, error)

// startSpinner animates a spinner while the block is mined. The spinner
// runs its own G, so it is only used on a terminal.
func startSpinner(text string) (reporter, error) {
	spinner, err := pterm.DefaultSpinner.Start(text)
	if err != nil {
		return nil, err
	}

	return spinner, nil
}

// printer reports on a block with plain prefixed lines.
type printer struct{}

func (printer) Success(message ...any) {
	pterm.Success.Println(message...)
}

func (printer) Fail(message ...any) {
	pterm.Error.Println(message...)
}

// startPrinter reports on a block without any background rendering.
func startPrinter(text string) (reporter, error) {
	pterm.Info.Println(text)
	return printer{}, nil
}

// mineLocal mines n blocks into a new chain and renders the results.
func mineLocal(ctx context.Context, start startFunc, cfg chain.Config[string], n int, prefix string) error {
	c, err := chain.New(cfg)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Printfln("Mining %d blocks at difficulty %d using %s", n, c.Difficulty(), c.HasherName())

	var results []chain.MineResult[string]
	for i := 1; i <= n; i++ {
		progress, err := start(fmt.Sprintf("Mining block %d", i))
		if err != nil {
			return err
		}

		mr, err := c.MineNext(ctx, fmt.Sprintf("%s %d", prefix, i))
		if err != nil {
			progress.Fail(fmt.Sprintf("Mining block %d: %s", i, err))
			return err
		}

		progress.Success(fmt.Sprintf("Mined block %d in %.3fs, hash %s (%d attempts)", i, mr.MineTime, mr.ShortHash, mr.Attempts))
		results = append(results, mr)
	}

	pterm.Println()
	if err := pterm.DefaultTable.WithHasHeader().WithData(resultsTable(results)).Render(); err != nil {
		return err
	}

	pterm.Println()
	pterm.Println(chainBox(c.Blocks()))

	if err := c.Audit(); err != nil {
		pterm.Error.Printfln("Chain audit failed: %s", err)
		return err
	}
	pterm.Success.Printfln("Chain of %d blocks passed the audit", c.Len())

	return nil
}
