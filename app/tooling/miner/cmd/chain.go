package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the chain held by a node.",
	RunE:  chainRun,
}

func init() {
	rootCmd.AddCommand(chainCmd)
	chainCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

func chainRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	blocks, err := fetchChain(ctx, url)
	if err != nil {
		return err
	}

	pterm.DefaultSection.Printfln("Chain at %s", url)
	if err := pterm.DefaultTable.WithHasHeader().WithData(blocksTable(blocks)).Render(); err != nil {
		return err
	}

	return nil
}

// fetchChain retrieves the blocks held by the node at the specified url.
func fetchChain(ctx context.Context, url string) ([]database.Block[json.RawMessage], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/v1/chain", nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("node returned status %d", resp.StatusCode)
	}

	var blocks []database.Block[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}
