package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

type entry struct {
	ID        string          `json:"id"`
	TimeStamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

var submitCmd = &cobra.Command{
	Use:   "submit [data]",
	Short: "Queue data on a node to be mined into a block.",
	Args:  cobra.ExactArgs(1),
	RunE:  submitRun,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

func submitRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	e, err := submitData(ctx, url, args[0])
	if err != nil {
		pterm.Error.Println(err)
		return err
	}

	pterm.Success.Printfln("Data queued with id %s at %s", e.ID, e.TimeStamp)
	return nil
}

// submitData places the data in the mempool of the node. Data that is valid
// JSON is sent as is, anything else is sent as a JSON string.
func submitData(ctx context.Context, url string, data string) (entry, error) {
	raw := json.RawMessage(data)
	if !json.Valid(raw) {
		b, err := json.Marshal(data)
		if err != nil {
			return entry{}, err
		}
		raw = b
	}

	body, err := json.Marshal(struct {
		Data json.RawMessage `json:"data"`
	}{
		Data: raw,
	})
	if err != nil {
		return entry{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/v1/mempool", bytes.NewReader(body))
	if err != nil {
		return entry{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return entry{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return entry{}, fmt.Errorf("node returned status %d", resp.StatusCode)
	}

	var e entry
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return entry{}, err
	}

	return e, nil
}
