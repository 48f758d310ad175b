package cmd

import (
	"fmt"
	"io"

	"github.com/Mohsinsiddi/heroicdash/internal/contract"
	"github.com/Mohsinsiddi/heroicdash/internal/ui"
	"github.com/goccy/go-json"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// emit prints v as JSON under --json, otherwise calls render.
func emit(w io.Writer, v any, render func() string) error {
	if jsonOut {
		return printJSON(w, v)
	}
	fmt.Fprintln(w, render())
	return nil
}

type receiptOutput struct {
	Action string `json:"action"`
	contract.Receipt
	Error string `json:"error,omitempty"`
}

// printReceipt reports a write. Simulated writes are flagged, and a failure
// that was not simulated is returned as an error.
func printReceipt(w io.Writer, action string, r contract.Receipt) error {
	out := receiptOutput{Action: action, Receipt: r}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}

	if jsonOut {
		if err := printJSON(w, out); err != nil {
			return err
		}
	} else {
		switch {
		case r.Simulated:
			fmt.Fprintln(w, ui.Warn(action+" simulated (demo mode)"))
			if r.Err != nil {
				fmt.Fprintln(w, ui.Meta("  reason: "+r.Err.Error()))
			}
		case r.Status == 1:
			fmt.Fprintln(w, ui.Success(action+" confirmed"))
			fmt.Fprintln(w, ui.KeyValueBlock("", [][2]string{
				{"Tx hash", ui.Addr(r.TxHash)},
				{"Block", ui.Val(fmt.Sprint(r.BlockNumber))},
			}))
		}
	}

	if r.Status != 1 && !r.Simulated {
		if r.Err != nil {
			return fmt.Errorf("%s failed: %w", action, r.Err)
		}
		return fmt.Errorf("%s failed", action)
	}
	return nil
}
