package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/function61/gokit/jsonfile"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/infraweave-io/lambda-api/pkg/iwclient"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
	"github.com/spf13/cobra"
)

func invokeEntry() *cobra.Command {
	remote := ""

	cmd := &cobra.Command{
		Use:   "invoke [eventFile]",
		Short: "Dispatch an event from a JSON file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(invoke(
				ossignal.InterruptOrTerminateBackgroundCtx(nil),
				args[0],
				remote,
				os.Stdout))
		},
	}

	cmd.Flags().StringVarP(&remote, "remote", "r", remote, "Send to a deployed REST API (base URL) instead of calling AWS directly")

	return cmd
}

func invoke(ctx context.Context, eventFile string, remote string, output io.Writer) error {
	event, err := readEvent(eventFile)
	if err != nil {
		return err
	}

	var result interface{}

	if remote != "" {
		result, err = iwclient.New(remote).Invoke(ctx, *event)
	} else {
		result, err = dispatchLocally(ctx, *event)
	}
	if err != nil {
		return err
	}

	asJson, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(output, string(asJson))
	return err
}

func dispatchLocally(ctx context.Context, event iwtypes.Event) (interface{}, error) {
	dispatcher, err := newDispatcher(logex.StandardLogger())
	if err != nil {
		return nil, err
	}

	return dispatcher.Dispatch(ctx, event)
}

func readEvent(eventFile string) (*iwtypes.Event, error) {
	input := io.Reader(os.Stdin)

	if eventFile != "-" {
		file, err := os.Open(eventFile)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		input = file
	}

	event := &iwtypes.Event{}
	if err := jsonfile.Unmarshal(input, event, true); err != nil {
		return nil, fmt.Errorf("%s: %v", eventFile, err)
	}

	return event, nil
}
