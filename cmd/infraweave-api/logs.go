package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/function61/gokit/ossignal"
	"github.com/function61/gokit/stringutils"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
	"github.com/scylladb/termtables"
	"github.com/spf13/cobra"
)

func logsEntry() *cobra.Command {
	return &cobra.Command{
		Use:   "logs [projectId] [jobId]",
		Short: "Show output of a runner job",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			exitIfError(logsShow(
				ossignal.InterruptOrTerminateBackgroundCtx(nil),
				args[0],
				args[1]))
		},
	}
}

func logsShow(ctx context.Context, projectId string, jobId string) error {
	dispatcher, err := newDispatcher(nil)
	if err != nil {
		return err
	}

	event, err := iwtypes.NewEvent(iwtypes.OpReadLogs, iwtypes.ReadLogsPayload{
		JobId:     jobId,
		ProjectId: projectId,
	})
	if err != nil {
		return err
	}

	result, err := dispatcher.Dispatch(ctx, *event)
	if err != nil {
		return err
	}

	logEvents, ok := result.(*iwtypes.LogEvents)
	if !ok {
		return fmt.Errorf("unexpected result type %T", result)
	}

	fmt.Println(renderLogEvents(logEvents))

	return nil
}

func renderLogEvents(logEvents *iwtypes.LogEvents) string {
	view := termtables.CreateTable()
	view.AddHeaders("Time", "Message")

	for _, logEvent := range logEvents.Events {
		view.AddRow(
			time.Unix(0, logEvent.Timestamp*int64(time.Millisecond)).UTC().Format(time.RFC3339),
			stringutils.Truncate(removeLinebreaks(logEvent.Message), 120))
	}

	return view.Render()
}

func removeLinebreaks(input string) string {
	return strings.Replace(strings.TrimRight(input, "\n"), "\n", " ", -1)
}
