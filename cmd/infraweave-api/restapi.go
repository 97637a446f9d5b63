package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/function61/gokit/httputils"
	"github.com/function61/gokit/jsonfile"
	"github.com/function61/gokit/logex"
	"github.com/function61/gokit/ossignal"
	"github.com/function61/gokit/taskrunner"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
	"github.com/spf13/cobra"
)

type eventDispatcher interface {
	Dispatch(ctx context.Context, event iwtypes.Event) (interface{}, error)
}

func newRestApi(dispatcher eventDispatcher, logger *log.Logger) http.Handler {
	logl := logex.Levels(logger)

	mux := httputils.NewMethodMux()

	mux.GET.HandleFunc("/api/operations", func(w http.ResponseWriter, r *http.Request) {
		handleJsonOutput(w, http.StatusOK, iwtypes.Operations)
	})

	mux.POST.HandleFunc("/api/invoke", func(w http.ResponseWriter, r *http.Request) {
		event := iwtypes.Event{}
		if err := jsonfile.Unmarshal(r.Body, &event, false); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		result, err := dispatcher.Dispatch(r.Context(), event)
		if err != nil {
			logl.Error.Printf("%s: %v", event.Event, err)

			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if invalid, is := result.(*iwtypes.InvalidOperation); is {
			handleJsonOutput(w, invalid.StatusCode, invalid)
			return
		}

		handleJsonOutput(w, http.StatusOK, result)
	})

	return mux
}

func handleJsonOutput(w http.ResponseWriter, statusCode int, output interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(output); err != nil {
		panic(err)
	}
}

func restApiCliEntry() *cobra.Command {
	addr := ":8080"

	cmd := &cobra.Command{
		Use:   "restapi",
		Short: "Start REST API (used mainly for dev/testing)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger := logex.StandardLogger()

			exitIfError(runStandaloneRestApi(
				ossignal.InterruptOrTerminateBackgroundCtx(logger),
				addr,
				logger))
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", addr, "Address to listen on")

	return cmd
}

func runStandaloneRestApi(ctx context.Context, addr string, logger *log.Logger) error {
	dispatcher, err := newDispatcher(logex.Prefix("dispatcher", logger))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: newRestApi(dispatcher, logex.Prefix("restapi", logger)),
	}

	tasks := taskrunner.New(ctx, logger)

	tasks.Start("listener "+srv.Addr, func(_ context.Context, _ string) error {
		return httputils.RemoveGracefulServerClosedError(srv.ListenAndServe())
	})

	tasks.Start("listenershutdowner", httputils.ServerShutdownTask(srv))

	return tasks.Wait()
}
