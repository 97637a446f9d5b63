package main

import (
	"fmt"
	"log"
	"os"

	"github.com/function61/gokit/dynversion"
	"github.com/infraweave-io/lambda-api/pkg/iwconfig"
	"github.com/infraweave-io/lambda-api/pkg/iwdispatch"
	"github.com/spf13/cobra"
)

func main() {
	// the Lambda runtime starts us without arguments
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" && len(os.Args) == 1 {
		lambdaHandler()
		return
	}

	app := &cobra.Command{
		Use:     os.Args[0],
		Short:   "infraweave API: routes events to DynamoDB, S3, ECS, CloudWatch Logs and SNS",
		Version: dynversion.Version,
	}

	app.AddCommand(invokeEntry())

	app.AddCommand(logsEntry())

	app.AddCommand(restApiCliEntry())

	app.AddCommand(&cobra.Command{
		Use:    "lambda",
		Hidden: true,
		Run: func(*cobra.Command, []string) {
			lambdaHandler()
		},
	})

	exitIfError(app.Execute())
}

func newDispatcher(logger *log.Logger) (*iwdispatch.Dispatcher, error) {
	conf, err := iwconfig.FromEnv()
	if err != nil {
		return nil, err
	}

	svc, err := iwdispatch.NewServices(conf)
	if err != nil {
		return nil, err
	}

	return iwdispatch.New(conf, svc, logger), nil
}

func exitIfError(err error) {
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
