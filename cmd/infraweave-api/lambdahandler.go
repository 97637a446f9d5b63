package main

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/function61/gokit/logex"
	"github.com/infraweave-io/lambda-api/pkg/lambdautils"
)

// clients & config are built once per cold start and shared by all invocations
func lambdaHandler() {
	dispatcher, err := newDispatcher(logex.StandardLogger())
	exitIfError(err)

	restApi := newRestApi(dispatcher, logex.StandardLogger())

	handler := func(ctx context.Context, polymorphicEvent interface{}) ([]byte, error) {
		switch event := polymorphicEvent.(type) {
		case lambdautils.DirectInvocation:
			return dispatcher.Invoke(ctx, event)
		case *events.APIGatewayProxyRequest:
			return lambdautils.ServeApiGatewayProxyRequestUsingHttpHandler(
				ctx,
				event,
				restApi)
		default:
			return nil, errors.New("cannot identify type of request")
		}
	}

	lambda.StartHandler(lambdautils.NewMultiEventTypeHandler(handler))
}
