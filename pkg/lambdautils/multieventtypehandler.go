package lambdautils

// Same Lambda function is invoked directly (SDK Invoke() with our own event format) and
// by API Gateway. Lambda doesn't tell us which one it is, so we have to sniff.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// DirectInvocation is the raw payload of an invocation that did not come via API Gateway
type DirectInvocation json.RawMessage

type multiEventTypeHandlerFn func(ctx context.Context, polymorphicEvent interface{}) ([]byte, error)

type multiEventTypeHandler struct {
	fn multiEventTypeHandlerFn
}

func NewMultiEventTypeHandler(fn multiEventTypeHandlerFn) lambda.Handler {
	return &multiEventTypeHandler{fn}
}

func (m *multiEventTypeHandler) Invoke(ctx context.Context, reqRaw []byte) ([]byte, error) {
	polymorphicEvent, err := identifyAndUnmarshal(reqRaw)
	if err != nil {
		return nil, err
	}

	return m.fn(ctx, polymorphicEvent)
}

// just enough fields to determine what type of trigger this is
type eventTypeProbe struct {
	HttpMethod string `json:"httpMethod"` // APIGatewayProxyRequest
}

func identifyAndUnmarshal(reqRaw []byte) (interface{}, error) {
	probe := &eventTypeProbe{}
	if err := json.Unmarshal(reqRaw, probe); err != nil {
		return nil, fmt.Errorf("event type probe: %v", err)
	}

	if probe.HttpMethod == "" {
		return DirectInvocation(reqRaw), nil
	}

	proxyRequest := &events.APIGatewayProxyRequest{}
	if err := json.Unmarshal(reqRaw, proxyRequest); err != nil {
		return nil, fmt.Errorf("request unmarshal: %v", err)
	}

	return proxyRequest, nil
}
