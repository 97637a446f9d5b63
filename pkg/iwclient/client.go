// Client for the dispatcher's REST API (the API Gateway-fronted variant)
package iwclient

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/function61/gokit/ezhttp"
	"github.com/function61/gokit/jsonfile"
	"github.com/infraweave-io/lambda-api/pkg/iwtypes"
	"github.com/pkg/errors"
)

type Client struct {
	baseUrl string
}

func New(baseUrl string) *Client {
	return &Client{baseUrl}
}

// Invoke runs the event remotely. result is the operation's raw JSON result, or for an
// unknown operation the same {statusCode, body} result local dispatch gives.
func (c *Client) Invoke(ctx context.Context, event iwtypes.Event) (json.RawMessage, error) {
	resp, err := ezhttp.Post(
		ctx,
		c.baseUrl+"/api/invoke",
		ezhttp.SendJson(&event),
		ezhttp.TolerateNon2xxResponse)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !isStructuredResult(resp) {
		body, _ := ioutil.ReadAll(resp.Body)

		return nil, errors.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	result := json.RawMessage{}
	if err := jsonfile.Unmarshal(resp.Body, &result, false); err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) Operations(ctx context.Context) ([]iwtypes.Operation, error) {
	resp, err := ezhttp.Get(ctx, c.baseUrl+"/api/operations")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	ops := []iwtypes.Operation{}
	return ops, jsonfile.Unmarshal(resp.Body, &ops, true)
}

// 2xx, or the JSON 400 of an unknown operation (other 400s are plain-text decode errors)
func isStructuredResult(resp *http.Response) bool {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return true
	case resp.StatusCode == http.StatusBadRequest:
		return strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json")
	default:
		return false
	}
}
