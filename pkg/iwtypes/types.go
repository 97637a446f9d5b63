// Wire shapes of the infraweave API: invocation events, per-operation payloads and the
// results we hand back to callers
package iwtypes

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Operation string

const (
	OpInsertDb             Operation = "insert_db"
	OpTransactWrite        Operation = "transact_write"
	OpUploadFileBase64     Operation = "upload_file_base64"
	OpUploadFileUrl        Operation = "upload_file_url"
	OpReadDb               Operation = "read_db"
	OpStartRunner          Operation = "start_runner"
	OpReadLogs             Operation = "read_logs"
	OpGeneratePresignedUrl Operation = "generate_presigned_url"
	OpPublishNotification  Operation = "publish_notification"
)

// in the order they're documented
var Operations = []Operation{
	OpInsertDb,
	OpTransactWrite,
	OpUploadFileBase64,
	OpUploadFileUrl,
	OpReadDb,
	OpStartRunner,
	OpReadLogs,
	OpGeneratePresignedUrl,
	OpPublishNotification,
}

func (o Operation) Valid() bool {
	for _, op := range Operations {
		if op == o {
			return true
		}
	}

	return false
}

// Event is what the callers send us. "table" and "items" live at top level for historical
// reasons (that's where the CLI & the runner put them).
type Event struct {
	Event Operation       `json:"event"`
	Table string          `json:"table,omitempty"`
	Items json.RawMessage `json:"items,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewEvent(op Operation, data interface{}) (*Event, error) {
	dataJson, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		Event: op,
		Data:  dataJson,
	}, nil
}

// ------ payloads

type InsertDbPayload struct {
	Table string          `json:"table"`
	Data  json.RawMessage `json:"data"`
}

type TransactWritePayload struct {
	Items json.RawMessage `json:"items"`
}

// exactly one of Put or Delete
type TransactItem struct {
	Put    *TransactPut    `json:"Put,omitempty"`
	Delete *TransactDelete `json:"Delete,omitempty"`
}

type TransactPut struct {
	TableName string          `json:"TableName"` // logical name
	Item      json.RawMessage `json:"Item"`
}

type TransactDelete struct {
	TableName string          `json:"TableName"` // logical name
	Key       json.RawMessage `json:"Key"`
}

type ReadDbPayload struct {
	Table string    `json:"table"`
	Query QuerySpec `json:"query"`
}

// QuerySpec is forwarded as-is to DynamoDB Query. Values are in plain JSON (not in
// typed-attribute form).
type QuerySpec struct {
	KeyConditionExpression    *string            `json:"KeyConditionExpression,omitempty"`
	FilterExpression          *string            `json:"FilterExpression,omitempty"`
	ProjectionExpression      *string            `json:"ProjectionExpression,omitempty"`
	ExpressionAttributeNames  map[string]*string `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues json.RawMessage    `json:"ExpressionAttributeValues,omitempty"`
	ExclusiveStartKey         json.RawMessage    `json:"ExclusiveStartKey,omitempty"`
	IndexName                 *string            `json:"IndexName,omitempty"`
	Limit                     *int64             `json:"Limit,omitempty"`
	ScanIndexForward          *bool              `json:"ScanIndexForward,omitempty"`
	ConsistentRead            *bool              `json:"ConsistentRead,omitempty"`
	Select                    *string            `json:"Select,omitempty"`
}

type ReadLogsPayload struct {
	JobId     string `json:"job_id"`
	ProjectId string `json:"project_id"`
}

type UploadFileBase64Payload struct {
	BucketName    string `json:"bucket_name"`
	Key           string `json:"key"`
	Base64Content string `json:"base64_content"`
}

type UploadFileUrlPayload struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
	Url        string `json:"url"`
}

type GeneratePresignedUrlPayload struct {
	BucketName string `json:"bucket_name"`
	Key        string `json:"key"`
	ExpiresIn  int64  `json:"expires_in"` // seconds
}

type PublishNotificationPayload struct {
	Message json.RawMessage `json:"message"`
	Subject *string         `json:"subject"`
}

// ------ results

type InvalidOperation struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

func NewInvalidOperation(op Operation) *InvalidOperation {
	// body is JSON-encoded string, callers have always unwrapped it that way
	body, _ := json.Marshal(fmt.Sprintf("Invalid event type (%s)", op))

	return &InvalidOperation{
		StatusCode: http.StatusBadRequest,
		Body:       string(body),
	}
}

type QueryResult struct {
	Items            []map[string]interface{} `json:"Items"`
	Count            int64                    `json:"Count"`
	ScannedCount     int64                    `json:"ScannedCount"`
	LastEvaluatedKey map[string]interface{}   `json:"LastEvaluatedKey,omitempty"`
}

// field names as in CloudWatch Logs API
type LogEvents struct {
	Events            []LogEvent `json:"events"`
	NextForwardToken  string     `json:"nextForwardToken"`
	NextBackwardToken string     `json:"nextBackwardToken"`
}

type LogEvent struct {
	Timestamp     int64  `json:"timestamp"` // ms since epoch
	Message       string `json:"message"`
	IngestionTime int64  `json:"ingestionTime"`
}

type UploadFileUrlResult struct {
	ObjectAlreadyExists bool `json:"object_already_exists"`
}

type PresignedUrl struct {
	Url string `json:"url"`
}

type RunnerStarted struct {
	JobId string `json:"job_id"`
}
