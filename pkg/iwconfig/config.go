// Process-wide configuration, read once from the environment at cold start
package iwconfig

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// Config holds our configuration taken from the environment. Treat as read-only after
// FromEnv() returns.
type Config struct {
	Region               string `envconfig:"REGION"`
	Environment          string `envconfig:"ENVIRONMENT"`
	CentralAccountId     string `envconfig:"CENTRAL_ACCOUNT_ID"`
	CurrentAccountId     string `envconfig:"CURRENT_ACCOUNT_ID"`
	NotificationTopicArn string `envconfig:"NOTIFICATION_TOPIC_ARN"`

	EventsTableName        string `envconfig:"DYNAMODB_EVENTS_TABLE_NAME"`
	ModulesTableName       string `envconfig:"DYNAMODB_MODULES_TABLE_NAME"`
	PoliciesTableName      string `envconfig:"DYNAMODB_POLICIES_TABLE_NAME"`
	DeploymentsTableName   string `envconfig:"DYNAMODB_DEPLOYMENTS_TABLE_NAME"`
	ChangeRecordsTableName string `envconfig:"DYNAMODB_CHANGE_RECORDS_TABLE_NAME"`
	ConfigTableName        string `envconfig:"DYNAMODB_CONFIG_TABLE_NAME"`

	ModulesBucket       string `envconfig:"MODULE_S3_BUCKET"`
	PoliciesBucket      string `envconfig:"POLICY_S3_BUCKET"`
	ChangeRecordsBucket string `envconfig:"CHANGE_RECORD_S3_BUCKET"`
	ProvidersBucket     string `envconfig:"PROVIDERS_S3_BUCKET"`

	EcsClusterName    string `envconfig:"ECS_CLUSTER_NAME"`
	EcsTaskDefinition string `envconfig:"ECS_TASK_DEFINITION"`
	SubnetId          string `envconfig:"SUBNET_ID"`
	SecurityGroupId   string `envconfig:"SECURITY_GROUP_ID"`

	tables  map[string]string
	buckets map[string]string
}

// FromEnv will attempt to fill configuration from the process environment
func FromEnv() (*Config, error) {
	conf := &Config{}
	if err := envconfig.Process("", conf); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if conf.Region == "" {
		conf.Region = os.Getenv("AWS_REGION") // always set by the Lambda runtime
	}

	return New(*conf), nil
}

// New builds the logical => physical name mappings. FromEnv() calls this for you.
func New(conf Config) *Config {
	c := &conf

	c.tables = map[string]string{
		"events":         c.EventsTableName,
		"modules":        c.ModulesTableName,
		"policies":       c.PoliciesTableName,
		"deployments":    c.DeploymentsTableName,
		"change_records": c.ChangeRecordsTableName,
		"config":         c.ConfigTableName,
	}

	c.buckets = map[string]string{
		"modules":        c.ModulesBucket,
		"policies":       c.PoliciesBucket,
		"change_records": c.ChangeRecordsBucket,
		"providers":      c.ProvidersBucket,
	}

	return c
}

// ResolveTable maps a logical table name ("modules") to the physical DynamoDB table name
func (c *Config) ResolveTable(logical string) (string, error) {
	return resolve("table", c.tables, logical)
}

// ResolveBucket maps a logical bucket name ("providers") to the physical S3 bucket name
func (c *Config) ResolveBucket(logical string) (string, error) {
	return resolve("bucket", c.buckets, logical)
}

func resolve(kind string, names map[string]string, logical string) (string, error) {
	physical, found := names[logical]
	if !found {
		return "", errors.Errorf("unknown %s: '%s'", kind, logical)
	}

	if physical == "" {
		return "", errors.Errorf("%s '%s' not configured", kind, logical)
	}

	return physical, nil
}

// ReadLogRoleArn is the role the central API assumes in a project account to read runner logs
func (c *Config) ReadLogRoleArn(projectId string) string {
	return "arn:aws:iam::" + projectId + ":role/infraweave_api_read_log-" + c.Region + "-" + c.Environment
}

func (c *Config) RunnerLogGroup() string {
	return "/infraweave/" + c.Region + "/" + c.Environment + "/runner"
}

func RunnerLogStream(jobId string) string {
	return "ecs/runner/" + jobId
}
