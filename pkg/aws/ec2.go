package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/models"
)

// EC2API is the subset of the EC2 service client used to resize and start an instance
type EC2API interface {
	DescribeInstanceStatus(ctx context.Context, params *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error)
	ModifyInstanceAttribute(ctx context.Context, params *ec2.ModifyInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
}

// EC2Client struct for EC2 client
type EC2Client struct {
	client EC2API
	region string
}

// NewEC2Client creates a new EC2Client from the default credential chain.
// An empty profile uses the chain's default profile.
func NewEC2Client(ctx context.Context, region, profile string) (*EC2Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errs.Errorf(errs.KindAWS, "aws.NewEC2Client", "error loading AWS config: %w", err)
	}

	return NewEC2ClientFromAPI(ec2.NewFromConfig(cfg), region), nil
}

// NewEC2ClientFromAPI wraps an existing EC2 API implementation
func NewEC2ClientFromAPI(api EC2API, region string) *EC2Client {
	return &EC2Client{client: api, region: region}
}

// Region returns the region the client talks to
func (c *EC2Client) Region() string {
	return c.region
}

// InstanceState returns the current lifecycle state of an instance.
// Stopped instances are included, which DescribeInstanceStatus omits by default.
func (c *EC2Client) InstanceState(ctx context.Context, instanceID string) (models.InstanceState, error) {
	const op = "aws.InstanceState"

	out, err := c.client.DescribeInstanceStatus(ctx, &ec2.DescribeInstanceStatusInput{
		InstanceIds:         []string{instanceID},
		IncludeAllInstances: aws.Bool(true),
	})
	if err != nil {
		return "", errs.Errorf(errs.KindAWS, op, "error querying status of %s: %w", instanceID, err)
	}

	if len(out.InstanceStatuses) == 0 {
		return "", errs.Errorf(errs.KindAWS, op, "no status returned for instance %s in %s", instanceID, c.region)
	}

	status := out.InstanceStatuses[0]
	if status.InstanceState == nil {
		return "", errs.Errorf(errs.KindAWS, op, "instance %s has no state", instanceID)
	}

	state, err := models.ParseInstanceState(string(status.InstanceState.Name))
	if err != nil {
		return "", errs.E(errs.KindAWS, op, err)
	}
	return state, nil
}

// ModifyInstanceType changes the type of a stopped instance
func (c *EC2Client) ModifyInstanceType(ctx context.Context, instanceID, instanceType string) error {
	_, err := c.client.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId:   aws.String(instanceID),
		InstanceType: &types.AttributeValue{Value: aws.String(instanceType)},
	})
	if err != nil {
		return errs.Errorf(errs.KindAWS, "aws.ModifyInstanceType", "could not resize %s to %s: %w", instanceID, instanceType, err)
	}
	return nil
}

// StartInstance starts a stopped instance
func (c *EC2Client) StartInstance(ctx context.Context, instanceID string) error {
	out, err := c.client.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return errs.Errorf(errs.KindAWS, "aws.StartInstance", "could not start %s: %w", instanceID, err)
	}
	if len(out.StartingInstances) == 0 {
		return errs.E(errs.KindAWS, "aws.StartInstance", fmt.Errorf("instance %s was not started", instanceID))
	}
	return nil
}
