package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/models"
)

type fakeEC2 struct {
	statuses []types.InstanceStatus
	err      error

	describeInput *ec2.DescribeInstanceStatusInput
	modifyInput   *ec2.ModifyInstanceAttributeInput
	startInput    *ec2.StartInstancesInput
}

func (f *fakeEC2) DescribeInstanceStatus(_ context.Context, in *ec2.DescribeInstanceStatusInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error) {
	f.describeInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &ec2.DescribeInstanceStatusOutput{InstanceStatuses: f.statuses}, nil
}

func (f *fakeEC2) ModifyInstanceAttribute(_ context.Context, in *ec2.ModifyInstanceAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error) {
	f.modifyInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &ec2.ModifyInstanceAttributeOutput{}, nil
}

func (f *fakeEC2) StartInstances(_ context.Context, in *ec2.StartInstancesInput, _ ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	f.startInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &ec2.StartInstancesOutput{
		StartingInstances: []types.InstanceStateChange{{InstanceId: aws.String(in.InstanceIds[0])}},
	}, nil
}

func statusOf(name types.InstanceStateName) []types.InstanceStatus {
	return []types.InstanceStatus{{
		InstanceId:    aws.String("i-0abc"),
		InstanceState: &types.InstanceState{Name: name},
	}}
}

func TestInstanceState(t *testing.T) {
	fake := &fakeEC2{statuses: statusOf(types.InstanceStateNameStopped)}
	client := NewEC2ClientFromAPI(fake, "us-west-1")

	state, err := client.InstanceState(context.Background(), "i-0abc")
	require.NoError(t, err)
	assert.Equal(t, models.StateStopped, state)

	require.NotNil(t, fake.describeInput)
	assert.Equal(t, []string{"i-0abc"}, fake.describeInput.InstanceIds)
	assert.True(t, aws.ToBool(fake.describeInput.IncludeAllInstances))
}

func TestInstanceStateErrors(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeEC2
	}{
		{name: "api failure", fake: &fakeEC2{err: errors.New("throttled")}},
		{name: "no statuses", fake: &fakeEC2{}},
		{name: "nil state", fake: &fakeEC2{statuses: []types.InstanceStatus{{InstanceId: aws.String("i-0abc")}}}},
		{name: "unknown state", fake: &fakeEC2{statuses: statusOf("hibernating")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEC2ClientFromAPI(tt.fake, "us-west-1").InstanceState(context.Background(), "i-0abc")
			require.Error(t, err)
			assert.Equal(t, errs.KindAWS, errs.KindOf(err))
		})
	}
}

func TestModifyInstanceType(t *testing.T) {
	fake := &fakeEC2{}
	client := NewEC2ClientFromAPI(fake, "us-west-1")

	require.NoError(t, client.ModifyInstanceType(context.Background(), "i-0abc", "c5.2xlarge"))
	require.NotNil(t, fake.modifyInput)
	assert.Equal(t, "i-0abc", aws.ToString(fake.modifyInput.InstanceId))
	require.NotNil(t, fake.modifyInput.InstanceType)
	assert.Equal(t, "c5.2xlarge", aws.ToString(fake.modifyInput.InstanceType.Value))

	fake.err = errors.New("IncorrectInstanceState")
	err := client.ModifyInstanceType(context.Background(), "i-0abc", "c5.2xlarge")
	assert.Equal(t, errs.KindAWS, errs.KindOf(err))
	assert.Contains(t, err.Error(), "IncorrectInstanceState")
}

func TestStartInstance(t *testing.T) {
	fake := &fakeEC2{}
	client := NewEC2ClientFromAPI(fake, "us-west-1")

	require.NoError(t, client.StartInstance(context.Background(), "i-0abc"))
	assert.Equal(t, []string{"i-0abc"}, fake.startInput.InstanceIds)
	assert.Equal(t, "us-west-1", client.Region())

	fake.err = errors.New("denied")
	assert.Equal(t, errs.KindAWS, errs.KindOf(client.StartInstance(context.Background(), "i-0abc")))
}
