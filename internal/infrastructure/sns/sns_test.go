package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-push-inbox/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSNS struct{ mock.Mock }

func (m *mockSNS) CreatePlatformEndpoint(ctx context.Context, in *sns.CreatePlatformEndpointInput, _ ...func(*sns.Options)) (*sns.CreatePlatformEndpointOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*sns.CreatePlatformEndpointOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSNS) SetEndpointAttributes(ctx context.Context, in *sns.SetEndpointAttributesInput, _ ...func(*sns.Options)) (*sns.SetEndpointAttributesOutput, error) {
	args := m.Called(ctx, in)
	return &sns.SetEndpointAttributesOutput{}, args.Error(0)
}

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	return &sns.PublishOutput{}, args.Error(0)
}

const appARN = "arn:aws:sns:us-east-1:123:app/GCM/inbox"

func TestRegister_CreatesEndpoint(t *testing.T) {
	c := &mockSNS{}
	c.On("CreatePlatformEndpoint", mock.Anything, mock.MatchedBy(func(in *sns.CreatePlatformEndpointInput) bool {
		return *in.PlatformApplicationArn == appARN && *in.Token == "tok"
	})).Return(&sns.CreatePlatformEndpointOutput{EndpointArn: aws.String("arn:endpoint")}, nil)

	arn, err := NewRegistrar(c, appARN).Register(context.Background(), "tok", "")
	require.NoError(t, err)
	assert.Equal(t, "arn:endpoint", arn)
	c.AssertNotCalled(t, "SetEndpointAttributes", mock.Anything, mock.Anything)
}

func TestRegister_ReusesExistingEndpoint(t *testing.T) {
	c := &mockSNS{}
	c.On("SetEndpointAttributes", mock.Anything, mock.MatchedBy(func(in *sns.SetEndpointAttributesInput) bool {
		return in.Attributes["Token"] == "tok" && in.Attributes["Enabled"] == "true"
	})).Return(nil)

	arn, err := NewRegistrar(c, appARN).Register(context.Background(), "tok", "arn:old")
	require.NoError(t, err)
	assert.Equal(t, "arn:old", arn)
	c.AssertNotCalled(t, "CreatePlatformEndpoint", mock.Anything, mock.Anything)
}

func TestRegister_RecreatesDeletedEndpoint(t *testing.T) {
	c := &mockSNS{}
	c.On("SetEndpointAttributes", mock.Anything, mock.Anything).Return(&types.NotFoundException{})
	c.On("CreatePlatformEndpoint", mock.Anything, mock.Anything).
		Return(&sns.CreatePlatformEndpointOutput{EndpointArn: aws.String("arn:new")}, nil)

	arn, err := NewRegistrar(c, appARN).Register(context.Background(), "tok", "arn:old")
	require.NoError(t, err)
	assert.Equal(t, "arn:new", arn)
}

func TestRegister_UpdateFailureSurfaces(t *testing.T) {
	c := &mockSNS{}
	boom := errors.New("throttled")
	c.On("SetEndpointAttributes", mock.Anything, mock.Anything).Return(boom)

	_, err := NewRegistrar(c, appARN).Register(context.Background(), "tok", "arn:old")
	assert.ErrorIs(t, err, boom)
}

func TestSMSSink_Show(t *testing.T) {
	c := &mockSNS{}
	c.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return *in.PhoneNumber == "+15550100" && *in.Message == "Hello: world"
	})).Return(nil)

	err := NewSMSSink(c, "+15550100").Show(context.Background(), domain.Channel{ID: "default_channel"},
		domain.DisplayRequest{Title: "Hello", Body: "world"})
	require.NoError(t, err)
	c.AssertExpectations(t)
}
