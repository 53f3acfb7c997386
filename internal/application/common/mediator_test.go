package common_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lspgroup/fleetopt-go/internal/application/common"
)

type pingRequest struct{ Message string }

type pingResponse struct{ Echo string }

type pingHandler struct{}

func (h *pingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	req := request.(*pingRequest)
	return &pingResponse{Echo: req.Message}, nil
}

func TestMediator_SendDispatchesByRequestType(t *testing.T) {
	// Arrange
	mediator := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingRequest](mediator, &pingHandler{}))

	// Act
	response, err := mediator.Send(context.Background(), &pingRequest{Message: "hello"})

	// Assert
	require.NoError(t, err)
	resp, ok := response.(*pingResponse)
	require.True(t, ok)
	assert.Equal(t, "hello", resp.Echo)
}

func TestMediator_SendUnregisteredType(t *testing.T) {
	// Arrange
	mediator := common.NewMediator()

	// Act
	_, err := mediator.Send(context.Background(), &pingRequest{})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestMediator_RegisterRejectsDuplicates(t *testing.T) {
	// Arrange
	mediator := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingRequest](mediator, &pingHandler{}))

	// Act
	err := common.RegisterHandler[*pingRequest](mediator, &pingHandler{})

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestMediator_MiddlewaresWrapInRegistrationOrder(t *testing.T) {
	// Arrange
	mediator := common.NewMediator()
	require.NoError(t, common.RegisterHandler[*pingRequest](mediator, &pingHandler{}))

	var order []string
	mediator.Use(func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		order = append(order, "outer-before")
		resp, err := next(ctx, request)
		order = append(order, "outer-after")
		return resp, err
	})
	mediator.Use(func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		order = append(order, "inner-before")
		resp, err := next(ctx, request)
		order = append(order, "inner-after")
		return resp, err
	})

	// Act
	_, err := mediator.Send(context.Background(), &pingRequest{Message: "x"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"outer-before", "inner-before", "inner-after", "outer-after"}, order)
}
