package rpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/credvault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusMapping_RoundTrip(t *testing.T) {
	cases := []struct {
		in   error
		code codes.Code
		want error
	}{
		{common.ErrorNotFound, codes.NotFound, common.ErrorNotFound},
		{common.ErrTokenExpired, codes.Unauthenticated, common.ErrTokenExpired},
		{common.ErrInvalidToken, codes.Unauthenticated, common.ErrorUnauthorized},
		{common.ErrorUnauthorized, codes.Unauthenticated, common.ErrorUnauthorized},
		{common.ErrorValidation, codes.InvalidArgument, common.ErrorValidation},
		{context.DeadlineExceeded, codes.DeadlineExceeded, context.DeadlineExceeded},
		{errors.New("pq: relation does not exist"), codes.Internal, common.ErrorInternal},
	}
	for _, c := range cases {
		st := ToStatus(c.in)
		assert.Equal(t, c.code, status.Code(st), c.in.Error())
		assert.ErrorIs(t, FromStatus(st), c.want, c.in.Error())
	}
}

func TestToStatus_HidesInternalDetails(t *testing.T) {
	st := ToStatus(errors.New("db error: password authentication failed for user admin"))
	assert.NotContains(t, status.Convert(st).Message(), "admin")
}

func TestToStatus_PassesStatusThrough(t *testing.T) {
	in := status.Error(codes.Unavailable, "down")
	require.Equal(t, in, ToStatus(in))
	assert.Equal(t, in, FromStatus(in))
}

func TestNil(t *testing.T) {
	assert.NoError(t, ToStatus(nil))
	assert.NoError(t, FromStatus(nil))
}
