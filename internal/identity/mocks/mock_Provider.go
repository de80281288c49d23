// Package mocks provides test doubles for the identity provider.
package mocks

import (
	"context"

	identity "github.com/Rion4/FedGrid-AIINNOVATION/internal/identity"
	mock "github.com/stretchr/testify/mock"
)

// MockProvider is a mock type for the Provider interface.
type MockProvider struct {
	mock.Mock
}

// SignIn provides a mock function with given fields: ctx, creds
func (_m *MockProvider) SignIn(ctx context.Context, creds identity.Credentials) (*identity.Session, error) {
	ret := _m.Called(ctx, creds)

	if len(ret) == 0 {
		panic("no return value specified for SignIn")
	}

	var r0 *identity.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*identity.Session)
	}
	return r0, ret.Error(1)
}

// SignUp provides a mock function with given fields: ctx, creds
func (_m *MockProvider) SignUp(ctx context.Context, creds identity.Credentials) error {
	ret := _m.Called(ctx, creds)

	if len(ret) == 0 {
		panic("no return value specified for SignUp")
	}
	return ret.Error(0)
}

// SignOut provides a mock function with given fields: ctx, s
func (_m *MockProvider) SignOut(ctx context.Context, s *identity.Session) error {
	ret := _m.Called(ctx, s)

	if len(ret) == 0 {
		panic("no return value specified for SignOut")
	}
	return ret.Error(0)
}

// Verify provides a mock function with given fields: ctx, accessToken
func (_m *MockProvider) Verify(ctx context.Context, accessToken string) (*identity.Session, error) {
	ret := _m.Called(ctx, accessToken)

	if len(ret) == 0 {
		panic("no return value specified for Verify")
	}

	var r0 *identity.Session
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*identity.Session)
	}
	return r0, ret.Error(1)
}

// Role provides a mock function with given fields: ctx, s
func (_m *MockProvider) Role(ctx context.Context, s *identity.Session) (identity.Role, error) {
	ret := _m.Called(ctx, s)

	if len(ret) == 0 {
		panic("no return value specified for Role")
	}

	var r0 identity.Role
	if rf, ok := ret.Get(0).(func(context.Context, *identity.Session) identity.Role); ok {
		r0 = rf(ctx, s)
	} else {
		r0 = ret.Get(0).(identity.Role)
	}
	return r0, ret.Error(1)
}

// Subscribe provides a mock function with given fields: l
func (_m *MockProvider) Subscribe(l identity.Listener) func() {
	ret := _m.Called(l)

	if len(ret) == 0 || ret.Get(0) == nil {
		return func() {}
	}
	return ret.Get(0).(func())
}
