package tests

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"perfscope/internal/domain"
	"perfscope/internal/mocks"
	"perfscope/internal/ports"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in, want, host string
		wantErr        bool
	}{
		{in: "example.com", want: "https://example.com/", host: "example.com"},
		{in: "https://Example.COM/path?q=1", want: "https://example.com/path?q=1", host: "example.com"},
		{in: "http://example.com:8080", want: "http://example.com:8080/", host: "example.com"},
		{in: "www.shop.co.uk/cart", want: "https://www.shop.co.uk/cart", host: "www.shop.co.uk"},
		{in: "http://", wantErr: true},
		{in: "httpx://example.com", wantErr: true},
		{in: "https://exa mple.com", wantErr: true},
		{in: "HTTP://Example.com", want: "http://example.com/", host: "example.com"},
		{in: "Https://example.com/a", want: "https://example.com/a", host: "example.com"},
		{in: "example.com/go?to=http://other.org", want: "https://example.com/go?to=http://other.org", host: "example.com"},
		{in: "ftp://example.com", wantErr: true},
		{in: "javascript://example.com", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, host, err := NormalizeURL(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.host, host)
		})
	}
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example.com", RegistrableDomain("www.Example.com"))
	assert.Equal(t, "shop.co.uk", RegistrableDomain("www.shop.co.uk"))
	assert.Equal(t, "localhost", RegistrableDomain("localhost"))
	assert.Equal(t, "127.0.0.1", RegistrableDomain("127.0.0.1"))
}

func TestSubmit_StoresPendingTest(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	wake := mocks.NewMockWakeupPublisher(ctrl)
	svc := New(repo, "pagespeed", wake, quietLogger())

	var stored *domain.Test
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, tt *domain.Test) error {
		stored = tt
		return nil
	})
	wake.EXPECT().Publish(gomock.Any()).Return(nil)

	user := "u-1"
	got, err := svc.Submit(context.Background(), ports.SubmitRequest{URL: " www.example.com/page ", Strategy: "Desktop", UserID: &user})
	require.NoError(t, err)
	require.Same(t, stored, got)

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "https://www.example.com/page", got.URL)
	assert.Equal(t, "example.com", got.Domain)
	assert.Equal(t, domain.StrategyDesktop, got.Strategy)
	assert.Equal(t, "pagespeed", got.Provider)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, &user, got.UserID)
	assert.Nil(t, got.Results)
	assert.Nil(t, got.Error)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSubmit_ValidationErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := New(mocks.NewMockTestRepository(ctrl), "pagespeed", nil, quietLogger())

	cases := map[string]struct {
		req  ports.SubmitRequest
		want string
	}{
		"missing url":  {ports.SubmitRequest{URL: "  "}, "URL is required"},
		"bad url":      {ports.SubmitRequest{URL: "http://"}, "Invalid URL format"},
		"ftp scheme":   {ports.SubmitRequest{URL: "ftp://example.com"}, "Invalid URL format"},
		"mixed case":   {ports.SubmitRequest{URL: "FTP://Example.com"}, "Invalid URL format"},
		"bad strategy": {ports.SubmitRequest{URL: "example.com", Strategy: "tablet"}, "Invalid strategy"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tc.req)
			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.want, verr.Message)
		})
	}
}

func TestSubmit_WakeupFailureDoesNotFailSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	wake := mocks.NewMockWakeupPublisher(ctrl)
	svc := New(repo, "pagespeed", wake, quietLogger())

	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	wake.EXPECT().Publish(gomock.Any()).Return(errors.New("redis down"))

	_, err := svc.Submit(context.Background(), ports.SubmitRequest{URL: "example.com"})
	require.NoError(t, err)
}

func TestSubmit_InsertError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	svc := New(repo, "pagespeed", nil, quietLogger())

	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	_, err := svc.Submit(context.Background(), ports.SubmitRequest{URL: "example.com"})
	require.Error(t, err)
}

func TestList_ClampsLimitAndValidatesStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockTestRepository(ctrl)
	svc := New(repo, "pagespeed", nil, quietLogger())

	repo.EXPECT().List(gomock.Any(), domain.TestFilter{UserID: "u", Limit: maxListLimit}).Return([]domain.Test{{ID: "a"}}, nil)
	got, err := svc.List(context.Background(), domain.TestFilter{UserID: "u", Limit: 5000})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.List(context.Background(), domain.TestFilter{Status: "DONE"})
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
}
