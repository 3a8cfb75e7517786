package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kodechat/internal/errors"
	"kodechat/internal/service"
)

func TestSession_Configure(t *testing.T) {
	t.Run("unconfigured session blocks client access", func(t *testing.T) {
		s := service.NewSession("http://backend.invalid")
		assert.False(t, s.Configured())

		_, err := s.Client()
		assert.ErrorIs(t, err, apperrors.ErrMissingCredentials)
	})

	t.Run("configure installs a client", func(t *testing.T) {
		s := service.NewSession("http://backend.invalid")
		require.NoError(t, s.Configure("test-key", "http://localhost:9999"))
		assert.True(t, s.Configured())

		client, err := s.Client()
		require.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("empty base url falls back to the default", func(t *testing.T) {
		s := service.NewSession("http://backend.invalid")
		require.NoError(t, s.Configure("test-key", ""))
		assert.True(t, s.Configured())
	})

	t.Run("empty api key is rejected and leaves the session untouched", func(t *testing.T) {
		s := service.NewSession("http://backend.invalid")
		err := s.Configure("", "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.False(t, s.Configured())
	})
}
