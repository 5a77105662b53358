package tls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/pkg/config"
)

func TestNewProvider_Disabled(t *testing.T) {
	p, err := NewProvider(context.Background(), config.TLSConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, p.Close())
}

func TestAuthorizer(t *testing.T) {
	a, err := Authorizer("")
	require.NoError(t, err)
	assert.NotNil(t, a)

	a, err = Authorizer("shop.example")
	require.NoError(t, err)
	assert.NotNil(t, a)

	_, err = Authorizer("spiffe://bad domain/x")
	assert.Error(t, err)
}
