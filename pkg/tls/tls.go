package tls

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffeid"
	"github.com/spiffe/go-spiffe/v2/spiffetls/tlsconfig"
	"github.com/spiffe/go-spiffe/v2/workloadapi"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/pkg/config"
)

const watchInterval = 30 * time.Second

// Provider serves mTLS from SVIDs fetched through the SPIRE Workload API.
// SPIRE rotates certificates on its own; Watch only reports their state.
type Provider struct {
	source *workloadapi.X509Source
	cfg    config.TLSConfig
	logger *zap.Logger
}

// NewProvider returns nil when TLS is disabled.
func NewProvider(ctx context.Context, cfg config.TLSConfig, logger *zap.Logger) (*Provider, error) {
	if !cfg.Enabled {
		logger.Info("TLS is disabled")
		return nil, nil
	}

	// SPIRE Workload API를 통해 X509 소스 생성
	source, err := workloadapi.NewX509Source(
		ctx,
		workloadapi.WithClientOptions(
			workloadapi.WithAddr(cfg.SocketPath),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to create X509Source: %w", err)
	}

	return &Provider{source: source, cfg: cfg, logger: logger}, nil
}

func (p *Provider) ServerConfig() (*tls.Config, error) {
	authorizer, err := Authorizer(p.cfg.TrustDomain)
	if err != nil {
		return nil, err
	}

	// mTLS 서버 설정 생성
	tlsConfig := tlsconfig.MTLSServerConfig(p.source, p.source, authorizer)
	tlsConfig.MinVersion = tls.VersionTLS12

	p.logger.Info("SPIRE TLS configuration loaded",
		zap.String("socket_path", p.cfg.SocketPath),
		zap.String("trust_domain", p.cfg.TrustDomain),
		zap.Bool("mtls_enabled", true))

	return tlsConfig, nil
}

// Authorizer accepts any peer when trustDomain is empty, otherwise only
// members of that trust domain.
func Authorizer(trustDomain string) (tlsconfig.Authorizer, error) {
	if trustDomain == "" {
		return tlsconfig.AuthorizeAny(), nil
	}
	td, err := spiffeid.TrustDomainFromString(trustDomain)
	if err != nil {
		return nil, fmt.Errorf("invalid trust domain %q: %w", trustDomain, err)
	}
	return tlsconfig.AuthorizeMemberOf(td), nil
}

// Watch logs the current SVID until ctx is done.
func (p *Provider) Watch(ctx context.Context) {
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		svid, err := p.source.GetX509SVID()
		if err != nil {
			p.logger.Error("Failed to get X509 SVID", zap.Error(err))
			continue
		}

		p.logger.Info("Certificate status",
			zap.String("spiffe_id", svid.ID.String()),
			zap.Time("expiry", svid.Certificates[0].NotAfter),
			zap.Duration("ttl", time.Until(svid.Certificates[0].NotAfter)))
	}
}

func (p *Provider) Close() error {
	if p == nil || p.source == nil {
		return nil
	}
	return p.source.Close()
}
