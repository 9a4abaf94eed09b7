package temporal

import (
	"github.com/flexprice/dunning/internal/config"
	ierr "github.com/flexprice/dunning/internal/errors"
	"github.com/flexprice/dunning/internal/logger"
	"go.temporal.io/sdk/client"
)

// TemporalClient wraps the Temporal SDK client for application use.
type TemporalClient struct {
	Client client.Client
}

// NewTemporalClient creates a new Temporal client using the given configuration.
func NewTemporalClient(cfg *config.TemporalConfig, log *logger.Logger) (*TemporalClient, error) {
	log.Infow("creating temporal client",
		"address", cfg.Address,
		"namespace", cfg.Namespace,
	)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Address,
		Namespace: cfg.Namespace,
		Logger:    log.GetTemporalLogger(),
	})
	if err != nil {
		log.Errorw("failed to create temporal client", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Could not connect to temporal").
			WithReportableDetails(map[string]any{
				"address": cfg.Address,
			}).
			Mark(ierr.ErrSystem)
	}

	log.Info("temporal client created successfully")
	return &TemporalClient{Client: c}, nil
}

// Close closes the underlying connection
func (c *TemporalClient) Close() {
	if c != nil && c.Client != nil {
		c.Client.Close()
	}
}
