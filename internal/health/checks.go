package health

import (
	"context"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/storage"
	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/google/uuid"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

const probeKey = "health:probe"

// Endpoints lists the dependencies to probe. Empty DSNs and a nil Stripe
// client leave the matching check out.
type Endpoints struct {
	CartStore    storage.KeyValueStore
	PostgresDSN  string
	RedisDSN     string
	StripeClient stripeClient.Client
}

func NewHealthHandler(version string, endpoints *Endpoints) (*health.Health, error) {

	checks := []health.Config{}

	if endpoints.CartStore != nil {
		checks = append(checks, health.Config{
			Name:    "cart-store",
			Timeout: 2 * time.Second,
			Check:   cartStoreCheck(endpoints.CartStore),
		})
	}

	if endpoints.PostgresDSN != "" {
		checks = append(checks, health.Config{
			Name:    "database",
			Timeout: 3 * time.Second,
			Check:   postgres.New(postgres.Config{DSN: endpoints.PostgresDSN}),
		})
	}

	if endpoints.RedisDSN != "" {
		checks = append(checks, health.Config{
			Name:    "redis",
			Timeout: 2 * time.Second,
			Check:   healthRedis.New(healthRedis.Config{DSN: endpoints.RedisDSN}),
		})
	}

	if endpoints.StripeClient != nil {
		// Checkout still works for zero totals without Stripe.
		checks = append(checks, health.Config{
			Name:      "stripe",
			Timeout:   5 * time.Second,
			SkipOnErr: true,
			Check: func(ctx context.Context) error {
				if err := endpoints.StripeClient.Ping(ctx); err != nil {
					return fmt.Errorf("failed to connect to stripe: %w", err)
				}
				return nil
			},
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "storefront",
			Version: version,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

// cartStoreCheck writes, reads back and removes a probe value.
func cartStoreCheck(store storage.KeyValueStore) health.CheckFunc {
	return func(ctx context.Context) error {
		value := uuid.NewString()

		if err := store.Set(ctx, probeKey, value); err != nil {
			return fmt.Errorf("cart store write failed: %w", err)
		}

		got, found, err := store.Get(ctx, probeKey)
		if err != nil {
			return fmt.Errorf("cart store read failed: %w", err)
		}
		if !found || got != value {
			return fmt.Errorf("cart store returned a stale probe value")
		}

		if err := store.Remove(ctx, probeKey); err != nil {
			return fmt.Errorf("cart store remove failed: %w", err)
		}

		return nil
	}
}
