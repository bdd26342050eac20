package common

import (
	"context"
	"os"
	"roomly/pkg/client"
	"testing"
	"time"
)

const healthWait = 30 * time.Second

type IntegrationTestSuite struct {
	Bookings    *client.BookingClient
	Rooms       *client.RoomClient
	ServiceName string
}

// NewIntegrationTestSuite points at running bookings and rooms services.
// TEST_BOOKINGS_URL and TEST_ROOMS_URL override the local defaults.
func NewIntegrationTestSuite(t *testing.T, serviceName string) *IntegrationTestSuite {
	t.Helper()

	s := &IntegrationTestSuite{
		Bookings:    client.NewBookingClient(envOr("TEST_BOOKINGS_URL", "http://localhost:8080")),
		Rooms:       client.NewRoomClient(envOr("TEST_ROOMS_URL", "http://localhost:8081")),
		ServiceName: serviceName,
	}

	ctx := context.Background()
	if err := s.Bookings.HTTP().WaitForHealthy(ctx, healthWait); err != nil {
		t.Fatalf("bookings service: %v", err)
	}
	if err := s.Rooms.HTTP().WaitForHealthy(ctx, healthWait); err != nil {
		t.Fatalf("rooms service: %v", err)
	}
	return s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
