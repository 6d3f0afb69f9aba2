// Command device-sim plays one party of a transaction: it walks a simulated
// device toward a target and publishes its position to the API.
package main

import (
	"context"
	"flag"
	"foodia-handoff/domain"
	"foodia-handoff/internal/utils"
	"foodia-handoff/pkg/channel"
	"foodia-handoff/pkg/jwt"
	"foodia-handoff/pkg/tracking"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "API base URL")
	token := flag.String("token", "", "bearer token; minted from JWT_SECRET in config.yaml when empty")
	userID := flag.String("user", "", "user id to mint a token for when -token is empty")
	transactionID := flag.String("transaction", "", "transaction id")
	party := flag.String("party", domain.PartyOwner, "party to play: owner or requester")
	startLat := flag.Float64("start-lat", -6.2000, "start latitude")
	startLng := flag.Float64("start-lng", 106.8166, "start longitude")
	targetLat := flag.Float64("target-lat", -6.1754, "target latitude")
	targetLng := flag.Float64("target-lng", 106.8272, "target longitude")
	speedKmh := flag.Float64("speed", 30, "walking speed in km/h")
	sample := flag.Duration("sample", 2*time.Second, "sample interval")
	publish := flag.Duration("publish", 10*time.Second, "publish interval")
	failRate := flag.Float64("fail-rate", 0.2, "probability a high-accuracy fix fails")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	if *transactionID == "" {
		log.Fatal("-transaction is required")
	}
	if *token == "" {
		if *userID == "" {
			log.Fatal("either -token or -user is required")
		}
		utils.LoadConfig()
		*token = jwt.NewJWTService().GenerateTokenUser(*userID, "user")
	}

	start := domain.Coordinate{Lat: *startLat, Lng: *startLng}
	target := domain.Coordinate{Lat: *targetLat, Lng: *targetLng}
	for _, c := range []domain.Coordinate{start, target} {
		if err := c.Validate(); err != nil {
			log.Fatalf("bad coordinate %v: %v", c, err)
		}
	}

	cfg := tracking.DefaultConfig()
	cfg.SampleInterval = *sample
	cfg.PublishInterval = *publish
	if err := utils.ValidateStruct(cfg); err != nil {
		log.Fatalf("bad intervals: %v", err)
	}

	client := &apiClient{
		baseURL:       *apiURL,
		token:         *token,
		transactionID: *transactionID,
		timeout:       5 * time.Second,
	}
	stepKm := *speedKmh * sample.Hours()
	locator := tracking.NewSimulatedGeolocator(start, target, stepKm, *failRate, *seed)
	publisher := tracking.NewLocationPublisher(cfg, locator, client, tracking.StatusGate(client.Status),
		tracking.WithErrorHandler(func(err error) { log.Printf("publish: %v", err) }))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := publisher.Start(ctx, channel.PartySubject(*transactionID, *party), *sample); err != nil {
		log.Fatalf("failed to start publisher: %v", err)
	}
	log.Printf("simulating %s of %s: %v -> %v at %.1f km/h", *party, *transactionID, start, target, *speedKmh)

	ticker := time.NewTicker(*publish)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			publisher.Stop()
			log.Printf("stopped: %+v", publisher.Stats())
			return
		case <-publisher.Done():
			log.Printf("tracking ended: %+v", publisher.Stats())
			return
		case <-ticker.C:
			s := publisher.Stats()
			log.Printf("samples=%d published=%d dropped=%d accuracy=%s arrived=%t",
				s.Samples, s.Published, s.Dropped, s.Accuracy, locator.Arrived())
		}
	}
}
