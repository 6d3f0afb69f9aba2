package tracking

import "time"

type Config struct {
	SampleInterval      time.Duration `validate:"gt=0"`
	PublishInterval     time.Duration `validate:"gt=0"`
	HighAccuracyTimeout time.Duration `validate:"gt=0"`
	LowAccuracyTimeout  time.Duration `validate:"gt=0"`
	// FallbackAfter is how many consecutive high-accuracy failures switch
	// sampling to low accuracy.
	FallbackAfter      int           `validate:"gte=1"`
	ETAInterval        time.Duration `validate:"gt=0"`
	AverageSpeedKmh    float64       `validate:"gt=0"`
	GeofenceRadiusKm   float64       `validate:"gt=0"`
	GeofenceExitMargin float64       `validate:"gte=0,lte=1"`
}

func DefaultConfig() Config {
	return Config{
		SampleInterval:      2 * time.Second,
		PublishInterval:     10 * time.Second,
		HighAccuracyTimeout: 5 * time.Second,
		LowAccuracyTimeout:  15 * time.Second,
		FallbackAfter:       2,
		ETAInterval:         15 * time.Second,
		AverageSpeedKmh:     30,
		GeofenceRadiusKm:    0.2,
		GeofenceExitMargin:  0,
	}
}
