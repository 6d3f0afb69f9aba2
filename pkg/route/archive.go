package route

import (
	"context"
	"encoding/json"
	"fmt"
	"foodia-handoff/domain"
	"foodia-handoff/internal/utils/storage"
	"time"
)

type (
	geoJSONFeature struct {
		Type       string            `json:"type"`
		Geometry   geoJSONLineString `json:"geometry"`
		Properties archiveProperties `json:"properties"`
	}

	geoJSONLineString struct {
		Type        string       `json:"type"`
		Coordinates [][2]float64 `json:"coordinates"`
	}

	archiveProperties struct {
		TransactionID string  `json:"transaction_id"`
		Status        string  `json:"status"`
		Timestamps    []int64 `json:"timestamps"`
		DistanceKm    float64 `json:"distance_km"`
		ArchivedAt    string  `json:"archived_at"`
	}
)

// EncodeGeoJSON renders a path as a GeoJSON LineString feature with the
// sample timestamps kept alongside the coordinates.
func EncodeGeoJSON(transactionID string, status domain.TransactionStatus, points []domain.RoutePoint, distanceKm float64, at time.Time) ([]byte, error) {
	feature := geoJSONFeature{
		Type: "Feature",
		Geometry: geoJSONLineString{
			Type:        "LineString",
			Coordinates: make([][2]float64, 0, len(points)),
		},
		Properties: archiveProperties{
			TransactionID: transactionID,
			Status:        string(status),
			Timestamps:    make([]int64, 0, len(points)),
			DistanceKm:    distanceKm,
			ArchivedAt:    at.UTC().Format(time.RFC3339),
		},
	}
	for _, p := range points {
		feature.Geometry.Coordinates = append(feature.Geometry.Coordinates, [2]float64{p.Lng, p.Lat})
		feature.Properties.Timestamps = append(feature.Properties.Timestamps, p.Timestamp)
	}
	return json.Marshal(feature)
}

// Archiver writes frozen paths to object storage.
type Archiver struct {
	s3     storage.AwsS3
	folder string
}

func NewArchiver(s3 storage.AwsS3, folder string) *Archiver {
	if folder == "" {
		folder = "routes"
	}
	return &Archiver{s3: s3, folder: folder}
}

// Upload stores one archive of the path under a key stamped with at and
// returns its public link.
func (a *Archiver) Upload(ctx context.Context, transactionID string, at time.Time, body []byte) (string, error) {
	key := fmt.Sprintf("%s/route-%s-%d.geojson", a.folder, transactionID, at.UnixMilli())
	objectKey, err := a.s3.PutObject(ctx, key, body, "application/geo+json")
	if err != nil {
		return "", domain.Transient("archive route", err)
	}
	return a.s3.GetPublicLinkKey(objectKey), nil
}

// Remove deletes the object behind a link returned by Upload. Links outside
// the bucket are ignored.
func (a *Archiver) Remove(ctx context.Context, link string) error {
	key := a.s3.GetObjectKeyFromLink(link)
	if key == "" {
		return nil
	}
	if err := a.s3.DeleteFile(ctx, key); err != nil {
		return domain.Transient("remove route archive", err)
	}
	return nil
}
