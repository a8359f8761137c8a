// Package e2e runs ridecheck against real InfluxDB and Mosquitto containers.
package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small helper around the official InfluxDB v2 client
// used to read back what the recorder wrote.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a new client for the given parameters. It assumes
// the server is already running and reachable.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{
		bucket: bucket,
		client: c,
		query:  c.QueryAPI(org),
	}
}

// CountField counts the points of measurement written for runID in the last
// hour, looking at a single field so each point is seen once.
func (c *InfluxClient) CountField(ctx context.Context, measurement, field, runID string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q)
  |> range(start:-1h)
  |> filter(fn:(r) => r._measurement == %q and r._field == %q and r.run_id == %q)`,
		c.bucket, measurement, field, runID)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer func() { _ = res.Close() }()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
