package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/ridecheck/app"
	"github.com/kilianp07/ridecheck/config"
	"github.com/kilianp07/ridecheck/core/factory"
	"github.com/kilianp07/ridecheck/core/history"
	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/infra/mqtt"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

// startInflux starts an InfluxDB 2.7 container already set up with the
// e2e organisation, bucket and token.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "ridecheck",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "ridecheck-e2e",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

// startMosquitto spins up a basic Mosquitto broker for tests.
func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "1883")
	return cont, fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func e2eInstance() model.Instance {
	inst := model.Instance{
		Rides: []model.Ride{{ID: "coaster", DurationMinutes: 20}, {ID: "wheel", DurationMinutes: 10}},
		Workers: []model.Worker{
			{ID: "ana", Rides: []string{"coaster", "wheel"}},
			{ID: "bo", Rides: []string{"wheel"}},
		},
	}
	for _, d := range model.Weekdays[:6] {
		inst.Week[d] = model.DayState{TimeTillOpening: 30}
	}
	return inst
}

// Test_E2E_GenerateWeek runs a full generation with the InfluxDB recorder,
// the MQTT publisher and the SQLite history enabled.
func Test_E2E_GenerateWeek(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	influxCont, influxURL := startInflux(ctx, t)
	defer influxCont.Terminate(ctx) //nolint:errcheck
	mqttCont, broker := startMosquitto(ctx, t)
	defer mqttCont.Terminate(ctx) //nolint:errcheck
	t.Logf("InfluxDB started at %s", influxURL)
	t.Logf("Mosquitto started at %s", broker)

	cfg := &config.Config{}
	cfg.Metrics.Sinks = []factory.ModuleConfig{{
		Type: "influx",
		Conf: map[string]any{"url": influxURL, "token": influxToken, "org": influxOrg, "bucket": influxBucket},
	}}
	cfg.History.Enabled = true
	cfg.History.Backend = history.BackendSQLite
	cfg.History.Path = filepath.Join(t.TempDir(), "history.db")
	cfg.MQTT.Enabled = true
	cfg.MQTT.Broker = broker
	cfg.MQTT.ClientID = "ridecheck-e2e"
	cfg.MQTT.QoS = 1
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	svc, err := app.New(cfg)
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ws, err := svc.Generate(ctx, e2eInstance())
	require.NoError(t, err)
	require.True(t, ws.Complete())

	cli := NewInfluxClient(influxURL, influxOrg, influxBucket, influxToken)
	defer cli.Close()
	n, err := cli.CountField(ctx, "schedule_day", "rides", ws.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.DaysPerWeek, n)
	n, err = cli.CountField(ctx, "schedule_week", "checks", ws.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recs, err := svc.History().Query(ctx, history.Query{RunID: ws.RunID})
	require.NoError(t, err)
	assert.Len(t, recs, 12)

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-reader"))
	tok := sub.Connect()
	tok.Wait()
	require.NoError(t, tok.Error())
	defer sub.Disconnect(250)
	got := make(chan []byte, 1)
	tok = sub.Subscribe(mqtt.DefaultTopic+"/week", 1, func(_ paho.Client, m paho.Message) {
		select {
		case got <- m.Payload():
		default:
		}
	})
	tok.Wait()
	require.NoError(t, tok.Error())
	select {
	case payload := <-got:
		var msg mqtt.WeekMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		assert.Equal(t, ws.RunID, msg.RunID)
	case <-time.After(5 * time.Second):
		t.Fatal("retained week message not received")
	}
}
