//go:build integration

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPublishWeekMosquitto publishes to a real broker and reads the retained
// Monday message back with a fresh subscriber.
func TestPublishWeekMosquitto(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "eclipse-mosquitto:2.0",
			ExposedPorts: []string{"1883/tcp"},
			Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
			WaitingFor:   wait.ForListeningPort("1883/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "1883")
	require.NoError(t, err)
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	var pub *Publisher
	for i := 0; i < 5; i++ {
		pub, err = NewPublisher(Config{Broker: broker, ClientID: "ridecheck-it", QoS: 1})
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	require.NoError(t, err)
	defer pub.Disconnect()
	require.NoError(t, pub.PublishWeek(ctx, sampleWeek()))

	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("reader"))
	tok := sub.Connect()
	tok.Wait()
	require.NoError(t, tok.Error())
	defer sub.Disconnect(250)

	got := make(chan []byte, 1)
	tok = sub.Subscribe(DayTopic(DefaultTopic, "Monday"), 1, func(_ paho.Client, m paho.Message) {
		select {
		case got <- m.Payload():
		default:
		}
	})
	tok.Wait()
	require.NoError(t, tok.Error())

	select {
	case payload := <-got:
		var msg DayMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		require.Equal(t, "run-1", msg.RunID)
	case <-time.After(5 * time.Second):
		t.Fatal("retained message not received")
	}
}
