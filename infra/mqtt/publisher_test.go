package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridecheck/core/model"
	"github.com/kilianp07/ridecheck/core/scheduler"
	"github.com/kilianp07/ridecheck/core/timeline"
)

// mockClient implements pahoClient for tests
type mockClient struct {
	opts        *paho.ClientOptions
	published   []published
	publishErrs []error
	connectErr  error
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

func (m *mockClient) IsConnected() bool { return true }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr != nil {
		return &dummyToken{err: m.connectErr}
	}
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(nil)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.published = append(m.published, published{topic, qos, retained, payload.([]byte)})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

func withMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func sampleWeek() scheduler.WeeklySchedule {
	ws := scheduler.WeeklySchedule{RunID: "run-1", GeneratedAt: time.Date(2024, 6, 3, 5, 0, 0, 0, time.UTC)}
	for _, d := range model.Weekdays {
		ws.Days[d] = scheduler.DaySchedule{Day: d, Status: scheduler.StatusParkClosed}
	}
	ws.Days[model.Monday] = scheduler.DaySchedule{
		Day:         model.Monday,
		Status:      scheduler.StatusScheduled,
		Capacity:    60,
		ClosedRides: []string{"log-flume"},
		Timeline: timeline.Day{Capacity: 60, Workers: []timeline.WorkerTimeline{
			{Worker: "ana", Entries: []timeline.Entry{{Ride: "coaster", Start: 0, End: 25}}},
		}},
	}
	ws.Days[model.Tuesday] = scheduler.DaySchedule{
		Day:        model.Tuesday,
		Status:     scheduler.StatusInfeasible,
		Capacity:   60,
		Unassigned: []string{"coaster"},
		Errors: []*scheduler.DayError{{
			Day: model.Tuesday, Kind: scheduler.KindInfeasibleDomain, Ride: "coaster", Err: errors.New("no qualified worker"),
		}},
	}
	return ws
}

func TestPublishWeek(t *testing.T) {
	mc := &mockClient{}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", Topic: "park/checks/", QoS: 1})
	require.NoError(t, err)

	require.NoError(t, pub.PublishWeek(context.Background(), sampleWeek()))
	require.Len(t, mc.published, model.DaysPerWeek+1)
	assert.Equal(t, "park/checks/monday", mc.published[0].topic)
	assert.Equal(t, "park/checks/sunday", mc.published[6].topic)
	assert.Equal(t, "park/checks/week", mc.published[7].topic)
	for _, p := range mc.published {
		assert.True(t, p.retained, p.topic)
		assert.Equal(t, byte(1), p.qos)
	}

	var mon DayMessage
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &mon))
	assert.NotEmpty(t, mon.MessageID)
	assert.Equal(t, "run-1", mon.RunID)
	assert.Equal(t, "Monday", mon.Day)
	assert.Equal(t, scheduler.StatusScheduled, mon.Status)
	assert.Equal(t, []string{"log-flume"}, mon.ClosedRides)
	require.Len(t, mon.Timeline.Workers, 1)
	assert.Equal(t, 25, mon.Timeline.Workers[0].Entries[0].End)

	assert.Empty(t, mon.Errors)
	var tue DayMessage
	require.NoError(t, json.Unmarshal(mc.published[1].payload, &tue))
	require.Len(t, tue.Errors, 1)
	assert.Equal(t, scheduler.KindInfeasibleDomain, tue.Errors[0].Kind)
	assert.Equal(t, "coaster", tue.Errors[0].Ride)
	assert.EqualError(t, tue.Errors[0].Err, "no qualified worker")

	var week WeekMessage
	require.NoError(t, json.Unmarshal(mc.published[7].payload, &week))
	assert.Equal(t, "run-1", week.RunID)
	assert.False(t, week.Complete)
	assert.NotEqual(t, mon.MessageID, week.MessageID)
}

func TestPublishRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	require.NoError(t, pub.PublishWeek(context.Background(), sampleWeek()))
	assert.Len(t, mc.published, model.DaysPerWeek+2)
	assert.Equal(t, mc.published[0].topic, mc.published[1].topic)
	assert.Equal(t, DefaultTopic+"/monday", mc.published[0].topic)
	pub.Disconnect()
}

func TestPublishGivesUp(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail, fail}}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	require.NoError(t, err)
	err = pub.PublishWeek(context.Background(), sampleWeek())
	assert.ErrorIs(t, err, fail)
	assert.Len(t, mc.published, 3)
}

func TestPublishCancelledDuringBackoff(t *testing.T) {
	fail := fmt.Errorf("net fail")
	mc := &mockClient{publishErrs: []error{fail, fail}}
	withMock(t, mc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 5, BackoffMS: 1000})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.PublishWeek(ctx, sampleWeek()), context.Canceled)
	assert.Len(t, mc.published, 1)
}

func TestNewPublisherConnectError(t *testing.T) {
	withMock(t, &mockClient{connectErr: fmt.Errorf("refused")})
	_, err := NewPublisher(Config{Broker: "tcp://localhost:1883"})
	assert.ErrorContains(t, err, "refused")
}

func TestConfigValidate(t *testing.T) {
	tests := map[string]Config{
		"missing broker": {},
		"bad qos":        {Broker: "tcp://b:1883", QoS: 3},
		"wildcard":       {Broker: "tcp://b:1883", Topic: "a/#"},
		"bad auth":       {Broker: "tcp://b:1883", AuthMethod: "kerberos"},
	}
	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			cfg.SetDefaults()
			assert.Error(t, cfg.Validate())
		})
	}
	ok := Config{Broker: "tcp://b:1883"}
	ok.SetDefaults()
	assert.NoError(t, ok.Validate())
	assert.Equal(t, DefaultTopic, ok.Topic)
	assert.Equal(t, "ridecheck", ok.ClientID)
}

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	require.NoError(t, err)
	assert.NotEmpty(t, tlsCfg.Certificates)
	assert.NotNil(t, tlsCfg.RootCAs)

	_, err = Config{UseTLS: true}.LoadTLSConfig()
	assert.Error(t, err)
}

func TestNewClientOptions(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p", LWTTopic: "ridecheck/status", LWTPayload: "offline", LWTQoS: 1})
	require.NoError(t, err)
	assert.Equal(t, "u", opts.Username)
	assert.Equal(t, "p", opts.Password)
	assert.True(t, opts.WillEnabled)
	assert.Equal(t, "ridecheck/status", opts.WillTopic)
	assert.Equal(t, "offline", string(opts.WillPayload))

	opts, err = NewClientOptions(Config{Broker: "tcp://localhost:1883", AuthMethod: "tls", Username: "u"})
	assert.Error(t, err, "tls auth without certificates")
	assert.Nil(t, opts)
}
