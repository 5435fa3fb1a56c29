package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connectErr error
	publishErr error
	topics     []string
	payloads   [][]byte
	retained   []bool
}

func (c *fakeClient) IsConnected() bool { return true }
func (c *fakeClient) Connect() paho.Token { return &fakeToken{err: c.connectErr} }
func (c *fakeClient) Disconnect(uint) {}
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.topics = append(c.topics, topic)
	c.payloads = append(c.payloads, payload.([]byte))
	c.retained = append(c.retained, retained)
	return &fakeToken{err: c.publishErr}
}

func withFakeClient(t *testing.T, c *fakeClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return c }
	t.Cleanup(func() { newMQTTClient = orig })
}

func TestPahoPublisherPublishReport(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	p, err := NewPahoPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.PublishReport(42, []byte(`{"ok":true}`)))
	require.Equal(t, []string{"svitlo/reports/42"}, cli.topics)
	require.True(t, cli.retained[0])
}

func TestPahoPublisherConnectError(t *testing.T) {
	withFakeClient(t, &fakeClient{connectErr: errors.New("refused")})

	_, err := NewPahoPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883"})
	require.Error(t, err)
}

func TestPahoPublisherPublishError(t *testing.T) {
	cli := &fakeClient{publishErr: errors.New("timeout")}
	withFakeClient(t, cli)

	p, err := NewPahoPublisher(Config{Enabled: true, Broker: "tcp://localhost:1883"})
	require.NoError(t, err)
	require.Error(t, p.PublishReport(1, []byte("x")))
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, Config{}.Validate())
	require.Error(t, Config{Enabled: true}.Validate())
	require.NoError(t, Config{Enabled: true, Broker: "tcp://b:1883"}.Validate())
}
