package statsdproxy

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerProcessDatagramFramesOnNewlineAndSkipsEmpty(t *testing.T) {
	rec := &recordingStage{}
	s := &Server{chain: rec, logger: NopLogger{}}

	s.processDatagram([]byte("a:1|c\n\nb:2|c\n"))

	require.Len(t, rec.submitted, 2)
	assert.Equal(t, "a:1|c", rec.submitted[0])
	assert.Equal(t, "b:2|c", rec.submitted[1])
}

func TestServerRunForwardsDatagramsUntilClosed(t *testing.T) {
	rec := &recordingStage{}
	s, err := NewServer("127.0.0.1:0", rec, nil, nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	client, err := net.DialUDP("udp", nil, s.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Write([]byte("users.online:1|c"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(rec.submitted) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "users.online:1|c", rec.submitted[0])

	require.NoError(t, s.Close())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.True(t, rec.joined)
}
