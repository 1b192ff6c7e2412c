package pingpong_test

import (
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markrussinovich/shmchan"
	"github.com/markrussinovich/shmchan/internal/cmd/pingpong"
)

func TestRun(t *testing.T) {
	defer leaktest.Check(t)()

	opts := []shmchan.Option{
		shmchan.WithName(uuid.NewString()),
		shmchan.WithProvider(shmchan.NewMemoryProvider()),
		shmchan.WithBufferSize(64),
	}

	srv, err := shmchan.NewServer(opts...)
	require.NoError(t, err)
	defer srv.Close()

	cl, err := shmchan.NewClient(opts...)
	require.NoError(t, err)
	defer cl.Close()

	rtts, err := pingpong.Run(srv, cl, 5, 32, time.Second)
	require.NoError(t, err)
	assert.Len(t, rtts, 5)
	for _, rtt := range rtts {
		assert.True(t, rtt > 0, "round trip %v", rtt)
	}
}
