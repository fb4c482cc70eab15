package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_ValidSpec(t *testing.T) {
	s := New(time.UTC)
	_, err := s.Register("prune", "0 0 3 * * *", func() {})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := New(nil)
	_, err := s.Register("prune", "not a spec", func() {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prune")
	assert.Equal(t, 0, s.Entries())
}

func TestScheduler_RunsJob(t *testing.T) {
	s := New(time.UTC)
	ran := make(chan struct{}, 1)
	_, err := s.Register("tick", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}
