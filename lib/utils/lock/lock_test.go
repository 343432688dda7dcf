package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithDelay(t *testing.T) {
	t.Run("free key runs immediately", func(t *testing.T) {
		ran := false
		ok, err := WithDelay(context.Background(), "key-a", time.Second, func() error {
			ran = true
			return nil
		})
		require.NoError(t, err)
		require.True(t, ok)
		require.True(t, ran)
	})
	t.Run("held key times out without running", func(t *testing.T) {
		held := make(chan struct{})
		done := make(chan struct{})
		go func() {
			_, _ = WithDelay(context.Background(), "key-b", time.Second, func() error {
				close(held)
				<-done
				return nil
			})
		}()
		<-held
		ran := false
		ok, err := WithDelay(context.Background(), "key-b", 50*time.Millisecond, func() error {
			ran = true
			return nil
		})
		require.NoError(t, err)
		require.False(t, ok)
		require.False(t, ran)
		close(done)
	})
	t.Run("cancelled context stops waiting", func(t *testing.T) {
		held := make(chan struct{})
		done := make(chan struct{})
		go func() {
			_, _ = WithDelay(context.Background(), "key-c", time.Second, func() error {
				close(held)
				<-done
				return nil
			})
		}()
		<-held
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ok, err := WithDelay(ctx, "key-c", time.Minute, func() error { return nil })
		require.NoError(t, err)
		require.False(t, ok)
		close(done)
	})
	t.Run("serializes concurrent holders of one key", func(t *testing.T) {
		var wg sync.WaitGroup
		counter := 0
		acquired := make(chan bool, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, _ := WithDelay(context.Background(), "key-d", 2*time.Second, func() error {
					counter++
					return nil
				})
				acquired <- ok
			}()
		}
		wg.Wait()
		close(acquired)
		for ok := range acquired {
			require.True(t, ok)
		}
		require.Equal(t, 8, counter)
	})
}
