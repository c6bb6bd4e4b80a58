package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu    sync.Mutex
	calls int
	table Table
	err   error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Load(context.Context) (Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.table, s.err
}

func TestLoader_Memoizes(t *testing.T) {
	src := &stubSource{table: Table{rec("Germany", 5, 2000)}}
	loader := NewLoader(src)

	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	require.Len(t, second, 1)
	assert.Same(t, &first[0], &second[0], "second call must return the same table")
}

func TestLoader_ConcurrentLoadReadsOnce(t *testing.T) {
	src := &stubSource{table: Table{rec("Germany", 5, 2000)}}
	loader := NewLoader(src)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = loader.Load(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, src.calls)
}

func TestLoader_WrapsErrors(t *testing.T) {
	cause := errors.New("open dashfile.parquet: no such file or directory")
	src := &stubSource{err: cause}
	loader := NewLoader(src)

	_, err := loader.Load(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "stub")

	_, again := loader.Load(context.Background())
	assert.Equal(t, err, again)
	assert.Equal(t, 1, src.calls)
}

func TestLoader_KeepsDataUnavailable(t *testing.T) {
	src := &stubSource{err: ErrDataUnavailable}

	_, err := NewLoader(src).Load(context.Background())

	assert.Equal(t, "load stub: data unavailable", err.Error())
}
