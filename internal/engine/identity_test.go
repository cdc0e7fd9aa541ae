package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// actingUserRecorder records SetActingUser calls; the remaining Gateway
// methods are inherited from an embedded nil interface and must not be used.
type actingUserRecorder struct {
	Gateway
	calls []string
}

func (r *actingUserRecorder) SetActingUser(userID string) {
	r.calls = append(r.calls, userID)
}

func TestWithActingUserClearsOnReturn(t *testing.T) {
	rec := &actingUserRecorder{}
	err := WithActingUser(rec, "deployer", func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"deployer", ""}, rec.calls)
}

func TestWithActingUserClearsOnError(t *testing.T) {
	rec := &actingUserRecorder{}
	boom := errors.New("boom")
	err := WithActingUser(rec, "deployer", func() error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"deployer", ""}, rec.calls)
}

func TestWithActingUserClearsOnPanic(t *testing.T) {
	rec := &actingUserRecorder{}
	assert.Panics(t, func() {
		_ = WithActingUser(rec, "deployer", func() error { panic("boom") })
	})
	assert.Equal(t, []string{"deployer", ""}, rec.calls)
}
