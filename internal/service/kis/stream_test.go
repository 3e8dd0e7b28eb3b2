package kis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTickFrame(t *testing.T) {
	frame := "0|H0STCNT0|001|005930^093012^71500^5^100^0^0^0^0^0^0^0^1234"
	tick, ok := parseTickFrame(frame)
	require.True(t, ok)
	assert.Equal(t, "005930", tick.Symbol)
	assert.Equal(t, 71500.0, tick.Price)
	assert.Equal(t, 1234.0, tick.Volume)
}

func TestParseTickFrameSkipsControlFrames(t *testing.T) {
	_, ok := parseTickFrame(`{"header":{"tr_id":"PINGPONG"}}`)
	assert.False(t, ok)

	_, ok = parseTickFrame("0|H0STASP0|001|005930^093012^71500")
	assert.False(t, ok, "other tr_ids are not price frames")

	_, ok = parseTickFrame("0|H0STCNT0|001|005930")
	assert.False(t, ok, "too few caret fields")
}

func TestMockStreamEmitsTicks(t *testing.T) {
	s := NewMockStream(5 * time.Millisecond)
	require.NoError(t, s.Connect(context.Background()))
	require.NoError(t, s.Subscribe(context.Background(), "005930"))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	ticks, _ := s.Read(ctx)

	first := <-ticks
	require.NotNil(t, first)
	assert.Equal(t, "005930", first.Symbol)
	assert.GreaterOrEqual(t, first.Price, 50300.0)
	assert.Less(t, first.Price, 50300.0+50.0)
}
