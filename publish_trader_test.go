package match

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPublishTrader(t *testing.T) {
	publisher := NewMemoryPublishTrader()
	assert.Equal(t, 0, publisher.Count())

	first := &Trade{ExecQty: decimal.NewFromInt(1), TradePx: decimal.NewFromInt(100), TransactTime: time.Now().UTC()}
	second := &Trade{ExecQty: decimal.NewFromInt(2), TradePx: decimal.NewFromInt(101), TransactTime: time.Now().UTC()}
	publisher.PublishTrades(first, second)

	require.Equal(t, 2, publisher.Count())
	assert.Same(t, first, publisher.Get(0))
	assert.Same(t, second, publisher.Get(1))
}

func TestDiscardPublishTrader(t *testing.T) {
	publisher := NewDiscardPublishTrader()
	assert.NotPanics(t, func() {
		publisher.PublishTrades(&Trade{ExecQty: decimal.NewFromInt(1)})
	})
}
