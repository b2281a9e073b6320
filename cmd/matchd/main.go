package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	match "github.com/nomadex/matching-engine"
	"github.com/nomadex/matching-engine/internal/config"
)

func main() {
	_ = godotenv.Load() // best-effort: .env is optional

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config.yaml: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.LogLevel)
	match.SetLogger(logger)

	referencePrice, err := cfg.Reference()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger.Info("matchd starting",
		slog.String("instrument", cfg.Instrument),
		slog.String("reference_price", referencePrice.String()),
		slog.Int("action_buffer", cfg.ActionBuffer),
	)

	book := match.NewAggregatedBook()

	opts := []match.EngineOption{
		match.WithActionBuffer(cfg.ActionBuffer),
		match.WithBookListener(book.Apply),
	}
	publisher := match.NewMemoryPublishTrader()
	if cfg.KeepTrades {
		opts = append(opts, match.WithPublishTrader(publisher))
	}

	engine := match.NewMatchingEngine(cfg.Instrument, referencePrice, opts...)
	engine.Start()

	ctx := context.Background()

	type step struct {
		label string
		run   func(clOrdID string) ([]match.ResponseMessage, error)
	}

	restingBuy := xid.New().String()
	restingSell := xid.New().String()
	amendID := xid.New().String()

	script := []step{
		{"buy 20 @ 35000", func(clOrdID string) ([]match.ResponseMessage, error) {
			return engine.SubmitNew(ctx, restingBuy, match.Buy, match.Limit, decimal.NewFromInt(20), decimal.NewFromInt(35000))
		}},
		{"buy 140 @ 36000", func(clOrdID string) ([]match.ResponseMessage, error) {
			return engine.SubmitNew(ctx, clOrdID, match.Buy, match.Limit, decimal.NewFromInt(140), decimal.NewFromInt(36000))
		}},
		{"sell 160 market", func(clOrdID string) ([]match.ResponseMessage, error) {
			return engine.SubmitNew(ctx, clOrdID, match.Sell, match.Market, decimal.NewFromInt(160), decimal.Zero)
		}},
		{"sell 50 @ 37000", func(clOrdID string) ([]match.ResponseMessage, error) {
			return engine.SubmitNew(ctx, restingSell, match.Sell, match.Limit, decimal.NewFromInt(50), decimal.NewFromInt(37000))
		}},
		{"amend sell to 80 @ 36500", func(clOrdID string) ([]match.ResponseMessage, error) {
			return engine.SubmitAmend(ctx, restingSell, amendID, match.Sell, match.Limit, decimal.NewFromInt(80), decimal.NewFromInt(36500))
		}},
		{"cancel amended sell", func(clOrdID string) ([]match.ResponseMessage, error) {
			return engine.SubmitCancel(ctx, amendID, clOrdID)
		}},
	}

	for _, s := range script {
		messages, err := s.run(xid.New().String())
		if err != nil {
			logger.Error("submit failed", slog.String("step", s.label), slog.String("err", err.Error()))
			continue
		}
		fmt.Printf("== %s\n", s.label)
		for _, message := range messages {
			printMessage(message)
		}
	}

	snapshot, err := engine.Snapshot(ctx)
	if err == nil {
		fmt.Printf("book: %d bid levels, %d ask levels, buy market queue %d, sell market queue %d\n",
			len(snapshot.Bids), len(snapshot.Asks), len(snapshot.BidMarketQueue), len(snapshot.AskMarketQueue))
	}
	fmt.Printf("trades executed: %d\n", len(engine.TradeHistory()))
	if best, qty, ok := book.Best(match.Buy); ok {
		fmt.Printf("best bid: %s x %s\n", qty.String(), best.String())
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info("shutting down...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shCancel()

	if err := engine.Shutdown(shCtx); err != nil {
		logger.Error("shutdown failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	logger.Info("bye")
}

func printMessage(message match.ResponseMessage) {
	switch m := message.(type) {
	case *match.ExecutionReport:
		line := fmt.Sprintf("  %s clOrdId=%s orderId=%d side=%s qty=%s px=%s cum=%s leaves=%s avg=%s",
			m.OrderStatus, m.ClOrdID, m.OrderID, m.Side,
			m.OrderQty.String(), m.Price.String(), m.CumQty.String(), m.LeavesQty.String(), m.AvgPx.String())
		if m.LastQty != nil && m.LastPx != nil {
			line += fmt.Sprintf(" last=%s@%s", m.LastQty.String(), m.LastPx.String())
		}
		if m.RejectReason != "" {
			line += " reason=" + m.RejectReason
		}
		fmt.Println(line)
	case *match.OrderCancelReject:
		fmt.Printf("  CANCEL-REJECT clOrdId=%s origClOrdId=%s reason=%s\n", m.ClOrdID, m.OrigClOrdID, m.RejectReason)
	case *match.BusinessMessageReject:
		fmt.Printf("  BUSINESS-REJECT refMsgType=%s reason=%s\n", m.RefMsgType, m.Reason)
	default:
		fmt.Printf("  %+v\n", message)
	}
}
