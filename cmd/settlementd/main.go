package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/openleague/waiverwire/config"
	"github.com/openleague/waiverwire/core"
	"github.com/openleague/waiverwire/eligibility"
	"github.com/openleague/waiverwire/store"
	"github.com/openleague/waiverwire/validation"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single settlement batch and exit")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" && *cfgPath == "configs/config.yaml" {
		*cfgPath = v
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}

	st, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	engine, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("[FATAL] build engine: %v", err)
	}

	if *once {
		if err := runSettlement(engine, st); err != nil {
			log.Fatalf("[FATAL] settlement run: %v", err)
		}
		return
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Schedule.SettlementCron, func() {
		if err := runSettlement(engine, st); err != nil {
			log.Printf("[ERROR] settlement run: %v", err)
		}
	}); err != nil {
		log.Fatalf("[FATAL] register settlement schedule: %v", err)
	}
	c.Start()
	log.Printf("[INFO] settlementd started, schedule %q", cfg.Schedule.SettlementCron)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("[INFO] shutting down")
	<-c.Stop().Done()
}

func buildEngine(cfg *config.Config) (*core.Engine, error) {
	avgStandard, err := decimal.NewFromString(cfg.Scoring.AverageStandardGamePoints)
	if err != nil {
		return nil, err
	}
	avgCounterPick, err := decimal.NewFromString(cfg.Scoring.AverageCounterPickPoints)
	if err != nil {
		return nil, err
	}
	return &core.Engine{
		Claims:           eligibility.ClaimChecker{},
		ConditionalDrops: eligibility.DropChecker{},
		Projections:      core.StandardProjection{},
		Averages: core.SystemWideValues{
			AverageStandardGamePoints: avgStandard,
			AverageCounterPickPoints:  avgCounterPick,
		},
	}, nil
}

func runSettlement(engine *core.Engine, st *store.Store) error {
	now := time.Now().UTC()
	input, err := st.LoadRunInput(now)
	if err != nil {
		return err
	}

	pendingBids := 0
	for _, bids := range input.Bids {
		pendingBids += len(bids)
	}
	pendingDrops := 0
	for _, drops := range input.Drops {
		pendingDrops += len(drops)
	}
	if pendingBids == 0 && pendingDrops == 0 {
		log.Println("[INFO] nothing pending, skipping run")
		return nil
	}
	log.Printf("[INFO] settling %d bids and %d drops across %d publishers", pendingBids, pendingDrops, len(input.Publishers))

	before := make(map[uuid.UUID]*core.Publisher, len(input.Publishers))
	for _, p := range input.Publishers {
		before[p.ID] = p
	}

	result := engine.ProcessActions(input)

	verdict := validation.ValidateRun(&validation.RunValidationInput{
		Before: before,
		Result: result,
	})
	if !verdict.IsValid() {
		for _, detail := range verdict.ValidationDetails {
			log.Printf("[ERROR] run validation: %s", detail)
		}
		return errInvalidRun
	}

	var stillPending []*core.PickupBid
	for _, bids := range input.Bids {
		for _, bid := range bids {
			if bid.Outcome == core.BidPending {
				stillPending = append(stillPending, bid)
			}
		}
	}

	return st.ApplyResult(result, stillPending, now)
}

var errInvalidRun = errors.New("settlement result failed validation, refusing to apply")
