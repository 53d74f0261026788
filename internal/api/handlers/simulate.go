package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storage-arbitrage/internal/api/models"
	"storage-arbitrage/internal/backtest"
	"storage-arbitrage/internal/config"
	"storage-arbitrage/internal/data"
	"storage-arbitrage/internal/economics"
	"storage-arbitrage/internal/model"
	"storage-arbitrage/internal/observability"
	"storage-arbitrage/internal/store"
	"storage-arbitrage/internal/strategy"
)

// SimulateHandler runs simulations over datasets or inline prices and
// persists them on request.
type SimulateHandler struct {
	cfg    *config.Config
	cache  *data.Cache
	runs   store.RunStore
	logger *logrus.Logger
}

// NewSimulateHandler creates a simulate handler. The cache is shared with the
// datasets handler so repeated requests against the same file parse it once.
func NewSimulateHandler(cfg *config.Config, cache *data.Cache, runs store.RunStore, logger *logrus.Logger) *SimulateHandler {
	return &SimulateHandler{cfg: cfg, cache: cache, runs: runs, logger: logger}
}

// Simulate handles POST /api/v1/simulate.
func (h *SimulateHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	series, datasetName, err := h.loadSeries(req)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_DATA", err.Error())
		return
	}

	storageCfg, err := h.buildStorage(req.Storage)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_STORAGE", err.Error())
		return
	}
	params := storageCfg.ToParams()
	storage, err := model.NewEnergyStorage(params)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_STORAGE", err.Error())
		return
	}

	strat, err := buildStrategy(req.Strategy.Name, req.Strategy.Params, h.logger)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_STRATEGY", err.Error())
		return
	}

	// Trade details are needed both for the optional response arrays and for
	// persisting the run.
	keepDetails := req.Options.IncludeHistory || req.Options.IncludeTransactions ||
		req.Options.IncludeTrades || req.Options.Persist

	engine := backtest.New(h.logger)
	started := time.Now()
	result, err := engine.Run(series, storage, strat, backtest.Options{
		MaxDays:     req.Options.MaxDays,
		KeepDetails: keepDetails,
	})
	if err != nil {
		observability.RecordSimulation(strat.Name(), "error", time.Since(started).Seconds(), 0)
		abortWithError(c, http.StatusInternalServerError, "SIMULATION_ERROR", err.Error())
		return
	}
	observability.RecordSimulation(strat.Name(), "ok", time.Since(started).Seconds(), result.DayCount())

	resp := h.buildResponse(result, req.Options)

	if req.Options.Economics {
		res := economics.Analyze(params,
			resp.Summary.AnnualProfit, resp.Summary.AnnualCycles, h.cfg.Economics)
		resp.Economics = &res
	}

	if req.Options.Persist {
		run := buildRun(result, datasetName, resp.Economics)
		if err := h.runs.SaveRun(c.Request.Context(), run); err != nil {
			abortWithError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error())
			return
		}
		resp.ID = run.ID
	}

	c.JSON(http.StatusOK, resp)
}

// loadSeries resolves the price series: inline prices win over a dataset
// path. The returned name is what a persisted run records as its dataset.
func (h *SimulateHandler) loadSeries(req models.SimulateRequest) ([]model.PricePoint, string, error) {
	if len(req.Prices) > 0 {
		series := make([]model.PricePoint, len(req.Prices))
		for i, p := range req.Prices {
			series[i] = model.PricePoint{Time: p.Time, Price: p.Price}
		}
		sort.SliceStable(series, func(i, j int) bool { return series[i].Time.Before(series[j].Time) })
		return series, "", nil
	}

	if req.Dataset == "" {
		return nil, "", fmt.Errorf("either dataset or prices is required")
	}

	path := req.Dataset
	if !filepath.IsAbs(path) {
		path = filepath.Join(h.cfg.Data.DatasetsDir, path)
	}
	series, hit, err := h.cache.Load(path)
	if err != nil {
		return nil, "", err
	}
	observability.RecordDatasetCache(hit)
	return series, req.Dataset, nil
}

// buildStorage resolves the request's storage asset: the named preset file
// when one is given, the server defaults otherwise, explicit request fields
// merged on top.
func (h *SimulateHandler) buildStorage(req models.StorageConfig) (config.StorageConfig, error) {
	base := h.cfg.Storage
	if req.Preset != "" {
		path := filepath.Join(h.cfg.API.PresetsDir, req.Preset+".yaml")
		loaded, err := config.LoadStorageFile(path)
		if err != nil {
			return config.StorageConfig{}, fmt.Errorf("load storage preset %q: %w", req.Preset, err)
		}
		base = loaded
	}
	return config.MergeStorage(base, storageOverride(req)), nil
}

// storageOverride maps request storage fields onto the config shape so they
// can be merged over a preset or the server defaults.
func storageOverride(req models.StorageConfig) config.StorageConfig {
	return config.StorageConfig{
		Name:        req.Name,
		CapacityMWh: req.CapacityMWh,
		ChargeRate:  req.ChargeRate,
		Efficiency:  req.Efficiency,
		FeePerMWh:   req.FeePerMWh,
	}
}

func (h *SimulateHandler) buildResponse(result *backtest.RunResult, opts models.SimulateOptions) models.SimulateResponse {
	days := make([]models.DaySummary, 0, len(result.Days))
	for _, day := range result.Days {
		s := models.DaySummary{
			Date:           day.Date.Format("2006-01-02"),
			Profit:         day.Profit,
			Cycles:         day.Cycles,
			ChargeCount:    day.ChargeCount,
			DischargeCount: day.DischargeCount,
			InitialLevel:   day.InitialLevel,
			FinalLevel:     day.FinalLevel,
			ChargedMWh:     day.ChargedMWh,
			DischargedMWh:  day.DischargedMWh,
			Cost:           day.Cost,
			Revenue:        day.Revenue,
		}
		if opts.IncludeTransactions {
			s.Transactions = convertTransactions(day.Transactions)
		}
		if opts.IncludeHistory {
			s.History = convertHistory(day.History)
		}
		if opts.IncludeTrades {
			s.Trades = day.Trades
		}
		days = append(days, s)
	}

	return models.SimulateResponse{
		Status: "completed",
		Summary: models.RunSummary{
			Strategy:         result.StrategyName,
			Storage:          result.Storage,
			StartDate:        result.StartDate,
			EndDate:          result.EndDate,
			TotalDays:        result.DayCount(),
			TotalProfit:      result.TotalProfit,
			TotalCycles:      result.TotalCycles,
			AnnualProfit:     economics.Annualize(result.TotalProfit, result.DayCount()),
			AnnualCycles:     economics.Annualize(result.TotalCycles, result.DayCount()),
			FinalLevel:       result.FinalLevel,
			ActualEfficiency: result.ActualEfficiency,
			EnergyEfficiency: result.EnergyEfficiency,
			ChargedMWh:       result.Totals.ChargedEnergyMWh,
			DischargedMWh:    result.Totals.DischargedEnergyMWh,
		},
		Days: days,
	}
}

func convertTransactions(txs []model.Transaction) []models.TransactionRow {
	rows := make([]models.TransactionRow, len(txs))
	for i, tx := range txs {
		row := models.TransactionRow{
			Kind:        string(tx.Kind),
			TimeIndex:   tx.TimeIndex,
			Interval:    tx.Interval,
			Price:       tx.Price,
			AmountMWh:   tx.AmountMWh(),
			EnergyLevel: tx.EnergyLevel,
		}
		switch tx.Kind {
		case model.TransactionCharge:
			row.Cost = tx.Charge.Cost
			row.Fee = tx.Charge.TransactionFee
		case model.TransactionDischarge:
			row.UsableMWh = tx.Discharge.AmountUsableMWh
			row.Revenue = tx.Discharge.Revenue
			row.Fee = tx.Discharge.TransactionFee
		}
		rows[i] = row
	}
	return rows
}

func convertHistory(history []strategy.EnergyHistoryEntry) []models.HistoryRow {
	rows := make([]models.HistoryRow, len(history))
	for i, entry := range history {
		rows[i] = models.HistoryRow{
			Index:       entry.TimeIndex,
			EnergyLevel: entry.EnergyLevel,
			Action:      entry.Action.String(),
		}
	}
	return rows
}

// buildRun converts a finished result into a persistable run.
func buildRun(result *backtest.RunResult, dataset string, econ *economics.Result) *store.Run {
	run := &store.Run{
		RunRecord: store.RunRecord{
			ID:               store.NewRunID(),
			CreatedAt:        time.Now().UTC(),
			Dataset:          dataset,
			StrategyName:     result.StrategyName,
			Storage:          result.Storage,
			TotalDays:        result.DayCount(),
			TotalProfit:      result.TotalProfit,
			TotalCycles:      result.TotalCycles,
			AnnualProfit:     economics.Annualize(result.TotalProfit, result.DayCount()),
			AnnualCycles:     economics.Annualize(result.TotalCycles, result.DayCount()),
			FinalLevel:       result.FinalLevel,
			ActualEfficiency: result.ActualEfficiency,
			EnergyEfficiency: result.EnergyEfficiency,
		},
	}
	if econ != nil {
		npv := econ.NPV.NPV
		run.NPV = &npv
	}

	for _, day := range result.Days {
		run.Days = append(run.Days, store.DayRecord{
			Date:           day.Date,
			Profit:         day.Profit,
			Cycles:         day.Cycles,
			ChargeCount:    day.ChargeCount,
			DischargeCount: day.DischargeCount,
			InitialLevel:   day.InitialLevel,
			FinalLevel:     day.FinalLevel,
		})
		for _, trade := range day.Trades {
			run.Trades = append(run.Trades, store.TradeRecord{
				Date:        day.Date,
				Kind:        trade.Type,
				StartIndex:  trade.StartIndex,
				EndIndex:    trade.EndIndex,
				StartEnergy: trade.StartEnergy,
				EndEnergy:   trade.EndEnergy,
				EnergyMWh:   trade.EnergyMWh,
				Intervals:   trade.Intervals,
			})
		}
	}
	return run
}

// buildStrategy constructs a strategy from its name and loose parameters.
// The CLI carries its own copy of this mapping.
func buildStrategy(name string, params map[string]any, logger *logrus.Logger) (strategy.Strategy, error) {
	switch name {
	case "threshold_lookahead":
		window := int(mustNum(params, "window_size", float64(strategy.DefaultWindowSize)))
		return strategy.NewThresholdLookahead(strategy.LookaheadParams{WindowSize: window}, logger), nil
	case "daily_schedule":
		p := strategy.DefaultScheduleParams()
		p.ChargeStart = mustStr(params, "charge_start", p.ChargeStart)
		p.ChargeEnd = mustStr(params, "charge_end", p.ChargeEnd)
		p.DischargeStart = mustStr(params, "discharge_start", p.DischargeStart)
		p.DischargeEnd = mustStr(params, "discharge_end", p.DischargeEnd)
		return strategy.NewDailySchedule(p)
	default:
		return nil, fmt.Errorf("unsupported strategy: %q", name)
	}
}

// Helper functions

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

func mustNum(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		}
	}
	return def
}

func mustStr(m map[string]any, key string, def string) string {
	if v, ok := m[key]; ok && v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}
