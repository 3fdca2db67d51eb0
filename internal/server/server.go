package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/milcalc/internal/calculator"
	"github.com/iwvelando/milcalc/internal/config"
	"github.com/iwvelando/milcalc/internal/snapshot"
	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/output"
	"github.com/iwvelando/milcalc/pkg/refdata"
	"github.com/iwvelando/milcalc/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// internalErrorBody is returned for any panic. Details stay in the log.
const internalErrorBody = `{"error":"Something went wrong. Please refresh the page and try again."}` + "\n"

// Options holds the handler dependencies. Zero values fall back to the
// bundled reference tables, an in-memory snapshot store and the default
// upload limit.
type Options struct {
	Tables        *refdata.Tables
	Store         snapshot.Store
	MaxUploadSize int64
	Version       string
}

type handler struct {
	logger        *zap.Logger
	tables        *refdata.Tables
	store         snapshot.Store
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Tables == nil {
		opts.Tables = refdata.Default()
	}
	if opts.Store == nil {
		opts.Store = snapshot.NewMemoryStore()
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		tables:        opts.Tables,
		store:         opts.Store,
		maxUploadSize: opts.MaxUploadSize,
		version:       trimmedVersion,
	}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	// Calculation from a JSON scenario or scenario list
	api.HandleFunc("/calculate", h.handleCalculate).Methods(http.MethodPost)

	// Calculation from an uploaded YAML configuration
	api.HandleFunc("/upload", h.handleUpload).Methods(http.MethodPost)

	// Config serialization for downloads
	api.HandleFunc("/export", h.handleConfigExport).Methods(http.MethodPost)

	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	// Saved scenarios, one collection per calculator
	api.HandleFunc("/snapshots/{calculator}", h.handleSaveSnapshot).Methods(http.MethodPost)
	api.HandleFunc("/snapshots/{calculator}", h.handleListSnapshots).Methods(http.MethodGet)
	api.HandleFunc("/snapshots/{calculator}/{id}", h.handleGetSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/snapshots/{calculator}/{id}", h.handleDeleteSnapshot).Methods(http.MethodDelete)

	return recoverPanics(logger, router)
}

// recoverPanics answers any panic with a static 500 message so one bad
// request never takes the server down.
func recoverPanics(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Error("recovered from panic",
				zap.String("op", "server.recoverPanics"),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, internalErrorBody)
		}()
		next.ServeHTTP(w, r)
	})
}

type calculateResponse struct {
	Scenarios  []string        `json:"scenarios"`
	Results    []output.Report `json:"results"`
	CSV        string          `json:"csv"`
	Warnings   []string        `json:"warnings,omitempty"`
	Duration   string          `json:"duration"`
	ConfigYAML string          `json:"configYaml,omitempty"`
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCalculate"
	start := time.Now()

	payload, status, err := h.decodePayload(w, r)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	configBytes, err := configYAMLFromPayload(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.runCalculation(w, configBytes, start, op)
}

func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpload"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	h.runCalculation(w, buf.Bytes(), start, op)
}

func (h *handler) runCalculation(w http.ResponseWriter, configBytes []byte, start time.Time, op string) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := cfg.ValidateConfiguration(h.tables)

	results, err := calculator.GetResults(h.logger, *cfg, h.tables)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to calculate: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	response := calculateResponse{
		Scenarios:  extractScenarioNames(results),
		Results:    output.BuildReports(results),
		CSV:        output.CsvString(results),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("scenarios calculated",
		zap.String("op", op),
		zap.Int("scenarios", len(results)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version":       h.version,
		"referenceData": h.tables.Version,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"

	payload, status, err := h.decodePayload(w, r)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSaveSnapshot"
	calculatorKey, ok := h.calculatorFromPath(w, r, op)
	if !ok {
		return
	}

	payload, status, err := h.decodePayload(w, r)
	if err != nil {
		h.respondErrorWithOp(w, status, err.Error(), op)
		return
	}
	if inputs, ok := payload["inputs"].(map[string]interface{}); ok {
		payload = inputs
	}
	coerceAmounts(payload)
	payload["active"] = true
	payload["calculator"] = calculatorKey

	cfg, err := decodeScenarios(map[string]interface{}{"scenarios": []interface{}{payload}})
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	scenario := cfg.Scenarios[0]
	scenario.Sanitize()
	if err := scenario.Validate(); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := calculator.Calculate(h.logger, scenario, h.tables)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	saved, err := h.store.Save(r.Context(), snapshot.FromResult(scenario, result))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to save snapshot: %v", err), op)
		return
	}

	h.logger.Info("snapshot saved",
		zap.String("op", op),
		zap.String("calculator", saved.Calculator),
		zap.String("id", saved.ID),
	)
	h.writeJSON(w, http.StatusCreated, saved)
}

func (h *handler) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleListSnapshots"
	calculatorKey, ok := h.calculatorFromPath(w, r, op)
	if !ok {
		return
	}

	snapshots, err := h.store.List(r.Context(), calculatorKey)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to list snapshots: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]snapshot.Snapshot{"snapshots": snapshots})
}

func (h *handler) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetSnapshot"
	calculatorKey, ok := h.calculatorFromPath(w, r, op)
	if !ok {
		return
	}

	saved, err := h.store.Get(r.Context(), calculatorKey, mux.Vars(r)["id"])
	if errors.Is(err, snapshot.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read snapshot: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

func (h *handler) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDeleteSnapshot"
	calculatorKey, ok := h.calculatorFromPath(w, r, op)
	if !ok {
		return
	}

	err := h.store.Delete(r.Context(), calculatorKey, mux.Vars(r)["id"])
	if errors.Is(err, snapshot.ErrNotFound) {
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
		return
	}
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to delete snapshot: %v", err), op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) calculatorFromPath(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	key := strings.ToLower(mux.Vars(r)["calculator"])
	if !config.ValidCalculator(key) {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("unknown calculator %q", key), op)
		return "", false
	}
	return key, true
}

// decodePayload reads a size-limited JSON object body. The returned status
// applies when err is not nil.
func (h *handler) decodePayload(w http.ResponseWriter, r *http.Request) (map[string]interface{}, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("request exceeds limit of %d bytes", h.maxUploadSize)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("failed to decode request: %w", err)
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return payload, 0, nil
}

// configYAMLFromPayload accepts either a configuration with a scenarios list
// or one bare scenario, which is treated as active.
func configYAMLFromPayload(payload map[string]interface{}) ([]byte, error) {
	if raw, ok := payload["scenarios"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return nil, errors.New("invalid scenarios payload: expected array")
		}
		for i, item := range list {
			scenario, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("invalid scenario at index %d: expected object", i)
			}
			coerceAmounts(scenario)
		}
	} else {
		coerceAmounts(payload)
		payload["active"] = true
		payload = map[string]interface{}{"scenarios": []interface{}{payload}}
	}

	configBytes, err := yaml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return configBytes, nil
}

func decodeScenarios(payload map[string]interface{}) (*config.Configuration, error) {
	configBytes, err := yaml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		return nil, err
	}
	if len(cfg.Scenarios) == 0 {
		return nil, errors.New("no scenario in request")
	}
	return cfg, nil
}

var (
	scenarioAmountKeys = []string{
		"homePrice", "downPaymentPercent", "interestRate", "termMonths", "appreciationRate",
		"pmiRate", "horizonMonths", "propertyTax", "homeInsurance", "maintenance", "hoa",
		"utilities", "bah", "monthlyRent", "rentIncreasePercent", "extraMonthlyPayment",
	}
	recurringCostAmountKeys = []string{"monthlyAmount"}
	extraPaymentAmountKeys  = []string{"amount", "startMonth", "endMonth", "frequency"}
)

// coerceAmounts rewrites form-style values such as "$1,250" to numbers. Blank
// values are removed so optional fields fall back to their defaults.
func coerceAmounts(scenario map[string]interface{}) {
	coerceKeys(scenario, scenarioAmountKeys)
	coerceList(scenario["recurringCosts"], recurringCostAmountKeys)
	coerceList(scenario["extraPrincipalPayments"], extraPaymentAmountKeys)
}

func coerceList(raw interface{}, keys []string) {
	items, ok := raw.([]interface{})
	if !ok {
		return
	}
	for _, item := range items {
		if m, ok := item.(map[string]interface{}); ok {
			coerceKeys(m, keys)
		}
	}
}

func coerceKeys(m map[string]interface{}, keys []string) {
	for _, key := range keys {
		value, ok := m[key]
		if !ok {
			continue
		}
		if s, isString := value.(string); value == nil || (isString && strings.TrimSpace(s) == "") {
			delete(m, key)
			continue
		}
		m[key] = validation.ParseAmount(value)
	}
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "referenceData"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func extractScenarioNames(results []calculator.Result) []string {
	names := make([]string, 0, len(results))
	for _, result := range results {
		names = append(names, result.Name)
	}
	return names
}
