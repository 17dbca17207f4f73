package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacensus/datacensus/internal/quality"
	"github.com/datacensus/datacensus/internal/testutil"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Logger: testutil.NewTestLogger(t)})
}

func TestClient_Initialize(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/initialize", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "8dbv-wsjq", body["dataset_id"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"dataset_id":              "8dbv-wsjq",
			"dataset_name":            "Test",
			"rows":                    100,
			"columns":                 5,
			"records_count":           100,
			"total_records_available": 100,
			"limit_reached":           false,
		})
	}))

	info, err := client.Initialize(context.Background(), "8dbv-wsjq")
	require.NoError(t, err)
	assert.Equal(t, quality.DatasetInfo{
		ID:                    "8dbv-wsjq",
		Name:                  "Test",
		Rows:                  100,
		Columns:               5,
		RecordsCount:          100,
		TotalRecordsAvailable: 100,
		LimitReached:          false,
	}, info)
}

func TestClient_Initialize_ServerDetail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Dataset no encontrado"})
	}))

	_, err := client.Initialize(context.Background(), "missing")
	var initErr *quality.InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Equal(t, "Dataset no encontrado", initErr.Detail)
}

func TestClient_Initialize_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // force a connection error

	client := NewClient(Config{BaseURL: server.URL, Logger: testutil.NewTestLogger(t)})
	_, err := client.Initialize(context.Background(), "8dbv-wsjq")

	var initErr *quality.InitializationError
	require.ErrorAs(t, err, &initErr)
	assert.Contains(t, initErr.Detail, "Error al conectar con el servidor")
}

func TestClient_LoadData(t *testing.T) {
	t.Run("success with empty body", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/load_data", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		require.NoError(t, client.LoadData(context.Background(), "8dbv-wsjq"))
	})

	t.Run("failure carries detail", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "sin registros"})
		}))

		err := client.LoadData(context.Background(), "8dbv-wsjq")
		var loadErr *quality.LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, "sin registros", loadErr.Detail)
	})
}

func TestClient_FetchCriterion(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/unicidad", r.URL.Path)
		require.Equal(t, "8dbv-wsjq", r.URL.Query().Get("dataset_id"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"score":   8.5,
			"details": map[string]any{"duplicados": 3},
		})
	}))

	score, details, err := client.FetchCriterion(context.Background(), quality.Unicidad, "8dbv-wsjq")
	require.NoError(t, err)
	assert.Equal(t, 8.5, score)
	assert.Equal(t, float64(3), details["duplicados"])
}

func TestClient_FetchCriterion_MissingScoreDefaultsToZero(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"details": map[string]any{}})
	}))

	score, _, err := client.FetchCriterion(context.Background(), quality.Actualidad, "8dbv-wsjq")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestClient_FetchCriterion_IntegerScore(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"score": 7})
	}))

	score, _, err := client.FetchCriterion(context.Background(), quality.Conformidad, "8dbv-wsjq")
	require.NoError(t, err)
	assert.Equal(t, 7.0, score)
}

func TestClient_FetchCriterion_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, _, err := client.FetchCriterion(context.Background(), quality.Accesibilidad, "8dbv-wsjq")
	var fetchErr *quality.MetricFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, quality.Accesibilidad, fetchErr.Criterion)
}

func TestClient_Health(t *testing.T) {
	t.Run("available", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		assert.NoError(t, client.Health(context.Background()))
	})

	t.Run("unavailable", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))

		err := client.Health(context.Background())
		var connErr *quality.ConnectivityError
		assert.ErrorAs(t, err, &connErr)
	})
}
