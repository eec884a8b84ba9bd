package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vpiFeedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<verbraucherpreisindex basisjahr="2020">
  <wert jahr="2025" monat="06">121.3</wert>
  <wert jahr="2025" monat="04">120.8</wert>
  <wert jahr="2025" monat="05">121.0</wert>
</verbraucherpreisindex>`

func TestParseVpiReadings(t *testing.T) {
	readings, err := ParseVpiReadings([]byte(vpiFeedFixture))
	require.NoError(t, err)
	require.Len(t, readings, 3)

	// Readings come back chronologically regardless of document order
	assert.Equal(t, 120.8, readings[0].Value)
	assert.Equal(t, 121.0, readings[1].Value)
	assert.Equal(t, 121.3, readings[2].Value)
	assert.Equal(t, time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC), readings[0].Month)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), readings[2].Month)
}

func TestParseVpiReadingsEmptyFeed(t *testing.T) {
	readings, err := ParseVpiReadings([]byte(`<verbraucherpreisindex basisjahr="2020"></verbraucherpreisindex>`))
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestParseVpiReadingsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"not xml", `{"jahr": 2025}`},
		{"wrong root", `<preisindex><wert jahr="2025" monat="06">121.3</wert></preisindex>`},
		{"missing year", `<verbraucherpreisindex><wert monat="06">121.3</wert></verbraucherpreisindex>`},
		{"bad month", `<verbraucherpreisindex><wert jahr="2025" monat="13">121.3</wert></verbraucherpreisindex>`},
		{"bad value", `<verbraucherpreisindex><wert jahr="2025" monat="06">n/a</wert></verbraucherpreisindex>`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseVpiReadings([]byte(tc.data))
			assert.Error(t, err)
		})
	}
}

func TestFetchReadings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(vpiFeedFixture))
	}))
	defer server.Close()

	service := NewVpiService(server.URL)
	readings, err := service.FetchReadings()
	require.NoError(t, err)
	assert.Len(t, readings, 3)
}

func TestFetchReadingsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	service := NewVpiService(server.URL)
	_, err := service.FetchReadings()
	assert.Error(t, err)
}

func TestLatestReading(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(vpiFeedFixture))
	}))
	defer server.Close()

	service := NewVpiService(server.URL)
	latest, err := service.LatestReading()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 121.3, latest.Value)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), latest.Month)
}
