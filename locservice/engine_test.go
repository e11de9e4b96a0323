package locservice

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleRequest(numPicks int) LocationRequest {
	now := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	req := LocationRequest{
		SourceOriginTime: now.UnixMilli(),
		SourceLatitude:   35.0,
		SourceLongitude:  -118.0,
		SourceDepth:      10.0,
		EarthModel:       "ak135",
		UseSVD:           false,
	}

	lats := []float64{36, 37, 34, 33, 38, 32, 39}
	lons := []float64{-117, -116, -119, -120, -115, -121, -114}
	for i := 0; i < numPicks; i++ {
		req.InputData = append(req.InputData, PickInput{
			ID:               "",
			StationCode:      string(rune('A' + i)),
			NetworkCode:      "US",
			Channel:          "BHZ",
			StationLatitude:  lats[i%len(lats)],
			StationLongitude: lons[i%len(lons)],
			Source:           "US",
			Author:           "auto",
			AuthorType:       1,
			Time:             now.Add(time.Duration(20+i) * time.Second).UnixMilli(),
			AssociatedPhase:  "P",
			Use:              true,
			Affinity:         1.0,
		})
	}
	return req
}

func TestBuildEventConvertsRequest(t *testing.T) {
	req := sampleRequest(5)
	event, err := buildEvent(req)
	require.NoError(t, err)
	require.Len(t, event.Picks, 5)
	require.Len(t, event.Groups, 5)
	require.Equal(t, "ak135", event.EarthModel)
}

func TestBuildEventPreservesRequestedUseFlag(t *testing.T) {
	req := sampleRequest(3)
	req.InputData[1].Use = false

	event, err := buildEvent(req)
	require.NoError(t, err)
	require.False(t, event.Picks[1].Used)
	require.False(t, event.Picks[1].CommandUse)
	require.True(t, event.Picks[0].CommandUse)
}

func TestBuildEventRejectsEmptyInput(t *testing.T) {
	req := sampleRequest(0)
	_, err := buildEvent(req)
	require.Error(t, err)
}

func TestEngineLocateInsufficientData(t *testing.T) {
	engine := NewEngine(nil)
	result, err := engine.Locate(sampleRequest(2))
	require.NoError(t, err)
	require.Equal(t, "LOCATION_FAILED", result.ExitCode)
}

func TestEngineLocateProducesResult(t *testing.T) {
	engine := NewEngine(nil)
	result, err := engine.Locate(sampleRequest(6))
	require.NoError(t, err)
	require.NotEmpty(t, result.Picks)
	require.NotEqual(t, "", result.ExitCode)
}

func TestHandleLocateRoundTrip(t *testing.T) {
	engine := NewEngine(nil)
	router := NewRouter(engine)

	body, err := json.Marshal(sampleRequest(6))
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/ws/locator/locate", bytes.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var result LocationResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
}

func TestHandleLocateRejectsBadBody(t *testing.T) {
	engine := NewEngine(nil)
	router := NewRouter(engine)

	request := httptest.NewRequest(http.MethodPost, "/ws/locator/locate", bytes.NewReader([]byte("not json")))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
