package models

import (
	"testing"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationIndexRequestValidation(t *testing.T) {
	v := validator.New()

	assert.Error(t, v.Struct(&StationIndexRequest{Station: "s1"}))
	assert.Error(t, v.Struct(&StationIndexRequest{Indicator: "rainfall"}))
	assert.NoError(t, v.Struct(&StationIndexRequest{Indicator: "rainfall", Station: "s1"}))
	assert.Error(t, v.Struct(&StationIndexRequest{Indicator: "temperature", Station: "s1"}))
}

func TestIngestRequestDefaultsToAsync(t *testing.T) {
	req := &IngestRequest{Indicator: "groundwater"}
	require.NoError(t, defaults.Set(req))
	assert.True(t, req.Async)
	assert.NoError(t, validator.New().Struct(req))
}
