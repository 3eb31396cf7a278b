package ir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodesSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("query sensor_alerts: %w", NewUnknownColumn("colour", "sensor_alerts.csv", []string{"shipment_id"}))

	assert.True(t, IsCode(err, ErrCodeUnknownColumn))
	assert.False(t, IsCode(err, ErrCodeSourceNotFound))
	assert.Equal(t, ErrCodeUnknownColumn, CodeOf(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrCodeInternal, CodeOf(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	err := NewSourceNotFound("nope", "mock_data")
	assert.Equal(t, "SOURCE_NOT_FOUND: No tabular file found matching: nope", err.Error())
	assert.Equal(t, "mock_data", err.Details["searched_in"])

	cause := errors.New("bare \" in non-quoted field")
	perr := NewParseFailure("bad.csv", cause)
	assert.ErrorIs(t, perr, cause)
	assert.Contains(t, perr.Error(), "PARSE_FAILURE")
}

func TestUnknownColumnCopiesAvailable(t *testing.T) {
	cols := []string{"a", "b"}
	err := NewUnknownColumn("c", "src", cols)
	cols[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, err.Details["available_columns"])
}
