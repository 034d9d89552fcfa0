package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createAppRequest struct {
	Name string `validate:"required,min=1,max=100"`
	Type string `validate:"required,oneof=client service"`
}

func TestValidate_Success(t *testing.T) {
	req := createAppRequest{Name: "billing", Type: "service"}
	assert.NoError(t, Validate(req))
}

func TestValidate_MissingRequired(t *testing.T) {
	req := createAppRequest{Type: "service"}
	err := Validate(req)
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	fields := valErr.Fields()
	assert.Contains(t, fields, "Name")
	assert.Equal(t, "is required", fields["Name"])
}

func TestValidate_OneOf(t *testing.T) {
	req := createAppRequest{Name: "billing", Type: "daemon"}
	err := Validate(req)
	require.Error(t, err)

	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))
	assert.Contains(t, valErr.Fields()["Type"], "must be one of")
}

func TestValidationError_ErrorString(t *testing.T) {
	req := createAppRequest{}
	err := Validate(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Name")
	assert.Contains(t, err.Error(), "Type")
}
