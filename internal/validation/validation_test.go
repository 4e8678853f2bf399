package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
)

func TestStruct_ProjectBudgetRange(t *testing.T) {
	in := models.ProjectInput{
		Title:       "Лендинг",
		Description: "Одностраничный сайт для кофейни",
		MinBudget:   500,
		MaxBudget:   100,
		Duration:    7,
		Category:    "WEB",
	}

	err := Struct(in)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, apperror.UserMessage(err), "maxBudget")

	in.MaxBudget = 500
	assert.NoError(t, Struct(in))
}

func TestStruct_ReportsEveryField(t *testing.T) {
	err := Struct(models.ProposalInput{})
	require.Error(t, err)

	msg := apperror.UserMessage(err)
	for _, field := range []string{"projectId", "freelancerId", "bidAmount", "coverLetter", "status"} {
		assert.Contains(t, msg, field)
	}
}

func TestStruct_UPI(t *testing.T) {
	assert.NoError(t, Struct(models.UPIRequest{UPIID: "anna.k@okaxis", Amount: 10}))

	err := Struct(models.UPIRequest{UPIID: "not-an-upi", Amount: 10})
	require.Error(t, err)
	assert.Contains(t, apperror.UserMessage(err), "upiId")
}

func TestIsUPI(t *testing.T) {
	assert.True(t, IsUPI("user@paytm"))
	assert.True(t, IsUPI(" 9876543210@ybl "))
	assert.False(t, IsUPI("@bank"))
	assert.False(t, IsUPI("user@"))
	assert.False(t, IsUPI("user@1bank"))
}
