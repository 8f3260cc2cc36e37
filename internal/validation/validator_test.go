package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfieapp/shelfie-server/internal/errors"
	"github.com/shelfieapp/shelfie-server/internal/validation"
)

type shelveRequest struct {
	GoogleBooksID string `json:"googleBooksId" validate:"required"`
	Title         string `json:"title" validate:"required,max=500"`
	Category      string `json:"category" validate:"required,category"`
	Rating        int    `json:"rating" validate:"gte=0,lte=5"`
}

type renameRequest struct {
	Username string `json:"username" validate:"required,min=1,max=30,handle"`
}

func TestValidator_Success(t *testing.T) {
	v := validation.New()

	err := v.Validate(shelveRequest{GoogleBooksID: "XYZ", Title: "Dune", Category: "Read", Rating: 4})
	assert.NoError(t, err)

	err = v.Validate(renameRequest{Username: "book_worm-42"})
	assert.NoError(t, err)
}

func TestValidator_FieldErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       any
		wantField string
	}{
		{"missing catalog id", shelveRequest{Title: "Dune", Category: "Read"}, "googleBooksId"},
		{"unknown category", shelveRequest{GoogleBooksID: "x", Title: "Dune", Category: "Abandoned"}, "category"},
		{"rating too high", shelveRequest{GoogleBooksID: "x", Title: "Dune", Category: "Read", Rating: 6}, "rating"},
		{"negative rating", shelveRequest{GoogleBooksID: "x", Title: "Dune", Category: "Read", Rating: -1}, "rating"},
		{"handle with spaces", renameRequest{Username: "book worm"}, "username"},
		{"handle with punctuation", renameRequest{Username: "bob!"}, "username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domainerrors.CodeValidation, derr.Code)

			details, ok := derr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_CategoryMessageListsChoices(t *testing.T) {
	v := validation.New()

	err := v.Validate(shelveRequest{GoogleBooksID: "x", Title: "t", Category: "DNF"})
	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)

	details := derr.Details.(map[string]string)
	assert.Contains(t, details["category"], "Currently Reading")
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Var("username", "alice", "handle"))

	err := v.Var("username", "al ice", "handle")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
}
