package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/errors"
	"storefront/internal/model"
)

func TestTransactionService_GetForUser(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		found   *model.Transaction
		findErr error
		wantErr error
	}{
		{"own transaction", 3, &model.Transaction{ID: 1, UserID: 3}, nil, nil},
		{"someone else's", 4, &model.Transaction{ID: 1, UserID: 3}, nil, errors.ErrForbidden},
		{"missing", 3, nil, gorm.ErrRecordNotFound, errors.ErrTransactionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockTransactionRepository)
			if tt.found != nil {
				repo.On("FindByID", mock.Anything, uint(1)).Return(tt.found, nil)
			} else {
				repo.On("FindByID", mock.Anything, uint(1)).Return(nil, tt.findErr)
			}
			svc := NewTransactionService(repo)

			txn, err := svc.GetForUser(context.Background(), tt.userID, 1)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, txn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, uint(1), txn.ID)
		})
	}
}

func TestTransactionService_Delete(t *testing.T) {
	repo := new(MockTransactionRepository)
	repo.On("FindByID", mock.Anything, uint(1)).Return(&model.Transaction{ID: 1}, nil)
	repo.On("FindByID", mock.Anything, uint(2)).Return(nil, gorm.ErrRecordNotFound)
	repo.On("Delete", mock.Anything, uint(1)).Return(nil)
	svc := NewTransactionService(repo)

	require.NoError(t, svc.Delete(context.Background(), 1))
	assert.ErrorIs(t, svc.Delete(context.Background(), 2), errors.ErrTransactionNotFound)
	repo.AssertNumberOfCalls(t, "Delete", 1)
}
