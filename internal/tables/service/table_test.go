package service

import (
	"context"
	"testing"

	"tablebook/internal/repository/memory"
	"tablebook/internal/tables/validator"
	"tablebook/pkg/auth"
	apperrors "tablebook/pkg/errors"
	"tablebook/pkg/logger"
	"tablebook/pkg/model"
	"tablebook/pkg/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (TableService, string, context.Context) {
	t.Helper()
	log := logger.Discard()
	store := memory.NewStore()

	restaurant := &model.Restaurant{
		ID:                     uuid.NewString(),
		Slug:                   "la-bella",
		Name:                   "La Bella",
		WorkingHoursStart:      "10:00",
		WorkingHoursEnd:        "22:00",
		ReservationSlotMinutes: 90,
		TimeZone:               "UTC",
	}
	require.NoError(t, store.Restaurants().Create(context.Background(), restaurant))

	v := validator.NewTableValidator(validation.New(log), log)
	svc := NewTableService(store.Restaurants(), store.Tables(), v, log)
	ctx := auth.WithClaims(context.Background(), &auth.Claims{Role: auth.RoleOperator, RestaurantID: restaurant.ID})
	return svc, restaurant.ID, ctx
}

func TestCreate(t *testing.T) {
	svc, rid, ctx := setup(t)

	table, err := svc.Create(ctx, rid, &model.Table{Number: " t1 ", Capacity: 4, Zone: "Main Hall"})
	require.NoError(t, err)
	assert.NotEmpty(t, table.ID)
	assert.Equal(t, rid, table.RestaurantID)
	assert.Equal(t, "T1", table.Number)
	assert.Equal(t, "main_hall", table.Zone)
	assert.True(t, table.IsActive)

	_, err = svc.Create(ctx, rid, &model.Table{Number: "T1", Capacity: 2})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "got %v", err)

	_, err = svc.Create(ctx, rid, &model.Table{Number: "T9", Capacity: 0})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation), "got %v", err)
}

func TestListAndSoftDisable(t *testing.T) {
	svc, rid, ctx := setup(t)

	b, err := svc.Create(ctx, rid, &model.Table{Number: "B", Capacity: 2, SortOrder: 2})
	require.NoError(t, err)
	_, err = svc.Create(ctx, rid, &model.Table{Number: "A", Capacity: 2, SortOrder: 2})
	require.NoError(t, err)
	_, err = svc.Create(ctx, rid, &model.Table{Number: "C", Capacity: 2, SortOrder: 1})
	require.NoError(t, err)

	numbers := func(list []*model.Table) []string {
		out := []string{}
		for _, tbl := range list {
			out = append(out, tbl.Number)
		}
		return out
	}

	list, err := svc.List(ctx, rid, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, numbers(list))

	inactive := false
	_, err = svc.Update(ctx, rid, b.ID, &model.TableUpdate{IsActive: &inactive})
	require.NoError(t, err)

	list, err = svc.List(ctx, rid, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, numbers(list))

	list, err = svc.List(ctx, rid, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B"}, numbers(list))
}

func TestUpdate(t *testing.T) {
	svc, rid, ctx := setup(t)
	a, err := svc.Create(ctx, rid, &model.Table{Number: "A", Capacity: 2})
	require.NoError(t, err)
	_, err = svc.Create(ctx, rid, &model.Table{Number: "B", Capacity: 2})
	require.NoError(t, err)

	capacity := 6
	updated, err := svc.Update(ctx, rid, a.ID, &model.TableUpdate{Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, 6, updated.Capacity)

	_, err = svc.Update(ctx, rid, a.ID, &model.TableUpdate{Number: "b"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict), "got %v", err)

	_, err = svc.Update(ctx, rid, uuid.NewString(), &model.TableUpdate{Capacity: &capacity})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound), "got %v", err)
}

func TestAuthorization(t *testing.T) {
	svc, rid, _ := setup(t)

	_, err := svc.List(context.Background(), rid, false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	other := auth.WithClaims(context.Background(), &auth.Claims{Role: auth.RoleOperator, RestaurantID: uuid.NewString()})
	_, err = svc.Create(other, rid, &model.Table{Number: "A", Capacity: 2})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	admin := auth.WithClaims(context.Background(), &auth.Claims{Role: auth.RoleAdmin})
	_, err = svc.List(admin, uuid.NewString(), false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
