package cart

import (
	"context"
	"testing"

	pkgerrors "github.com/basecampsupply/storefront-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(newTestStore(newMockKV()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceAddLinePersistsAcrossCalls(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	line := Line{ProductID: "p1", VariantID: "v1", Title: "Hoodie", UnitPrice: decimal.NewFromFloat(49.99), Quantity: 1}
	if _, err := svc.AddLine(ctx, "tok-1", line); err != nil {
		t.Fatalf("add: %v", err)
	}
	state, err := svc.AddLine(ctx, "tok-1", line)
	if err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(state.Lines) != 1 || state.Lines[0].Quantity != 2 {
		t.Fatalf("expected merged quantity 2, got %+v", state.Lines)
	}

	fetched, err := svc.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !fetched.Total.Equal(state.Total) {
		t.Fatalf("expected persisted total %s, got %s", state.Total, fetched.Total)
	}
}

func TestServiceTokensIsolateCarts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	line := Line{ProductID: "p1", UnitPrice: decimal.NewFromInt(10)}
	if _, err := svc.AddLine(ctx, "tok-a", line); err != nil {
		t.Fatalf("add: %v", err)
	}

	other, err := svc.Get(ctx, "tok-b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !other.IsEmpty() {
		t.Fatalf("expected tok-b cart empty, got %+v", other.Lines)
	}
}

func TestServiceSetQuantityZeroRemovesLine(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "tok-1", Line{ProductID: "p1", UnitPrice: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("add: %v", err)
	}
	state, err := svc.SetQuantity(ctx, "tok-1", "p1", 0)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if !state.IsEmpty() {
		t.Fatalf("expected empty cart, got %+v", state.Lines)
	}
}

func TestServiceClearDropsPersistedCart(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "tok-1", Line{ProductID: "p1", UnitPrice: decimal.NewFromInt(10)}); err != nil {
		t.Fatalf("add: %v", err)
	}
	state, err := svc.Clear(ctx, "tok-1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !state.IsEmpty() {
		t.Fatalf("expected cleared state, got %+v", state.Lines)
	}

	fetched, err := svc.Get(ctx, "tok-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !fetched.IsEmpty() {
		t.Fatalf("expected persisted cart empty, got %+v", fetched.Lines)
	}
}

func TestServiceRejectsMissingToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Get(context.Background(), "  ")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceRejectsLineWithoutProduct(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AddLine(context.Background(), "tok-1", Line{UnitPrice: decimal.NewFromInt(1)})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
