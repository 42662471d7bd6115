package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/toolasset/internal/inventory/domain"
)

func strp(s string) *string { return &s }

func seedPart(t *testing.T, s *Store, layer string, category *string, partNo, maker string) *domain.Part {
	t.Helper()
	var part *domain.Part
	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		code, err := r.Codes.Issue(ctx, layer)
		if err != nil {
			return err
		}
		now := time.Now()
		part = &domain.Part{
			AssetCode: code, LayerCode: layer, CategoryCode: category, PartNo: partNo, Maker: maker,
			DisplayName: partNo, StockUnit: domain.DefaultStockUnit, Status: domain.StatusActive,
			CreatedAt: now, UpdatedAt: now,
		}
		return r.Parts.Insert(ctx, part)
	})
	require.NoError(t, err)
	return part
}

func seedAssembly(t *testing.T, s *Store, name string) *domain.Assembly {
	t.Helper()
	var a *domain.Assembly
	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		code, err := r.Codes.Issue(ctx, domain.NamespaceAssembly)
		if err != nil {
			return err
		}
		now := time.Now()
		a = &domain.Assembly{AssemblyCode: code, DisplayName: name, CreatedAt: now, UpdatedAt: now}
		return r.Assemblies.Insert(ctx, a)
	})
	require.NoError(t, err)
	return a
}

func view(t *testing.T, s *Store, fn func(ctx context.Context, r domain.Repositories)) {
	t.Helper()
	require.NoError(t, s.View(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		fn(ctx, r)
		return nil
	}))
}

func TestPartRepository_InsertAndFind(t *testing.T) {
	_, s := setupTestStore(t)
	p := seedPart(t, s, "INSERT", strp("MILLING_INSERT"), "APMT1135", "Sandvik")
	require.Greater(t, p.ID, int64(0))

	view(t, s, func(ctx context.Context, r domain.Repositories) {
		found, err := r.Parts.FindByCode(ctx, p.AssetCode)
		require.NoError(t, err)
		require.Equal(t, "APMT1135", found.PartNo)
		require.Equal(t, "MILLING_INSERT", *found.CategoryCode)
		require.Nil(t, found.CategoryFreeText)
		require.False(t, found.UnitPrice.Valid)
		require.Equal(t, domain.StatusActive, found.Status)
		require.WithinDuration(t, p.CreatedAt, found.CreatedAt, time.Second)

		_, err = r.Parts.FindByCode(ctx, "INSERT_99999999")
		require.ErrorIs(t, err, domain.ErrNotFound)
		_, err = r.Parts.IDByCode(ctx, "INSERT_99999999")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPartRepository_ListFiltersAndOrder(t *testing.T) {
	_, s := setupTestStore(t)
	seedPart(t, s, "SCREW", nil, "M5x12", "Misumi")
	seedPart(t, s, "INSERT", strp("TURNING_INSERT"), "CNMG", "Kyocera")
	seedPart(t, s, "INSERT", strp("MILLING_INSERT"), "APMT", "Sandvik")
	seedPart(t, s, "HOLDER", strp("BT_HOLDER"), "BT40", "Big Daishowa")

	view(t, s, func(ctx context.Context, r domain.Repositories) {
		all, err := r.Parts.List(ctx, domain.PartFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		var order []string
		for _, p := range all {
			order = append(order, p.PartNo)
		}
		require.Equal(t, []string{"BT40", "APMT", "CNMG", "M5x12"}, order)

		inserts, err := r.Parts.List(ctx, domain.PartFilter{LayerCode: "INSERT", CategoryCode: "MILLING_INSERT"})
		require.NoError(t, err)
		require.Len(t, inserts, 1)

		byMaker, err := r.Parts.List(ctx, domain.PartFilter{Query: "daisho"})
		require.NoError(t, err)
		require.Len(t, byMaker, 1)
		require.Equal(t, "BT40", byMaker[0].PartNo)

		active, err := r.Parts.List(ctx, domain.PartFilter{Status: "active", Limit: 2})
		require.NoError(t, err)
		require.Len(t, active, 2)

		archived, err := r.Parts.List(ctx, domain.PartFilter{Status: "ARCHIVED"})
		require.NoError(t, err)
		require.Empty(t, archived)
	})
}

func TestPartRepository_UpdateStampsAndCounts(t *testing.T) {
	_, s := setupTestStore(t)
	p := seedPart(t, s, "SCREW", nil, "M5", "Misumi")

	patch, err := domain.PartPatch{"unit_price": "12.30", "stock_qty": 4}.Normalize()
	require.NoError(t, err)

	later := p.UpdatedAt.Add(time.Hour)
	err = s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		n, err := r.Parts.Update(ctx, p.AssetCode, patch, later)
		require.Equal(t, int64(1), n)
		if err != nil {
			return err
		}
		n, err = r.Parts.Update(ctx, "SCREW_99999999", patch, later)
		require.Zero(t, n)
		return err
	})
	require.NoError(t, err)

	view(t, s, func(ctx context.Context, r domain.Repositories) {
		found, err := r.Parts.FindByCode(ctx, p.AssetCode)
		require.NoError(t, err)
		require.True(t, found.UnitPrice.Decimal.Equal(decimal.RequireFromString("12.3")))
		require.Equal(t, 4.0, found.StockQty)
		require.Equal(t, later.Unix(), found.UpdatedAt.Unix())
	})
}

func TestPartRepository_UpdateRejectsUnlistedColumns(t *testing.T) {
	_, s := setupTestStore(t)
	p := seedPart(t, s, "SCREW", nil, "M5", "Misumi")

	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		_, err := r.Parts.Update(ctx, p.AssetCode, domain.PartPatch{"asset_code": "HACK"}, time.Now())
		return err
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAssemblyRepository_ItemsScopedToParent(t *testing.T) {
	_, s := setupTestStore(t)
	holder := seedPart(t, s, "HOLDER", strp("HSK_HOLDER"), "HSK63", "Kennametal")
	a1 := seedAssembly(t, s, "one")
	a2 := seedAssembly(t, s, "two")

	var itemID int64
	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		var err error
		itemID, err = r.Assemblies.InsertItem(ctx, a1.ID, holder.ID, domain.AssemblyItemInput{Qty: 1, Role: strp(" ")})
		return err
	})
	require.NoError(t, err)

	err = s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		n, err := r.Assemblies.DeleteItem(ctx, a2.ID, itemID)
		require.Zero(t, n, "item belongs to another assembly")
		return err
	})
	require.NoError(t, err)

	view(t, s, func(ctx context.Context, r domain.Repositories) {
		items, err := r.Assemblies.ListItems(ctx, a1.ID, domain.DefaultItemListLimit)
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, holder.AssetCode, items[0].AssetCode)
		require.Equal(t, "HOLDER", items[0].LayerCode)
		require.Nil(t, items[0].Role, "blank role stored as NULL")
	})
}

func TestAssemblyRepository_ListAndUpdate(t *testing.T) {
	_, s := setupTestStore(t)
	a := seedAssembly(t, s, "face mill 50")
	seedAssembly(t, s, "drill 8")

	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		n, err := r.Assemblies.Update(ctx, a.AssemblyCode, domain.AssemblyUpdate{Note: strp("  "), ToolDiameter: ptrFloat(50)}, time.Now())
		require.Equal(t, int64(1), n)
		return err
	})
	require.NoError(t, err)

	view(t, s, func(ctx context.Context, r domain.Repositories) {
		list, err := r.Assemblies.List(ctx, domain.AssemblyFilter{Query: "mill", Limit: 10})
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, 50.0, *list[0].ToolDiameter)
		require.Nil(t, list[0].Note)

		all, err := r.Assemblies.List(ctx, domain.AssemblyFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, "ASM_00000001", all[0].AssemblyCode)
	})
}

func ptrFloat(f float64) *float64 { return &f }

func TestToolingListRepository_ItemOrder(t *testing.T) {
	_, s := setupTestStore(t)
	var asms []*domain.Assembly
	for i := 0; i < 4; i++ {
		asms = append(asms, seedAssembly(t, s, "asm"))
	}

	var listID int64
	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		now := time.Now()
		l := &domain.ToolingList{ListCode: "TL_00000001", Title: "Line A", CreatedAt: now, UpdatedAt: now}
		if err := r.ToolingLists.Insert(ctx, l); err != nil {
			return err
		}
		listID = l.ID
		for i, tn := range []string{"10", "2", "T1", "1"} {
			if _, err := r.ToolingLists.InsertItem(ctx, l.ID, asms[i].ID, tn, 1, nil); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	view(t, s, func(ctx context.Context, r domain.Repositories) {
		items, err := r.ToolingLists.ListItems(ctx, listID, domain.DefaultItemListLimit)
		require.NoError(t, err)
		var order []string
		for _, it := range items {
			order = append(order, it.ToolNo)
		}
		// "T1" casts to 0 and sorts first.
		require.Equal(t, []string{"T1", "1", "2", "10"}, order)
	})
}

func TestToolingListRepository_DuplicateToolNoIsConflict(t *testing.T) {
	_, s := setupTestStore(t)
	a1 := seedAssembly(t, s, "a")
	a2 := seedAssembly(t, s, "b")

	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		now := time.Now()
		l := &domain.ToolingList{ListCode: "TL_00000001", Title: "Line A", CreatedAt: now, UpdatedAt: now}
		if err := r.ToolingLists.Insert(ctx, l); err != nil {
			return err
		}
		if _, err := r.ToolingLists.InsertItem(ctx, l.ID, a1.ID, "1", 1, nil); err != nil {
			return err
		}
		_, err := r.ToolingLists.InsertItem(ctx, l.ID, a2.ID, "1", 1, nil)
		return err
	})
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestDictionaryRepository_Labels(t *testing.T) {
	_, s := setupTestStore(t)

	view(t, s, func(ctx context.Context, r domain.Repositories) {
		labels, err := r.Dictionary.Labels(ctx)
		require.NoError(t, err)
		require.Equal(t, "インサート", labels.Layers["INSERT"])
		require.Equal(t, "エンドミル", labels.Categories["END_MILL"])
		require.Equal(t, "廃止", labels.Statuses["ARCHIVED"])
	})
}

func TestOperationLogRepository_AppendAndList(t *testing.T) {
	_, s := setupTestStore(t)

	err := s.Update(context.Background(), func(ctx context.Context, r domain.Repositories) error {
		for _, action := range []string{domain.ActionPartAdd, domain.ActionPartUpdate} {
			entry, err := domain.NewOperationLog(action, domain.TargetPart, "SCREW_00000001", "tester", nil,
				map[string]any{"k": "v"}, nil, nil)
			if err != nil {
				return err
			}
			if err := r.Logs.Append(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	view(t, s, func(ctx context.Context, r domain.Repositories) {
		logs, err := r.Logs.ListByTarget(ctx, domain.TargetPart, "SCREW_00000001", 0)
		require.NoError(t, err)
		require.Len(t, logs, 2)
		require.Equal(t, domain.ActionPartAdd, logs[0].Action)
		require.JSONEq(t, `{"k":"v"}`, string(logs[0].Patch))
		require.Nil(t, logs[0].Before)
		require.Nil(t, logs[0].Reason)
	})
}
