package gadget

import (
	"context"
	"errors"
	"testing"
	"time"
)

var testTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestGadget(id, codename string, status Status) *Gadget {
	return &Gadget{
		ID:          id,
		Codename:    codename,
		Description: "Briefcase with a folding rotor blade",
		Status:      status,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
}

func TestSQLiteRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	g := newTestGadget("g-1", "The Silent Hawk", StatusAvailable)
	if err := repo.Create(ctx, g); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.GetByID(ctx, "g-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Codename != g.Codename || got.Description != g.Description || got.Status != StatusAvailable {
		t.Errorf("GetByID() = %+v, want %+v", got, g)
	}
	if !got.CreatedAt.Equal(testTime) || !got.UpdatedAt.Equal(testTime) {
		t.Errorf("timestamps = %v / %v, want %v", got.CreatedAt, got.UpdatedAt, testTime)
	}
	if got.DecommissionedAt != nil || got.DestroyedAt != nil {
		t.Error("terminal timestamps should be unset on a new gadget")
	}
}

func TestSQLiteRepository_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_Create_DuplicateCodename(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	if err := repo.Create(ctx, newTestGadget("g-1", "The Silent Hawk", StatusAvailable)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := repo.Create(ctx, newTestGadget("g-2", "The Silent Hawk", StatusAvailable))
	if !errors.Is(err, ErrCodenameTaken) {
		t.Errorf("Create() duplicate error = %v, want ErrCodenameTaken", err)
	}
}

func TestSQLiteRepository_CodenameExists(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	if err := repo.Create(ctx, newTestGadget("g-1", "The Silent Hawk", StatusAvailable)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		codename string
		want     bool
	}{
		{"The Silent Hawk", true},
		{"The Silent Owl", false},
		{"the silent hawk", false},
	}
	for _, tt := range tests {
		got, err := repo.CodenameExists(ctx, tt.codename)
		if err != nil {
			t.Fatalf("CodenameExists(%q) error = %v", tt.codename, err)
		}
		if got != tt.want {
			t.Errorf("CodenameExists(%q) = %v, want %v", tt.codename, got, tt.want)
		}
	}
}

func TestSQLiteRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	seed := []*Gadget{
		newTestGadget("g-1", "The Silent Hawk", StatusAvailable),
		newTestGadget("g-2", "The Shadow Eagle", StatusDeployed),
		newTestGadget("g-3", "The Ghost Wolf", StatusDeployed),
	}
	for _, g := range seed {
		if err := repo.Create(ctx, g); err != nil {
			t.Fatalf("Create(%s) error = %v", g.ID, err)
		}
	}

	tests := []struct {
		status Status
		want   int
	}{
		{"", 3},
		{StatusAvailable, 1},
		{StatusDeployed, 2},
		{StatusDestroyed, 0},
	}
	for _, tt := range tests {
		got, err := repo.List(ctx, tt.status)
		if err != nil {
			t.Fatalf("List(%q) error = %v", tt.status, err)
		}
		if len(got) != tt.want {
			t.Errorf("List(%q) returned %d gadgets, want %d", tt.status, len(got), tt.want)
		}
		if got == nil {
			t.Errorf("List(%q) returned nil, want empty slice", tt.status)
		}
	}
}

func TestSQLiteRepository_CountByStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	for _, g := range []*Gadget{
		newTestGadget("g-1", "The Silent Hawk", StatusAvailable),
		newTestGadget("g-2", "The Shadow Eagle", StatusDeployed),
		newTestGadget("g-3", "The Ghost Wolf", StatusDeployed),
	} {
		if err := repo.Create(ctx, g); err != nil {
			t.Fatalf("Create(%s) error = %v", g.ID, err)
		}
	}

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	want := map[Status]int{
		StatusAvailable:      1,
		StatusDeployed:       2,
		StatusDestroyed:      0,
		StatusDecommissioned: 0,
	}
	for s, n := range want {
		if counts[s] != n {
			t.Errorf("counts[%s] = %d, want %d", s, counts[s], n)
		}
	}
}

func TestSQLiteRepository_UpdateDescription(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	if err := repo.Create(ctx, newTestGadget("g-1", "The Silent Hawk", StatusAvailable)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	later := testTime.Add(time.Hour)
	if err := repo.UpdateDescription(ctx, "g-1", "Umbrella that fires a sleeping dart", later); err != nil {
		t.Fatalf("UpdateDescription() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, "g-1")
	if got.Description != "Umbrella that fires a sleeping dart" {
		t.Errorf("Description = %q", got.Description)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, later)
	}

	if err := repo.UpdateDescription(ctx, "missing", "Umbrella that fires a sleeping dart", later); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateDescription(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteRepository_ApplyTransition(t *testing.T) {
	tests := []struct {
		name               string
		from               Status
		to                 Status
		wantDestroyed      bool
		wantDecommissioned bool
	}{
		{name: "deploy", from: StatusAvailable, to: StatusDeployed},
		{name: "return", from: StatusDeployed, to: StatusAvailable},
		{name: "destroy", from: StatusDeployed, to: StatusDestroyed, wantDestroyed: true},
		{name: "decommission", from: StatusAvailable, to: StatusDecommissioned, wantDecommissioned: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := setupTestDB(t)
			repo := NewSQLiteRepository(db)
			history := NewSQLiteHistoryRepository(db)

			if err := repo.Create(ctx, newTestGadget("g-1", "The Silent Hawk", tt.from)); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			at := testTime.Add(10 * time.Minute)
			err := repo.ApplyTransition(ctx, Transition{GadgetID: "g-1", From: tt.from, To: tt.to, At: at})
			if err != nil {
				t.Fatalf("ApplyTransition() error = %v", err)
			}

			got, _ := repo.GetByID(ctx, "g-1")
			if got.Status != tt.to {
				t.Errorf("Status = %s, want %s", got.Status, tt.to)
			}
			if (got.DestroyedAt != nil) != tt.wantDestroyed {
				t.Errorf("DestroyedAt = %v, want set=%v", got.DestroyedAt, tt.wantDestroyed)
			}
			if (got.DecommissionedAt != nil) != tt.wantDecommissioned {
				t.Errorf("DecommissionedAt = %v, want set=%v", got.DecommissionedAt, tt.wantDecommissioned)
			}
			if got.DestroyedAt != nil && !got.DestroyedAt.Equal(at) {
				t.Errorf("DestroyedAt = %v, want %v", got.DestroyedAt, at)
			}

			entries, err := history.GetHistory(ctx, "g-1", 0)
			if err != nil {
				t.Fatalf("GetHistory() error = %v", err)
			}
			if len(entries) != 1 {
				t.Fatalf("history entries = %d, want 1", len(entries))
			}
			if entries[0].OldStatus != tt.from || entries[0].NewStatus != tt.to {
				t.Errorf("history entry = %+v", entries[0])
			}
		})
	}
}

func TestSQLiteRepository_ApplyTransition_StaleFrom(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	history := NewSQLiteHistoryRepository(db)

	if err := repo.Create(ctx, newTestGadget("g-1", "The Silent Hawk", StatusDeployed)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := repo.ApplyTransition(ctx, Transition{
		GadgetID:    "g-1",
		From:        StatusAvailable,
		To:          StatusDecommissioned,
		At:          testTime,
		Description: ptr("Rewritten while the status moved"),
	})
	if !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("ApplyTransition() error = %v, want ErrConcurrentUpdate", err)
	}

	got, _ := repo.GetByID(ctx, "g-1")
	if got.Status != StatusDeployed || got.DecommissionedAt != nil {
		t.Errorf("gadget changed despite conflict: %+v", got)
	}
	if got.Description != "Briefcase with a folding rotor blade" {
		t.Errorf("Description = %q, want it unchanged", got.Description)
	}
	entries, _ := history.GetHistory(ctx, "g-1", 0)
	if len(entries) != 0 {
		t.Errorf("history entries = %d, want 0", len(entries))
	}
}

func TestSQLiteRepository_ApplyTransition_WithDescription(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	if err := repo.Create(ctx, newTestGadget("g-1", "The Silent Hawk", StatusAvailable)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	at := testTime.Add(time.Hour)
	err := repo.ApplyTransition(ctx, Transition{
		GadgetID:    "g-1",
		From:        StatusAvailable,
		To:          StatusDeployed,
		At:          at,
		Description: ptr("Briefcase with a retractable rotor blade"),
	})
	if err != nil {
		t.Fatalf("ApplyTransition() error = %v", err)
	}

	got, _ := repo.GetByID(ctx, "g-1")
	if got.Status != StatusDeployed || got.Description != "Briefcase with a retractable rotor blade" {
		t.Errorf("gadget = %+v, want DEPLOYED with new description", got)
	}
	if !got.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, at)
	}
}

func TestSQLiteRepository_ApplyTransition_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	err := repo.ApplyTransition(context.Background(), Transition{GadgetID: "missing", From: StatusAvailable, To: StatusDeployed, At: testTime})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("ApplyTransition() error = %v, want ErrNotFound", err)
	}
}

func TestSchema_TerminalStatusIsImmutable(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	if err := repo.Create(ctx, newTestGadget("g-1", "The Silent Hawk", StatusDestroyed)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, `UPDATE gadgets SET status = 'AVAILABLE' WHERE id = 'g-1'`); err == nil {
		t.Error("schema should reject leaving a terminal status")
	}
}

func TestSchema_HistoryIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)

	if err := repo.Create(ctx, newTestGadget("g-1", "The Silent Hawk", StatusAvailable)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.ApplyTransition(ctx, Transition{GadgetID: "g-1", From: StatusAvailable, To: StatusDeployed, At: testTime}); err != nil {
		t.Fatalf("ApplyTransition() error = %v", err)
	}

	if _, err := db.ExecContext(ctx, `UPDATE status_history SET new_status = 'AVAILABLE'`); err == nil {
		t.Error("schema should reject updating history")
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM status_history`); err == nil {
		t.Error("schema should reject deleting history")
	}
}

func TestSQLiteHistoryRepository_OrderAndLimit(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewSQLiteRepository(db)
	history := NewSQLiteHistoryRepository(db)

	if err := repo.Create(ctx, newTestGadget("g-1", "The Silent Hawk", StatusAvailable)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	from := StatusAvailable
	for i := 0; i < 6; i++ {
		to := StatusDeployed
		if from == StatusDeployed {
			to = StatusAvailable
		}
		at := testTime.Add(time.Duration(i) * time.Minute)
		if err := repo.ApplyTransition(ctx, Transition{GadgetID: "g-1", From: from, To: to, At: at}); err != nil {
			t.Fatalf("ApplyTransition(%d) error = %v", i, err)
		}
		from = to
	}

	entries, err := history.GetHistory(ctx, "g-1", 0)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(entries) != 6 {
		t.Fatalf("entries = %d, want 6", len(entries))
	}
	if entries[0].NewStatus != StatusAvailable || !entries[0].CreatedAt.Equal(testTime.Add(5*time.Minute)) {
		t.Errorf("newest entry = %+v", entries[0])
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].ID >= entries[i-1].ID {
			t.Errorf("entries not newest first at %d", i)
		}
	}

	limited, err := history.GetHistory(ctx, "g-1", 2)
	if err != nil {
		t.Fatalf("GetHistory(limit 2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limited entries = %d, want 2", len(limited))
	}
}

func TestClampHistoryLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 50},
		{-1, 50},
		{10, 10},
		{200, 200},
		{500, 200},
	}
	for _, tt := range tests {
		if got := clampHistoryLimit(tt.in); got != tt.want {
			t.Errorf("clampHistoryLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
